package vectorspace

import "math"

// Vectorizer fits a vocabulary and IDF weights over feature dictionaries and
// produces an L2-normalized TF-IDF matrix. Weighting: smoothed IDF
// (ln((1+N)/(1+df)) + 1) with sublinear term frequency (1 + ln(tf)), which
// dampens the effect of heavily weighted subtitle terms.
type Vectorizer struct {
	vocab  *Vocabulary
	idf    []float64
	fitted bool
}

// NewVectorizer returns an unfitted vectorizer.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{vocab: NewVocabulary()}
}

// Fit builds the vocabulary and IDF weights from the dictionaries and returns
// the normalized document matrix, one row per dictionary. An empty input
// yields an empty matrix; downstream consumers treat that as "no results".
func (t *Vectorizer) Fit(dicts []map[string]float64) Matrix {
	t.vocab = NewVocabulary()

	// Vocabulary: first-seen key ordering across all dictionaries.
	for _, dict := range dicts {
		for _, key := range sortedKeys(dict) {
			t.vocab.Add(key)
		}
	}

	n := len(dicts)
	cols := t.vocab.Len()
	df := make([]int, cols)
	rows := make([]Vector, n)
	for i, dict := range dicts {
		entries := make(map[int]float64, len(dict))
		for key, value := range dict {
			if value == 0 {
				continue
			}
			idx, _ := t.vocab.Index(key)
			entries[idx] = value
		}
		rows[i] = FromMap(entries)
		for _, idx := range rows[i].Indices {
			df[idx]++
		}
	}

	t.idf = make([]float64, cols)
	for j := range t.idf {
		t.idf[j] = math.Log(float64(1+n)/float64(1+df[j])) + 1
	}
	t.fitted = true

	for i := range rows {
		t.reweigh(rows[i])
	}
	return Matrix{Rows: rows, Cols: cols}
}

// Transform vectorizes a single feature dictionary in the fitted space.
// Out-of-vocabulary keys are dropped and never grow the vocabulary.
func (t *Vectorizer) Transform(dict map[string]float64) Vector {
	if !t.fitted {
		return Vector{}
	}
	entries := make(map[int]float64, len(dict))
	for key, value := range dict {
		if value == 0 {
			continue
		}
		if idx, ok := t.vocab.Index(key); ok {
			entries[idx] = value
		}
	}
	vec := FromMap(entries)
	t.reweigh(vec)
	return vec
}

// reweigh applies sublinear tf scaling and IDF, then L2-normalizes in place.
func (t *Vectorizer) reweigh(vec Vector) {
	for i, idx := range vec.Indices {
		tf := 1 + math.Log(vec.Values[i])
		vec.Values[i] = tf * t.idf[idx]
	}
	vec.Normalize()
}

// Index returns the column index of a feature key in the fitted vocabulary.
func (t *Vectorizer) Index(key string) (int, bool) {
	return t.vocab.Index(key)
}

// Dimensions returns the vocabulary size.
func (t *Vectorizer) Dimensions() int {
	return t.vocab.Len()
}
