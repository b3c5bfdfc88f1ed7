package vectorspace

import "sort"

// Vocabulary is a bidirectional mapping between feature keys and dense column
// indices. It is fixed once the vectorizer is fitted: transforming never grows
// it.
type Vocabulary struct {
	keys  []string
	index map[string]int
}

// NewVocabulary returns an empty vocabulary.
func NewVocabulary() *Vocabulary {
	return &Vocabulary{index: make(map[string]int)}
}

// Add returns the column index for key, inserting it if unseen.
func (v *Vocabulary) Add(key string) int {
	if idx, ok := v.index[key]; ok {
		return idx
	}
	idx := len(v.keys)
	v.keys = append(v.keys, key)
	v.index[key] = idx
	return idx
}

// Index returns the column index for key, if present.
func (v *Vocabulary) Index(key string) (int, bool) {
	idx, ok := v.index[key]
	return idx, ok
}

// Key returns the feature key at column idx.
func (v *Vocabulary) Key(idx int) string {
	return v.keys[idx]
}

// Len returns the number of vocabulary entries (the space dimensionality).
func (v *Vocabulary) Len() int {
	return len(v.keys)
}

// sortedKeys returns the keys of a feature dictionary in ascending order.
// Map iteration order is randomized, so keys are visited sorted within each
// dictionary to keep vocabulary construction deterministic for a given input
// order.
func sortedKeys(dict map[string]float64) []string {
	keys := make([]string, 0, len(dict))
	for key := range dict {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
