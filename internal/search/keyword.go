// Package search provides keyword scoring and the hybrid query ranking policy.
package search

import (
	"github.com/substream/substream/internal/feature"
	"github.com/substream/substream/internal/model"
)

// KeywordScores returns series name -> score for the given query tokens.
// A series is included only if its term table contains every token (strict
// AND coverage, not best-effort); the score is the sum of the raw, pre-IDF
// term counts for those tokens. This is a coverage-gated popularity score,
// orthogonal to the TF-IDF vector score.
func KeywordScores(snap *model.Snapshot, tokens []string) map[string]float64 {
	scores := make(map[string]float64)
	if len(tokens) == 0 {
		return scores
	}
	for name, counts := range snap.TermCounts {
		var total float64
		covered := true
		for _, token := range tokens {
			count, ok := counts[token]
			if !ok {
				covered = false
				break
			}
			total += count
		}
		if covered {
			scores[name] = total
		}
	}
	return scores
}

// TokenColumns resolves query tokens to vocabulary columns in the subtitle
// term namespace. If any token is out of vocabulary, nil is returned: a query
// containing a term the model has never seen cannot produce a vector
// comparison.
func TokenColumns(snap *model.Snapshot, tokens []string) []int {
	columns := make([]int, 0, len(tokens))
	for _, token := range tokens {
		idx, ok := snap.Vectorizer.Index(feature.TermPrefix + token)
		if !ok {
			return nil
		}
		columns = append(columns, idx)
	}
	return columns
}

// KnownColumns resolves query tokens to vocabulary columns in the subtitle
// term namespace, skipping tokens the model has never seen. Unlike
// TokenColumns this is best-effort: the in-vocabulary subset still counts
// for coverage checks.
func KnownColumns(snap *model.Snapshot, tokens []string) []int {
	var columns []int
	for _, token := range tokens {
		if idx, ok := snap.Vectorizer.Index(feature.TermPrefix + token); ok {
			columns = append(columns, idx)
		}
	}
	return columns
}

// HasAllTerms reports whether the series' corpus row has a non-zero entry in
// every given column. An empty column set is trivially covered.
func HasAllTerms(snap *model.Snapshot, seriesName string, columns []int) bool {
	if len(columns) == 0 {
		return true
	}
	row, ok := snap.RowByName(seriesName)
	if !ok {
		return false
	}
	return rowCovers(snap, row, columns)
}

func rowCovers(snap *model.Snapshot, row int, columns []int) bool {
	vec := snap.Matrix.Rows[row]
	for _, idx := range columns {
		if vec.At(idx) == 0 {
			return false
		}
	}
	return true
}
