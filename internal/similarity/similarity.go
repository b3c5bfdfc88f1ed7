// Package similarity ranks corpus rows by cosine similarity against a query
// vector or another corpus row.
package similarity

import (
	"github.com/substream/substream/internal/models"
	"github.com/substream/substream/internal/vectorspace"
)

// TopMatches returns up to topN (name, score) pairs ranked by descending
// cosine similarity of query against every matrix row. Excluded rows are
// forced to score 0 before ranking, so they can never appear in the results.
// Scores <= 0 are dropped; ties keep original corpus row order.
func TopMatches(matrix vectorspace.Matrix, names []string, query vectorspace.Vector, topN int, excluded map[int]struct{}) []models.ScoredSeries {
	if topN <= 0 || matrix.IsEmpty() {
		return nil
	}
	scores := matrix.Similarities(query)
	for idx := range excluded {
		if idx >= 0 && idx < len(scores) {
			scores[idx] = 0
		}
	}

	var results []models.ScoredSeries
	for _, idx := range vectorspace.TopIndices(scores, topN) {
		if scores[idx] <= 0 {
			continue
		}
		results = append(results, models.ScoredSeries{Name: names[idx], Score: scores[idx]})
		if len(results) >= topN {
			break
		}
	}
	return results
}

// SimilarToRow ranks all other rows against the given corpus row,
// excluding the row itself.
func SimilarToRow(matrix vectorspace.Matrix, names []string, row int, topN int) []models.ScoredSeries {
	if row < 0 || row >= len(matrix.Rows) {
		return nil
	}
	return TopMatches(matrix, names, matrix.Rows[row], topN, map[int]struct{}{row: {}})
}
