package similarity

import (
	"testing"

	"github.com/substream/substream/internal/vectorspace"
)

func fixtureMatrix() (vectorspace.Matrix, []string) {
	rows := []vectorspace.Vector{
		vectorspace.FromMap(map[int]float64{0: 1}),
		vectorspace.FromMap(map[int]float64{0: 0.8, 1: 0.6}),
		vectorspace.FromMap(map[int]float64{2: 1}),
	}
	return vectorspace.Matrix{Rows: rows, Cols: 3}, []string{"A", "B", "C"}
}

func TestSimilarToRow_ExcludesSelf(t *testing.T) {
	matrix, names := fixtureMatrix()
	results := SimilarToRow(matrix, names, 0, 5)
	for _, r := range results {
		if r.Name == "A" {
			t.Error("self must be excluded from results")
		}
	}
	if len(results) != 1 || results[0].Name != "B" {
		t.Fatalf("results = %v, want only B", results)
	}
}

func TestSimilarToRow_UnknownRow(t *testing.T) {
	matrix, names := fixtureMatrix()
	if got := SimilarToRow(matrix, names, 9, 5); got != nil {
		t.Errorf("expected nil for out-of-range row, got %v", got)
	}
}

func TestTopMatches_DropsNonPositive(t *testing.T) {
	matrix, names := fixtureMatrix()
	query := vectorspace.FromMap(map[int]float64{2: 1})
	results := TopMatches(matrix, names, query, 5, nil)
	if len(results) != 1 || results[0].Name != "C" {
		t.Fatalf("results = %v, want only C", results)
	}
}

func TestTopMatches_ExcludedRowsScoreZero(t *testing.T) {
	matrix, names := fixtureMatrix()
	query := vectorspace.FromMap(map[int]float64{0: 1})
	results := TopMatches(matrix, names, query, 5, map[int]struct{}{1: {}})
	for _, r := range results {
		if r.Name == "B" {
			t.Error("excluded row B must not appear")
		}
	}
}

func TestTopMatches_DescendingOrder(t *testing.T) {
	matrix, names := fixtureMatrix()
	query := vectorspace.FromMap(map[int]float64{0: 1, 1: 0.2})
	query.Normalize()
	results := TopMatches(matrix, names, query, 5, nil)
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not in descending order: %v", results)
		}
	}
}

func TestTopMatches_EmptyMatrix(t *testing.T) {
	if got := TopMatches(vectorspace.Matrix{}, nil, vectorspace.Vector{}, 5, nil); got != nil {
		t.Errorf("expected nil on empty matrix, got %v", got)
	}
}
