// Package model owns the process-wide content model cache: the fitted
// vector space, the corpus matrix, and the raw term counts, published as an
// immutable snapshot.
package model

import (
	"strings"
	"time"

	"github.com/substream/substream/internal/vectorspace"
)

// Snapshot is one build generation of the content model. All fields belong to
// the same generation; a snapshot is never mutated after publication, so
// readers can use it without locking.
type Snapshot struct {
	// Names holds series display names in corpus row order.
	Names []string
	// Vectorizer is the fitted vocabulary + IDF state.
	Vectorizer *vectorspace.Vectorizer
	// Matrix is the L2-row-normalized TF-IDF corpus matrix.
	Matrix vectorspace.Matrix
	// TermCounts maps series display name to normalized token -> raw
	// (pre-IDF) subtitle term count, for the keyword channel.
	TermCounts map[string]map[string]float64
	// BuiltAt is the build completion time.
	BuiltAt time.Time

	rows map[string]int
}

// RowByName returns the corpus row for a series name (case-insensitive).
func (s *Snapshot) RowByName(name string) (int, bool) {
	idx, ok := s.rows[strings.ToLower(name)]
	return idx, ok
}

// IsEmpty reports whether the snapshot holds no usable corpus.
func (s *Snapshot) IsEmpty() bool {
	return s == nil || len(s.Names) == 0 || s.Matrix.IsEmpty()
}

// Size returns the number of series in the space.
func (s *Snapshot) Size() int {
	if s == nil {
		return 0
	}
	return len(s.Names)
}
