package model

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/substream/substream/internal/feature"
	"github.com/substream/substream/internal/storage"
	"github.com/substream/substream/internal/textnorm"
	"github.com/substream/substream/internal/vectorspace"
)

// Service builds and publishes model snapshots. The snapshot is built lazily
// on first use and replaced wholesale on rebuild: publication is a single
// atomic pointer swap, so a reader never observes a matrix paired with a
// vocabulary or row mapping from a different generation. A single-writer
// mutex serializes builds; readers arriving during a build are served the
// last published snapshot.
type Service struct {
	store   storage.Storage
	builder *feature.Builder
	logger  *zap.Logger

	buildMu sync.Mutex
	current atomic.Pointer[Snapshot]
}

// NewService creates a model service over the given storage.
func NewService(store storage.Storage, builder *feature.Builder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, builder: builder, logger: logger}
}

// Snapshot returns the current snapshot, building it first if none has been
// published yet.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}
	return s.Build(ctx, false)
}

// Build constructs a snapshot from storage and publishes it. When force is
// false and a snapshot already exists, the existing one is returned untouched.
func (s *Service) Build(ctx context.Context, force bool) (*Snapshot, error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	if snap := s.current.Load(); snap != nil && !force {
		return snap, nil
	}

	start := time.Now()
	snap, err := s.build(ctx)
	if err != nil {
		return nil, fmt.Errorf("model build failed: %w", err)
	}
	s.current.Store(snap)
	s.logger.Info("content model built",
		zap.Int("series", snap.Size()),
		zap.Int("dimensions", snap.Vectorizer.Dimensions()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return snap, nil
}

// Invalidate drops the published snapshot; the next read rebuilds lazily.
func (s *Service) Invalidate() {
	s.current.Store(nil)
}

func (s *Service) build(ctx context.Context) (*Snapshot, error) {
	series, err := s.store.ListSeries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load series: %w", err)
	}
	entries, err := s.store.ListTermEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load term entries: %w", err)
	}

	termsByID := make(map[int64]map[string]float64)
	for _, entry := range entries {
		if entry.Count <= 0 {
			continue
		}
		bag := termsByID[entry.SeriesID]
		if bag == nil {
			bag = make(map[string]float64)
			termsByID[entry.SeriesID] = bag
		}
		bag[entry.Term] += entry.Count
	}

	inputs := make([]feature.Input, 0, len(series))
	termCounts := make(map[string]map[string]float64, len(series))
	for _, sr := range series {
		name := strings.TrimSpace(sr.Name)
		if name == "" {
			continue
		}
		raw := termsByID[sr.ID]
		inputs = append(inputs, feature.Input{
			Name:     name,
			Synopsis: sr.Synopsis,
			Terms:    raw,
		})

		// Raw counts for the keyword channel, keyed by normalized token.
		counts := make(map[string]float64, len(raw))
		for term, count := range raw {
			token := textnorm.NormalizeToken(term)
			if token == "" || count <= 0 {
				continue
			}
			counts[token] += count
		}
		if len(counts) > 0 {
			termCounts[name] = counts
		}
	}

	names, dicts := s.builder.Build(inputs)
	vectorizer := vectorspace.NewVectorizer()
	matrix := vectorizer.Fit(dicts)

	rows := make(map[string]int, len(names))
	for i, name := range names {
		rows[strings.ToLower(name)] = i
	}

	return &Snapshot{
		Names:      names,
		Vectorizer: vectorizer,
		Matrix:     matrix,
		TermCounts: termCounts,
		BuiltAt:    time.Now(),
		rows:       rows,
	}, nil
}
