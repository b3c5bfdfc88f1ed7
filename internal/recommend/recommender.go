// Package recommend answers "series similar to X" and "series for user U"
// over the content model.
package recommend

import (
	"context"

	"go.uber.org/zap"

	"github.com/substream/substream/internal/model"
	"github.com/substream/substream/internal/models"
	"github.com/substream/substream/internal/similarity"
	"github.com/substream/substream/internal/storage"
	"github.com/substream/substream/internal/vectorspace"
)

// Recommender composes the content model and the similarity ranking.
// Ratings act purely as weights over content vectors already computed for
// search; there is no separate user-factor model.
type Recommender struct {
	model  *model.Service
	store  storage.Storage
	logger *zap.Logger
}

// NewRecommender creates a recommender over the given model service and store.
func NewRecommender(svc *model.Service, store storage.Storage, logger *zap.Logger) *Recommender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recommender{model: svc, store: store, logger: logger}
}

// ByContent returns the series closest to the named one by cosine similarity,
// excluding the series itself. An unknown name yields an empty result, not an
// error.
func (r *Recommender) ByContent(ctx context.Context, seriesName string, topN int) ([]models.ScoredSeries, error) {
	snap, err := r.model.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snap.IsEmpty() {
		return nil, nil
	}
	row, ok := snap.RowByName(seriesName)
	if !ok {
		return nil, nil
	}
	return similarity.SimilarToRow(snap.Matrix, snap.Names, row, topN), nil
}

// ForUser blends the user's ratings with the content matrix: the profile
// vector is the rating-weighted average of the rated corpus rows,
// re-normalized to unit length, and every rated series is excluded from the
// results. A user with no usable ratings gets an empty list; that is a
// legitimate "nothing to recommend from yet" state, never an error.
func (r *Recommender) ForUser(ctx context.Context, username string, topN int) ([]models.ScoredSeries, error) {
	snap, err := r.model.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snap.IsEmpty() {
		return nil, nil
	}

	ratings, err := r.store.GetRatings(ctx, username)
	if err != nil {
		return nil, err
	}
	if len(ratings) == 0 {
		return nil, nil
	}

	// Map rated series to corpus rows; names missing from the space are dropped.
	rated := make(map[int]struct{})
	profile := make(map[int]float64)
	var weightSum float64
	for _, rating := range ratings {
		row, ok := snap.RowByName(rating.SeriesName)
		if !ok {
			continue
		}
		rated[row] = struct{}{}
		weight := rating.Rating
		if weight <= 0 {
			continue
		}
		weightSum += weight
		vec := snap.Matrix.Rows[row]
		for i, idx := range vec.Indices {
			profile[idx] += weight * vec.Values[i]
		}
	}
	if weightSum == 0 || len(profile) == 0 {
		return nil, nil
	}

	query := vectorspace.FromMap(profile)
	for i := range query.Values {
		query.Values[i] /= weightSum
	}
	query.Normalize()

	return similarity.TopMatches(snap.Matrix, snap.Names, query, topN, rated), nil
}
