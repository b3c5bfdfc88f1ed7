package search

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/substream/substream/internal/config"
	"github.com/substream/substream/internal/feature"
	"github.com/substream/substream/internal/model"
	"github.com/substream/substream/internal/models"
	"github.com/substream/substream/internal/storage"
	"github.com/substream/substream/internal/textnorm"
	"github.com/substream/substream/internal/vectorspace"
	"github.com/substream/substream/pkg/utils"
)

// Engine runs hybrid (keyword + TF-IDF vector) search over the content model.
type Engine struct {
	model  *model.Service
	store  storage.Storage
	config *config.SearchConfig
	logger *zap.Logger
}

// NewEngine creates a search engine with the given dependencies.
func NewEngine(svc *model.Service, store storage.Storage, cfg *config.SearchConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{model: svc, store: store, config: cfg, logger: logger}
}

// Search runs the hybrid ranking policy for a free-text query:
//
//  1. tokenize; an empty or whitespace query is valid input with an empty answer
//  2. keyword scores with strict AND coverage; no covering series, no results
//  3. resolve every token to a vocabulary column; any out-of-vocabulary token
//     suppresses the vector channel, and with it the combined score, so such
//     queries yield no results (kept as-is; flagged for product review)
//  4. for series passing the column-coverage mask and the keyword map,
//     combined = vector_weight*cosine + keyword_weight*keyword
//  5. drop combined < min_combined_score, sort descending, clip at 1.0,
//     return the top hybrid_limit enriched with catalog metadata
func (e *Engine) Search(ctx context.Context, query string) (*models.SearchResponse, error) {
	start := time.Now()
	response := &models.SearchResponse{Query: query, Results: []models.SearchResult{}}

	if strings.TrimSpace(query) == "" {
		return response, nil
	}
	snap, err := e.model.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snap.IsEmpty() {
		return response, nil
	}

	tokens, counts := textnorm.QueryTokens(query)
	if len(tokens) == 0 {
		return response, nil
	}

	keywordScores := KeywordScores(snap, tokens)
	if len(keywordScores) == 0 {
		return response, nil
	}

	columns := TokenColumns(snap, tokens)
	vectorScores := make(map[string]float64)
	if len(columns) == len(tokens) && len(columns) > 0 {
		sims := snap.Matrix.Similarities(e.queryVector(snap, counts))
		for row, name := range snap.Names {
			if _, ok := keywordScores[name]; !ok {
				continue
			}
			if rowCovers(snap, row, columns) {
				vectorScores[name] = sims[row]
			}
		}
	}

	// Collect in corpus row order so that equal scores rank deterministically.
	var hits []models.ScoredSeries
	for _, name := range snap.Names {
		keywordScore, ok := keywordScores[name]
		if !ok {
			continue
		}
		vectorScore, ok := vectorScores[name]
		if !ok {
			continue
		}
		combined := e.config.VectorWeight*vectorScore + e.config.KeywordWeight*keywordScore
		if combined < e.config.MinCombinedScore {
			continue
		}
		hits = append(hits, models.ScoredSeries{Name: name, Score: combined})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > e.config.HybridLimit {
		hits = hits[:e.config.HybridLimit]
	}

	for _, hit := range hits {
		series, err := e.store.GetSeriesByName(ctx, hit.Name)
		if err != nil {
			e.logger.Debug("search: series metadata missing", zap.String("name", hit.Name))
			continue
		}
		response.Results = append(response.Results, models.SearchResult{
			ID:       series.ID,
			Name:     series.Name,
			ImageURL: series.ImageURL,
			Synopsis: series.Synopsis,
			Score:    utils.Clip(hit.Score, 0, 1),
		})
	}
	response.Count = len(response.Results)
	response.QueryTime = time.Since(start).Milliseconds()
	return response, nil
}

// VectorSearch ranks every series by plain TF-IDF cosine similarity to the
// query, with a small bonus (clipped at 1.0) for series containing every
// in-vocabulary query token: unknown tokens drop out of the coverage check
// instead of withholding the bonus from everyone. Scores below
// min_vector_score are dropped.
func (e *Engine) VectorSearch(ctx context.Context, query string, topN int) ([]models.ScoredSeries, error) {
	if strings.TrimSpace(query) == "" || topN <= 0 {
		return nil, nil
	}
	snap, err := e.model.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snap.IsEmpty() {
		return nil, nil
	}

	tokens, counts := textnorm.QueryTokens(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	sims := snap.Matrix.Similarities(e.queryVector(snap, counts))
	columns := KnownColumns(snap, tokens)

	var results []models.ScoredSeries
	for row, name := range snap.Names {
		score := sims[row]
		if score <= 0 {
			continue
		}
		if len(columns) > 0 && rowCovers(snap, row, columns) {
			score = utils.Clip(score+e.config.CoverageBonus, 0, 1)
		}
		if score >= e.config.MinVectorScore {
			results = append(results, models.ScoredSeries{Name: name, Score: score})
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topN {
		results = results[:topN]
	}
	return results, nil
}

// queryVector transforms query token counts into the fitted space through the
// subtitle term namespace.
func (e *Engine) queryVector(snap *model.Snapshot, counts map[string]float64) vectorspace.Vector {
	dict := make(map[string]float64, len(counts))
	for token, count := range counts {
		dict[feature.TermPrefix+token] = count
	}
	return snap.Vectorizer.Transform(dict)
}
