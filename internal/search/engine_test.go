package search

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/substream/substream/internal/config"
	"github.com/substream/substream/internal/feature"
	"github.com/substream/substream/internal/model"
	"github.com/substream/substream/internal/models"
	"github.com/substream/substream/internal/storage"
)

func testSearchConfig() *config.SearchConfig {
	var cfg config.Config
	config.ApplyDefaults(&cfg)
	return &cfg.Search
}

// newTestEngine seeds three series so that "dragon castle" covers A and B but
// not C, with B holding the stronger balanced keyword profile.
func newTestEngine(t *testing.T) (*Engine, *model.Service, storage.Storage) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "search.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	seed := []struct {
		name  string
		terms map[string]float64
	}{
		{"Series A", map[string]float64{"dragon": 10, "castle": 1}},
		{"Series B", map[string]float64{"dragon": 8, "castle": 8}},
		{"Series C", map[string]float64{"ocean": 5}},
	}
	for _, s := range seed {
		series := &models.Series{Name: s.name, Synopsis: "a show"}
		if err := store.CreateSeries(ctx, series); err != nil {
			t.Fatal(err)
		}
		if err := store.ReplaceTermCounts(ctx, series.ID, s.terms); err != nil {
			t.Fatal(err)
		}
	}

	svc := model.NewService(store, feature.NewBuilder(feature.DefaultWeights()), zap.NewNop())
	return NewEngine(svc, store, testSearchConfig(), zap.NewNop()), svc, store
}

func TestSearchHybridRanking(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	resp, err := engine.Search(context.Background(), "dragon castle")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Count != 2 {
		t.Fatalf("count = %d, want 2 (C must not cover)", resp.Count)
	}
	if resp.Results[0].Name != "Series B" {
		t.Errorf("first = %q, want Series B (balanced coverage outranks a lopsided one)", resp.Results[0].Name)
	}
	if resp.Results[1].Name != "Series A" {
		t.Errorf("second = %q, want Series A", resp.Results[1].Name)
	}
	for _, result := range resp.Results {
		if result.Score > 1.0 {
			t.Errorf("score %v for %q exceeds 1.0", result.Score, result.Name)
		}
		if result.ID == 0 || result.Name == "" {
			t.Errorf("result not enriched with catalog metadata: %+v", result)
		}
	}
}

func TestSearchStrictAndCoverage(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	// "dragon ocean" covers nothing: no single series has both terms.
	resp, err := engine.Search(context.Background(), "dragon ocean")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Count != 0 {
		t.Errorf("count = %d, want 0", resp.Count)
	}
}

func TestSearchOutOfVocabularyToken(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	resp, err := engine.Search(context.Background(), "dragon zeppelin")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Count != 0 {
		t.Errorf("an unseen token must suppress all results, got %d", resp.Count)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	for _, query := range []string{"", "   ", "the of"} {
		resp, err := engine.Search(context.Background(), query)
		if err != nil {
			t.Fatalf("query %q: %v", query, err)
		}
		if resp.Count != 0 {
			t.Errorf("query %q: count = %d, want 0", query, resp.Count)
		}
		if resp.Results == nil {
			t.Errorf("query %q: results must be an empty slice, not nil", query)
		}
	}
}

func TestSearchIsDeterministic(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	first, err := engine.Search(ctx, "dragon")
	if err != nil {
		t.Fatal(err)
	}
	for run := 0; run < 5; run++ {
		resp, err := engine.Search(ctx, "dragon")
		if err != nil {
			t.Fatal(err)
		}
		if len(resp.Results) != len(first.Results) {
			t.Fatal("result count changed between runs")
		}
		for i := range resp.Results {
			if resp.Results[i].Name != first.Results[i].Name {
				t.Fatalf("run order changed: %q vs %q at %d",
					resp.Results[i].Name, first.Results[i].Name, i)
			}
		}
	}
}

func TestVectorSearch(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	results, err := engine.VectorSearch(context.Background(), "dragon", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Fatal("expected vector hits for an in-vocabulary token")
	}
	for i, r := range results {
		if r.Score > 1.0 {
			t.Errorf("score %v exceeds 1.0", r.Score)
		}
		if r.Name == "Series C" {
			t.Error("Series C shares no terms with the query and must not match")
		}
		if i > 0 && results[i-1].Score < r.Score {
			t.Error("results not sorted descending")
		}
	}
}

func TestVectorSearchUnknownTokenKeepsCoverageBonus(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	// An unseen token contributes nothing to the query vector and drops out
	// of the coverage check, so adding one must not change any score.
	base, err := engine.VectorSearch(ctx, "dragon", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(base) == 0 {
		t.Fatal("expected baseline hits")
	}
	withUnknown, err := engine.VectorSearch(ctx, "dragon zeppelin", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(withUnknown) != len(base) {
		t.Fatalf("result count changed: %d vs %d", len(withUnknown), len(base))
	}
	for i := range base {
		if withUnknown[i].Name != base[i].Name {
			t.Errorf("rank %d: %q vs %q", i, withUnknown[i].Name, base[i].Name)
		}
		if math.Abs(withUnknown[i].Score-base[i].Score) > 1e-12 {
			t.Errorf("%q score changed: %v vs %v (coverage bonus withheld?)",
				base[i].Name, withUnknown[i].Score, base[i].Score)
		}
	}
}

func TestVectorSearchEmptyInputs(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	if results, err := engine.VectorSearch(ctx, "  ", 10); err != nil || len(results) != 0 {
		t.Errorf("blank query: results=%v err=%v", results, err)
	}
	if results, err := engine.VectorSearch(ctx, "dragon", 0); err != nil || len(results) != 0 {
		t.Errorf("topN 0: results=%v err=%v", results, err)
	}
}

func TestKeywordScores(t *testing.T) {
	_, svc, _ := newTestEngine(t)
	snap, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	scores := KeywordScores(snap, []string{"dragon", "castle"})
	if len(scores) != 2 {
		t.Fatalf("covered series = %d, want 2", len(scores))
	}
	if scores["Series A"] != 11 {
		t.Errorf("Series A = %v, want 11", scores["Series A"])
	}
	if scores["Series B"] != 16 {
		t.Errorf("Series B = %v, want 16", scores["Series B"])
	}

	if got := KeywordScores(snap, nil); len(got) != 0 {
		t.Errorf("no tokens must score nothing, got %v", got)
	}
}

func TestTokenColumns(t *testing.T) {
	_, svc, _ := newTestEngine(t)
	snap, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	columns := TokenColumns(snap, []string{"dragon", "castle"})
	if len(columns) != 2 {
		t.Fatalf("columns = %v, want 2 entries", columns)
	}
	if TokenColumns(snap, []string{"dragon", "zeppelin"}) != nil {
		t.Error("any unseen token must resolve the whole set to nil")
	}
}

func TestKnownColumns(t *testing.T) {
	_, svc, _ := newTestEngine(t)
	snap, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	columns := KnownColumns(snap, []string{"dragon", "zeppelin", "castle"})
	if len(columns) != 2 {
		t.Fatalf("columns = %v, want the 2 in-vocabulary tokens", columns)
	}
	if got := KnownColumns(snap, []string{"zeppelin"}); len(got) != 0 {
		t.Errorf("all-unknown tokens: columns = %v, want none", got)
	}
}

func TestHasAllTerms(t *testing.T) {
	_, svc, _ := newTestEngine(t)
	snap, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	columns := TokenColumns(snap, []string{"dragon", "castle"})

	if !HasAllTerms(snap, "Series B", columns) {
		t.Error("Series B holds both terms")
	}
	if HasAllTerms(snap, "Series C", columns) {
		t.Error("Series C holds neither term")
	}
	if !HasAllTerms(snap, "Series C", nil) {
		t.Error("empty column set is trivially covered")
	}
	if HasAllTerms(snap, "Unknown", columns) {
		t.Error("unknown series cannot cover")
	}
}
