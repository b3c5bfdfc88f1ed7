package model

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/substream/substream/internal/feature"
	"github.com/substream/substream/internal/models"
	"github.com/substream/substream/internal/storage"
)

func newTestService(t *testing.T) (*Service, storage.Storage) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "model.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	builder := feature.NewBuilder(feature.DefaultWeights())
	return NewService(store, builder, zap.NewNop()), store
}

func seedSeries(t *testing.T, store storage.Storage, name, synopsis string, terms map[string]float64) int64 {
	t.Helper()
	ctx := context.Background()
	series := &models.Series{Name: name, Synopsis: synopsis}
	if err := store.CreateSeries(ctx, series); err != nil {
		t.Fatal(err)
	}
	if len(terms) > 0 {
		if err := store.ReplaceTermCounts(ctx, series.ID, terms); err != nil {
			t.Fatal(err)
		}
	}
	return series.ID
}

func TestServiceLazyBuild(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	seedSeries(t, store, "Dragon Tale", "dragons roam", map[string]float64{"dragon": 5})
	seedSeries(t, store, "Ocean Deep", "under the waves", map[string]float64{"ocean": 3})

	snap, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Size() != 2 {
		t.Fatalf("size = %d, want 2", snap.Size())
	}
	if snap.IsEmpty() {
		t.Error("snapshot should not be empty")
	}

	// Second read serves the same snapshot without rebuilding.
	again, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if again != snap {
		t.Error("expected the published snapshot to be reused")
	}
}

func TestServiceRowLookupIsCaseInsensitive(t *testing.T) {
	svc, store := newTestService(t)
	seedSeries(t, store, "Dragon Tale", "", map[string]float64{"dragon": 5})

	snap, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	row, ok := snap.RowByName("DRAGON tale")
	if !ok {
		t.Fatal("expected row for case-folded name")
	}
	if snap.Names[row] != "Dragon Tale" {
		t.Errorf("row resolves to %q", snap.Names[row])
	}
	if _, ok := snap.RowByName("missing"); ok {
		t.Error("unknown name must not resolve")
	}
}

func TestServiceForceRebuildPicksUpNewSeries(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	seedSeries(t, store, "Dragon Tale", "", map[string]float64{"dragon": 5})
	snap, err := svc.Build(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Size() != 1 {
		t.Fatalf("size = %d, want 1", snap.Size())
	}

	seedSeries(t, store, "Castle Watch", "", map[string]float64{"castle": 4})

	// Without force the stale snapshot stays published.
	stale, err := svc.Build(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if stale.Size() != 1 {
		t.Errorf("non-forced build must keep the old snapshot, size = %d", stale.Size())
	}

	fresh, err := svc.Build(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Size() != 2 {
		t.Fatalf("forced rebuild size = %d, want 2", fresh.Size())
	}
	if _, ok := fresh.RowByName("Castle Watch"); !ok {
		t.Error("new series must be findable after forced rebuild")
	}
}

func TestServiceInvalidate(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	seedSeries(t, store, "Dragon Tale", "", map[string]float64{"dragon": 5})
	if _, err := svc.Snapshot(ctx); err != nil {
		t.Fatal(err)
	}

	seedSeries(t, store, "Ocean Deep", "", map[string]float64{"ocean": 3})
	svc.Invalidate()

	snap, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Size() != 2 {
		t.Errorf("size after invalidate = %d, want 2", snap.Size())
	}
}

// checkSnapshotConsistent verifies that all snapshot fields belong to the
// same build generation: the row mapping must resolve every name to its own
// row, and the matrix must have exactly one row per name.
func checkSnapshotConsistent(snap *Snapshot) error {
	if len(snap.Names) != len(snap.Matrix.Rows) {
		return fmt.Errorf("%d names but %d matrix rows", len(snap.Names), len(snap.Matrix.Rows))
	}
	for i, name := range snap.Names {
		row, ok := snap.RowByName(name)
		if !ok {
			return fmt.Errorf("name %q missing from row mapping", name)
		}
		if row != i {
			return fmt.Errorf("name %q maps to row %d, corpus position is %d", name, row, i)
		}
	}
	return nil
}

func TestServiceConcurrentReadersDuringRebuild(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	seedSeries(t, store, "Series 0", "", map[string]float64{"dragon": 5})
	if _, err := svc.Build(ctx, false); err != nil {
		t.Fatal(err)
	}

	const readers = 8
	const rebuilds = 20

	stop := make(chan struct{})
	errs := make(chan error, readers)
	var wg sync.WaitGroup
	for r := 0; r < readers; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap, err := svc.Snapshot(ctx)
				if err != nil {
					errs <- err
					return
				}
				if err := checkSnapshotConsistent(snap); err != nil {
					errs <- err
					return
				}
			}
		}()
	}

	for gen := 1; gen <= rebuilds; gen++ {
		seedSeries(t, store, fmt.Sprintf("Series %d", gen), "",
			map[string]float64{"dragon": float64(gen + 1)})
		if _, err := svc.Build(ctx, true); err != nil {
			close(stop)
			wg.Wait()
			t.Fatal(err)
		}
	}
	close(stop)
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	snap, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Size() != rebuilds+1 {
		t.Errorf("final size = %d, want %d", snap.Size(), rebuilds+1)
	}
}

func TestServiceEmptyCorpus(t *testing.T) {
	svc, _ := newTestService(t)

	snap, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !snap.IsEmpty() {
		t.Error("empty database should yield an empty snapshot, not an error")
	}
}

func TestServiceTermCountsUseNormalizedTokens(t *testing.T) {
	svc, store := newTestService(t)

	// Raw subtitle terms carry casing, accents and noise words.
	seedSeries(t, store, "Dragon Tale", "", map[string]float64{
		"Dragon": 3, "château": 2, "the": 9,
	})

	snap, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	counts := snap.TermCounts["Dragon Tale"]
	if counts == nil {
		t.Fatal("no term counts for series")
	}
	if counts["dragon"] != 3 {
		t.Errorf("dragon count = %v, want 3", counts["dragon"])
	}
	if counts["chateau"] != 2 {
		t.Errorf("accent-folded count = %v, want 2", counts["chateau"])
	}
	if _, ok := counts["the"]; ok {
		t.Error("stop word must be dropped from term counts")
	}
}
