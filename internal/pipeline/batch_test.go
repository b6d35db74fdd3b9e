package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/nao1215/grepscan/internal/detector"
	"github.com/nao1215/grepscan/internal/model"
	"github.com/nao1215/grepscan/internal/store"
)

func newTestDetectors(t *testing.T) (*detector.Set, *store.Store[model.Finding]) {
	t.Helper()

	st := detector.NewFindingStore()
	detectors, err := detector.Build(nil, detector.Deps{Store: st, Options: detector.DefaultOptions()})
	if err != nil {
		t.Fatalf("failed to build detectors: %v", err)
	}
	return detector.NewSet(detectors, nil), st
}

func oracleDoc(url string) *model.Document {
	return &model.Document{
		URL:         url,
		StatusCode:  200,
		ContentType: "text/html",
		Body:        "<html><!-- Created by Oracle AS --></html>",
	}
}

// TestBatchProcessorNew tests the BatchProcessor constructor.
func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	t.Run("creates processor with defaults", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(nil)
		if bp.concurrency != 10 {
			t.Errorf("expected default concurrency 10, got %d", bp.concurrency)
		}
		if bp.logger == nil {
			t.Error("expected non-nil logger")
		}
		if bp.load == nil {
			t.Error("expected default loader")
		}
	})

	t.Run("applies options", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(nil, WithConcurrency(5), WithConcurrency(0), WithLoader(nil))
		if bp.concurrency != 5 {
			t.Errorf("expected concurrency 5, got %d", bp.concurrency)
		}
		if bp.load == nil {
			t.Error("expected nil loader to be ignored")
		}
	})
}

// TestBatchProcessorProcessBatch tests batch processing.
func TestBatchProcessorProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("processes every source and keeps order", func(t *testing.T) {
		t.Parallel()

		set, st := newTestDetectors(t)
		loadErr := errors.New("broken dump")
		var loads atomic.Int32

		bp := NewBatchProcessor(set,
			WithConcurrency(3),
			WithLoader(func(path string) (*model.Document, error) {
				loads.Add(1)
				if path == "broken.http" {
					return nil, loadErr
				}
				return oracleDoc("http://host/" + path), nil
			}),
		)

		sources := []Source{
			{Path: "a.http"},
			{Path: "broken.http"},
			{Document: oracleDoc("http://host/memory")},
			{Path: "b.http"},
		}

		results, err := bp.ProcessBatch(context.Background(), sources)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != len(sources) {
			t.Fatalf("expected %d results, got %d", len(sources), len(results))
		}
		if loads.Load() != 3 {
			t.Errorf("expected 3 loads, got %d", loads.Load())
		}

		if results[0].URL != "http://host/a.http" || !results[0].Loaded {
			t.Errorf("unexpected first result: %+v", results[0])
		}
		if !errors.Is(results[1].Err, loadErr) || results[1].Loaded {
			t.Errorf("expected load failure to be recorded, got %+v", results[1])
		}
		if results[2].Source != "http://host/memory" {
			t.Errorf("expected in-memory source to be named by URL, got %q", results[2].Source)
		}

		if got := len(st.Get(model.CategoryOracle)); got != 3 {
			t.Errorf("expected 3 oracle findings, got %d", got)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		set, st := newTestDetectors(t)
		bp := NewBatchProcessor(set)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := bp.ProcessBatch(ctx, []Source{{Document: oracleDoc("http://x/")}})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if st.Len() != 0 {
			t.Errorf("expected no findings, got %d", st.Len())
		}
	})

	t.Run("duplicate urls across goroutines", func(t *testing.T) {
		t.Parallel()

		set, st := newTestDetectors(t)
		bp := NewBatchProcessor(set, WithConcurrency(16))

		sources := make([]Source, 100)
		for i := range sources {
			sources[i] = Source{Document: oracleDoc("http://same/")}
		}

		if _, err := bp.ProcessBatch(context.Background(), sources); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := len(st.Get(model.CategoryOracle)); got != 1 {
			t.Errorf("expected 1 finding for a repeated URL, got %d", got)
		}
	})
}
