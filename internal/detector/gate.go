package detector

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/nao1215/grepscan/internal/bloom"
	"github.com/nao1215/grepscan/internal/model"
	"github.com/nao1215/grepscan/internal/store"
)

// gate holds the state shared by all detectors: the URL filter, the
// finding store and the counters.
type gate struct {
	name      string
	category  string
	unique    bool
	requireOK bool

	seen   bloom.Set
	store  *store.Store[model.Finding]
	logger *slog.Logger

	// mu makes the URL insert and the store commit one step.
	mu sync.Mutex

	processed atomic.Int64
	skipped   atomic.Int64
	matched   atomic.Int64
	recorded  atomic.Int64
}

func newGate(name, category string, unique, requireOK bool, deps Deps) (*gate, error) {
	if deps.Store == nil {
		return nil, ErrNoStore
	}
	seen, err := deps.Options.newSeenSet()
	if err != nil {
		return nil, err
	}
	return &gate{
		name:      name,
		category:  category,
		unique:    unique,
		requireOK: requireOK,
		seen:      seen,
		store:     deps.Store,
		logger:    deps.logger().With("detector", name),
	}, nil
}

// admit runs the eligibility check and the URL pre-check. It reports
// whether the document should be matched.
func (g *gate) admit(doc *model.Document) bool {
	g.processed.Add(1)

	if doc == nil || !doc.IsTextOrHTML() {
		g.skipped.Add(1)
		return false
	}
	if g.requireOK && doc.StatusCode != 200 {
		g.skipped.Add(1)
		return false
	}
	if g.seen.Contains([]byte(doc.URL)) {
		g.skipped.Add(1)
		g.logger.Debug("url already inspected", "url", doc.URL)
		return false
	}
	return true
}

// commit records the URL and the document's findings as one step.
// When another document with the same URL committed first, nothing is
// recorded and commit returns false.
func (g *gate) commit(url string, findings []model.Finding) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.seen.TestAndAdd([]byte(url)) {
		g.skipped.Add(1)
		return false
	}
	if len(findings) == 0 {
		return true
	}

	g.matched.Add(1)
	entries := make([]store.Entry[model.Finding], 0, len(findings))
	for _, f := range findings {
		f.Detector = g.name
		entries = append(entries, store.Entry[model.Finding]{
			Category: g.category,
			Item:     f,
			Unique:   g.unique,
		})
	}
	n := g.store.Commit(entries)
	g.recorded.Add(int64(n))

	g.logger.Debug("findings recorded", "url", url, "count", n)
	return true
}

func (g *gate) stats() model.DetectorStats {
	return model.DetectorStats{
		Name:      g.name,
		Processed: g.processed.Load(),
		Skipped:   g.skipped.Load(),
		Matched:   g.matched.Load(),
		Recorded:  g.recorded.Load(),
	}
}
