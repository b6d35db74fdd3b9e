package detector

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/grepscan/internal/document"
	"github.com/nao1215/grepscan/internal/matcher"
	"github.com/nao1215/grepscan/internal/model"
)

func newDeps() Deps {
	return Deps{Store: NewFindingStore(), Options: DefaultOptions()}
}

func htmlDoc(url, body string) *model.Document {
	return &model.Document{
		URL:         url,
		StatusCode:  200,
		ContentType: "text/html",
		Headers:     model.Headers{},
		Body:        body,
	}
}

func TestCreditCardDetector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		doc    *model.Document
		expect []string
	}{
		{
			name:   "valid card",
			doc:    htmlDoc("http://a/1", "Card: 4417 1234 5678 9113 end"),
			expect: []string{"4417 1234 5678 9113"},
		},
		{
			name: "luhn failure",
			doc:  htmlDoc("http://a/2", "4417 1234 5678 9112"),
		},
		{
			name:   "hyphen separated on its own line",
			doc:    htmlDoc("http://a/3", "first\n4417-1234-5678-9113\nlast"),
			expect: []string{"4417-1234-5678-9113"},
		},
		{
			name:   "amex grouping",
			doc:    htmlDoc("http://a/4", "amex 3782 822463 10005 ok"),
			expect: []string{"3782 822463 10005"},
		},
		{
			name: "embedded in word",
			doc:  htmlDoc("http://a/5", "x4417123456789113"),
		},
		{
			name: "not status 200",
			doc: func() *model.Document {
				d := htmlDoc("http://a/6", "4417 1234 5678 9113")
				d.StatusCode = 404
				return d
			}(),
		},
		{
			name: "binary content",
			doc: func() *model.Document {
				d := htmlDoc("http://a/7", "4417 1234 5678 9113")
				d.ContentType = "image/png"
				return d
			}(),
		},
		{
			name: "empty body",
			doc:  htmlDoc("http://a/8", ""),
		},
		{
			name: "json content",
			doc: func() *model.Document {
				d := htmlDoc("http://a/9", `{"card":"4417 1234 5678 9113"}`)
				d.ContentType = "application/json"
				return d
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			deps := newDeps()
			d, err := NewCreditCardDetector(deps)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if err := d.Process(context.Background(), tt.doc); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := deps.Store.Get(model.CategoryCreditCards)
			if len(got) != len(tt.expect) {
				t.Fatalf("expected %d findings, got %d", len(tt.expect), len(got))
			}
			for i, card := range tt.expect {
				if len(got[i].Highlights) != 1 || got[i].Highlights[0] != card {
					t.Errorf("expected highlight %q, got %v", card, got[i].Highlights)
				}
				if !strings.Contains(got[i].Description, card) {
					t.Errorf("expected description to contain %q, got %q", card, got[i].Description)
				}
				if got[i].Severity != model.SeverityLow {
					t.Errorf("expected LOW severity, got %s", got[i].Severity)
				}
				if got[i].Detector != "credit_cards" {
					t.Errorf("expected detector credit_cards, got %q", got[i].Detector)
				}
			}
		})
	}
}

func TestCreditCardDetectorParsedHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		body   string
		expect int
	}{
		{
			name:   "card split by inline markup",
			body:   "<p>Card: <b>4417</b> 1234 5678 9113</p>",
			expect: 1,
		},
		{
			name:   "card only in an attribute",
			body:   `<img alt="4417 1234 5678 9113">`,
			expect: 0,
		},
		{
			name:   "card in an attribute next to text",
			body:   `<img alt="4417 1234 5678 9113"><p>a</p>`,
			expect: 0,
		},
	}

	headers := model.Headers{"Content-Type": {"text/html"}}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, err := document.FromParts("http://p/"+strings.Repeat("x", i+1), 200, headers, []byte(tt.body))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			deps := newDeps()
			d, err := NewCreditCardDetector(deps)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := d.Process(context.Background(), doc); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := len(deps.Store.Get(model.CategoryCreditCards)); got != tt.expect {
				t.Errorf("expected %d findings, got %d", tt.expect, got)
			}
		})
	}
}

func TestCreditCardDetectorMultipleCards(t *testing.T) {
	t.Parallel()

	deps := newDeps()
	d, err := NewCreditCardDetector(deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc := htmlDoc("http://a/", "4417 1234 5678 9113\n4417 1234 5678 9113\n3782 822463 10005")
	if err := d.Process(context.Background(), doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := len(deps.Store.Get(model.CategoryCreditCards)); got != 3 {
		t.Errorf("expected 3 findings without dedup, got %d", got)
	}

	stats := d.Stats()
	if stats.Processed != 1 || stats.Matched != 1 || stats.Recorded != 3 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestOracleDetector(t *testing.T) {
	t.Parallel()

	deps := newDeps()
	d, err := NewOracleDetector(deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := "<html><!-- Created by Oracle Application Server --></html>"
	ctx := context.Background()

	if err := d.Process(ctx, htmlDoc("http://oracle/", body)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := d.Process(ctx, htmlDoc("http://oracle/", body)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := deps.Store.Get(model.CategoryOracle)
	if len(got) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(got))
	}
	if got[0].Severity != model.SeverityInfo {
		t.Errorf("expected INFO severity, got %s", got[0].Severity)
	}
	if got[0].Title != "Oracle application server" {
		t.Errorf("unexpected title %q", got[0].Title)
	}
	if len(got[0].Highlights) != 1 || got[0].Highlights[0] != OracleApplicationServerTag {
		t.Errorf("expected marker highlight, got %v", got[0].Highlights)
	}

	stats := d.Stats()
	if stats.Processed != 2 || stats.Skipped != 1 || stats.Recorded != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestOracleDetectorHeadersAndExtraMarkers(t *testing.T) {
	t.Parallel()

	deps := newDeps()
	deps.Options.OracleMarkers = []string{"Oracle-Application-Server-10g"}
	d, err := NewOracleDetector(deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc := htmlDoc("http://oracle/h", "<html></html>")
	doc.Headers = model.Headers{"Server": {"Oracle-Application-Server-10g/10.1.2.0.2"}}
	doc.StatusCode = 500

	if err := d.Process(context.Background(), doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(deps.Store.Get(model.CategoryOracle)); got != 1 {
		t.Errorf("expected header marker to be reported regardless of status, got %d findings", got)
	}
}

func symfonyDoc(url string, headers model.Headers, inputID string) *model.Document {
	input := &model.Node{Tag: "input", Attrs: map[string]string{"name": "q"}}
	if inputID != "" {
		input.Attrs["id"] = inputID
	}
	doc := htmlDoc(url, "<html>...</html>")
	doc.Headers = headers
	doc.Root = &model.Node{Tag: "html", Children: []*model.Node{
		{Tag: "body", Children: []*model.Node{
			{Tag: "form", Children: []*model.Node{input}},
		}},
	}}
	return doc
}

func TestSymfonyDetector(t *testing.T) {
	t.Parallel()

	cookie := model.Headers{"Set-Cookie": {"symfony=abc123"}}

	tests := []struct {
		name     string
		override bool
		doc      *model.Document
		expect   int
	}{
		{
			name:   "cookie without csrf field",
			doc:    symfonyDoc("http://s/1", cookie, "username"),
			expect: 1,
		},
		{
			name:   "cookie with csrf field",
			doc:    symfonyDoc("http://s/2", cookie, "csrf_token_field"),
			expect: 0,
		},
		{
			name:   "csrf field matched case-insensitively",
			doc:    symfonyDoc("http://s/3", cookie, "login_CSRF_TOKEN"),
			expect: 0,
		},
		{
			name:   "request cookie header",
			doc:    symfonyDoc("http://s/4", model.Headers{"cookie": {"symfony=x"}}, ""),
			expect: 1,
		},
		{
			name:   "no symfony cookie",
			doc:    symfonyDoc("http://s/5", model.Headers{"Set-Cookie": {"PHPSESSID=1"}}, ""),
			expect: 0,
		},
		{
			name:     "override skips the cookie check",
			override: true,
			doc:      symfonyDoc("http://s/6", model.Headers{}, "username"),
			expect:   1,
		},
		{
			name:     "override still honours csrf field",
			override: true,
			doc:      symfonyDoc("http://s/7", model.Headers{}, "csrf_token"),
			expect:   0,
		},
		{
			name: "no element tree",
			doc: func() *model.Document {
				d := symfonyDoc("http://s/8", cookie, "")
				d.Root = nil
				return d
			}(),
			expect: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			deps := newDeps()
			deps.Options.SymfonyOverride = tt.override
			d, err := NewSymfonyDetector(deps)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if err := d.Process(context.Background(), tt.doc); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := deps.Store.Get(model.CategorySymfony)
			if len(got) != tt.expect {
				t.Fatalf("expected %d findings, got %d", tt.expect, len(got))
			}
			if tt.expect == 1 && got[0].Title != "Symfony Framework with CSRF protection disabled" {
				t.Errorf("unexpected title %q", got[0].Title)
			}
		})
	}
}

func TestSymfonyDetectorInvalidPattern(t *testing.T) {
	t.Parallel()

	deps := newDeps()
	deps.Options.CSRFTokenPattern = "(csrf"

	_, err := NewSymfonyDetector(deps)
	if !errors.Is(err, matcher.ErrInvalidPattern) {
		t.Errorf("expected ErrInvalidPattern, got %v", err)
	}
}

func TestDetectorRequiresStore(t *testing.T) {
	t.Parallel()

	_, err := NewOracleDetector(Deps{Options: DefaultOptions()})
	if !errors.Is(err, ErrNoStore) {
		t.Errorf("expected ErrNoStore, got %v", err)
	}
}

func TestConcurrentDuplicateURLs(t *testing.T) {
	t.Parallel()

	for _, exact := range []bool{false, true} {
		deps := newDeps()
		deps.Options.ExactDedup = exact
		d, err := NewOracleDetector(deps)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var wg sync.WaitGroup
		for i := 0; i < 64; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				doc := htmlDoc("http://same/", "<!-- Created by Oracle AS -->")
				if err := d.Process(context.Background(), doc); err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		if got := len(deps.Store.Get(model.CategoryOracle)); got != 1 {
			t.Errorf("exact=%v: expected 1 finding, got %d", exact, got)
		}
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	t.Run("all by default", func(t *testing.T) {
		t.Parallel()

		detectors, err := Build(nil, newDeps())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(detectors) != 3 {
			t.Fatalf("expected 3 detectors, got %d", len(detectors))
		}
		if detectors[0].Name() != "credit_cards" {
			t.Errorf("expected sorted order, got %s first", detectors[0].Name())
		}
	})

	t.Run("duplicates ignored", func(t *testing.T) {
		t.Parallel()

		detectors, err := Build([]string{"oracle", "oracle", "symfony"}, newDeps())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(detectors) != 2 {
			t.Errorf("expected 2 detectors, got %d", len(detectors))
		}
	})

	t.Run("unknown detector", func(t *testing.T) {
		t.Parallel()

		_, err := Build([]string{"oracle", "nope"}, newDeps())
		if !errors.Is(err, ErrUnknownDetector) {
			t.Errorf("expected ErrUnknownDetector, got %v", err)
		}
	})
}

// panicDetector panics after passing the gate, before committing.
type panicDetector struct {
	*gate
}

func (d *panicDetector) Name() string            { return d.name }
func (d *panicDetector) Category() string        { return d.category }
func (d *panicDetector) LongDescription() string { return "" }
func (d *panicDetector) Stats() model.DetectorStats {
	return d.stats()
}

func (d *panicDetector) Process(_ context.Context, doc *model.Document) error {
	if !d.admit(doc) {
		return nil
	}
	panic("boom")
}

func TestSetRecoversPanics(t *testing.T) {
	t.Parallel()

	deps := newDeps()
	g, err := newGate("panic", "panic", true, false, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	oracle, err := NewOracleDetector(deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	set := NewSet([]Detector{&panicDetector{gate: g}, oracle}, nil)
	doc := htmlDoc("http://p/", "<!-- Created by Oracle AS -->")

	err = set.Process(context.Background(), doc)
	if !errors.Is(err, ErrDetectorPanic) {
		t.Fatalf("expected ErrDetectorPanic, got %v", err)
	}

	if got := len(deps.Store.Get(model.CategoryOracle)); got != 1 {
		t.Errorf("expected the other detector to run, got %d findings", got)
	}
	if g.seen.Contains([]byte(doc.URL)) {
		t.Error("expected the panicking document's URL not to be recorded")
	}
	if got := len(deps.Store.Get("panic")); got != 0 {
		t.Errorf("expected no partial findings, got %d", got)
	}

	stats := set.Stats()
	if len(stats) != 2 || stats[1].Name != "oracle" {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestSetHonoursCancellation(t *testing.T) {
	t.Parallel()

	deps := newDeps()
	detectors, err := Build(nil, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = NewSet(detectors, nil).Process(ctx, htmlDoc("http://c/", "<!-- Created by Oracle AS -->"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if deps.Store.Len() != 0 {
		t.Errorf("expected nothing recorded, got %d", deps.Store.Len())
	}
}

