package detector

import (
	"context"
	"fmt"

	"github.com/nao1215/grepscan/internal/matcher"
	"github.com/nao1215/grepscan/internal/model"
)

// SymfonyDetector finds Symfony applications whose forms carry no CSRF
// token field.
type SymfonyDetector struct {
	*gate
	override bool
	cookie   *matcher.HeaderPrefix
	csrf     *matcher.Structural
}

// NewSymfonyDetector creates a SymfonyDetector. It fails with
// matcher.ErrInvalidPattern when a configured pattern does not compile.
func NewSymfonyDetector(deps Deps) (*SymfonyDetector, error) {
	opts := deps.Options
	cookiePattern := opts.SymfonyCookiePattern
	if cookiePattern == "" {
		cookiePattern = DefaultSymfonyCookiePattern
	}
	csrfPattern := opts.CSRFTokenPattern
	if csrfPattern == "" {
		csrfPattern = DefaultCSRFTokenPattern
	}

	cookie, err := matcher.NewHeaderPrefix(cookiePattern, "Set-Cookie", "Cookie")
	if err != nil {
		return nil, fmt.Errorf("symfony cookie pattern: %w", err)
	}
	csrf, err := matcher.NewStructural("form", "input", "id", csrfPattern)
	if err != nil {
		return nil, fmt.Errorf("csrf token pattern: %w", err)
	}

	g, err := newGate("symfony", model.CategorySymfony, true, false, deps)
	if err != nil {
		return nil, err
	}
	return &SymfonyDetector{
		gate:     g,
		override: opts.SymfonyOverride,
		cookie:   cookie,
		csrf:     csrf,
	}, nil
}

// Name returns the detector name.
func (d *SymfonyDetector) Name() string {
	return d.name
}

// Category returns the finding category.
func (d *SymfonyDetector) Category() string {
	return d.category
}

// LongDescription explains what the detector looks for.
func (d *SymfonyDetector) LongDescription() string {
	return `Scans every page for traces of the Symfony framework and the lack of
CSRF protection. A page is reported when it sets or receives a Symfony
session cookie and none of its form inputs carries a CSRF token id.
With the override option the cookie check is skipped.`
}

// Stats returns the detector counters.
func (d *SymfonyDetector) Stats() model.DetectorStats {
	return d.stats()
}

// Process inspects one document.
func (d *SymfonyDetector) Process(ctx context.Context, doc *model.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !d.admit(doc) {
		return nil
	}
	d.commit(doc.URL, d.findUnprotected(doc))
	return nil
}

func (d *SymfonyDetector) symfonyDetected(doc *model.Document) bool {
	return d.override || d.cookie.Matches(doc.Headers)
}

// csrfDetected reports whether any form contains an input whose id
// matches the CSRF token pattern. A page without forms has none.
func (d *SymfonyDetector) csrfDetected(root *model.Node) bool {
	for _, form := range d.csrf.Containers(root) {
		if len(d.csrf.FindIn(form)) > 0 {
			return true
		}
	}
	return false
}

func (d *SymfonyDetector) findUnprotected(doc *model.Document) []model.Finding {
	if !d.symfonyDetected(doc) {
		return nil
	}
	if doc.Root == nil || d.csrfDetected(doc.Root) {
		return nil
	}

	f := model.NewFinding(
		d.category,
		"Symfony Framework with CSRF protection disabled",
		fmt.Sprintf("The URL: %q seems to be generated by the Symfony framework and contains a form that perhaps has CSRF protection disabled.", doc.URL),
		doc.URL,
	)
	for _, m := range d.cookie.FindAll(doc.Headers) {
		f.AddHighlight(m.Value)
	}
	return []model.Finding{f}
}
