package detector

import (
	"context"
	"fmt"

	"github.com/nao1215/grepscan/internal/matcher"
	"github.com/nao1215/grepscan/internal/model"
)

// OracleDetector finds pages generated by Oracle Application Server.
type OracleDetector struct {
	*gate
	markers *matcher.Literal
}

// NewOracleDetector creates an OracleDetector searching for the default
// marker and any extra markers from the options.
func NewOracleDetector(deps Deps) (*OracleDetector, error) {
	g, err := newGate("oracle", model.CategoryOracle, true, false, deps)
	if err != nil {
		return nil, err
	}
	markers := append([]string{OracleApplicationServerTag}, deps.Options.OracleMarkers...)
	return &OracleDetector{gate: g, markers: matcher.NewLiteral(markers...)}, nil
}

// Name returns the detector name.
func (d *OracleDetector) Name() string {
	return d.name
}

// Category returns the finding category.
func (d *OracleDetector) Category() string {
	return d.category
}

// LongDescription explains what the detector looks for.
func (d *OracleDetector) LongDescription() string {
	return `Scans every response page for messages left by Oracle Application
Server, such as the generator comment it inserts into rendered pages.`
}

// Stats returns the detector counters.
func (d *OracleDetector) Stats() model.DetectorStats {
	return d.stats()
}

// Process inspects one document.
func (d *OracleDetector) Process(ctx context.Context, doc *model.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !d.admit(doc) {
		return nil
	}
	d.commit(doc.URL, d.findMarkers(doc))
	return nil
}

// findMarkers returns at most one finding carrying every marker found.
// The raw body is searched since the default marker is an HTML comment.
func (d *OracleDetector) findMarkers(doc *model.Document) []model.Finding {
	matches := d.markers.FindAll(doc.Body)
	matches = append(matches, d.markers.FindInHeaders(doc.Headers)...)
	if len(matches) == 0 {
		return nil
	}

	f := model.NewFinding(
		d.category,
		"Oracle application server",
		fmt.Sprintf("The URL: %q was created using Oracle Application Server.", doc.URL),
		doc.URL,
	)
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		if _, ok := seen[m.Value]; ok {
			continue
		}
		seen[m.Value] = struct{}{}
		f.AddHighlight(m.Value)
	}
	return []model.Finding{f}
}
