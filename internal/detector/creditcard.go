package detector

import (
	"context"
	"fmt"
	"strings"

	"github.com/nao1215/grepscan/internal/luhn"
	"github.com/nao1215/grepscan/internal/matcher"
	"github.com/nao1215/grepscan/internal/model"
)

// creditCardPattern matches four digits, then either four+four digits
// (Visa style) or six digits (Amex style), then four or five digits.
// Groups may be separated by a single space or hyphen and the run must
// be bounded by whitespace or line boundaries.
const creditCardPattern = `(?m)((^|\s)\d{4}[- ]?(\d{4}[- ]?\d{4}|\d{6})[- ]?(\d{5}|\d{4})($|\s))`

// CreditCardDetector finds credit card numbers in the clear text of
// successful responses.
type CreditCardDetector struct {
	*gate
	matcher *matcher.Text
}

// NewCreditCardDetector creates a CreditCardDetector.
func NewCreditCardDetector(deps Deps) (*CreditCardDetector, error) {
	g, err := newGate("credit_cards", model.CategoryCreditCards, false, true, deps)
	if err != nil {
		return nil, err
	}
	m, err := matcher.NewText(creditCardPattern, matcher.WithValueGroup(1))
	if err != nil {
		return nil, err
	}
	return &CreditCardDetector{gate: g, matcher: m}, nil
}

// Name returns the detector name.
func (d *CreditCardDetector) Name() string {
	return d.name
}

// Category returns the finding category.
func (d *CreditCardDetector) Category() string {
	return d.category
}

// LongDescription explains what the detector looks for.
func (d *CreditCardDetector) LongDescription() string {
	return `Scans every response page for strings that are likely to be credit
card numbers. A candidate is a run of 15 or 16 digits in the usual
groupings, optionally separated by spaces or hyphens, that passes the
Luhn checksum.`
}

// Stats returns the detector counters.
func (d *CreditCardDetector) Stats() model.DetectorStats {
	return d.stats()
}

// Process inspects one document.
func (d *CreditCardDetector) Process(ctx context.Context, doc *model.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !d.admit(doc) {
		return nil
	}
	d.commit(doc.URL, d.findCards(doc))
	return nil
}

// findCards returns one finding per Luhn-valid candidate.
func (d *CreditCardDetector) findCards(doc *model.Document) []model.Finding {
	var findings []model.Finding
	for _, m := range d.matcher.FindAll(doc.ClearText()) {
		card := strings.TrimSpace(m.Value)
		if !luhn.Valid(card) {
			continue
		}
		if luhn.AllZero(card) {
			d.logger.Debug("all-zero card number reported", "url", doc.URL)
		}

		f := model.NewFinding(
			d.category,
			"Credit card number disclosure",
			fmt.Sprintf("The URL: %q discloses the credit card number: %q", doc.URL, card),
			doc.URL,
		)
		f.Key = doc.URL + "#" + card
		f.AddHighlight(card)
		findings = append(findings, f)
	}
	return findings
}
