package model

// Finding represents a single condition detected in a document.
//
// Design decision: We copy the impact and recommendation from the category
// mapping into each finding because:
// 1. Reports and the database can render a finding without the mapping
// 2. A stored scan keeps the wording it was produced with
type Finding struct {
	// Category is the finding category identifier.
	// This maps to findingInfoMapping in severity.go.
	Category string `json:"category"`

	// Detector is the name of the detector that produced the finding.
	Detector string `json:"detector"`

	// Severity is the risk level.
	Severity Severity `json:"severity"`

	// SeverityText is the human-readable severity.
	SeverityText string `json:"severity_text"`

	// Title is a short description of the finding.
	Title string `json:"title"`

	// Description provides more detail about the finding.
	Description string `json:"description,omitempty"`

	// Impact explains the security implications of this finding.
	Impact string `json:"impact,omitempty"`

	// Recommendation provides guidance on how to address this finding.
	Recommendation string `json:"recommendation,omitempty"`

	// URL is the URL of the document the finding was detected in.
	URL string `json:"url"`

	// Highlights are the substrings of the document that triggered the finding.
	Highlights []string `json:"highlights,omitempty"`

	// Key is the uniqueness key within the category.
	// Empty means the URL is used.
	Key string `json:"key,omitempty"`
}

// NewFinding creates a finding for the given category, filling severity,
// impact and recommendation from the category mapping.
func NewFinding(category, title, description, url string) Finding {
	info := GetFindingInfo(category)
	return Finding{
		Category:       category,
		Severity:       info.Severity,
		SeverityText:   info.Severity.String(),
		Title:          title,
		Description:    description,
		Impact:         info.Impact,
		Recommendation: info.Recommendation,
		URL:            url,
	}
}

// UniqueKey returns the key used to deduplicate the finding within its category.
func (f Finding) UniqueKey() string {
	if f.Key != "" {
		return f.Key
	}
	return f.URL
}

// AddHighlight records a substring of the document that triggered the finding.
func (f *Finding) AddHighlight(s string) {
	f.Highlights = append(f.Highlights, s)
}
