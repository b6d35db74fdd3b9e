package model

import (
	"sort"
	"time"
)

// Report is the summarized result of one scan session.
//
// Design decision: We keep the report flat and JSON-friendly because it is
// both rendered by the report writers and stored as-is in the database.
type Report struct {
	// ScanID is the database identifier. Zero until the report is saved.
	ScanID int64 `json:"scan_id,omitempty"`

	// DateScanned is when the scan was started.
	DateScanned time.Time `json:"date_scanned"`

	// Inputs lists the sources the documents were loaded from.
	Inputs []string `json:"inputs,omitempty"`

	// DocumentsScanned is the number of documents handed to the detectors.
	DocumentsScanned int `json:"documents_scanned"`

	// === Severity Summary ===

	// CriticalCount is the number of critical findings.
	CriticalCount int `json:"critical_count"`

	// HighCount is the number of high severity findings.
	HighCount int `json:"high_count"`

	// MediumCount is the number of medium severity findings.
	MediumCount int `json:"medium_count"`

	// LowCount is the number of low severity findings.
	LowCount int `json:"low_count"`

	// InfoCount is the number of informational findings.
	InfoCount int `json:"info_count"`

	// Findings contains all findings of the scan.
	Findings []Finding `json:"findings,omitempty"`

	// Detectors contains per-detector processing statistics.
	Detectors []DetectorStats `json:"detectors,omitempty"`

	// Failures lists the inputs that could not be loaded or inspected.
	Failures []InputFailure `json:"failures,omitempty"`

	// TimedOut indicates the scan was cancelled before all documents were processed.
	TimedOut bool `json:"timed_out"`

	// Error contains an error message if the scan failed.
	Error string `json:"error,omitempty"`
}

// DetectorStats counts how documents moved through one detector.
type DetectorStats struct {
	Name      string `json:"name"`
	Processed int64  `json:"processed"`
	Skipped   int64  `json:"skipped"`
	Matched   int64  `json:"matched"`
	Recorded  int64  `json:"recorded"`
}

// InputFailure records an input that could not be processed.
type InputFailure struct {
	Input string `json:"input"`
	Error string `json:"error"`
}

// NewReport creates an empty report stamped with the current time.
func NewReport() *Report {
	return &Report{
		DateScanned: time.Now(),
		Findings:    make([]Finding, 0),
	}
}

// AddFinding appends a finding and updates the severity counts.
func (r *Report) AddFinding(f Finding) {
	r.Findings = append(r.Findings, f)

	switch f.Severity {
	case SeverityCritical:
		r.CriticalCount++
	case SeverityHigh:
		r.HighCount++
	case SeverityMedium:
		r.MediumCount++
	case SeverityLow:
		r.LowCount++
	case SeverityInfo:
		r.InfoCount++
	}
}

// SortFindings orders findings by descending severity, then category and URL.
func (r *Report) SortFindings() {
	sort.SliceStable(r.Findings, func(i, j int) bool {
		a, b := r.Findings[i], r.Findings[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.URL < b.URL
	})
}

// TotalFindings returns the total number of findings.
func (r *Report) TotalFindings() int {
	return len(r.Findings)
}

// HasFindings returns true if there are any findings.
func (r *Report) HasFindings() bool {
	return len(r.Findings) > 0
}

// GetFindingsBySeverity returns findings filtered by severity.
func (r *Report) GetFindingsBySeverity(severity Severity) []Finding {
	var result []Finding
	for _, f := range r.Findings {
		if f.Severity == severity {
			result = append(result, f)
		}
	}
	return result
}

// GetFindingsByCategory returns findings filtered by category.
func (r *Report) GetFindingsByCategory(category string) []Finding {
	var result []Finding
	for _, f := range r.Findings {
		if f.Category == category {
			result = append(result, f)
		}
	}
	return result
}
