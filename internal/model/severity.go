package model

import (
	"fmt"
	"strings"
)

// Severity represents the risk level of a finding.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityInfo indicates informational findings with no direct security impact.
	// Examples: the server software or framework in use.
	SeverityInfo Severity = iota

	// SeverityLow indicates minor issues with limited impact.
	// Examples: payment card numbers disclosed in a page.
	SeverityLow

	// SeverityMedium indicates moderate issues that warrant attention.
	SeverityMedium

	// SeverityHigh indicates serious issues.
	SeverityHigh

	// SeverityCritical indicates severe issues that require immediate attention.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity converts a severity name (case-insensitive) to a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INFO":
		return SeverityInfo, nil
	case "LOW":
		return SeverityLow, nil
	case "MEDIUM":
		return SeverityMedium, nil
	case "HIGH":
		return SeverityHigh, nil
	case "CRITICAL":
		return SeverityCritical, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity %q", s)
	}
}

// Finding categories produced by the built-in detectors.
const (
	// CategoryCreditCards is used for payment card numbers found in a page.
	CategoryCreditCards = "credit_cards"
	// CategoryOracle is used for pages generated by Oracle Application Server.
	CategoryOracle = "oracle"
	// CategorySymfony is used for Symfony pages with forms lacking a CSRF token.
	CategorySymfony = "symfony"
)

// FindingInfo contains metadata about a finding category including severity,
// impact description, and remediation recommendation.
type FindingInfo struct {
	Severity       Severity
	Impact         string
	Recommendation string
}

// findingInfoMapping maps finding categories to their metadata.
// This centralized mapping ensures consistent risk assessment across detectors.
var findingInfoMapping = map[string]FindingInfo{
	CategoryCreditCards: {
		Severity:       SeverityLow,
		Impact:         "A payment card number is disclosed in a response body and can be harvested by anyone who can request the page.",
		Recommendation: "Mask card numbers before rendering them (show only the last four digits) and review why the full number reaches the page.",
	},
	CategoryOracle: {
		Severity:       SeverityInfo,
		Impact:         "The page reveals that it was generated by Oracle Application Server, which helps attackers pick known exploits.",
		Recommendation: "Remove generator comments from rendered pages.",
	},
	CategorySymfony: {
		Severity:       SeverityInfo,
		Impact:         "A Symfony application serves a form without a CSRF token field; state-changing requests may be forgeable.",
		Recommendation: "Enable the framework's CSRF protection for every form that changes server-side state.",
	},
}

// GetSeverity returns the severity level for a finding category.
// Returns SeverityInfo if the category is not in the mapping.
func GetSeverity(category string) Severity {
	if info, ok := findingInfoMapping[category]; ok {
		return info.Severity
	}
	return SeverityInfo
}

// GetFindingInfo returns the full finding information for a category.
// Returns a default FindingInfo with SeverityInfo if the category is not in the mapping.
func GetFindingInfo(category string) FindingInfo {
	if info, ok := findingInfoMapping[category]; ok {
		return info
	}
	return FindingInfo{
		Severity:       SeverityInfo,
		Impact:         "Unknown finding category. Review manually.",
		Recommendation: "Investigate the finding and assess risk.",
	}
}
