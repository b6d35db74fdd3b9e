package model

import "testing"

// TestSeverityString tests the String method of Severity.
func TestSeverityString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		severity Severity
		expected string
	}{
		{SeverityInfo, "INFO"},
		{SeverityLow, "LOW"},
		{SeverityMedium, "MEDIUM"},
		{SeverityHigh, "HIGH"},
		{SeverityCritical, "CRITICAL"},
		{Severity(999), "UNKNOWN"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.severity.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.severity.String(), tc.expected)
			}
		})
	}
}

// TestParseSeverity tests round-tripping severity names.
func TestParseSeverity(t *testing.T) {
	t.Parallel()

	for _, s := range []Severity{SeverityInfo, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical} {
		got, err := ParseSeverity(s.String())
		if err != nil {
			t.Fatalf("ParseSeverity(%q) returned error: %v", s.String(), err)
		}
		if got != s {
			t.Errorf("ParseSeverity(%q) = %v, expected %v", s.String(), got, s)
		}
	}

	if got, err := ParseSeverity(" low "); err != nil || got != SeverityLow {
		t.Errorf("expected lower-case input to parse as LOW, got %v (%v)", got, err)
	}
	if _, err := ParseSeverity("severe"); err == nil {
		t.Error("expected error for unknown severity")
	}
}

// TestGetSeverity tests the GetSeverity function.
func TestGetSeverity(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		category string
		expected Severity
	}{
		{CategoryCreditCards, SeverityLow},
		{CategoryOracle, SeverityInfo},
		{CategorySymfony, SeverityInfo},
		// Unknown category defaults to Info
		{"unknown_type", SeverityInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.category, func(t *testing.T) {
			t.Parallel()
			result := GetSeverity(tc.category)
			if result != tc.expected {
				t.Errorf("GetSeverity(%q) = %v, expected %v", tc.category, result, tc.expected)
			}
		})
	}
}

// TestSeverityOrdering tests that severity levels are ordered correctly.
// Info < Low < Medium < High < Critical
func TestSeverityOrdering(t *testing.T) {
	t.Parallel()

	if SeverityInfo >= SeverityLow {
		t.Error("expected SeverityInfo < SeverityLow")
	}
	if SeverityLow >= SeverityMedium {
		t.Error("expected SeverityLow < SeverityMedium")
	}
	if SeverityMedium >= SeverityHigh {
		t.Error("expected SeverityMedium < SeverityHigh")
	}
	if SeverityHigh >= SeverityCritical {
		t.Error("expected SeverityHigh < SeverityCritical")
	}
}

// TestGetFindingInfo tests the GetFindingInfo function.
func TestGetFindingInfo(t *testing.T) {
	t.Parallel()

	t.Run("returns complete info for built-in categories", func(t *testing.T) {
		t.Parallel()

		for _, category := range []string{CategoryCreditCards, CategoryOracle, CategorySymfony} {
			info := GetFindingInfo(category)
			if info.Impact == "" {
				t.Errorf("category %q has empty Impact", category)
			}
			if info.Recommendation == "" {
				t.Errorf("category %q has empty Recommendation", category)
			}
		}
	})

	t.Run("returns default info for unknown category", func(t *testing.T) {
		t.Parallel()

		info := GetFindingInfo("completely_unknown_type")

		if info.Severity != SeverityInfo {
			t.Errorf("expected SeverityInfo for unknown type, got %v", info.Severity)
		}
		if info.Impact == "" {
			t.Error("expected non-empty default Impact")
		}
	})
}
