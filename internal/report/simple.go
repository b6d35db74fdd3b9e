package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/grepscan/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because the output is often piped to files or other tools.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no findings are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with finding descriptions.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeDetectors(&sb, report)
	w.writeFindings(&sb, report)
	w.writeFailures(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeSection writes a section title framed by rules.
func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeHeader writes the report header with scan information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.Report) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          GREPSCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	if report.ScanID > 0 {
		fmt.Fprintf(sb, "Scan ID:           %d\n", report.ScanID)
	}
	fmt.Fprintf(sb, "Scan Date:         %s\n", report.DateScanned.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Inputs:            %s\n", strings.Join(report.Inputs, ", "))
	fmt.Fprintf(sb, "Documents Scanned: %d\n", report.DocumentsScanned)
	fmt.Fprintf(sb, "Status:            %s\n", statusText(report))
	sb.WriteString("\n")
}

// writeSummary writes the severity summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.Report) {
	writeSection(sb, "SEVERITY SUMMARY")

	fmt.Fprintf(sb, "  CRITICAL: %d\n", report.CriticalCount)
	fmt.Fprintf(sb, "  HIGH:     %d\n", report.HighCount)
	fmt.Fprintf(sb, "  MEDIUM:   %d\n", report.MediumCount)
	fmt.Fprintf(sb, "  LOW:      %d\n", report.LowCount)
	fmt.Fprintf(sb, "  INFO:     %d\n", report.InfoCount)
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  TOTAL:    %d findings\n", report.TotalFindings())
	sb.WriteString("\n")
}

// writeDetectors writes per-detector statistics.
func (w *SimpleWriter) writeDetectors(sb *strings.Builder, report *model.Report) {
	if len(report.Detectors) == 0 && !w.showEmpty {
		return
	}

	writeSection(sb, "DETECTORS")

	if len(report.Detectors) == 0 {
		sb.WriteString("  No detectors ran\n\n")
		return
	}

	fmt.Fprintf(sb, "  %-14s %10s %10s %10s %10s\n", "NAME", "PROCESSED", "SKIPPED", "MATCHED", "RECORDED")
	for _, d := range report.Detectors {
		fmt.Fprintf(sb, "  %-14s %10d %10d %10d %10d\n", d.Name, d.Processed, d.Skipped, d.Matched, d.Recorded)
	}
	sb.WriteString("\n")
}

// writeFindings writes all findings grouped by severity.
func (w *SimpleWriter) writeFindings(sb *strings.Builder, report *model.Report) {
	if !report.HasFindings() && !w.showEmpty {
		return
	}

	writeSection(sb, "FINDINGS")

	for _, severity := range severityOrder {
		findings := report.GetFindingsBySeverity(severity)
		if len(findings) == 0 && !w.showEmpty {
			continue
		}

		w.writeFindingsForSeverity(sb, severity, findings)
	}
}

// writeFindingsForSeverity writes findings of a specific severity level.
func (w *SimpleWriter) writeFindingsForSeverity(sb *strings.Builder, severity model.Severity, findings []model.Finding) {
	fmt.Fprintf(sb, "[%s] %s\n", severityIndicator(severity), severity.String())

	if len(findings) == 0 {
		sb.WriteString("  No findings\n\n")
		return
	}

	for _, finding := range findings {
		fmt.Fprintf(sb, "  * %s\n", finding.Title)
		fmt.Fprintf(sb, "    URL: %s\n", finding.URL)
		if len(finding.Highlights) > 0 {
			fmt.Fprintf(sb, "    Match: %s\n", strings.Join(finding.Highlights, ", "))
		}
		if w.verbose && finding.Description != "" {
			fmt.Fprintf(sb, "    Description: %s\n", finding.Description)
		}
		if w.verbose && finding.Recommendation != "" {
			fmt.Fprintf(sb, "    Recommendation: %s\n", finding.Recommendation)
		}
	}
	sb.WriteString("\n")
}

// writeFailures writes the inputs that could not be processed.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, report *model.Report) {
	if len(report.Failures) == 0 {
		return
	}

	writeSection(sb, "FAILURES")
	for _, f := range report.Failures {
		fmt.Fprintf(sb, "  [x] %s: %s\n", f.Input, f.Error)
	}
	sb.WriteString("\n")
}

// severityIndicator returns a visual indicator for the severity level.
func severityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	case model.SeverityLow:
		return "-"
	case model.SeverityInfo:
		return "i"
	default:
		return "?"
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by grepscan\n")
	sb.WriteString("https://github.com/nao1215/grepscan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
