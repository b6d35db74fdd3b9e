package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/grepscan/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation. It gives us tables, mermaid charts, and GitHub-flavored alerts.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeDetectors(md, report)
	w.writeFindings(md, report)
	w.writeFailures(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with scan information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1("grepscan Report")
	md.PlainText("")

	rows := [][]string{
		{"Scan Date", report.DateScanned.Format("2006-01-02 15:04:05 MST")},
		{"Inputs", strconv.Itoa(len(report.Inputs))},
		{"Documents Scanned", strconv.Itoa(report.DocumentsScanned)},
		{"Status", markdownStatus(report)},
	}
	if report.ScanID > 0 {
		rows = append([][]string{{"Scan ID", strconv.FormatInt(report.ScanID, 10)}}, rows...)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// markdownStatus returns the status text based on report state.
func markdownStatus(report *model.Report) string {
	if report.TimedOut {
		return "⚠️ Timed Out (partial results)"
	}
	if report.Error != "" {
		return "❌ Error - " + report.Error
	}
	return "✅ Complete"
}

// writeSummary writes the severity summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.Report) {
	md.H2("Severity Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(report.CriticalCount)},
			{"🟠 High", strconv.Itoa(report.HighCount)},
			{"🟡 Medium", strconv.Itoa(report.MediumCount)},
			{"🔵 Low", strconv.Itoa(report.LowCount)},
			{"⚪ Info", strconv.Itoa(report.InfoCount)},
			{"**Total**", "**" + strconv.Itoa(report.TotalFindings()) + "**"},
		},
	})
	md.PlainText("")

	if report.HasFindings() {
		w.writePieChart(md, report)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart for the category distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.Report) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Findings by Category"),
		piechart.WithShowData(true),
	)

	counts := make(map[string]uint64)
	order := make([]string, 0)
	for _, f := range report.Findings {
		if _, ok := counts[f.Category]; !ok {
			order = append(order, f.Category)
		}
		counts[f.Category]++
	}
	for _, category := range order {
		chart.LabelAndIntValue(category, counts[category])
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on severity counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.Report) {
	switch {
	case report.CriticalCount > 0:
		md.Cautionf(
			"Critical issues detected! %d critical finding(s) require immediate attention.",
			report.CriticalCount,
		)
	case report.HighCount > 0:
		md.Warningf(
			"High severity issues detected. %d high severity finding(s) should be addressed.",
			report.HighCount,
		)
	case report.MediumCount > 0:
		md.Importantf(
			"Medium severity issues found. %d finding(s) should be reviewed.",
			report.MediumCount,
		)
	case report.TotalFindings() > 0:
		md.Note("Only low severity and informational findings detected.")
	default:
		md.Tip("No issues detected in the scanned responses.")
	}
	md.PlainText("")
}

// writeDetectors writes the per-detector statistics table.
func (w *MarkdownWriter) writeDetectors(md *markdown.Markdown, report *model.Report) {
	md.H2("Detectors")
	md.PlainText("")

	if len(report.Detectors) == 0 {
		md.PlainText("No detectors ran.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Detectors))
	for i, d := range report.Detectors {
		rows[i] = []string{
			"`" + d.Name + "`",
			strconv.FormatInt(d.Processed, 10),
			strconv.FormatInt(d.Skipped, 10),
			strconv.FormatInt(d.Matched, 10),
			strconv.FormatInt(d.Recorded, 10),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Detector", "Processed", "Skipped", "Matched", "Recorded"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFindings writes all findings grouped by severity.
func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, report *model.Report) {
	md.H2("Findings")
	md.PlainText("")

	if !report.HasFindings() {
		md.PlainText("No findings detected.")
		md.PlainText("")
		return
	}

	headers := map[model.Severity]string{
		model.SeverityCritical: "### 🔴 Critical",
		model.SeverityHigh:     "### 🟠 High",
		model.SeverityMedium:   "### 🟡 Medium",
		model.SeverityLow:      "### 🔵 Low",
		model.SeverityInfo:     "### ⚪ Info",
	}

	for _, severity := range severityOrder {
		findings := report.GetFindingsBySeverity(severity)
		if len(findings) == 0 {
			continue
		}

		md.PlainText(headers[severity])
		md.PlainText("")
		w.writeFindingsTable(md, findings)
	}
}

// writeFindingsTable writes a table of findings with details.
func (w *MarkdownWriter) writeFindingsTable(md *markdown.Markdown, findings []model.Finding) {
	rows := make([][]string, len(findings))
	for i, f := range findings {
		match := strings.Join(f.Highlights, ", ")
		if match == "" {
			match = "-"
		}
		rec := f.Recommendation
		if rec == "" {
			rec = "-"
		}

		rows[i] = []string{
			f.Title,
			truncateString(match, 50),
			truncateString(f.URL, 60),
			truncateString(rec, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Title", "Match", "URL", "Recommendation"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, f := range findings {
		if f.Description != "" {
			md.Details(f.Title, f.Description)
		}
	}
	md.PlainText("")
}

// writeFailures lists inputs that could not be processed.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, report *model.Report) {
	if len(report.Failures) == 0 {
		return
	}

	md.H2("Failures")
	md.PlainText("")

	items := make([]string, len(report.Failures))
	for i, f := range report.Failures {
		items[i] = "`" + f.Input + "`: " + f.Error
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [grepscan](https://github.com/nao1215/grepscan)*")
}

// truncateString truncates a string to maxLen bytes with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
