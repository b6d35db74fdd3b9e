package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/grepscan/internal/config"
	"github.com/nao1215/grepscan/internal/database"
	"github.com/spf13/cobra"
)

// noFindingsMessage is shown for scans without findings.
const noFindingsMessage = "No findings"

// errScanNotFound is returned when --id names a scan that does not exist.
var errScanNotFound = errors.New("scan not found")

// NewHistoryCmd creates the history command.
// This command shows scan results stored in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored scan results",
		Long: `History lists the scans saved by 'grepscan scan' or prints one of them.

Examples:
  # List the most recent scans
  grepscan history

  # Print a stored report
  grepscan history --id 5

  # Print a stored report as JSON
  grepscan history --id 5 --json

  # Print the most recent report
  grepscan history --latest

  # List every stored credit card finding
  grepscan history --category credit_cards`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64P("id", "i", 0,
		"Print the scan with this ID (use 'grepscan history' to see available IDs)")
	cmd.Flags().Bool("latest", false,
		"Print the most recent scan")
	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of scans to list (0 lists all)")
	cmd.Flags().String("category", "",
		"List stored findings of a category across all scans")
	cmd.Flags().String("db-dir", "",
		"Scan history database directory (default: XDG data directory)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output the report in JSON format (with --id or --latest)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output the report in Markdown format (with --id or --latest)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	id, err := flags.GetInt64("id")
	if err != nil {
		return err
	}
	latest, err := flags.GetBool("latest")
	if err != nil {
		return err
	}
	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}
	category, err := flags.GetString("category")
	if err != nil {
		return err
	}
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	cfg := config.NewConfig()
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	if cfg.JSONReport && cfg.MarkdownReport {
		return config.ErrConflictingReportFormats
	}
	cfg.Verbose = getVerboseFlag(cmd)

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	switch {
	case id != 0:
		return showScan(ctx, out, db, id, cfg)
	case latest:
		return showLatestScan(ctx, out, db, cfg)
	case category != "":
		return listFindings(ctx, out, db, category)
	default:
		return listScans(ctx, out, db, limit)
	}
}

// showScan prints one stored report in the requested format.
func showScan(ctx context.Context, out io.Writer, db *database.FindingDB, id int64, cfg *config.Config) error {
	stored, err := db.GetReport(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get scan report: %w", err)
	}
	if stored == nil {
		return fmt.Errorf("%w: %d", errScanNotFound, id)
	}

	_, err = newReportWriter(out, cfg).Write(stored)
	return err
}

// showLatestScan prints the most recent stored report.
func showLatestScan(ctx context.Context, out io.Writer, db *database.FindingDB, cfg *config.Config) error {
	stored, err := db.LatestReport(ctx)
	if err != nil {
		return fmt.Errorf("failed to get latest scan report: %w", err)
	}
	if stored == nil {
		fmt.Fprintln(out, "No scans found in the database.")
		return nil
	}

	_, err = newReportWriter(out, cfg).Write(stored)
	return err
}

// listScans lists stored scans, newest first.
func listScans(ctx context.Context, out io.Writer, db *database.FindingDB, limit int) error {
	scans, err := db.ListScans(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(scans) == 0 {
		fmt.Fprintln(out, "No scans found in the database.")
		fmt.Fprintln(out, "\nUse 'grepscan scan <dump>' to scan HTTP responses.")
		return nil
	}

	fmt.Fprintf(out, "Scan history (%d scans):\n\n", len(scans))
	fmt.Fprintf(out, "  %-6s  %-20s  %-6s  %s\n", "ID", "Date", "Docs", "Risk Summary")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 60))

	for _, meta := range scans {
		summary := formatRiskSummary(meta.RiskSummary)
		if meta.TimedOut {
			summary += " (partial)"
		}
		fmt.Fprintf(out, "  %-6d  %-20s  %-6d  %s\n",
			meta.ID,
			meta.DateScanned.Local().Format("2006-01-02 15:04:05"),
			meta.DocumentsScanned,
			summary,
		)
	}

	fmt.Fprintln(out, "\nUse 'grepscan history --id <id>' to print a stored report.")
	return nil
}

// listFindings lists stored findings of one category across scans.
func listFindings(ctx context.Context, out io.Writer, db *database.FindingDB, category string) error {
	records, err := db.FindingsByCategory(ctx, category)
	if err != nil {
		return fmt.Errorf("failed to get findings: %w", err)
	}

	if len(records) == 0 {
		fmt.Fprintf(out, "No %s findings stored.\n", category)
		return nil
	}

	fmt.Fprintf(out, "%s findings (%d):\n\n", category, len(records))
	for _, rec := range records {
		fmt.Fprintf(out, "  [scan %d] %s\n", rec.ScanID, rec.URL)
		if len(rec.Highlights) > 0 {
			fmt.Fprintf(out, "           %s\n", strings.Join(rec.Highlights, ", "))
		}
	}
	return nil
}

// formatRiskSummary formats the risk summary map into a human-readable string.
func formatRiskSummary(summary map[string]int) string {
	if summary == nil {
		return "N/A"
	}

	var parts []string
	if v := summary["critical"]; v > 0 {
		parts = append(parts, fmt.Sprintf("C:%d", v))
	}
	if v := summary["high"]; v > 0 {
		parts = append(parts, fmt.Sprintf("H:%d", v))
	}
	if v := summary["medium"]; v > 0 {
		parts = append(parts, fmt.Sprintf("M:%d", v))
	}
	if v := summary["low"]; v > 0 {
		parts = append(parts, fmt.Sprintf("L:%d", v))
	}
	if v := summary["info"]; v > 0 {
		parts = append(parts, fmt.Sprintf("I:%d", v))
	}

	if len(parts) == 0 {
		return noFindingsMessage
	}
	return strings.Join(parts, " ")
}
