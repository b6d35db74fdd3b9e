package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/grepscan/internal/config"
	"github.com/nao1215/grepscan/internal/database"
	"github.com/nao1215/grepscan/internal/detector"
	"github.com/nao1215/grepscan/internal/model"
	"github.com/nao1215/grepscan/internal/pipeline"
	"github.com/nao1215/grepscan/internal/report"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [dump-file-or-dir...]",
		Short: "Scan HTTP response dumps for sensitive data",
		Long: `Scan runs the grep detectors over HTTP response dumps.

Each input is a raw HTTP/1.x response (status line, headers, body), such as
the output of "curl -si". Directories are walked recursively. The URL of a
response is taken from the X-Grepscan-Url header when present, otherwise the
file path is used.

Examples:
  # Scan a single response
  grepscan scan response.http

  # Scan every dump below a directory
  grepscan scan ./dumps

  # Only look for card numbers, output JSON
  grepscan scan --detectors credit_cards --json ./dumps

  # Inspect forms even without a Symfony cookie
  grepscan scan --symfony-override ./dumps

  # Write a Markdown report, print a summary to the terminal
  grepscan scan --markdown -o report.md ./dumps

  # Fail a CI job when anything of LOW severity or above is found
  grepscan scan --fail-on low ./dumps`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Scan behavior flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of documents inspected concurrently")
	cmd.Flags().DurationP("timeout", "t", 0,
		"Abort the scan after this duration (0 disables the limit)")
	cmd.Flags().StringSliceP("detectors", "d", nil,
		"Detectors to run (default: all)")
	cmd.Flags().Bool("symfony-override", false,
		"Inspect forms for CSRF tokens even when no Symfony cookie is present")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .grepscan in current or home directory)")

	// Storage flags
	cmd.Flags().Bool("no-db", false,
		"Do not save the report to the scan history database")
	cmd.Flags().String("db-dir", "",
		"Scan history database directory (default: XDG data directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().String("fail-on", "",
		"Exit with an error when a finding has this severity or higher (info, low, medium, high, critical)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if cfg.FailOn != "" {
		if _, err := model.ParseSeverity(cfg.FailOn); err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
	}

	logger := newLogger(cmd, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if cfg.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runScan(ctx, cmd.OutOrStdout(), cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the configuration file and cobra flags.
// Flags explicitly set on the command line override the file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// A missing default file is fine, a missing explicit one is not.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(file)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if flags.Changed("batch") {
		if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("detectors") {
		if cfg.Detectors, err = flags.GetStringSlice("detectors"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("symfony-override") {
		if cfg.SymfonyOverride, err = flags.GetBool("symfony-override"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("db-dir") {
		if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
			return nil, err
		}
	}

	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.FailOn, err = flags.GetString("fail-on"); err != nil {
		return nil, err
	}

	cfg.Inputs = args

	return cfg, nil
}

// detectorOptions converts the configuration into detector options.
func detectorOptions(cfg *config.Config) detector.Options {
	opts := detector.DefaultOptions()
	opts.FilterErrorRate = cfg.FilterErrorRate
	opts.FilterInitialCapacity = cfg.FilterInitialCapacity
	opts.FilterGrowth = cfg.FilterGrowth
	opts.FilterRatio = cfg.FilterRatio
	opts.ExactDedup = cfg.ExactDedup
	opts.SymfonyOverride = cfg.SymfonyOverride
	if cfg.SymfonyCookiePattern != "" {
		opts.SymfonyCookiePattern = cfg.SymfonyCookiePattern
	}
	if cfg.CSRFTokenPattern != "" {
		opts.CSRFTokenPattern = cfg.CSRFTokenPattern
	}
	opts.OracleMarkers = cfg.OracleMarkers
	return opts
}

// runScan executes the scan and writes the report.
func runScan(ctx context.Context, stdout io.Writer, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting scan",
		"inputs", cfg.Inputs,
		"detectors", cfg.Detectors,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Detectors are built before any document is read so that an invalid
	// pattern fails the whole scan.
	st := detector.NewFindingStore()
	detectors, err := detector.Build(cfg.Detectors, detector.Deps{
		Store:   st,
		Logger:  logger,
		Options: detectorOptions(cfg),
	})
	if err != nil {
		return fmt.Errorf("failed to build detectors: %w", err)
	}

	var saver pipeline.ReportSaver
	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
		saver = db
	}

	session := pipeline.NewSession(cfg.Inputs, detector.NewSet(detectors, logger), st)
	p := pipeline.NewScanPipeline(saver, logger, []pipeline.BatchOption{
		pipeline.WithConcurrency(cfg.BatchSize),
	})

	startTime := time.Now()
	execErr := p.Execute(ctx, session)
	if execErr != nil {
		// Report whatever was found before the failure.
		pipeline.Summarize(session)
		logger.Error("scan failed", "error", execErr)
	}
	logger.Info("scan completed",
		"elapsed", time.Since(startTime).Round(time.Millisecond),
		"documents", session.Report.DocumentsScanned,
		"findings", session.Report.TotalFindings(),
	)

	if err := outputReport(stdout, cfg, session.Report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if execErr != nil {
		return execErr
	}
	return checkFailOn(cfg.FailOn, session.Report)
}

// errSeverityThreshold is returned when --fail-on matches a finding.
var errSeverityThreshold = errors.New("findings at or above the failure severity")

// checkFailOn returns errSeverityThreshold when the report holds a finding
// at or above the named severity.
func checkFailOn(failOn string, scanReport *model.Report) error {
	if failOn == "" {
		return nil
	}
	threshold, err := model.ParseSeverity(failOn)
	if err != nil {
		return err
	}
	count := 0
	for _, f := range scanReport.Findings {
		if f.Severity >= threshold {
			count++
		}
	}
	if count > 0 {
		return fmt.Errorf("%w: %d findings of %s or higher", errSeverityThreshold, count, threshold)
	}
	return nil
}

// outputReport outputs the scan report in the requested format.
// With a report file, the file gets the requested format and stdout
// gets the text summary.
func outputReport(stdout io.Writer, cfg *config.Config, scanReport *model.Report) error {
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports may contain card numbers, so only the owner may read them.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()

		w := report.NewMultiWriter(newReportWriter(f, cfg), report.NewSimpleWriter(stdout))
		if _, err := w.Write(scanReport); err != nil {
			return err
		}
		return f.Close()
	}

	_, err := newReportWriter(stdout, cfg).Write(scanReport)
	return err
}

// newReportWriter selects the report writer for the configured format.
func newReportWriter(output io.Writer, cfg *config.Config) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}
