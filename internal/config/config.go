package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultBatchSize of 10 concurrent documents keeps every core busy on
	// typical machines without holding too many bodies in memory at once.
	DefaultBatchSize = 10

	// AppName is the application name used for XDG directory paths.
	AppName = "grepscan"

	// DefaultFilterErrorRate is the false positive bound of the URL filters.
	DefaultFilterErrorRate = 0.001

	// DefaultFilterInitialCapacity is the capacity of the first filter segment.
	DefaultFilterInitialCapacity = 100

	// DefaultFilterGrowth multiplies the capacity of each new filter segment.
	DefaultFilterGrowth = 2

	// DefaultFilterRatio tightens the error rate of each new filter segment.
	DefaultFilterRatio = 0.9
)

// Config holds all configuration options for grepscan.
// It is populated from the configuration file and CLI flags and passed
// through the application rather than kept in global state.
//
// Design decision: We use a single flat struct instead of nested structs.
// The YAML file has its own nested shape in File and is folded in by
// ApplyFile, so the rest of the program sees one set of fields.
type Config struct {
	// Inputs is the list of response dump files to scan.
	Inputs []string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// BatchSize is the number of documents processed concurrently.
	BatchSize int

	// Timeout bounds the whole scan. Zero means no limit.
	Timeout time.Duration

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .grepscan in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Detectors lists the detectors to run. Empty means all of them.
	Detectors []string

	// SymfonyOverride skips the Symfony cookie check and always inspects
	// forms for CSRF protection. Must be set before the scan starts.
	SymfonyOverride bool

	// SymfonyCookiePattern must match the start of a cookie header value.
	// Empty means the built-in pattern.
	SymfonyCookiePattern string

	// CSRFTokenPattern is searched case-insensitively in form input ids.
	// Empty means the built-in pattern.
	CSRFTokenPattern string

	// OracleMarkers are searched in addition to the built-in marker.
	OracleMarkers []string

	// FilterErrorRate is the false positive bound of the URL filters.
	FilterErrorRate float64

	// FilterInitialCapacity is the capacity of the first filter segment.
	FilterInitialCapacity int

	// FilterGrowth multiplies the capacity of each new filter segment.
	FilterGrowth int

	// FilterRatio tightens the error rate of each new filter segment.
	FilterRatio float64

	// ExactDedup replaces the URL filters with exact sets.
	// Memory then grows with the number of distinct URLs.
	ExactDedup bool

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of human-readable format.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file and a text summary
	// is printed to stdout.
	ReportFile string

	// FailOn is a severity name. The scan fails when a finding at or
	// above it is reported. Empty disables the check.
	FailOn string

	// DBDir is the directory path for storing the SQLite database.
	// Defaults to XDG data directory (~/.local/share/grepscan on Linux).
	DBDir string

	// SaveToDB indicates whether to save scan results to the database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		BatchSize:             DefaultBatchSize,
		FilterErrorRate:       DefaultFilterErrorRate,
		FilterInitialCapacity: DefaultFilterInitialCapacity,
		FilterGrowth:          DefaultFilterGrowth,
		FilterRatio:           DefaultFilterRatio,
		DBDir:                 XDGDataDir(),
		SaveToDB:              true,
	}
}

// XDGDataDir returns the XDG data directory for grepscan.
// On Linux: ~/.local/share/grepscan
// On macOS: ~/Library/Application Support/grepscan
// On Windows: %LOCALAPPDATA%\grepscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for grepscan.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
//
// Validation happens once after flags and file are merged, before any
// document is read, so that a bad option fails the scan up front.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return ErrNoInput
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.FilterErrorRate <= 0 || c.FilterErrorRate >= 1 {
		return ErrInvalidFilterErrorRate
	}

	if c.FilterInitialCapacity <= 0 {
		return ErrInvalidFilterCapacity
	}

	if c.FilterGrowth < 1 {
		return ErrInvalidFilterGrowth
	}

	if c.FilterRatio <= 0 || c.FilterRatio >= 1 {
		return ErrInvalidFilterRatio
	}

	return nil
}

// ApplyFile folds the settings of a configuration file into c.
// Only values present in the file are applied; CLI flags are applied
// afterwards by the caller and win.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	d := f.Detectors

	if len(d.Enabled) > 0 {
		c.Detectors = d.Enabled
	}
	if d.Filter.ErrorRate != 0 {
		c.FilterErrorRate = d.Filter.ErrorRate
	}
	if d.Filter.InitialCapacity != 0 {
		c.FilterInitialCapacity = d.Filter.InitialCapacity
	}
	if d.Filter.Growth != 0 {
		c.FilterGrowth = d.Filter.Growth
	}
	if d.Filter.Ratio != 0 {
		c.FilterRatio = d.Filter.Ratio
	}
	if d.Filter.Exact {
		c.ExactDedup = true
	}
	if d.Symfony.Override {
		c.SymfonyOverride = true
	}
	if d.Symfony.CookiePattern != "" {
		c.SymfonyCookiePattern = d.Symfony.CookiePattern
	}
	if d.Symfony.CSRFTokenPattern != "" {
		c.CSRFTokenPattern = d.Symfony.CSRFTokenPattern
	}
	if len(d.Oracle.Markers) > 0 {
		c.OracleMarkers = d.Oracle.Markers
	}

	if f.Scan.BatchSize != 0 {
		c.BatchSize = f.Scan.BatchSize
	}
	if f.Scan.Timeout != 0 {
		c.Timeout = f.Scan.Timeout
	}
	if f.Scan.DBDir != "" {
		c.DBDir = f.Scan.DBDir
	}
}
