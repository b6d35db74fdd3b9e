package config

import "time"

// File represents the structure of the .grepscan configuration file.
type File struct {
	// Scan holds scan-wide settings.
	Scan ScanConfig `yaml:"scan,omitempty"`

	// Detectors configures detector selection and tuning.
	Detectors DetectorsConfig `yaml:"detectors,omitempty"`
}

// ScanConfig holds scan-wide settings of the configuration file.
type ScanConfig struct {
	// BatchSize is the number of documents processed concurrently.
	BatchSize int `yaml:"batchSize,omitempty"`

	// Timeout bounds the whole scan, e.g. "5m".
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// DBDir overrides the database directory.
	DBDir string `yaml:"dbDir,omitempty"`
}

// DetectorsConfig configures the detectors.
type DetectorsConfig struct {
	// Enabled lists the detectors to run. Empty means all of them.
	Enabled []string `yaml:"enabled,omitempty"`

	// Filter tunes the URL filters used to skip already inspected URLs.
	Filter FilterConfig `yaml:"filter,omitempty"`

	// Symfony configures the symfony detector.
	Symfony SymfonyConfig `yaml:"symfony,omitempty"`

	// Oracle configures the oracle detector.
	Oracle OracleConfig `yaml:"oracle,omitempty"`
}

// FilterConfig tunes the scalable Bloom filters.
type FilterConfig struct {
	ErrorRate       float64 `yaml:"errorRate,omitempty"`
	InitialCapacity int     `yaml:"initialCapacity,omitempty"`
	Growth          int     `yaml:"growth,omitempty"`
	Ratio           float64 `yaml:"ratio,omitempty"`

	// Exact uses exact sets instead of Bloom filters.
	Exact bool `yaml:"exact,omitempty"`
}

// SymfonyConfig configures the symfony detector.
type SymfonyConfig struct {
	// Override skips symfony detection and searches for the CSRF
	// (mis)protection on every page.
	Override bool `yaml:"override,omitempty"`

	// CookiePattern must match the start of a Set-Cookie or Cookie value.
	CookiePattern string `yaml:"cookiePattern,omitempty"`

	// CSRFTokenPattern is searched case-insensitively in form input ids.
	CSRFTokenPattern string `yaml:"csrfTokenPattern,omitempty"`
}

// OracleConfig configures the oracle detector.
type OracleConfig struct {
	// Markers are searched in addition to the built-in marker.
	Markers []string `yaml:"markers,omitempty"`
}
