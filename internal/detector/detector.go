package detector

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nao1215/grepscan/internal/bloom"
	"github.com/nao1215/grepscan/internal/model"
	"github.com/nao1215/grepscan/internal/store"
)

var (
	// ErrUnknownDetector is returned when a detector name is not registered.
	ErrUnknownDetector = errors.New("unknown detector")

	// ErrDetectorPanic is returned when a detector panicked on a document.
	ErrDetectorPanic = errors.New("detector panicked")

	// ErrNoStore is returned when detectors are built without a finding store.
	ErrNoStore = errors.New("finding store is required")
)

// Detector inspects documents and records findings in the shared store.
type Detector interface {
	// Name returns the detector name used for selection and reporting.
	Name() string

	// Category returns the finding category the detector records into.
	Category() string

	// LongDescription explains what the detector looks for.
	LongDescription() string

	// Process inspects one document. Findings are recorded in the store;
	// the only output is an error when the document could not be inspected.
	Process(ctx context.Context, doc *model.Document) error

	// Stats returns the detector's counters.
	Stats() model.DetectorStats
}

// Options configures the built-in detectors.
type Options struct {
	// FilterErrorRate is the false positive bound of the URL filters.
	FilterErrorRate float64

	// FilterInitialCapacity is the capacity of the first filter segment.
	FilterInitialCapacity int

	// FilterGrowth multiplies the capacity of each new filter segment.
	FilterGrowth int

	// FilterRatio tightens the error rate of each new filter segment.
	FilterRatio float64

	// ExactDedup replaces the URL filters with exact sets.
	ExactDedup bool

	// SymfonyOverride skips the Symfony cookie check and always inspects
	// forms for CSRF protection.
	SymfonyOverride bool

	// SymfonyCookiePattern must match the beginning of a cookie header value.
	SymfonyCookiePattern string

	// CSRFTokenPattern is searched case-insensitively in input ids.
	CSRFTokenPattern string

	// OracleMarkers are extra markers searched in addition to the default.
	OracleMarkers []string
}

// Default option values.
const (
	DefaultSymfonyCookiePattern = "symfony="
	DefaultCSRFTokenPattern     = ".*csrf_token"
	OracleApplicationServerTag  = "<!-- Created by Oracle "
)

// DefaultOptions returns the default detector options.
func DefaultOptions() Options {
	return Options{
		FilterErrorRate:       bloom.DefaultErrorRate,
		FilterInitialCapacity: bloom.DefaultInitialCapacity,
		FilterGrowth:          bloom.DefaultGrowth,
		FilterRatio:           bloom.DefaultRatio,
		SymfonyCookiePattern:  DefaultSymfonyCookiePattern,
		CSRFTokenPattern:      DefaultCSRFTokenPattern,
	}
}

// Deps holds what detectors share during a scan session.
type Deps struct {
	// Store receives the findings of every detector.
	Store *store.Store[model.Finding]

	// Logger is used for debug output. Defaults to slog.Default().
	Logger *slog.Logger

	// Options configures the detectors.
	Options Options
}

// NewFindingStore creates a finding store keyed on Finding.UniqueKey.
func NewFindingStore() *store.Store[model.Finding] {
	return store.New[model.Finding](model.Finding.UniqueKey)
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// newSeenSet creates the URL membership set for one detector.
func (o Options) newSeenSet() (bloom.Set, error) {
	if o.ExactDedup {
		return bloom.NewExactSet(), nil
	}
	return bloom.NewScalable(o.FilterErrorRate,
		bloom.WithInitialCapacity(o.FilterInitialCapacity),
		bloom.WithGrowth(o.FilterGrowth),
		bloom.WithRatio(o.FilterRatio),
	)
}
