package detector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/grepscan/internal/model"
)

// Set runs a fixed list of detectors over documents.
//
// A Set is safe for concurrent use; documents may be processed in parallel.
type Set struct {
	detectors []Detector
	logger    *slog.Logger
}

// NewSet creates a Set for the given detectors.
func NewSet(detectors []Detector, logger *slog.Logger) *Set {
	if logger == nil {
		logger = slog.Default()
	}
	return &Set{detectors: detectors, logger: logger}
}

// Detectors returns the detectors in dispatch order.
func (s *Set) Detectors() []Detector {
	return s.detectors
}

// Process runs every detector on doc. A failing detector does not stop the
// others; their errors are logged and joined. Cancellation is checked
// between detectors.
func (s *Set) Process(ctx context.Context, doc *model.Document) error {
	var errs []error
	for _, d := range s.detectors {
		select {
		case <-ctx.Done():
			return errors.Join(append(errs, ctx.Err())...)
		default:
		}

		if err := s.run(ctx, d, doc); err != nil {
			s.logger.Warn("detector failed",
				"detector", d.Name(),
				"url", documentURL(doc),
				"error", err,
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stats returns the counters of every detector in dispatch order.
func (s *Set) Stats() []model.DetectorStats {
	stats := make([]model.DetectorStats, 0, len(s.detectors))
	for _, d := range s.detectors {
		stats = append(stats, d.Stats())
	}
	return stats
}

// run calls the detector, turning a panic into an error.
func (s *Set) run(ctx context.Context, d Detector, doc *model.Document) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s on %s: %v", ErrDetectorPanic, d.Name(), documentURL(doc), r)
		}
	}()
	return d.Process(ctx, doc)
}

func documentURL(doc *model.Document) string {
	if doc == nil {
		return ""
	}
	return doc.URL
}
