package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/grepscan/internal/model"
)

// ErrNoDocuments is returned by LoadStep when no input yields a document.
var ErrNoDocuments = errors.New("no documents to scan")

// LoadStep resolves the session inputs into sources. Directories are
// walked recursively; hidden files and directories are skipped.
//
// Design decision: LoadStep only resolves paths. Reading and parsing happen
// inside DetectStep's batch so that bodies are not all held in memory at
// once.
type LoadStep struct {
	logger *slog.Logger
}

// LoadStepOption configures a LoadStep.
type LoadStepOption func(*LoadStep)

// WithLoadLogger sets a custom logger for the load step.
func WithLoadLogger(logger *slog.Logger) LoadStepOption {
	return func(s *LoadStep) {
		s.logger = logger
	}
}

// NewLoadStep creates a new load step.
func NewLoadStep(opts ...LoadStepOption) *LoadStep {
	s := &LoadStep{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do executes the load step.
func (s *LoadStep) Do(ctx context.Context, session *Session) error {
	for _, input := range session.Inputs {
		if err := ctx.Err(); err != nil {
			return err
		}

		paths, err := expand(input)
		if err != nil {
			s.logger.Warn("failed to resolve input", "input", input, "error", err)
			session.recordResult(Result{Source: input, Err: err})
			continue
		}
		for _, p := range paths {
			session.Sources = append(session.Sources, Source{Path: p})
		}
	}

	if len(session.Sources) == 0 {
		return ErrNoDocuments
	}

	s.logger.Debug("inputs resolved", "documents", len(session.Sources))
	return nil
}

// expand returns input itself for a file, or the regular files below it
// for a directory.
func expand(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{input}, nil
	}

	var paths []string
	err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != input && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", input, err)
	}
	return paths, nil
}

// DetectStep runs the session's detectors over every source concurrently.
type DetectStep struct {
	batchOpts []BatchOption
	logger    *slog.Logger
}

// DetectStepOption configures a DetectStep.
type DetectStepOption func(*DetectStep)

// WithDetectLogger sets a custom logger for the detect step.
func WithDetectLogger(logger *slog.Logger) DetectStepOption {
	return func(s *DetectStep) {
		s.logger = logger
	}
}

// WithDetectBatchOptions passes options to the step's BatchProcessor.
func WithDetectBatchOptions(opts ...BatchOption) DetectStepOption {
	return func(s *DetectStep) {
		s.batchOpts = append(s.batchOpts, opts...)
	}
}

// NewDetectStep creates a new detect step.
func NewDetectStep(opts ...DetectStepOption) *DetectStep {
	s := &DetectStep{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *DetectStep) Name() string {
	return "detect"
}

// Do executes the detect step. Per-document failures are recorded in the
// session; only cancellation fails the step.
func (s *DetectStep) Do(ctx context.Context, session *Session) error {
	opts := append([]BatchOption{WithBatchLogger(s.logger)}, s.batchOpts...)
	bp := NewBatchProcessor(session.Detectors, opts...)

	err := bp.ProcessBatchWithCallback(ctx, session.Sources, func(r Result, _ int) {
		session.recordResult(r)
	})
	if err != nil {
		session.Report.TimedOut = true
		return fmt.Errorf("detection interrupted: %w", err)
	}
	return nil
}

// ReportStep summarizes the session into its report.
type ReportStep struct{}

// NewReportStep creates a new report step.
func NewReportStep() *ReportStep {
	return &ReportStep{}
}

// Name returns the step name.
func (s *ReportStep) Name() string {
	return "report"
}

// Do executes the report step.
func (s *ReportStep) Do(_ context.Context, session *Session) error {
	Summarize(session)
	return nil
}

// Summarize rebuilds the session report from the store and the detector
// counters. It is safe to call more than once, e.g. after an interrupted
// scan to obtain a partial report.
func Summarize(session *Session) {
	prev := session.Report
	r := model.NewReport()
	if prev != nil {
		r.ScanID = prev.ScanID
		r.DateScanned = prev.DateScanned
		r.TimedOut = prev.TimedOut
		r.Error = prev.Error
	}

	r.Inputs = session.Inputs
	r.DocumentsScanned = session.Scanned()
	r.Failures = session.Failures()
	if session.Detectors != nil {
		r.Detectors = session.Detectors.Stats()
	}
	if session.Store != nil {
		for _, f := range session.Store.All() {
			r.AddFinding(f)
		}
	}
	r.SortFindings()

	session.Report = r
}

// ReportSaver persists scan reports.
type ReportSaver interface {
	SaveReport(ctx context.Context, report *model.Report) (int64, error)
}

// PersistStep saves the session report.
type PersistStep struct {
	saver  ReportSaver
	logger *slog.Logger
}

// NewPersistStep creates a new persist step.
func NewPersistStep(saver ReportSaver, logger *slog.Logger) *PersistStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistStep{saver: saver, logger: logger}
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do executes the persist step.
func (s *PersistStep) Do(ctx context.Context, session *Session) error {
	id, err := s.saver.SaveReport(ctx, session.Report)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	session.Report.ScanID = id
	s.logger.Debug("report saved", "scan_id", id)
	return nil
}

// NewScanPipeline creates the standard scan pipeline: load, detect, report
// and, when saver is non-nil, persist.
func NewScanPipeline(saver ReportSaver, logger *slog.Logger, batchOpts []BatchOption, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	p := New(append([]Option{WithLogger(logger)}, opts...)...)
	p.AddSteps(
		NewLoadStep(WithLoadLogger(logger)),
		NewDetectStep(WithDetectLogger(logger), WithDetectBatchOptions(batchOpts...)),
		NewReportStep(),
	)
	if saver != nil {
		p.AddStep(NewPersistStep(saver, logger))
	}
	return p
}
