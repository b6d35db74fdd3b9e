package pipeline

import (
	"sync"

	"github.com/nao1215/grepscan/internal/detector"
	"github.com/nao1215/grepscan/internal/model"
	"github.com/nao1215/grepscan/internal/store"
)

// Session holds the state of one scan.
//
// The finding store and the detector set live exactly as long as the
// session; a new scan needs a new session.
type Session struct {
	// Inputs are the paths given by the user: dump files or directories.
	Inputs []string

	// Sources are the documents to scan, resolved by LoadStep from Inputs
	// or supplied directly by the caller.
	Sources []Source

	// Store receives the findings of every detector.
	Store *store.Store[model.Finding]

	// Detectors runs the detectors over each document.
	Detectors *detector.Set

	// Report is the scan summary, filled in by ReportStep.
	Report *model.Report

	mu       sync.Mutex
	scanned  int
	failures []model.InputFailure
}

// NewSession creates a session for inputs. The detectors must have been
// built against st.
func NewSession(inputs []string, set *detector.Set, st *store.Store[model.Finding]) *Session {
	return &Session{
		Inputs:    inputs,
		Store:     st,
		Detectors: set,
		Report:    model.NewReport(),
	}
}

// recordResult accounts for one processed source.
func (s *Session) recordResult(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Loaded {
		s.scanned++
	}
	if r.Err != nil {
		s.failures = append(s.failures, model.InputFailure{
			Input: r.Source,
			Error: r.Err.Error(),
		})
	}
}

// Scanned returns the number of documents handed to the detectors.
func (s *Session) Scanned() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanned
}

// Failures returns the inputs that failed so far.
func (s *Session) Failures() []model.InputFailure {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.InputFailure, len(s.failures))
	copy(out, s.failures)
	return out
}
