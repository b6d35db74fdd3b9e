package pipeline

import (
	"context"
	"errors"
	"testing"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, session *Session) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, session *Session) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, session)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

func newTestSession() *Session {
	return NewSession([]string{"input.http"}, nil, nil)
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()

		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))

		if !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})
}

// TestPipelineAddStep tests adding steps to the pipeline.
func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddStep(&mockStep{name: "first"})
	p.AddSteps(&mockStep{name: "second"}, &mockStep{name: "third"})

	if p.StepCount() != 3 {
		t.Fatalf("expected 3 steps, got %d", p.StepCount())
	}

	expected := []string{"first", "second", "third"}
	for i, name := range p.StepNames() {
		if name != expected[i] {
			t.Errorf("step %d: got %q, expected %q", i, name, expected[i])
		}
	}
}

// TestPipelineExecute tests pipeline execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		executionOrder := make([]string, 0)
		record := func(name string) func(context.Context, *Session) error {
			return func(context.Context, *Session) error {
				executionOrder = append(executionOrder, name)
				return nil
			}
		}

		p := New()
		p.AddSteps(
			&mockStep{name: "step-1", doFunc: record("step-1")},
			&mockStep{name: "step-2", doFunc: record("step-2")},
		)

		if err := p.Execute(context.Background(), newTestSession()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(executionOrder) != 2 || executionOrder[0] != "step-1" || executionOrder[1] != "step-2" {
			t.Errorf("wrong execution order: %v", executionOrder)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("step failed")
		second := &mockStep{name: "should-not-run"}

		p := New()
		p.AddSteps(
			&mockStep{name: "failing-step", doFunc: func(context.Context, *Session) error { return expectedErr }},
			second,
		)

		session := newTestSession()
		err := p.Execute(context.Background(), session)

		if !errors.Is(err, expectedErr) {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if second.callCount != 0 {
			t.Error("second step should not have been called")
		}
		if session.Report.Error != "step failed" {
			t.Errorf("expected error recorded in report, got %q", session.Report.Error)
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		second := &mockStep{name: "should-run"}

		p := New(WithContinueOnError(true))
		p.AddSteps(
			&mockStep{name: "failing-step", doFunc: func(context.Context, *Session) error { return errors.New("step failed") }},
			second,
		)

		if err := p.Execute(context.Background(), newTestSession()); err != nil {
			t.Errorf("expected nil error with continueOnError, got %v", err)
		}
		if second.callCount != 1 {
			t.Error("second step should have been called")
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		step := &mockStep{name: "never"}
		p := New()
		p.AddStep(step)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		session := newTestSession()
		err := p.Execute(ctx, session)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("step should not run after cancellation")
		}
		if !session.Report.TimedOut {
			t.Error("expected report to be marked as timed out")
		}
	})
}
