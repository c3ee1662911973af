package saga

import (
	"context"
	"log"

	"rental-backend/internal/apperrors"
)

// Undo reverses one previously applied side effect.
type Undo func(ctx context.Context) error

// Step is a named, applied side effect with its inverse.
type Step struct {
	Name string
	Undo Undo
}

// Ledger records applied side effects in order so they can be unwound
// in reverse when a later step fails. A nil-safe zero value is not
// provided; use New.
type Ledger struct {
	steps []Step
}

func New() *Ledger {
	return &Ledger{}
}

// Record pushes an applied effect onto the ledger. Effects with no
// meaningful inverse may pass a nil undo; they are skipped on unwind.
func (l *Ledger) Record(name string, undo Undo) {
	l.steps = append(l.steps, Step{Name: name, Undo: undo})
}

// Len returns the number of recorded steps.
func (l *Ledger) Len() int {
	return len(l.steps)
}

// Discard drops all recorded steps after a successful run.
func (l *Ledger) Discard() {
	l.steps = nil
}

// Unwind runs every recorded undo in reverse order. cause is the error
// that triggered the rollback and is always returned: either as-is when
// every undo succeeds, or wrapped in a RollbackError listing the undo
// steps that failed. Failed undos are not retried.
func (l *Ledger) Unwind(ctx context.Context, cause error) error {
	var failed []string
	var stepErrs []error

	for i := len(l.steps) - 1; i >= 0; i-- {
		step := l.steps[i]
		if step.Undo == nil {
			continue
		}
		if err := step.Undo(ctx); err != nil {
			log.Printf("[Saga] undo %q failed: %v", step.Name, err)
			failed = append(failed, step.Name)
			stepErrs = append(stepErrs, err)
		}
	}
	l.steps = nil

	if len(failed) > 0 {
		return &apperrors.RollbackError{
			Cause:       cause,
			FailedSteps: failed,
			StepErrs:    stepErrs,
		}
	}
	return cause
}
