package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError rejects bad input before any side effect happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError signals a referenced record does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ExternalCallError wraps a failed call against a collaborator store.
type ExternalCallError struct {
	Op  string
	Err error
}

func (e *ExternalCallError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExternalCallError) Unwrap() error { return e.Err }

func NewExternalCall(op string, err error) *ExternalCallError {
	return &ExternalCallError{Op: op, Err: err}
}

// StateConflictError signals a transition that is invalid for the
// record's current status.
type StateConflictError struct {
	Resource string
	From     string
	To       string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("%s cannot move from %s to %s", e.Resource, e.From, e.To)
}

// RollbackError reports a failed compensation run. It carries the error
// that triggered the rollback plus every undo step that itself failed,
// so an operator can repair the remaining state by hand.
type RollbackError struct {
	Cause       error
	FailedSteps []string
	StepErrs    []error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("rollback incomplete after %q: failed steps [%s]",
		e.Cause, strings.Join(e.FailedSteps, ", "))
}

func (e *RollbackError) Unwrap() error { return e.Cause }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsStateConflict reports whether err is (or wraps) a StateConflictError.
func IsStateConflict(err error) bool {
	var sc *StateConflictError
	return errors.As(err, &sc)
}

// IsRollback reports whether err is (or wraps) a RollbackError.
func IsRollback(err error) bool {
	var re *RollbackError
	return errors.As(err, &re)
}
