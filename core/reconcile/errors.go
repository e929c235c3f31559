package reconcile

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no local record matches a uuid.
var ErrNotFound = errors.New("record not found")

// CreationError is returned when storage rejects the insert of a new record.
type CreationError struct {
	Err error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("failed to create record: %v", e.Err)
}

func (e *CreationError) Unwrap() error { return e.Err }

// FetchError wraps a failure of Remote.FetchDocument, timeouts included.
type FetchError struct {
	UUID string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch remote document %s: %v", e.UUID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SubmitError wraps a failure of Remote.SubmitDocument, timeouts included.
type SubmitError struct {
	UUID string
	Err  error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("failed to submit document %s: %v", e.UUID, e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// FieldTypeError reports a single value that could not be converted.
// It never aborts a cycle; the field is skipped.
type FieldTypeError struct {
	// Key is the remote key, dotted for nested values (e.g. "_resources.thumbnail").
	Key   string
	Type  ValueType
	Value any
	Err   error
}

func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("field %s: cannot convert %T to %s: %v", e.Key, e.Value, e.Type, e.Err)
}

func (e *FieldTypeError) Unwrap() error { return e.Err }

// ChildReconcileError is returned when the child list cannot be fully applied.
// Nothing of the list is committed.
type ChildReconcileError struct {
	UUID   string
	Reason string
	Err    error
}

func (e *ChildReconcileError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("failed to reconcile children of %s: %s", e.UUID, e.Reason)
	}
	return fmt.Sprintf("failed to reconcile children of %s: %s: %v", e.UUID, e.Reason, e.Err)
}

func (e *ChildReconcileError) Unwrap() error { return e.Err }

// CommitError is returned when the local write fails after a successful remote exchange.
// The remote may consider the exchange done; retry the commit rather than the fetch.
type CommitError struct {
	UUID string
	Err  error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("failed to commit %s: %v", e.UUID, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// Outcome classifies err into a short label for logs and metrics.
func Outcome(err error) string {
	var (
		fetchErr  *FetchError
		submitErr *SubmitError
		childErr  *ChildReconcileError
		commitErr *CommitError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &childErr):
		return "child_error"
	case errors.As(err, &commitErr):
		return "commit_error"
	case errors.As(err, &fetchErr):
		return "fetch_error"
	case errors.As(err, &submitErr):
		return "submit_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
