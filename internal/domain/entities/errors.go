package entities

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Services wrap one of these sentinels so callers can classify
// failures with errors.Is while the message stays specific to the violated
// invariant.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("already exists")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
)

// Error pairs an error kind with a message naming the violated invariant.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Kind }

// Validationf builds a validation error with a formatted message.
func Validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

// Conflictf builds a uniqueness-conflict error with a formatted message.
func Conflictf(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a missing-reference error with a formatted message.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Forbiddenf builds a forbidden-operation error with a formatted message.
func Forbiddenf(format string, args ...any) error {
	return &Error{Kind: ErrForbidden, Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsConflict reports whether err is a uniqueness-conflict error.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsNotFound reports whether err is a missing-reference error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsForbidden reports whether err is a forbidden-operation error.
func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }

// BlockedTransitionError reports a status transition vetoed by blocking
// relationships. It is produced by the task update path from the evaluator's
// veto set; the evaluator itself never returns it.
type BlockedTransitionError struct {
	TaskID          string
	RequestedStatus TaskStatus
	Vetoes          []Veto
}

func (e *BlockedTransitionError) Error() string {
	blockers := make([]string, len(e.Vetoes))
	for i, v := range e.Vetoes {
		blockers[i] = fmt.Sprintf("%s (still %s)", v.SourceTask.Title, v.SourceTask.Status)
	}
	return fmt.Sprintf("cannot set status to %q: blocked by %s",
		e.RequestedStatus, strings.Join(blockers, ", "))
}
