package mysqlerr

import (
	"errors"
	"fmt"

	"github.com/circleci/mysqlex/o11y"
)

// Error is a MySQL failure that has been recognised by Classify.
type Error struct {
	kind    Kind
	message string
	cause   error
}

// New builds the typed error for kind. cause is the original driver error and may be nil.
func New(kind Kind, message string, cause error) *Error {
	return &Error{
		kind:    kind,
		message: message,
		cause:   cause,
	}
}

func (e *Error) Kind() Kind {
	return e.kind
}

func (e *Error) Code() int {
	return e.kind.Code()
}

func (e *Error) Message() string {
	return e.message
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.kind, e.kind.Code(), e.message)
}

// GoString prints the error in the form <LockDeadlock code=1213 message=...>
func (e *Error) GoString() string {
	return fmt.Sprintf("<%s code=%d message=%s>", e.kind, e.kind.Code(), e.message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches the Kind of the error, and the o11y warning sentinel for warning kinds.
func (e *Error) Is(target error) bool {
	if o11y.IsWarningNoUnwrap(target) {
		return e.kind.warning()
	}
	// nolint: errorlint // comparing against the Kind value itself, not a wrapped chain
	k, ok := target.(Kind)
	return ok && k == e.kind
}

// KindOf returns the Kind of the first *Error found in the chain of err.
func KindOf(err error) (Kind, bool) {
	e := &Error{}
	if errors.As(err, &e) {
		return e.kind, true
	}
	return 0, false
}
