package domain

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies workflow failures into the stable categories the
// caller-facing contract exposes. NOT_FOUND covers both absent entities and
// entities outside the caller's tenant, so tenant boundaries never leak.
type ErrorCategory string

const (
	CategoryValidation    ErrorCategory = "VALIDATION"
	CategoryNotFound      ErrorCategory = "NOT_FOUND"
	CategoryPrecondition  ErrorCategory = "PRECONDITION_FAILED"
	CategoryAuthorization ErrorCategory = "AUTHORIZATION"
	CategoryConflict      ErrorCategory = "CONFLICT"
	CategoryExternal      ErrorCategory = "EXTERNAL_DEPENDENCY_FAILURE"
)

type Error struct {
	Category ErrorCategory
	Message  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func Validationf(format string, args ...any) error {
	return &Error{Category: CategoryValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return &Error{Category: CategoryNotFound, Message: fmt.Sprintf(format, args...)}
}

func Preconditionf(format string, args ...any) error {
	return &Error{Category: CategoryPrecondition, Message: fmt.Sprintf(format, args...)}
}

func Forbiddenf(format string, args ...any) error {
	return &Error{Category: CategoryAuthorization, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
	return &Error{Category: CategoryConflict, Message: fmt.Sprintf(format, args...)}
}

func Externalf(format string, args ...any) error {
	return &Error{Category: CategoryExternal, Message: fmt.Sprintf(format, args...)}
}

// CategoryOf extracts the category from any error in the chain; unclassified
// errors report as EXTERNAL so internal details never map to a 4xx.
func CategoryOf(err error) ErrorCategory {
	var de *Error
	if errors.As(err, &de) {
		return de.Category
	}
	return CategoryExternal
}

// ErrNotFound is the repository-level absence sentinel; usecases translate it
// into a categorized NOT_FOUND with entity context.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is the repository-level unique-violation sentinel. Workflow
// code treats it as the "already exists" signal instead of running
// check-then-insert reads.
var ErrDuplicate = errors.New("duplicate")
