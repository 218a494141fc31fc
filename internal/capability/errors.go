package capability

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes registry errors.
type ErrorCode string

const (
	// ErrCodeBuiltInUnknown indicates a parameter bound to an unregistered built-in.
	ErrCodeBuiltInUnknown ErrorCode = "RULES_BUILTIN_UNKNOWN"

	// ErrCodeFuncUnknown indicates a call to an unregistered function.
	ErrCodeFuncUnknown ErrorCode = "RULES_FUNC_UNKNOWN"

	// ErrCodeDuplicateID indicates an extension colliding with a registered id.
	ErrCodeDuplicateID ErrorCode = "DUPLICATE_ID"
)

// Error is a registry lookup or setup failure. These are always generator
// configuration defects.
type Error struct {
	Code    ErrorCode
	ID      string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeBuiltInUnknown:
		return fmt.Sprintf("%s: unknown built-in %q", e.Code, e.ID)
	case ErrCodeFuncUnknown:
		return fmt.Sprintf("%s: unknown function %q", e.Code, e.ID)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

func newDuplicateError(kind, id string) *Error {
	return &Error{
		Code:    ErrCodeDuplicateID,
		ID:      id,
		Message: fmt.Sprintf("%s %q is already registered", kind, id),
	}
}

// IsCode reports whether err is a registry Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}
