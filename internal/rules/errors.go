package rules

import (
	"errors"
	"fmt"

	"github.com/roach88/rulesgen/internal/jsonast"
)

// ErrorCode categorizes parse failures.
type ErrorCode string

const (
	// ErrCodeMalformed indicates a structural violation.
	ErrCodeMalformed ErrorCode = "MALFORMED"

	// ErrCodeUnsupportedVersion indicates a missing or unknown version.
	ErrCodeUnsupportedVersion ErrorCode = "UNSUPPORTED_VERSION"

	// ErrCodeTypeMismatch indicates a value whose shape contradicts its declared type.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"

	// ErrCodeDefaultBeforeType indicates a parameter default read before its type.
	ErrCodeDefaultBeforeType ErrorCode = "DEFAULT_BEFORE_TYPE"

	// ErrCodeUnrecognizedRule indicates a rule with no known discriminator.
	ErrCodeUnrecognizedRule ErrorCode = "UNRECOGNIZED_RULE"

	// ErrCodeUnknownShape indicates a test parameter value of unsupported shape.
	ErrCodeUnknownShape ErrorCode = "UNKNOWN_SHAPE"
)

// ParseError is a fatal parse failure. Path is a JSON path such as
// "rules[2].conditions[0].argv[1]".
type ParseError struct {
	Path    string
	Offset  int64
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s (offset %d)", e.Code, e.Message, e.Offset)
	}
	return fmt.Sprintf("%s at %s: %s (offset %d)", e.Code, e.Path, e.Message, e.Offset)
}

// IsCode reports whether err is a ParseError with the given code.
// Uses errors.As to handle wrapped errors.
func IsCode(err error, code ErrorCode) bool {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

// asParseError converts tokenizer failures into MALFORMED parse errors,
// passing existing ParseErrors through unchanged.
func asParseError(r jsonast.Reader, path string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return err
	}
	var te *jsonast.UnexpectedTokenError
	if errors.As(err, &te) {
		return &ParseError{
			Path:    path,
			Offset:  te.Offset,
			Code:    ErrCodeMalformed,
			Message: fmt.Sprintf("expected %s, got %s", te.Want, te.Got),
		}
	}
	return &ParseError{Path: path, Offset: r.Offset(), Code: ErrCodeMalformed, Message: err.Error()}
}
