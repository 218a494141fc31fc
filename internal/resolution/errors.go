package resolution

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes compile failures.
type ErrorCode string

const (
	// ErrCodeEmptyRuleSet indicates a ruleset with no rules.
	ErrCodeEmptyRuleSet ErrorCode = "EMPTY_RULE_SET"

	// ErrCodeRequiredParamHasNoValue indicates a required built-in bound
	// parameter that neither the ruleset nor the built-in can default.
	ErrCodeRequiredParamHasNoValue ErrorCode = "RULES_REQUIRED_PARAM_HAS_NO_VALUE"

	// ErrCodeFuncReturnsAny indicates an assignment from a function with no
	// declared return type.
	ErrCodeFuncReturnsAny ErrorCode = "RULES_FUNC_RETURNS_ANY"
)

// Error is a compile failure. Every Error is a model or configuration
// defect; none is retried.
type Error struct {
	Code    ErrorCode
	Name    string // parameter or function involved, when any
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Name)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCode reports whether err is a compile Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}
