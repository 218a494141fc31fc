package codegen

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"

	"github.com/roach88/rulesgen/internal/capability"
	"github.com/roach88/rulesgen/internal/resolution"
	"github.com/roach88/rulesgen/internal/rules"
)

// Error code constants, unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeNotFound     = "E002" // Input file not found
	ErrCodeUnsupported  = "E003" // Unsupported document extension
	ErrCodeDecodeFailed = "E004" // YAML or JSON decode failed
	ErrCodeBuildFailed  = "E005" // CUE build failed
	ErrCodeWriteFailed  = "E006" // Output write failed
	ErrCodeManifest     = "E007" // Manifest open/read/write failed

	ErrCodeLint       = "E101" // Schema lint failed
	ErrCodeParse      = "E102" // Ruleset or test parse failed
	ErrCodeCapability = "E103" // Unknown built-in or function
	ErrCodeCompile    = "E104" // Resolution compile failed
)

// LoadError is a failure attributable to one input document.
type LoadError struct {
	Code    string
	Path    string
	Message string
	Pos     token.Pos // CUE position if available
	Err     error
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Code classifies err into one of the error codes above.
func Code(err error) string {
	var le *LoadError
	var pe *rules.ParseError
	var ce *capability.Error
	var re *resolution.Error
	switch {
	case errors.As(err, &le):
		return le.Code
	case errors.As(err, &pe):
		return ErrCodeParse
	case errors.As(err, &ce):
		return ErrCodeCapability
	case errors.As(err, &re):
		return ErrCodeCompile
	default:
		return ErrCodeGeneric
	}
}
