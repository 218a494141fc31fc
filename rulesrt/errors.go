package rulesrt

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"
)

// ErrReachedErrorRule is returned by every error rule. The rule's message
// is logged, never carried in the error.
var ErrReachedErrorRule = errors.New("rulesrt: reached an error rule")

// LogRuleError logs an error rule's message. It is silent inside test
// binaries.
//
// The caller evaluates args before the call, so silence does not make
// them safe: a message placeholder naming an unset optional parameter,
// such as *config.Region, dereferences nil and panics in tests too.
// Rulesets keep such placeholders behind an isSet condition.
func LogRuleError(format string, args ...any) {
	if testing.Testing() {
		return
	}
	slog.Warn("endpoint resolution failed", "message", fmt.Sprintf(format, args...))
}
