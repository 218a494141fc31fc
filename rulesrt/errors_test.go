package rulesrt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogRuleError(t *testing.T) {
	region := Ptr("us-west-2")
	assert.NotPanics(t, func() { LogRuleError("bad region %v", *region) })

	// Arguments are evaluated before the call, even though nothing is
	// logged here.
	var unset *string
	assert.Panics(t, func() { LogRuleError("bad region %v", *unset) })
}
