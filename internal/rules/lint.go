package rules

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed ruleset.schema.json
var rulesetSchema []byte

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	var schemaObj any
	if err := json.Unmarshal(rulesetSchema, &schemaObj); err != nil {
		return nil, fmt.Errorf("schema unmarshal: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("ruleset.schema.json", schemaObj); err != nil {
		return nil, fmt.Errorf("schema compile: %w", err)
	}
	return c.Compile("ruleset.schema.json")
})

// Lint validates a ruleset document against the embedded JSON Schema.
//
// Lint is stricter than the parser: unknown properties, which the parser
// only logs, fail validation. Callers use it for --strict runs before
// parsing.
func Lint(data []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("ruleset is not valid JSON: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("ruleset schema validation failed: %w", err)
	}
	return nil
}
