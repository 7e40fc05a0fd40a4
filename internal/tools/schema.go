package tools

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaBaseURL = "https://sentinelmind.local/tools/"

// compileSchema compiles a tool argument schema. Format keywords such as
// "email" are asserted, not just annotated.
func compileSchema(tool, schema string) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	c.AssertFormat = true

	schemaURL := fmt.Sprintf("%s%s.schema.json", schemaBaseURL, tool)
	if err := c.AddResource(schemaURL, strings.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("schema load failed for %s: %w", tool, err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("schema compile failed for %s: %w", tool, err)
	}
	return compiled, nil
}

// arguments reads already-validated tool arguments, applying defaults for
// absent optional values.
type arguments map[string]any

func (a arguments) str(name string) string {
	s, _ := a[name].(string)
	return s
}

func (a arguments) boolean(name string, def bool) bool {
	b, ok := a[name].(bool)
	if !ok {
		return def
	}
	return b
}

func (a arguments) integer(name string, def int) int {
	switch v := a[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	default:
		return def
	}
}

const writeActionSchema = `{
	"type": "object",
	"properties": {
		"%[1]s": {"type": "string", "minLength": %[2]d, "description": "Object id of the target"},
		"justification": {"type": "string", "minLength": %[3]d, "description": "Why this action is needed (at least %[3]d characters)"},
		"approved": {"type": "boolean", "default": false, "description": "Explicit human approval for this action (default: false)"},
		"dryRun": {"type": "boolean", "default": true, "description": "Evaluate the gate without executing (default: true)"}
	},
	"required": ["%[1]s", "justification"]
}`

const listLimitSchema = `{
	"type": "object",
	"properties": {
		"limit": {"type": "integer", "minimum": 1, "maximum": %[1]d, "default": %[2]d, "description": "Maximum number of items, 1-%[1]d (default: %[2]d)"}
	}
}`
