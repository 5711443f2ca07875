package plan

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

const schemaID = "https://github.com/ormasoftchile/tseq/schemas/plan-v1.json"

// GenerateJSONSchema produces the JSON Schema document for plan files.
func GenerateJSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	s := r.Reflect(&Plan{})
	s.ID = jsonschema.ID(schemaID)
	s.Title = "tseq plan"
	s.Description = "Schema for tseq plan YAML documents (Draft 2020-12)"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal plan schema: %w", err)
	}
	return data, nil
}
