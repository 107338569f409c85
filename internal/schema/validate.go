package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// buildRecordSchema returns the JSON-Schema (draft 2020-12 subset) for a
// candidate record as a generic map. Every canonical key must be present and
// either a string or null; total_amount additionally must look like a plain
// decimal. Extra keys are tolerated here, the normalizer drops them.
func buildRecordSchema() map[string]any {
	strOrNull := func() map[string]any {
		return map[string]any{"type": []string{"string", "null"}}
	}

	props := map[string]any{
		KeyIssuerName:    strOrNull(),
		KeyIssuerTaxID:   strOrNull(),
		KeyIssuerAddress: strOrNull(),
		KeyConsumerTaxID: strOrNull(),
		KeyIssueDate:     strOrNull(),
		KeyInvoiceNumber: strOrNull(),
		KeyInvoiceSeries: strOrNull(),
		KeyTotalAmount: map[string]any{
			"type":    []string{"string", "null"},
			"pattern": `^-?\d+(\.\d+)?$`,
		},
		KeyPaymentMethod: strOrNull(),
	}

	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   CanonicalKeys,
	}
}

// validateAgainstSchema validates data against schemaMap.
func validateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
