package validation

import (
	"errors"
	"testing"
)

func TestValidatePayloadWithFieldsShorthand(t *testing.T) {
	schema := map[string]any{
		"fields": []any{
			map[string]any{"name": "series", "type": "string", "required": true},
			map[string]any{"name": "episode", "type": "integer"},
		},
	}

	err := ValidatePayload(schema, map[string]any{
		"series":  "testing-in-anger",
		"episode": 3,
	})
	if err != nil {
		t.Fatalf("expected payload to validate, got %v", err)
	}
}

func TestValidatePayloadWithFieldsMap(t *testing.T) {
	schema := map[string]any{
		"fields": map[string]any{
			"series":  map[string]any{"type": "string", "required": true},
			"episode": map[string]any{"type": "integer"},
		},
	}

	if err := ValidatePayload(schema, map[string]any{"series": "testing-in-anger"}); err != nil {
		t.Fatalf("expected payload to validate, got %v", err)
	}

	err := ValidatePayload(schema, map[string]any{"series": 42})
	if err == nil {
		t.Fatal("expected numeric series to be rejected")
	}
	if !errors.Is(err, ErrSchemaValidation) {
		t.Fatalf("expected ErrSchemaValidation, got %v", err)
	}

	if err := ValidatePayload(schema, map[string]any{"episode": 3}); err == nil {
		t.Fatal("expected missing required series to be rejected")
	}
}

func TestValidateSchemaRejectsBadTypeInFieldsMap(t *testing.T) {
	schema := map[string]any{
		"fields": map[string]any{
			"series": map[string]any{"type": "definitely-not-a-type"},
		},
	}

	err := ValidateSchema(schema)
	if err == nil {
		t.Fatal("expected unknown field type to fail schema validation")
	}
	if !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
}

func TestValidatePayloadReportsIssues(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"series": map[string]any{"type": "string"},
		},
		"required":             []any{"series"},
		"additionalProperties": false,
	}

	err := ValidatePayload(schema, map[string]any{"episode": 3})
	if err == nil {
		t.Fatalf("expected validation failure")
	}
	if !errors.Is(err, ErrSchemaValidation) {
		t.Fatalf("expected ErrSchemaValidation, got %v", err)
	}

	issues := Issues(err)
	if len(issues) == 0 {
		t.Fatalf("expected issues to be reported")
	}
}

func TestValidatePartialPayloadSkipsRequired(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"series": map[string]any{"type": "string"},
		},
		"required": []any{"series"},
	}

	if err := ValidatePartialPayload(schema, map[string]any{}); err != nil {
		t.Fatalf("expected partial payload to pass, got %v", err)
	}
}

func TestValidateSchemaRejectsUnsupportedKeyword(t *testing.T) {
	schema := map[string]any{
		"type":          "object",
		"patternFields": map[string]any{},
	}

	err := ValidateSchema(schema)
	if err == nil {
		t.Fatalf("expected unsupported keyword to fail")
	}
	if !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
}

func TestValidateSchemaAcceptsNilAndEmpty(t *testing.T) {
	if err := ValidateSchema(nil); err != nil {
		t.Fatalf("nil schema should be accepted: %v", err)
	}
	if err := ValidateSchema(map[string]any{}); err != nil {
		t.Fatalf("empty schema should be accepted: %v", err)
	}
}
