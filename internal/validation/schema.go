// Package validation checks custom front-matter fields against JSON schemas
// declared in the site configuration. Schemas may be full JSON schema
// documents or the short "fields" form that normalises into one.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrSchemaValidation = errors.New("schema validation failed")
)

// ValidationIssue is a single failed check, located by JSON pointer.
type ValidationIssue struct {
	Location string
	Message  string
}

// PayloadValidationError carries every issue found in one document's
// custom front matter, so lint output can show them all at once.
type PayloadValidationError struct {
	Issues []ValidationIssue
	Cause  error
}

func (e *PayloadValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrSchemaValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		loc := strings.TrimSpace(issue.Location)
		switch {
		case loc == "":
			loc = "#"
		case !strings.HasPrefix(loc, "#"):
			loc = "#" + loc
		}
		if issue.Message == "" {
			parts = append(parts, loc)
			continue
		}
		parts = append(parts, loc+": "+issue.Message)
	}
	return strings.Join(parts, "; ")
}

func (e *PayloadValidationError) Unwrap() error {
	return ErrSchemaValidation
}

// Issues pulls the individual validation issues out of err, whatever shape
// the error took on the way up.
func Issues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}
	var payloadErr *PayloadValidationError
	if errors.As(err, &payloadErr) && payloadErr != nil {
		return payloadErr.Issues
	}
	var schemaErr *jsonschema.ValidationError
	if errors.As(err, &schemaErr) && schemaErr != nil {
		return flattenIssues(schemaErr)
	}
	return []ValidationIssue{{Message: err.Error()}}
}

// ValidateSchema reports whether the configured schema is usable: within
// the supported keyword subset and compilable. Empty schemas pass.
func ValidateSchema(schema map[string]any) error {
	normalized := NormalizeSchema(schema)
	if normalized == nil {
		return nil
	}
	if err := validateSchemaSubset(normalized); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	if _, err := compile(normalized); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return nil
}

// ValidatePayload checks a document's custom front-matter fields against
// the schema. A nil or empty schema accepts everything.
func ValidatePayload(schema map[string]any, payload map[string]any) error {
	return runValidation(NormalizeSchema(schema), payload)
}

// ValidatePartialPayload validates like ValidatePayload but without
// enforcing required fields, for documents still being drafted.
func ValidatePartialPayload(schema map[string]any, payload map[string]any) error {
	normalized := NormalizeSchema(schema)
	if normalized == nil {
		return nil
	}
	normalized = deepCopyMap(normalized)
	delete(normalized, "required")
	return runValidation(normalized, payload)
}

func runValidation(schema map[string]any, payload map[string]any) error {
	if schema == nil {
		return nil
	}
	if err := validateSchemaSubset(schema); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	compiled, err := compile(schema)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	if err := compiled.Validate(payload); err != nil {
		return &PayloadValidationError{Issues: Issues(err), Cause: err}
	}
	return nil
}

// NormalizeSchema turns either schema form into a JSON schema document.
// The short form lists fields by name:
//
//	fields:
//	  - {name: series, type: string, required: true}
//	  - {name: episode, type: integer}
//
// Full JSON schema documents pass through unchanged (copied, so callers
// can't mutate the configured schema).
func NormalizeSchema(schema map[string]any) map[string]any {
	if len(schema) == 0 {
		return nil
	}
	if isJSONSchema(schema) {
		return deepCopyMap(schema)
	}
	fields, ok := schema["fields"]
	if !ok {
		return nil
	}
	properties, required := fieldsToProperties(fields)
	if len(properties) == 0 {
		return nil
	}
	normalized := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if override, ok := schema["additionalProperties"].(bool); ok {
		normalized["additionalProperties"] = override
	}
	if len(required) > 0 {
		normalized["required"] = required
	}
	return normalized
}

func isJSONSchema(schema map[string]any) bool {
	for _, marker := range []string{"$schema", "type", "properties", "oneOf", "anyOf", "allOf"} {
		if _, ok := schema[marker]; ok {
			return true
		}
	}
	return false
}

func fieldsToProperties(fields any) (map[string]any, []string) {
	properties := make(map[string]any)
	required := make([]string, 0)

	appendField := func(field map[string]any) {
		name, _ := field["name"].(string)
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		switch {
		case field["schema"] != nil:
			if nested, ok := field["schema"].(map[string]any); ok {
				properties[name] = deepCopyMap(nested)
			} else {
				properties[name] = map[string]any{}
			}
		case field["type"] != nil:
			fieldType, _ := field["type"].(string)
			if jsonType := normalizeJSONType(fieldType); jsonType != "" {
				properties[name] = map[string]any{"type": jsonType}
			} else {
				properties[name] = map[string]any{}
			}
		default:
			properties[name] = map[string]any{}
		}
		if flag, ok := field["required"].(bool); ok && flag {
			required = append(required, name)
		}
	}

	switch typed := fields.(type) {
	case []any:
		for _, entry := range typed {
			if fieldMap, ok := entry.(map[string]any); ok {
				appendField(fieldMap)
				continue
			}
			if name, ok := entry.(string); ok {
				appendField(map[string]any{"name": name})
			}
		}
	case []map[string]any:
		for _, fieldMap := range typed {
			appendField(fieldMap)
		}
	case map[string]any:
		// Map form: field name as key, spec as value. The spec becomes the
		// property schema as-is, so a bad "type" fails schema compilation
		// instead of being silently dropped.
		names := make([]string, 0, len(typed))
		for name := range typed {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			switch spec := typed[name].(type) {
			case map[string]any:
				if flag, ok := spec["required"].(bool); ok && flag {
					required = append(required, name)
				}
				if nested, ok := spec["schema"].(map[string]any); ok {
					properties[name] = deepCopyMap(nested)
					continue
				}
				prop := deepCopyMap(spec)
				delete(prop, "required")
				properties[name] = prop
			case string:
				properties[name] = map[string]any{"type": spec}
			default:
				properties[name] = map[string]any{}
			}
		}
	}

	return properties, required
}

func normalizeJSONType(value string) string {
	switch normalized := strings.ToLower(strings.TrimSpace(value)); normalized {
	case "string", "number", "integer", "boolean", "object", "array", "null":
		return normalized
	default:
		return ""
	}
}

func deepCopyMap(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = deepCopyValue(value)
	}
	return out
}

func deepCopyValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return deepCopyMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, entry := range typed {
			out[i] = deepCopyValue(entry)
		}
		return out
	default:
		return value
	}
}

func compile(schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

func flattenIssues(err *jsonschema.ValidationError) []ValidationIssue {
	if err == nil {
		return nil
	}
	issues := []ValidationIssue{}
	stack := []*jsonschema.ValidationError{err}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == nil {
			continue
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ValidationIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			continue
		}
		for i := len(node.Causes) - 1; i >= 0; i-- {
			stack = append(stack, node.Causes[i])
		}
	}
	return issues
}
