package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Field types understood by the generator.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
)

// Field describes the constraints on one request field.
type Field struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Required  bool     `json:"required"`
	MinLength int      `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Minimum   *float64 `json:"minimum,omitempty"`
	Maximum   *float64 `json:"maximum,omitempty"`
	MaxItems  *int     `json:"maxItems,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	Enum      []any    `json:"enum,omitempty"`
	Format    string   `json:"format,omitempty"`
}

// Schema is the set of fields for one request body.
type Schema struct {
	Properties map[string]*Field `json:"properties"`
	Required   []string          `json:"required,omitempty"`
}

// ErrEmptySchema is returned when a schema has no properties to work
// with. This is the one construction-time failure; everything after
// construction degrades gracefully.
var ErrEmptySchema = errors.New("schema has no properties")

// FieldNames returns property names in sorted order, so anything
// iterating a schema is deterministic.
func (s *Schema) FieldNames() []string {
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRequired reports whether name is in the required set.
func (s *Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Parse builds a Schema from a raw JSON-Schema fragment of the form
// {"properties": {...}, "required": [...]}.
func Parse(data []byte) (*Schema, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}
	return FromMap(raw)
}

// FromMap builds a Schema from an already-decoded JSON-Schema fragment.
func FromMap(raw map[string]any) (*Schema, error) {
	props, _ := raw["properties"].(map[string]any)
	if len(props) == 0 {
		return nil, ErrEmptySchema
	}

	s := &Schema{Properties: make(map[string]*Field, len(props))}

	if required, ok := raw["required"].([]any); ok {
		for _, r := range required {
			if name, ok := r.(string); ok {
				s.Required = append(s.Required, name)
			}
		}
	}
	sort.Strings(s.Required)

	for name, rawProp := range props {
		prop, ok := rawProp.(map[string]any)
		if !ok {
			continue
		}
		s.Properties[name] = parseField(name, prop, s.IsRequired(name))
	}

	return s, nil
}

func parseField(name string, prop map[string]any, required bool) *Field {
	f := &Field{
		Name:     name,
		Type:     TypeString,
		Required: required,
	}

	if t, ok := prop["type"].(string); ok && t != "" {
		f.Type = t
	}
	if format, ok := prop["format"].(string); ok {
		f.Format = format
	}
	if pattern, ok := prop["pattern"].(string); ok {
		f.Pattern = pattern
	}
	if enum, ok := prop["enum"].([]any); ok {
		f.Enum = enum
	}
	if v, ok := numberValue(prop["minLength"]); ok {
		f.MinLength = int(v)
	}
	if v, ok := numberValue(prop["maxLength"]); ok {
		f.MaxLength = intPtr(int(v))
	}
	if v, ok := numberValue(prop["minimum"]); ok {
		f.Minimum = floatPtr(v)
	}
	if v, ok := numberValue(prop["maximum"]); ok {
		f.Maximum = floatPtr(v)
	}
	if v, ok := numberValue(prop["maxItems"]); ok {
		f.MaxItems = intPtr(int(v))
	}

	return f
}

func numberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
