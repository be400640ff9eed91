package schema

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// FromOpenAPIFile loads an OpenAPI spec and extracts the JSON request
// body schema of the operation identified by operationID.
func FromOpenAPIFile(path, operationID string) (*Schema, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true

	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading OpenAPI spec: %w", err)
	}

	op := findOperation(doc, operationID)
	if op == nil {
		return nil, fmt.Errorf("operation %q not found in %s", operationID, path)
	}

	return FromOperation(op)
}

// FromOperation extracts the JSON request body schema of one operation.
func FromOperation(op *openapi3.Operation) (*Schema, error) {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil, fmt.Errorf("operation %q has no request body", op.OperationID)
	}

	for contentType, mediaType := range op.RequestBody.Value.Content {
		if strings.Contains(contentType, "json") && mediaType.Schema != nil && mediaType.Schema.Value != nil {
			return fromOpenAPISchema(mediaType.Schema.Value)
		}
	}

	return nil, fmt.Errorf("operation %q has no JSON request body", op.OperationID)
}

func findOperation(doc *openapi3.T, operationID string) *openapi3.Operation {
	if doc.Paths == nil {
		return nil
	}
	for _, pathItem := range doc.Paths.Map() {
		for _, op := range pathItem.Operations() {
			if op != nil && op.OperationID == operationID {
				return op
			}
		}
	}
	return nil
}

func fromOpenAPISchema(src *openapi3.Schema) (*Schema, error) {
	if len(src.Properties) == 0 {
		return nil, ErrEmptySchema
	}

	s := &Schema{Properties: make(map[string]*Field, len(src.Properties))}
	s.Required = append(s.Required, src.Required...)

	for name, ref := range src.Properties {
		if ref == nil || ref.Value == nil {
			continue
		}
		s.Properties[name] = fromOpenAPIField(name, ref.Value, s.IsRequired(name))
	}

	return s, nil
}

func fromOpenAPIField(name string, src *openapi3.Schema, required bool) *Field {
	f := &Field{
		Name:     name,
		Type:     TypeString,
		Required: required,
		Format:   src.Format,
		Pattern:  src.Pattern,
		Enum:     src.Enum,
	}

	if src.Type != nil && len(src.Type.Slice()) > 0 {
		f.Type = src.Type.Slice()[0]
	}

	f.MinLength = int(src.MinLength)
	if src.MaxLength != nil {
		f.MaxLength = intPtr(int(*src.MaxLength))
	}
	if src.Min != nil {
		f.Minimum = floatPtr(*src.Min)
	}
	if src.Max != nil {
		f.Maximum = floatPtr(*src.Max)
	}
	if src.MaxItems != nil {
		f.MaxItems = intPtr(int(*src.MaxItems))
	}

	return f
}
