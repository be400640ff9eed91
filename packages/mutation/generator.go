package mutation

import (
	"fmt"
	"strings"

	"github.com/mohae/deepcopy"

	"faultline/packages/schema"
)

// Mutation strategies. A generator runs the union of its enabled
// strategies; by default all of them.
const (
	StrategyMissingField = "missing_field"
	StrategyTypeError    = "type_error"
	StrategyBoundary     = "boundary"
	StrategyFormatError  = "format_error"
	StrategyInjection    = "injection"
	StrategyNullHandling = "null_handling"
)

// AllStrategies lists every strategy in execution order.
var AllStrategies = []string{
	StrategyMissingField,
	StrategyTypeError,
	StrategyBoundary,
	StrategyFormatError,
	StrategyInjection,
	StrategyNullHandling,
}

// Case is one generated negative test case: a perturbed payload paired
// with its expected outcome.
type Case struct {
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Strategy       string         `json:"strategy"`
	Field          string         `json:"field,omitempty"`
	Payload        map[string]any `json:"payload"`
	ExpectedStatus int            `json:"expected_status"`
	ExpectedError  string         `json:"expected_error,omitempty"`
}

// Generator enumerates deviation payloads for one schema. It is
// read-only after construction and safe for concurrent use.
type Generator struct {
	schema       *schema.Schema
	strategies   []string
	rejectStatus int
	acceptStatus int
}

// Option configures a Generator.
type Option func(*Generator)

// WithStrategies restricts generation to the given strategies.
func WithStrategies(strategies ...string) Option {
	return func(g *Generator) {
		g.strategies = strategies
	}
}

// WithRejectStatus sets the status the API is expected to answer with
// when it rejects an invalid payload (default 400).
func WithRejectStatus(status int) Option {
	return func(g *Generator) {
		g.rejectStatus = status
	}
}

// WithAcceptStatus sets the status expected for perturbations the
// schema does not actually forbid (default 200).
func WithAcceptStatus(status int) Option {
	return func(g *Generator) {
		g.acceptStatus = status
	}
}

// NewGenerator builds a generator for the given schema. A nil or empty
// schema is the only construction error; malformed field constraints
// later just suppress the corresponding cases.
func NewGenerator(s *schema.Schema, opts ...Option) (*Generator, error) {
	if s == nil || len(s.Properties) == 0 {
		return nil, schema.ErrEmptySchema
	}

	g := &Generator{
		schema:       s,
		strategies:   AllStrategies,
		rejectStatus: 400,
		acceptStatus: 200,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// GenerateAll runs every enabled strategy against the valid example and
// returns the union of generated cases. Case names are unique within
// one call.
func (g *Generator) GenerateAll(validExample map[string]any) []Case {
	var cases []Case

	for _, strategy := range g.strategies {
		switch strategy {
		case StrategyMissingField:
			cases = append(cases, g.missingFieldCases(validExample)...)
		case StrategyTypeError:
			cases = append(cases, g.typeErrorCases(validExample)...)
		case StrategyBoundary:
			cases = append(cases, g.boundaryCases(validExample)...)
		case StrategyFormatError:
			cases = append(cases, g.formatErrorCases(validExample)...)
		case StrategyInjection:
			cases = append(cases, g.injectionCases(validExample)...)
		case StrategyNullHandling:
			cases = append(cases, g.nullHandlingCases(validExample)...)
		}
	}

	return cases
}

// mutate returns a deep copy of the example with one field replaced.
func mutate(example map[string]any, field string, value any) map[string]any {
	payload := deepcopy.Copy(example).(map[string]any)
	payload[field] = value
	return payload
}

// drop returns a deep copy of the example with one field removed.
func drop(example map[string]any, field string) map[string]any {
	payload := deepcopy.Copy(example).(map[string]any)
	delete(payload, field)
	return payload
}

func (g *Generator) missingFieldCases(example map[string]any) []Case {
	var cases []Case
	for _, name := range g.schema.Required {
		if _, present := example[name]; !present {
			continue
		}
		cases = append(cases, Case{
			Name:           "missing_required_field_" + name,
			Description:    fmt.Sprintf("required field %q is missing", name),
			Strategy:       StrategyMissingField,
			Field:          name,
			Payload:        drop(example, name),
			ExpectedStatus: g.rejectStatus,
			ExpectedError:  "required",
		})
	}
	return cases
}

func (g *Generator) typeErrorCases(example map[string]any) []Case {
	var cases []Case
	for _, name := range g.schema.FieldNames() {
		if _, present := example[name]; !present {
			continue
		}
		field := g.schema.Properties[name]
		wrongValues := typeConfusion[field.Type]
		if len(wrongValues) > 2 {
			wrongValues = wrongValues[:2]
		}
		for _, wrong := range wrongValues {
			cases = append(cases, Case{
				Name:           fmt.Sprintf("type_error_%s_%s", name, wrong.label),
				Description:    fmt.Sprintf("field %q expects %s, received %s", name, field.Type, wrong.label),
				Strategy:       StrategyTypeError,
				Field:          name,
				Payload:        mutate(example, name, wrong.value),
				ExpectedStatus: g.rejectStatus,
				ExpectedError:  "type",
			})
		}
	}
	return cases
}

func (g *Generator) boundaryCases(example map[string]any) []Case {
	var cases []Case
	for _, name := range g.schema.FieldNames() {
		if _, present := example[name]; !present {
			continue
		}
		field := g.schema.Properties[name]
		switch field.Type {
		case schema.TypeString:
			cases = append(cases, g.stringBoundaryCases(name, field, example)...)
		case schema.TypeInteger, schema.TypeNumber:
			cases = append(cases, g.numberBoundaryCases(name, field, example)...)
		case schema.TypeArray:
			cases = append(cases, g.arrayBoundaryCases(name, field, example)...)
		}
	}
	return cases
}

func (g *Generator) stringBoundaryCases(name string, field *schema.Field, example map[string]any) []Case {
	var cases []Case

	if field.MinLength > 0 {
		cases = append(cases, Case{
			Name:           fmt.Sprintf("boundary_%s_below_min_length", name),
			Description:    fmt.Sprintf("string length below minimum (%d)", field.MinLength),
			Strategy:       StrategyBoundary,
			Field:          name,
			Payload:        mutate(example, name, strings.Repeat("a", field.MinLength-1)),
			ExpectedStatus: g.rejectStatus,
		})
	}

	if field.MaxLength != nil {
		cases = append(cases, Case{
			Name:           fmt.Sprintf("boundary_%s_above_max_length", name),
			Description:    fmt.Sprintf("string length above maximum (%d)", *field.MaxLength),
			Strategy:       StrategyBoundary,
			Field:          name,
			Payload:        mutate(example, name, strings.Repeat("a", *field.MaxLength+1)),
			ExpectedStatus: g.rejectStatus,
		})
	}

	// Empty string is only a violation when a minimum length applies.
	expected := g.acceptStatus
	if field.MinLength > 0 {
		expected = g.rejectStatus
	}
	cases = append(cases, Case{
		Name:           fmt.Sprintf("boundary_%s_empty_string", name),
		Description:    "empty string value",
		Strategy:       StrategyBoundary,
		Field:          name,
		Payload:        mutate(example, name, ""),
		ExpectedStatus: expected,
	})

	return cases
}

func (g *Generator) numberBoundaryCases(name string, field *schema.Field, example map[string]any) []Case {
	var cases []Case

	if field.Minimum != nil {
		cases = append(cases, Case{
			Name:           fmt.Sprintf("boundary_%s_below_minimum", name),
			Description:    fmt.Sprintf("value below minimum (%v)", *field.Minimum),
			Strategy:       StrategyBoundary,
			Field:          name,
			Payload:        mutate(example, name, *field.Minimum-1),
			ExpectedStatus: g.rejectStatus,
		})
	}

	if field.Maximum != nil {
		cases = append(cases, Case{
			Name:           fmt.Sprintf("boundary_%s_above_maximum", name),
			Description:    fmt.Sprintf("value above maximum (%v)", *field.Maximum),
			Strategy:       StrategyBoundary,
			Field:          name,
			Payload:        mutate(example, name, *field.Maximum+1),
			ExpectedStatus: g.rejectStatus,
		})
	}

	// A negative value is only rejected when the domain forbids it.
	expected := g.acceptStatus
	if field.Minimum != nil && *field.Minimum >= 0 {
		expected = g.rejectStatus
	}
	cases = append(cases, Case{
		Name:           fmt.Sprintf("boundary_%s_negative", name),
		Description:    "negative numeric value",
		Strategy:       StrategyBoundary,
		Field:          name,
		Payload:        mutate(example, name, -1),
		ExpectedStatus: expected,
	})

	return cases
}

func (g *Generator) arrayBoundaryCases(name string, field *schema.Field, example map[string]any) []Case {
	// Empty arrays are always expected to be rejected here, whether or
	// not the schema declares minItems. See DESIGN.md for the policy.
	cases := []Case{{
		Name:           fmt.Sprintf("boundary_%s_empty_array", name),
		Description:    "empty array",
		Strategy:       StrategyBoundary,
		Field:          name,
		Payload:        mutate(example, name, []any{}),
		ExpectedStatus: g.rejectStatus,
	}}

	if field.MaxItems != nil {
		oversized := make([]any, *field.MaxItems+1)
		for i := range oversized {
			oversized[i] = "item"
		}
		cases = append(cases, Case{
			Name:           fmt.Sprintf("boundary_%s_above_max_items", name),
			Description:    fmt.Sprintf("array length above maximum (%d)", *field.MaxItems),
			Strategy:       StrategyBoundary,
			Field:          name,
			Payload:        mutate(example, name, oversized),
			ExpectedStatus: g.rejectStatus,
		})
	}

	return cases
}

func (g *Generator) formatErrorCases(example map[string]any) []Case {
	var cases []Case
	for _, name := range g.schema.FieldNames() {
		if _, present := example[name]; !present {
			continue
		}
		field := g.schema.Properties[name]

		switch field.Format {
		case "email":
			for i, bad := range invalidEmails[:2] {
				cases = append(cases, Case{
					Name:           fmt.Sprintf("format_error_%s_invalid_email_%d", name, i+1),
					Description:    fmt.Sprintf("invalid email format: %s", bad),
					Strategy:       StrategyFormatError,
					Field:          name,
					Payload:        mutate(example, name, bad),
					ExpectedStatus: g.rejectStatus,
				})
			}
		case "uri", "url":
			for i, bad := range invalidURLs[:2] {
				cases = append(cases, Case{
					Name:           fmt.Sprintf("format_error_%s_invalid_url_%d", name, i+1),
					Description:    fmt.Sprintf("invalid URL format: %s", bad),
					Strategy:       StrategyFormatError,
					Field:          name,
					Payload:        mutate(example, name, bad),
					ExpectedStatus: g.rejectStatus,
				})
			}
		}

		if len(field.Enum) > 0 {
			cases = append(cases, Case{
				Name:           fmt.Sprintf("format_error_%s_invalid_enum", name),
				Description:    fmt.Sprintf("value outside enum set %v", field.Enum),
				Strategy:       StrategyFormatError,
				Field:          name,
				Payload:        mutate(example, name, "INVALID_ENUM_VALUE"),
				ExpectedStatus: g.rejectStatus,
			})
		}
	}
	return cases
}

func (g *Generator) injectionCases(example map[string]any) []Case {
	var cases []Case
	for _, name := range g.schema.FieldNames() {
		if _, present := example[name]; !present {
			continue
		}
		if g.schema.Properties[name].Type != schema.TypeString {
			continue
		}

		// Rejection or sanitization both count as handled; the caller
		// decides how strict to be about the status.
		cases = append(cases,
			Case{
				Name:           fmt.Sprintf("injection_%s_sql", name),
				Description:    "SQL injection payload",
				Strategy:       StrategyInjection,
				Field:          name,
				Payload:        mutate(example, name, sqlInjectionPayloads[0]),
				ExpectedStatus: g.rejectStatus,
			},
			Case{
				Name:           fmt.Sprintf("injection_%s_xss", name),
				Description:    "XSS payload",
				Strategy:       StrategyInjection,
				Field:          name,
				Payload:        mutate(example, name, xssPayloads[0]),
				ExpectedStatus: g.rejectStatus,
			},
		)
	}
	return cases
}

func (g *Generator) nullHandlingCases(example map[string]any) []Case {
	var cases []Case
	for _, name := range g.schema.Required {
		if _, present := example[name]; !present {
			continue
		}
		cases = append(cases, Case{
			Name:           fmt.Sprintf("null_handling_%s_null", name),
			Description:    fmt.Sprintf("required field %q is null", name),
			Strategy:       StrategyNullHandling,
			Field:          name,
			Payload:        mutate(example, name, nil),
			ExpectedStatus: g.rejectStatus,
		})
	}
	return cases
}
