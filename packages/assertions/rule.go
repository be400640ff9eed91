package assertions

// Kind identifies an assertion operator.
type Kind string

const (
	KindEqual              Kind = "equal"
	KindNotEqual           Kind = "not_equal"
	KindIsNull             Kind = "is_null"
	KindIsNotNull          Kind = "is_not_null"
	KindContains           Kind = "contains"
	KindNotContains        Kind = "not_contains"
	KindRegexMatch         Kind = "regex_match"
	KindGreaterThan        Kind = "greater_than"
	KindLessThan           Kind = "less_than"
	KindGreaterThanOrEqual Kind = "greater_than_or_equal"
	KindLessThanOrEqual    Kind = "less_than_or_equal"
	KindInList             Kind = "in_list"
	KindNotInList          Kind = "not_in_list"
	KindLengthEqual        Kind = "length_equal"
	KindLengthGreaterThan  Kind = "length_greater_than"
	KindLengthLessThan     Kind = "length_less_than"
	KindJSONPath           Kind = "jsonpath"
	KindTypeCheck          Kind = "type_check"
	KindRange              Kind = "range"
	KindSchemaMatch        Kind = "schema_match"
)

// knownKinds is the closed set of operators the engine dispatches on.
var knownKinds = map[Kind]bool{
	KindEqual:              true,
	KindNotEqual:           true,
	KindIsNull:             true,
	KindIsNotNull:          true,
	KindContains:           true,
	KindNotContains:        true,
	KindRegexMatch:         true,
	KindGreaterThan:        true,
	KindLessThan:           true,
	KindGreaterThanOrEqual: true,
	KindLessThanOrEqual:    true,
	KindInList:             true,
	KindNotInList:          true,
	KindLengthEqual:        true,
	KindLengthGreaterThan:  true,
	KindLengthLessThan:     true,
	KindJSONPath:           true,
	KindTypeCheck:          true,
	KindRange:              true,
	KindSchemaMatch:        true,
}

// KnownKind reports whether kind names a supported operator.
func KnownKind(kind Kind) bool {
	return knownKinds[kind]
}

// Rule is a single declarative assertion: apply Kind to the value at
// Field, comparing against Expected. Rules are immutable once built.
type Rule struct {
	Kind        Kind   `json:"kind" yaml:"type"`
	Field       string `json:"field" yaml:"field"`
	Expected    any    `json:"expected,omitempty" yaml:"expected,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ParseRule builds a Rule from a loosely typed descriptor, as produced by
// YAML or JSON test-case definitions. Missing kind defaults to equal.
func ParseRule(raw map[string]any) Rule {
	rule := Rule{Kind: KindEqual}

	if v, ok := raw["type"]; ok {
		rule.Kind = Kind(toString(v))
	} else if v, ok := raw["kind"]; ok {
		rule.Kind = Kind(toString(v))
	}
	if v, ok := raw["field"]; ok {
		rule.Field = toString(v)
	}
	rule.Expected = raw["expected"]
	if v, ok := raw["description"]; ok {
		rule.Description = toString(v)
	}

	return rule
}

// Result is the outcome of evaluating one rule. It is a plain
// serializable value; reporters consume it as-is.
type Result struct {
	Passed   bool   `json:"passed"`
	Kind     Kind   `json:"kind"`
	Field    string `json:"field"`
	Expected any    `json:"expected,omitempty"`
	Actual   any    `json:"actual,omitempty"`
	Message  string `json:"message,omitempty"`
}

// AllPassed reports whether every result in the batch passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// Failures returns the failed subset of results, preserving order.
func Failures(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
