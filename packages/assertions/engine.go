package assertions

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
)

// Missing is the sentinel value a field path resolves to when the path
// does not exist in the document. It is distinct from an explicit null.
type Missing struct{}

func (Missing) String() string { return "<missing>" }

// IsMissing reports whether v is the resolution-miss sentinel.
func IsMissing(v any) bool {
	_, ok := v.(Missing)
	return ok
}

// Engine evaluates assertion rules against one response document. It is
// read-only after construction and safe for concurrent use.
type Engine struct {
	document any
	docJSON  gjson.Result
	valid    bool
}

// NewEngine builds an engine for a document of nested maps, slices, and
// scalars (typically the result of unmarshaling a JSON body).
func NewEngine(document any) *Engine {
	e := &Engine{document: document}
	data, err := json.Marshal(document)
	if err == nil {
		e.docJSON = gjson.ParseBytes(data)
		e.valid = true
	}
	return e
}

// EvaluateAll evaluates every rule against the document. It never
// returns an error: malformed rules become failed results.
func EvaluateAll(document any, rules []Rule) []Result {
	engine := NewEngine(document)
	results := make([]Result, len(rules))
	for i, rule := range rules {
		results[i] = engine.Evaluate(rule)
	}
	return results
}

// bracketIndex converts array bracket notation to gjson dot notation,
// e.g. "items[2].id" -> "items.2.id".
var bracketIndex = regexp.MustCompile(`\[(\d+)\]`)

func toGJSONPath(path string) string {
	converted := bracketIndex.ReplaceAllString(path, ".$1")
	return strings.TrimPrefix(converted, ".")
}

// Resolve returns the value at the dot-and-bracket path, or the Missing
// sentinel when the path does not exist. The empty path resolves to the
// whole document. Resolution is total: it never fails.
func (e *Engine) Resolve(path string) any {
	if path == "" {
		return e.document
	}
	if !e.valid {
		return Missing{}
	}
	result := e.docJSON.Get(toGJSONPath(path))
	if !result.Exists() {
		return Missing{}
	}
	return result.Value()
}

// Evaluate applies one rule and returns its result. All operator misuse
// degrades to a failed result; nothing is raised to the caller.
func (e *Engine) Evaluate(rule Rule) Result {
	result := Result{
		Kind:     rule.Kind,
		Field:    rule.Field,
		Expected: rule.Expected,
	}

	actual := e.Resolve(rule.Field)
	if !IsMissing(actual) {
		result.Actual = actual
	}

	passed, msg := e.apply(rule.Kind, actual, rule.Expected, rule.Field)
	result.Passed = passed
	if msg == "" {
		msg = rule.Description
	}
	result.Message = msg

	return result
}

func (e *Engine) apply(kind Kind, actual, expected any, field string) (bool, string) {
	switch kind {
	case KindEqual:
		return assertEqual(actual, expected, field)
	case KindNotEqual:
		passed, _ := assertEqual(actual, expected, field)
		if passed {
			return false, fmt.Sprintf("expected %q not to equal %v", field, expected)
		}
		return true, ""
	case KindIsNull:
		return assertIsNull(actual, field)
	case KindIsNotNull:
		return assertIsNotNull(actual, field)
	case KindContains:
		return assertContains(actual, expected, field)
	case KindNotContains:
		return assertNotContains(actual, expected, field)
	case KindRegexMatch:
		return assertRegexMatch(actual, expected, field)
	case KindGreaterThan:
		return assertNumeric(actual, expected, field, ">")
	case KindLessThan:
		return assertNumeric(actual, expected, field, "<")
	case KindGreaterThanOrEqual:
		return assertNumeric(actual, expected, field, ">=")
	case KindLessThanOrEqual:
		return assertNumeric(actual, expected, field, "<=")
	case KindInList:
		return assertInList(actual, expected, field)
	case KindNotInList:
		passed, _ := assertInList(actual, expected, field)
		if passed {
			return false, fmt.Sprintf("expected %q (%v) not to be in %v", field, actual, expected)
		}
		return true, ""
	case KindLengthEqual:
		return assertLength(actual, expected, field, "==")
	case KindLengthGreaterThan:
		return assertLength(actual, expected, field, ">")
	case KindLengthLessThan:
		return assertLength(actual, expected, field, "<")
	case KindJSONPath:
		return e.assertJSONPath(expected)
	case KindTypeCheck:
		return assertTypeCheck(actual, expected, field)
	case KindRange:
		return assertRange(actual, expected, field)
	case KindSchemaMatch:
		return assertSchemaMatch(actual, expected)
	default:
		return false, fmt.Sprintf("unknown assertion kind: %s", kind)
	}
}

func assertEqual(actual, expected any, field string) (bool, string) {
	if IsMissing(actual) {
		return false, fmt.Sprintf("field %q not found", field)
	}
	if valuesEqual(actual, expected) {
		return true, ""
	}
	return false, fmt.Sprintf("expected %q to equal %v, got %v", field, expected, actual)
}

// assertIsNull treats both explicit null and an unresolved path as null,
// so rules can observe absence without special-casing.
func assertIsNull(actual any, field string) (bool, string) {
	if actual == nil || IsMissing(actual) {
		return true, ""
	}
	return false, fmt.Sprintf("expected %q to be null, got %v", field, actual)
}

func assertIsNotNull(actual any, field string) (bool, string) {
	if IsMissing(actual) {
		return false, fmt.Sprintf("field %q is missing", field)
	}
	if actual == nil {
		return false, fmt.Sprintf("expected %q to not be null", field)
	}
	return true, ""
}

// assertContains fails closed when the field is missing or null.
func assertContains(actual, expected any, field string) (bool, string) {
	if actual == nil || IsMissing(actual) {
		return false, fmt.Sprintf("field %q is null, cannot check contains", field)
	}
	if list, ok := actual.([]any); ok {
		for _, item := range list {
			if valuesEqual(item, expected) {
				return true, ""
			}
		}
		return false, fmt.Sprintf("expected %q to contain %v", field, expected)
	}
	if strings.Contains(toString(actual), toString(expected)) {
		return true, ""
	}
	return false, fmt.Sprintf("expected %q to contain %q", field, toString(expected))
}

func assertNotContains(actual, expected any, field string) (bool, string) {
	if actual == nil || IsMissing(actual) {
		return true, ""
	}
	passed, _ := assertContains(actual, expected, field)
	if passed {
		return false, fmt.Sprintf("expected %q to not contain %v", field, expected)
	}
	return true, ""
}

// assertRegexMatch anchors the pattern at the start of the string form
// of the actual value. Invalid patterns fail with a diagnostic.
func assertRegexMatch(actual, expected any, field string) (bool, string) {
	if actual == nil || IsMissing(actual) {
		return false, fmt.Sprintf("field %q is null, cannot match regex", field)
	}
	pattern := toString(expected)
	re, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return false, fmt.Sprintf("invalid regex pattern %q: %v", pattern, err)
	}
	if re.MatchString(toString(actual)) {
		return true, ""
	}
	return false, fmt.Sprintf("expected %q (%v) to match pattern %q", field, actual, pattern)
}

func assertNumeric(actual, expected any, field, op string) (bool, string) {
	actualNum, aOK := toFloat64(actual)
	expectedNum, eOK := toFloat64(expected)
	if !aOK || !eOK {
		return false, fmt.Sprintf("cannot compare %q: %v %s %v is not numeric", field, actual, op, expected)
	}

	var passed bool
	switch op {
	case ">":
		passed = actualNum > expectedNum
	case ">=":
		passed = actualNum >= expectedNum
	case "<":
		passed = actualNum < expectedNum
	case "<=":
		passed = actualNum <= expectedNum
	}

	if passed {
		return true, ""
	}
	return false, fmt.Sprintf("expected %q (%v) %s %v", field, actual, op, expected)
}

func assertInList(actual, expected any, field string) (bool, string) {
	list, ok := expected.([]any)
	if !ok {
		return false, fmt.Sprintf("in_list expects a list, got %T", expected)
	}
	for _, item := range list {
		if valuesEqual(actual, item) {
			return true, ""
		}
	}
	return false, fmt.Sprintf("expected %q (%v) to be in %v", field, actual, expected)
}

func assertLength(actual, expected any, field, op string) (bool, string) {
	expectedLen, ok := toInt(expected)
	if !ok {
		return false, fmt.Sprintf("expected length must be a number, got %v", expected)
	}

	actualLen := valueLength(actual)

	var passed bool
	switch op {
	case "==":
		passed = actualLen == expectedLen
	case ">":
		passed = actualLen > expectedLen
	case "<":
		passed = actualLen < expectedLen
	}

	if passed {
		return true, ""
	}
	return false, fmt.Sprintf("expected %q length %s %d, got %d", field, op, expectedLen, actualLen)
}

// assertJSONPath evaluates an expression against the whole document.
// Expected is a map with "expression", "condition" (exists, all_match,
// all_not_null), and an optional "pattern" for all_match.
func (e *Engine) assertJSONPath(expected any) (bool, string) {
	spec, ok := expected.(map[string]any)
	if !ok {
		return false, fmt.Sprintf("jsonpath expects an expression map, got %T", expected)
	}

	expression := toString(spec["expression"])
	condition := toString(spec["condition"])
	if condition == "" {
		condition = "exists"
	}

	if !e.valid {
		return false, "document is not valid JSON"
	}

	path := toGJSONPath(strings.TrimPrefix(expression, "$."))
	path = strings.ReplaceAll(path, "[*]", ".#")
	path = strings.ReplaceAll(path, "*", "#")
	result := e.docJSON.Get(path)

	matches := collectMatches(result)

	switch condition {
	case "exists":
		if len(matches) > 0 {
			return true, ""
		}
		return false, fmt.Sprintf("jsonpath %q matched nothing", expression)
	case "all_match":
		pattern := toString(spec["pattern"])
		re, err := regexp.Compile("^(?:" + pattern + ")")
		if err != nil {
			return false, fmt.Sprintf("invalid jsonpath pattern %q: %v", pattern, err)
		}
		for _, m := range matches {
			if !re.MatchString(toString(m)) {
				return false, fmt.Sprintf("jsonpath %q: %v does not match %q", expression, m, pattern)
			}
		}
		return true, ""
	case "all_not_null":
		for _, m := range matches {
			if m == nil {
				return false, fmt.Sprintf("jsonpath %q matched a null value", expression)
			}
		}
		return len(matches) > 0, ""
	default:
		return false, fmt.Sprintf("unknown jsonpath condition: %s", condition)
	}
}

func collectMatches(result gjson.Result) []any {
	if !result.Exists() {
		return nil
	}
	if result.IsArray() {
		items := result.Array()
		matches := make([]any, len(items))
		for i, item := range items {
			matches[i] = item.Value()
		}
		return matches
	}
	return []any{result.Value()}
}

func assertTypeCheck(actual, expected any, field string) (bool, string) {
	want := strings.ToLower(toString(expected))
	category, ok := typeCategories[want]
	if !ok {
		return false, fmt.Sprintf("unknown type: %s", want)
	}
	if IsMissing(actual) {
		return false, fmt.Sprintf("field %q not found", field)
	}
	if matchesType(actual, category) {
		return true, ""
	}
	return false, fmt.Sprintf("expected %q to be %s, got %s", field, want, typeNameOf(actual))
}

var typeCategories = map[string]string{
	"string":  "string",
	"str":     "string",
	"int":     "int",
	"integer": "int",
	"float":   "number",
	"number":  "number",
	"bool":    "bool",
	"boolean": "bool",
	"list":    "list",
	"array":   "list",
	"dict":    "dict",
	"object":  "dict",
	"map":     "dict",
	"null":    "null",
}

func matchesType(v any, category string) bool {
	switch category {
	case "null":
		return v == nil
	case "bool":
		_, ok := v.(bool)
		return ok
	case "string":
		_, ok := v.(string)
		return ok
	case "list":
		_, ok := v.([]any)
		return ok
	case "dict":
		_, ok := v.(map[string]any)
		return ok
	case "number":
		switch v.(type) {
		case float64, float32, int, int32, int64:
			return true
		}
		return false
	case "int":
		// JSON decoding produces float64 for every number, so a whole
		// float counts as an integer.
		switch n := v.(type) {
		case int, int32, int64:
			return true
		case float64:
			return n == math.Trunc(n)
		}
		return false
	}
	return false
}

// typeNameOf names the JSON type category of a decoded value.
func typeNameOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case float64, float32, int, int32, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// assertRange checks a numeric value against optional min/max bounds
// given as a map {"min": x, "max": y}.
func assertRange(actual, expected any, field string) (bool, string) {
	bounds, ok := expected.(map[string]any)
	if !ok {
		return false, fmt.Sprintf("range expects a bounds map, got %T", expected)
	}
	value, ok := toFloat64(actual)
	if !ok {
		return false, fmt.Sprintf("field %q (%v) is not numeric", field, actual)
	}

	if minRaw, present := bounds["min"]; present {
		if minVal, ok := toFloat64(minRaw); ok && value < minVal {
			return false, fmt.Sprintf("%q value %v is less than minimum %v", field, actual, minRaw)
		}
	}
	if maxRaw, present := bounds["max"]; present {
		if maxVal, ok := toFloat64(maxRaw); ok && value > maxVal {
			return false, fmt.Sprintf("%q value %v is greater than maximum %v", field, actual, maxRaw)
		}
	}
	return true, ""
}

// assertSchemaMatch validates the resolved value against a JSON Schema
// given inline as a map or as raw JSON text.
func assertSchemaMatch(actual, expected any) (bool, string) {
	if IsMissing(actual) {
		actual = nil
	}

	var schemaLoader gojsonschema.JSONLoader
	switch s := expected.(type) {
	case map[string]any:
		schemaLoader = gojsonschema.NewGoLoader(s)
	case string:
		schemaLoader = gojsonschema.NewStringLoader(s)
	default:
		return false, fmt.Sprintf("schema_match expects a schema map or JSON string, got %T", expected)
	}

	docBytes, err := json.Marshal(actual)
	if err != nil {
		return false, fmt.Sprintf("cannot marshal value for schema validation: %v", err)
	}

	validation, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(docBytes))
	if err != nil {
		return false, fmt.Sprintf("schema validation error: %v", err)
	}
	if validation.Valid() {
		return true, ""
	}

	var problems []string
	for _, desc := range validation.Errors() {
		problems = append(problems, desc.String())
	}
	return false, "schema validation failed: " + strings.Join(problems, "; ")
}
