package mutation

// Fixed payload tables. These are read-only constants; generators must
// never mutate them at runtime.

var sqlInjectionPayloads = []string{
	"'; DROP TABLE users; --",
	"1 OR 1=1",
	"' OR '1'='1",
	"1; SELECT * FROM users",
	"' UNION SELECT * FROM users --",
}

var xssPayloads = []string{
	"<script>alert('xss')</script>",
	"<img src=x onerror=alert('xss')>",
	"javascript:alert('xss')",
	"<svg onload=alert('xss')>",
	`'"><script>alert('xss')</script>`,
}

var invalidEmails = []string{
	"notanemail",
	"missing@domain",
	"@nodomain.com",
	"spaces in@email.com",
}

var invalidURLs = []string{
	"not-a-url",
	"http//missing-colon.com",
	"://no-scheme.com",
}

// confusion pairs a wrong-typed substitute value with the label used in
// the generated case name.
type confusion struct {
	value any
	label string
}

// typeConfusion maps a declared field type to substitute values of a
// confounding type. Only the first two entries per type are used.
var typeConfusion = map[string][]confusion{
	"string": {
		{123, "int"},
		{true, "bool"},
		{[]any{}, "list"},
		{map[string]any{}, "object"},
		{nil, "null"},
	},
	"integer": {
		{"abc", "string"},
		{true, "bool"},
		{[]any{}, "list"},
		{map[string]any{}, "object"},
		{nil, "null"},
		{3.14, "float"},
	},
	"number": {
		{"abc", "string"},
		{true, "bool"},
		{[]any{}, "list"},
		{map[string]any{}, "object"},
		{nil, "null"},
	},
	"boolean": {
		{"true", "string"},
		{1, "int"},
		{"yes", "string_yes"},
		{[]any{}, "list"},
		{map[string]any{}, "object"},
	},
	"array": {
		{"string", "string"},
		{123, "int"},
		{true, "bool"},
		{map[string]any{}, "object"},
	},
	"object": {
		{"string", "string"},
		{123, "int"},
		{true, "bool"},
		{[]any{}, "list"},
	},
}
