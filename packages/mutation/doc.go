// Package mutation generates single-fault negative test cases from a
// field schema and one valid example payload.
//
// Each generated case is a deep copy of the valid example with exactly
// one field removed or replaced, so a failing case always implicates a
// single field. Generation is deterministic: the same schema and example
// always produce the same set of case names.
package mutation
