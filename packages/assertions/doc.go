// Package assertions implements the declarative assertion engine.
//
// Rules address fields inside a response document by dot-and-bracket
// path expressions and apply a named comparison operator. Every failure
// mode, including malformed rules, is reported as a failed Result with a
// diagnostic message; EvaluateAll never returns an error.
package assertions
