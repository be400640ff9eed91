package runner

import (
	"context"
	"fmt"

	"faultline/packages/assertions"
	"faultline/packages/cases"
	"faultline/packages/http"
)

// AssertRecord verifies that the API persisted what it claimed to.
// The match value is pulled out of the response document at MatchBy,
// then the matched stored document is checked against every verify
// rule. A missing match value or absent record short-circuits into a
// single failed result.
func (r *Runner) AssertRecord(ctx context.Context, db *cases.DBAssertion, resp *http.Response) []assertions.Result {
	if r.store == nil {
		return []assertions.Result{{
			Field:   db.Collection,
			Message: "database assertions require a configured store",
		}}
	}

	doc, err := resp.BodyJSON()
	if err != nil {
		return []assertions.Result{{
			Field:   db.MatchBy,
			Message: "response body is not valid JSON",
		}}
	}

	matchValue := assertions.NewEngine(doc).Resolve(db.MatchBy)
	if assertions.IsMissing(matchValue) {
		return []assertions.Result{{
			Field:   db.MatchBy,
			Message: fmt.Sprintf("match_by path %q is missing from the response", db.MatchBy),
		}}
	}

	record, err := r.store.FindOne(ctx, db.Collection, map[string]any{db.MatchField: matchValue})
	if err != nil {
		return []assertions.Result{{
			Field:   db.Collection,
			Message: fmt.Sprintf("store lookup failed: %v", err),
		}}
	}
	if record == nil {
		return []assertions.Result{{
			Field:    db.Collection,
			Expected: matchValue,
			Message: fmt.Sprintf("no %s record with %s=%v",
				db.Collection, db.MatchField, matchValue),
		}}
	}

	return assertions.EvaluateAll(record, db.Verify)
}
