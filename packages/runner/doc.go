// Package runner executes campaigns of test cases against a live API:
// a bounded worker pool sends each case's request, evaluates the
// declared assertions plus the expected status, and aggregates
// pass/fail counts and latency percentiles.
package runner
