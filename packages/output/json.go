package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"faultline/packages/runner"
)

// JSONOutput is the complete machine-readable report.
type JSONOutput struct {
	Summary  JSONSummary         `json:"summary"`
	Tests    []runner.CaseResult `json:"tests"`
	Latency  JSONLatency         `json:"latency"`
	Duration float64             `json:"duration"`
	Time     string              `json:"time"`
}

type JSONSummary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
	Errors int `json:"errors"`
}

type JSONLatency struct {
	P50Ms  int64 `json:"p50_ms"`
	P95Ms  int64 `json:"p95_ms"`
	P99Ms  int64 `json:"p99_ms"`
	MeanMs int64 `json:"mean_ms"`
}

// JSONFormatter accumulates campaign results and writes one report.
type JSONFormatter struct {
	writer   io.Writer
	tests    []runner.CaseResult
	passed   int
	failed   int
	errors   int
	latency  JSONLatency
	duration time.Duration
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatCampaign(_ string, campaign *runner.CampaignResult) {
	f.tests = append(f.tests, campaign.Results...)
	f.passed += campaign.Passed
	f.failed += campaign.Failed
	f.errors += campaign.Errors
	f.duration += campaign.Duration
	f.latency = JSONLatency{
		P50Ms:  campaign.Summary.P50.Milliseconds(),
		P95Ms:  campaign.Summary.P95.Milliseconds(),
		P99Ms:  campaign.Summary.P99.Milliseconds(),
		MeanMs: campaign.Summary.Mean.Milliseconds(),
	}
}

func (f *JSONFormatter) FormatError(err error) {
	// Errors surface in individual case results
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header for JSON output
}

// Flush writes the accumulated report.
func (f *JSONFormatter) Flush() error {
	output := JSONOutput{
		Summary: JSONSummary{
			Total:  len(f.tests),
			Passed: f.passed,
			Failed: f.failed,
			Errors: f.errors,
		},
		Tests:    f.tests,
		Latency:  f.latency,
		Duration: float64(f.duration.Milliseconds()),
		Time:     time.Now().Format(time.RFC3339),
	}
	if output.Tests == nil {
		output.Tests = []runner.CaseResult{}
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
