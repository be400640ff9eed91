package runner

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"faultline/packages/assertions"
	"faultline/packages/cases"
	"faultline/packages/http"
	"faultline/packages/metrics"
	"faultline/packages/mutation"
	"faultline/packages/store"
)

// DefaultConcurrency bounds the worker pool when no explicit
// concurrency is configured.
const DefaultConcurrency = 4

// Runner executes a campaign of test cases against a live API.
type Runner struct {
	client      *http.Client
	baseURL     string
	store       *store.Store
	concurrency int
	limiter     *rate.Limiter
}

type Option func(*Runner)

// WithClient replaces the default HTTP client.
func WithClient(c *http.Client) Option {
	return func(r *Runner) {
		r.client = c
	}
}

// WithConcurrency bounds how many cases run at once.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithRateLimit caps outgoing requests per second across all workers.
func WithRateLimit(rps float64) Option {
	return func(r *Runner) {
		if rps > 0 {
			r.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithStore enables database assertions against the given document
// store.
func WithStore(s *store.Store) Option {
	return func(r *Runner) {
		r.store = s
	}
}

func NewRunner(baseURL string, opts ...Option) *Runner {
	r := &Runner{
		client:      http.NewClient(),
		baseURL:     strings.TrimRight(baseURL, "/"),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CaseResult is the outcome of one executed case.
type CaseResult struct {
	Name           string              `json:"name"`
	Strategy       string              `json:"strategy,omitempty"`
	StatusCode     int                 `json:"status_code,omitempty"`
	ExpectedStatus int                 `json:"expected_status"`
	Results        []assertions.Result `json:"results,omitempty"`
	DBResults      []assertions.Result `json:"db_results,omitempty"`
	Passed         bool                `json:"passed"`
	Error          string              `json:"error,omitempty"`
	Duration       time.Duration       `json:"duration"`
}

// CampaignResult aggregates a whole run.
type CampaignResult struct {
	Results  []CaseResult    `json:"results"`
	Total    int             `json:"total"`
	Passed   int             `json:"passed"`
	Failed   int             `json:"failed"`
	Errors   int             `json:"errors"`
	Duration time.Duration   `json:"duration"`
	Summary  metrics.Summary `json:"-"`
}

// RunCases executes loaded YAML cases. Cases are independent: one
// failing or erroring never stops the others.
func (r *Runner) RunCases(ctx context.Context, list []cases.Case) *CampaignResult {
	collector := metrics.NewCollector()
	collector.Start()

	results := make([]CaseResult, len(list))
	var wg sync.WaitGroup
	sem := make(chan struct{}, r.concurrency)

	for i := range list {
		wg.Add(1)
		sem <- struct{}{} // acquire semaphore

		go func(idx int, c cases.Case) {
			defer wg.Done()
			defer func() { <-sem }() // release semaphore

			res := r.runCase(ctx, c)
			collector.Record(res.Duration, res.Passed, errFromResult(res))
			results[idx] = res
		}(i, list[i])
	}

	wg.Wait()
	collector.Stop()
	return aggregate(results, collector)
}

// RunMutations executes generated mutation cases against one endpoint.
func (r *Runner) RunMutations(ctx context.Context, method, path string, list []mutation.Case) *CampaignResult {
	converted := make([]cases.Case, len(list))
	for i, m := range list {
		converted[i] = MutationCase(method, path, m)
	}
	result := r.RunCases(ctx, converted)
	for i := range result.Results {
		result.Results[i].Strategy = list[i].Strategy
	}
	return result
}

// MutationCase derives a runnable case from a generated mutation: the
// perturbed payload plus assertion rules on the expected outcome.
func MutationCase(method, path string, m mutation.Case) cases.Case {
	c := cases.Case{
		Name:           m.Name,
		Description:    m.Description,
		Method:         method,
		URL:            path,
		JSON:           m.Payload,
		ExpectedStatus: m.ExpectedStatus,
	}
	if m.ExpectedError != "" {
		c.Assertions = []assertions.Rule{{
			Kind:        assertions.KindContains,
			Expected:    m.ExpectedError,
			Description: "error response names the violation",
		}}
	}
	return c
}

func (r *Runner) runCase(ctx context.Context, c cases.Case) CaseResult {
	result := CaseResult{
		Name:           c.Name,
		ExpectedStatus: c.ExpectedStatus,
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			result.Error = err.Error()
			return result
		}
	}

	req, err := r.buildRequest(c)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	start := time.Now()
	resp, err := r.client.Do(ctx, req)
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.StatusCode = resp.StatusCode
	result.Results = evaluateResponse(c, resp)

	if c.DBAssertion != nil {
		result.DBResults = r.AssertRecord(ctx, c.DBAssertion, resp)
	}

	result.Passed = assertions.AllPassed(result.Results) && assertions.AllPassed(result.DBResults)
	return result
}

// evaluateResponse derives the full rule outcome for one response: the
// status check, then each declared assertion against the JSON body.
// Rules with an empty field are matched as substrings of the raw body.
func evaluateResponse(c cases.Case, resp *http.Response) []assertions.Result {
	results := []assertions.Result{statusResult(c.ExpectedStatus, resp.StatusCode)}

	var bodyRules []assertions.Rule
	for _, rule := range c.Assertions {
		if rule.Field == "" && rule.Kind == assertions.KindContains {
			results = append(results, bodyContainsResult(rule, resp.BodyString()))
			continue
		}
		bodyRules = append(bodyRules, rule)
	}

	if len(bodyRules) > 0 {
		doc, err := resp.BodyJSON()
		if err != nil {
			for _, rule := range bodyRules {
				results = append(results, assertions.Result{
					Kind:     rule.Kind,
					Field:    rule.Field,
					Expected: rule.Expected,
					Message:  "response body is not valid JSON",
				})
			}
			return results
		}
		results = append(results, assertions.EvaluateAll(doc, bodyRules)...)
	}

	return results
}

func statusResult(expected, actual int) assertions.Result {
	r := assertions.Result{
		Kind:     assertions.KindEqual,
		Field:    "status_code",
		Expected: expected,
		Actual:   actual,
		Passed:   expected == actual,
	}
	if !r.Passed {
		r.Message = fmt.Sprintf("expected status %d, got %d", expected, actual)
	}
	return r
}

func bodyContainsResult(rule assertions.Rule, body string) assertions.Result {
	expected := fmt.Sprint(rule.Expected)
	r := assertions.Result{
		Kind:     rule.Kind,
		Expected: rule.Expected,
		Actual:   body,
		Passed:   strings.Contains(strings.ToLower(body), strings.ToLower(expected)),
	}
	if !r.Passed {
		r.Message = fmt.Sprintf("response body does not contain %q", expected)
	}
	return r
}

func (r *Runner) buildRequest(c cases.Case) (*http.Request, error) {
	target := c.URL
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = r.baseURL + "/" + strings.TrimLeft(target, "/")
	}

	if len(c.Params) > 0 {
		query := url.Values{}
		for k, v := range c.Params {
			query.Set(k, fmt.Sprint(v))
		}
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + query.Encode()
	}

	var req *http.Request
	if c.JSON != nil {
		var err error
		req, err = http.NewJSONRequest(c.Method, target, c.JSON)
		if err != nil {
			return nil, err
		}
	} else {
		req = &http.Request{Method: c.Method, URL: target, Headers: map[string]string{}}
	}

	for k, v := range c.Headers {
		req.Headers[k] = v
	}
	return req, nil
}

func errFromResult(res CaseResult) error {
	if res.Error != "" {
		return fmt.Errorf("%s", res.Error)
	}
	return nil
}

func aggregate(results []CaseResult, collector *metrics.Collector) *CampaignResult {
	summary := collector.Summarize()
	campaign := &CampaignResult{
		Results:  results,
		Total:    len(results),
		Duration: summary.Duration,
		Summary:  summary,
	}
	for _, res := range results {
		switch {
		case res.Error != "":
			campaign.Errors++
		case res.Passed:
			campaign.Passed++
		default:
			campaign.Failed++
		}
	}
	return campaign
}
