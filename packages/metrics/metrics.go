// Package metrics aggregates latency and outcome counters for a
// campaign run.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

// Collector accumulates per-case outcomes during a campaign. Safe for
// concurrent use by worker goroutines.
type Collector struct {
	mu sync.RWMutex

	total  atomic.Int64
	passed atomic.Int64
	failed atomic.Int64
	errors atomic.Int64

	// Latency histogram in microseconds for precision
	histogram *hdrhistogram.Histogram

	startTime time.Time
	endTime   time.Time
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		// 1us to 60s range, 3 significant digits
		histogram: hdrhistogram.New(minLatencyUs, maxLatencyUs, 3),
	}
}

// Start marks the beginning of the campaign.
func (c *Collector) Start() {
	c.startTime = time.Now()
}

// Stop marks the end of the campaign.
func (c *Collector) Stop() {
	c.endTime = time.Now()
}

// Record adds one case outcome. A case is an error when the request
// never produced a response; otherwise it passed or failed on its
// assertions.
func (c *Collector) Record(duration time.Duration, passed bool, err error) {
	c.total.Add(1)
	switch {
	case err != nil:
		c.errors.Add(1)
	case passed:
		c.passed.Add(1)
	default:
		c.failed.Add(1)
	}

	latencyUs := duration.Microseconds()
	if latencyUs < minLatencyUs {
		latencyUs = minLatencyUs
	}
	if latencyUs > maxLatencyUs {
		latencyUs = maxLatencyUs
	}

	c.mu.Lock()
	_ = c.histogram.RecordValue(latencyUs)
	c.mu.Unlock()
}

// Summary is the aggregate view of a finished campaign.
type Summary struct {
	Duration time.Duration
	Total    int64
	Passed   int64
	Failed   int64
	Errors   int64

	RPS      float64
	PassRate float64

	P50  time.Duration
	P95  time.Duration
	P99  time.Duration
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
}

// Summarize computes the final summary. Call after Stop; when the
// collector was never stopped the summary covers elapsed time so far.
func (c *Collector) Summarize() Summary {
	end := c.endTime
	if end.IsZero() {
		end = time.Now()
	}

	s := Summary{
		Total:  c.total.Load(),
		Passed: c.passed.Load(),
		Failed: c.failed.Load(),
		Errors: c.errors.Load(),
	}
	if !c.startTime.IsZero() {
		s.Duration = end.Sub(c.startTime)
	}

	if s.Duration > 0 {
		s.RPS = float64(s.Total) / s.Duration.Seconds()
	}
	if s.Total > 0 {
		s.PassRate = float64(s.Passed) / float64(s.Total)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.histogram.TotalCount() > 0 {
		s.P50 = time.Duration(c.histogram.ValueAtQuantile(50)) * time.Microsecond
		s.P95 = time.Duration(c.histogram.ValueAtQuantile(95)) * time.Microsecond
		s.P99 = time.Duration(c.histogram.ValueAtQuantile(99)) * time.Microsecond
		s.Min = time.Duration(c.histogram.Min()) * time.Microsecond
		s.Max = time.Duration(c.histogram.Max()) * time.Microsecond
		s.Mean = time.Duration(c.histogram.Mean()) * time.Microsecond
	}
	return s
}
