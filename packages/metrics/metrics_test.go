package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollectorRecord(t *testing.T) {
	c := NewCollector()
	c.Start()

	c.Record(100*time.Millisecond, true, nil)
	c.Record(150*time.Millisecond, true, nil)
	c.Record(200*time.Millisecond, false, nil)
	c.Record(50*time.Millisecond, false, errors.New("connection refused"))

	c.Stop()

	s := c.Summarize()
	assert.Equal(t, int64(4), s.Total)
	assert.Equal(t, int64(2), s.Passed)
	assert.Equal(t, int64(1), s.Failed)
	assert.Equal(t, int64(1), s.Errors)
	assert.InDelta(t, 0.5, s.PassRate, 0.001)
	assert.Greater(t, s.Duration, time.Duration(0))
}

func TestCollectorPercentiles(t *testing.T) {
	c := NewCollector()
	c.Start()

	for i := 1; i <= 100; i++ {
		c.Record(time.Duration(i)*time.Millisecond, true, nil)
	}
	c.Stop()

	s := c.Summarize()
	assert.InDelta(t, 50, s.P50.Milliseconds(), 2)
	assert.InDelta(t, 95, s.P95.Milliseconds(), 2)
	assert.InDelta(t, 99, s.P99.Milliseconds(), 2)
	assert.LessOrEqual(t, s.Min, s.P50)
	assert.GreaterOrEqual(t, s.Max, s.P99)
}

func TestCollectorEmpty(t *testing.T) {
	c := NewCollector()

	s := c.Summarize()
	assert.Equal(t, int64(0), s.Total)
	assert.Equal(t, 0.0, s.PassRate)
	assert.Equal(t, time.Duration(0), s.P50)
}

func TestCollectorClampsOutOfRangeLatency(t *testing.T) {
	c := NewCollector()
	c.Start()

	c.Record(0, true, nil)
	c.Record(2*time.Minute, true, nil)
	c.Stop()

	s := c.Summarize()
	assert.Equal(t, int64(2), s.Total)
	assert.LessOrEqual(t, s.Max, 61*time.Second)
}
