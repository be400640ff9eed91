package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faultline/packages/assertions"
	"faultline/packages/runner"
)

func sampleCampaign() *runner.CampaignResult {
	return &runner.CampaignResult{
		Results: []runner.CaseResult{
			{
				Name:           "passing case",
				StatusCode:     200,
				ExpectedStatus: 200,
				Passed:         true,
				Duration:       12 * time.Millisecond,
			},
			{
				Name:           "failing case",
				StatusCode:     200,
				ExpectedStatus: 400,
				Duration:       8 * time.Millisecond,
				Results: []assertions.Result{{
					Kind:     assertions.KindEqual,
					Field:    "status_code",
					Expected: 400,
					Actual:   200,
					Message:  "expected status 400, got 200",
				}},
			},
			{
				Name:  "broken case",
				Error: "connection refused",
			},
		},
		Total:    3,
		Passed:   1,
		Failed:   1,
		Errors:   1,
		Duration: 20 * time.Millisecond,
	}
}

func TestConsoleFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))
	f.FormatCampaign("channels campaign", sampleCampaign())

	out := buf.String()
	assert.Contains(t, out, "Running: channels campaign")
	assert.Contains(t, out, "✓ passing case")
	assert.Contains(t, out, "✗ failing case")
	assert.Contains(t, out, "x broken case (connection refused)")
	assert.Contains(t, out, "expected status 400, got 200")
	assert.Contains(t, out, "1 passed")
	assert.Contains(t, out, "1 failed")
	assert.Contains(t, out, "1 errors")
	assert.Contains(t, out, "3 total")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))
	f.FormatCampaign("campaign", sampleCampaign())
	require.NoError(t, f.Flush())

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, 3, out.Summary.Total)
	assert.Equal(t, 1, out.Summary.Passed)
	assert.Equal(t, 1, out.Summary.Failed)
	assert.Equal(t, 1, out.Summary.Errors)
	require.Len(t, out.Tests, 3)
	assert.Equal(t, "passing case", out.Tests[0].Name)
}

func TestJSONFormatter_EmptyCampaign(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))
	require.NoError(t, f.Flush())

	assert.Contains(t, buf.String(), `"tests": []`)
}

func TestJUnitFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJUnitFormatter(JUnitWithWriter(&buf))
	f.FormatCampaign("channels campaign", sampleCampaign())
	require.NoError(t, f.Flush())

	out := buf.String()
	assert.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, out, `tests="3"`)
	assert.Contains(t, out, `failures="1"`)
	assert.Contains(t, out, `errors="1"`)
	assert.Contains(t, out, `name="failing case"`)
	assert.Contains(t, out, "AssertionError")
	assert.Contains(t, out, "connection refused")
}

func TestNewFormatter(t *testing.T) {
	var buf bytes.Buffer

	f, err := NewFormatter("console", &buf, false, true)
	require.NoError(t, err)
	assert.IsType(t, &ConsoleFormatter{}, f)

	f, err = NewFormatter("json", &buf, false, true)
	require.NoError(t, err)
	assert.IsType(t, &JSONFormatter{}, f)

	f, err = NewFormatter("junit", &buf, false, true)
	require.NoError(t, err)
	assert.IsType(t, &JUnitFormatter{}, f)

	_, err = NewFormatter("yaml", &buf, false, true)
	assert.Error(t, err)
}
