package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, "http://localhost:8000", c.BaseURL)
	assert.Equal(t, 30000, c.Timeout)
	assert.Equal(t, 400, c.RejectStatus)
	assert.Equal(t, []string{"console"}, c.Reporters)
	assert.True(t, c.GetFollowRedirects())
	assert.True(t, c.GetValidateSSL())
	assert.False(t, c.GetVerbose())
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"baseUrl": "https://api.example.com",
		"timeout": 5000,
		"validateSSL": false,
		"headers": {"X-Api-Key": "k"}
	}`), 0o644))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", c.BaseURL)
	assert.Equal(t, 5000, c.Timeout)
	assert.False(t, c.GetValidateSSL())
	assert.Equal(t, "k", c.Headers["X-Api-Key"])

	// Unspecified fields keep defaults.
	assert.Equal(t, 400, c.RejectStatus)
}

func TestLoadConfig_BadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{broken`), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestFindAndLoadConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".faultline.config.json"),
		[]byte(`{"concurrency": 16}`), 0o644))

	c, err := FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 16, c.Concurrency)
}

func TestFindAndLoadConfig_DefaultsWhenAbsent(t *testing.T) {
	c, err := FindAndLoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Headers = map[string]string{"A": "1"}

	merged := base.Merge(&Config{
		BaseURL:     "https://staging.example.com",
		Concurrency: 8,
		NoColor:     BoolPtr(true),
		Headers:     map[string]string{"B": "2"},
		Reporters:   []string{"json"},
	})

	assert.Equal(t, "https://staging.example.com", merged.BaseURL)
	assert.Equal(t, 8, merged.Concurrency)
	assert.True(t, merged.GetNoColor())
	assert.Equal(t, "1", merged.Headers["A"])
	assert.Equal(t, "2", merged.Headers["B"])
	assert.Equal(t, []string{"json"}, merged.Reporters)

	// Untouched fields survive the merge.
	assert.Equal(t, 30000, merged.Timeout)
}

func TestMerge_DoesNotMutateReceiver(t *testing.T) {
	base := DefaultConfig()
	base.Headers = map[string]string{"A": "1"}

	merged := base.Merge(&Config{Headers: map[string]string{"A": "overridden", "B": "2"}})

	assert.Equal(t, "overridden", merged.Headers["A"])
	assert.Equal(t, map[string]string{"A": "1"}, base.Headers)
}

func TestMerge_NilOther(t *testing.T) {
	base := DefaultConfig()
	assert.Equal(t, base, base.Merge(nil))
}

func TestMerge_BoolNotOverriddenWhenNil(t *testing.T) {
	base := DefaultConfig()
	base.ValidateSSL = BoolPtr(false)

	merged := base.Merge(&Config{Timeout: 100})
	assert.False(t, merged.GetValidateSSL())
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	c := DefaultConfig()
	c.BaseURL = "https://saved.example.com"
	require.NoError(t, c.SaveConfig(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://saved.example.com", loaded.BaseURL)
}
