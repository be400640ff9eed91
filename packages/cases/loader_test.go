package cases

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faultline/packages/assertions"
)

func writeCaseFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile_SingleCase(t *testing.T) {
	dir := t.TempDir()
	path := writeCaseFile(t, dir, "create.yaml", `
name: create channel
description: create a channel with valid payload
method: post
url: /api/v1/channels
tags: [P1, channels]
json:
  name: general
  capacity: 50
expected_status: 201
assertions:
  - type: equal
    field: success
    expected: true
  - field: results.channel_id
    type: is_not_null
`)

	loader := NewLoader(dir)
	cases, err := loader.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, cases, 1)

	c := cases[0]
	assert.Equal(t, "create channel", c.Name)
	assert.Equal(t, "POST", c.Method)
	assert.Equal(t, 201, c.ExpectedStatus)
	require.Len(t, c.Assertions, 2)
	assert.Equal(t, assertions.KindEqual, c.Assertions[0].Kind)
	assert.Equal(t, assertions.KindIsNotNull, c.Assertions[1].Kind)
}

func TestLoadFile_TestCasesList(t *testing.T) {
	dir := t.TempDir()
	path := writeCaseFile(t, dir, "list.yaml", `
test_cases:
  - name: first
    url: /one
  - name: second
    url: /two
    expected_status: 404
`)

	loader := NewLoader(dir)
	cases, err := loader.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, cases, 2)

	// Defaults apply per case.
	assert.Equal(t, "GET", cases[0].Method)
	assert.Equal(t, 200, cases[0].ExpectedStatus)
	assert.Equal(t, "normal", cases[0].Severity)
	assert.Equal(t, 404, cases[1].ExpectedStatus)
}

func TestLoadFile_SkipsInvalidCases(t *testing.T) {
	dir := t.TempDir()
	path := writeCaseFile(t, dir, "mixed.yaml", `
test_cases:
  - name: valid
    url: /ok
  - description: no name or url
`)

	var warnings bytes.Buffer
	loader := NewLoader(dir, WithWarningOutput(&warnings))
	cases, err := loader.LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, cases, 1)
	assert.Contains(t, warnings.String(), "skipping case")
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeCaseFile(t, dir, "bad.yaml", "{not: valid: yaml: [")

	loader := NewLoader(dir)
	_, err := loader.LoadFile(path)
	assert.Error(t, err)
}

func TestLoadAll_SkipsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	writeCaseFile(t, dir, "a.yaml", "name: a\nurl: /a\n")
	writeCaseFile(t, dir, "b.yaml", "{broken: [")
	writeCaseFile(t, dir, "c.yml", "name: c\nurl: /c\n")
	writeCaseFile(t, dir, "ignored.txt", "not yaml")

	var warnings bytes.Buffer
	loader := NewLoader(dir, WithWarningOutput(&warnings))
	cases, err := loader.LoadAll()
	require.NoError(t, err)
	require.Len(t, cases, 2)

	// Lexical order.
	assert.Equal(t, "a", cases[0].Name)
	assert.Equal(t, "c", cases[1].Name)
	assert.Contains(t, warnings.String(), "b.yaml")
}

func TestLoadByTags(t *testing.T) {
	dir := t.TempDir()
	writeCaseFile(t, dir, "cases.yaml", `
test_cases:
  - name: smoke case
    url: /a
    tags: [smoke]
  - name: regression case
    url: /b
    tags: [regression]
  - name: both
    url: /c
    tags: [smoke, regression]
`)

	loader := NewLoader(dir)
	cases, err := loader.LoadByTags([]string{"smoke"})
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "smoke case", cases[0].Name)
	assert.Equal(t, "both", cases[1].Name)
}

func TestInterpolation_Globals(t *testing.T) {
	dir := t.TempDir()
	path := writeCaseFile(t, dir, "vars.yaml", `
name: with vars
url: ${base_url}/channels
json:
  name: "${channel_name}"
  nested:
    owner: "user ${owner_id}"
`)

	loader := NewLoader(dir, WithGlobals(map[string]any{
		"base_url":     "http://localhost:8000",
		"channel_name": "general",
		"owner_id":     42,
	}))
	cases, err := loader.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, cases, 1)

	c := cases[0]
	assert.Equal(t, "http://localhost:8000/channels", c.URL)
	assert.Equal(t, "general", c.JSON["name"])
	nested := c.JSON["nested"].(map[string]any)
	assert.Equal(t, "user 42", nested["owner"])
}

func TestInterpolation_WholePlaceholderKeepsType(t *testing.T) {
	dir := t.TempDir()
	path := writeCaseFile(t, dir, "typed.yaml", `
name: typed
url: /x
json:
  capacity: "${max_capacity}"
`)

	loader := NewLoader(dir, WithGlobals(map[string]any{"max_capacity": 50}))
	cases, err := loader.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cases[0].JSON["capacity"])
}

func TestInterpolation_CaseVariablesOverrideGlobals(t *testing.T) {
	dir := t.TempDir()
	path := writeCaseFile(t, dir, "override.yaml", `
name: override
url: /x
variables:
  who: local
json:
  who: "${who}"
`)

	loader := NewLoader(dir, WithGlobals(map[string]any{"who": "global"}))
	cases, err := loader.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "local", cases[0].JSON["who"])
}

func TestInterpolation_Env(t *testing.T) {
	t.Setenv("FAULTLINE_TEST_TOKEN", "secret")

	dir := t.TempDir()
	path := writeCaseFile(t, dir, "env.yaml", `
name: env
url: /x
headers:
  Authorization: "Bearer ${env.FAULTLINE_TEST_TOKEN}"
`)

	loader := NewLoader(dir)
	cases, err := loader.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", cases[0].Headers["Authorization"])
}

func TestInterpolation_UnresolvedLeftAsIs(t *testing.T) {
	dir := t.TempDir()
	path := writeCaseFile(t, dir, "unresolved.yaml", `
name: unresolved
url: /x/${nope}
`)

	loader := NewLoader(dir)
	cases, err := loader.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/x/${nope}", cases[0].URL)
}

func TestInterpolation_Builtin(t *testing.T) {
	dir := t.TempDir()
	path := writeCaseFile(t, dir, "builtin.yaml", `
name: builtin
url: /x
json:
  request_id: "${uuid()}"
`)

	loader := NewLoader(dir)
	cases, err := loader.LoadFile(path)
	require.NoError(t, err)

	id, ok := cases[0].JSON["request_id"].(string)
	require.True(t, ok)
	assert.Len(t, id, 36)
}

func TestDBAssertionParsing(t *testing.T) {
	dir := t.TempDir()
	path := writeCaseFile(t, dir, "db.yaml", `
name: persisted
url: /channels
method: POST
db_assertions:
  collection: channels
  match_by: results.channel_id
  match_field: channel_id
  verify:
    - field: name
      expected: general
`)

	loader := NewLoader(dir)
	cases, err := loader.LoadFile(path)
	require.NoError(t, err)

	db := cases[0].DBAssertion
	require.NotNil(t, db)
	assert.Equal(t, "channels", db.Collection)
	assert.Equal(t, "results.channel_id", db.MatchBy)
	require.Len(t, db.Verify, 1)
	assert.Equal(t, assertions.KindEqual, db.Verify[0].Kind)
}

func TestTemplate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "tpl.yaml")
	require.NoError(t, WriteTemplate(path, "my case", "post", "/api/v1/things", "demo", nil))

	loader := NewLoader(dir)
	cases, err := loader.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, "my case", cases[0].Name)
	assert.Equal(t, "POST", cases[0].Method)
	require.Len(t, cases[0].Assertions, 2)
}
