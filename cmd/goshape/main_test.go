package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/goshape/i18n"
)

const shapeDoc = `
schema:
  union:
    - type: object
      fields:
        type: {literal: 1}
        a: {type: string}
    - type: object
      fields:
        type: {literal: 2}
        b: {type: number}
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestValidate_Valid(t *testing.T) {
	schema := writeFile(t, "schema.yaml", shapeDoc)
	var out, errOut bytes.Buffer
	code := run([]string{"validate", "-schema", schema}, strings.NewReader(`{"type":2,"b":1}`), &out, &errOut)
	require.Equal(t, exitOK, code, errOut.String())

	var res map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, true, res["valid"])
	assert.Equal(t, map[string]any{"type": 2.0, "b": 1.0}, res["value"])
}

func TestValidate_DiscriminatedIssue(t *testing.T) {
	schema := writeFile(t, "schema.yaml", shapeDoc)
	var out, errOut bytes.Buffer
	code := run([]string{"validate", "-schema", schema}, strings.NewReader(`{"type":3}`), &out, &errOut)
	require.Equal(t, exitInvalid, code)

	var res struct {
		Valid  bool `json:"valid"`
		Issues []struct {
			Code     string `json:"code"`
			Path     []any  `json:"path"`
			Expected []any  `json:"expected"`
		} `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "invalid_literal", res.Issues[0].Code)
	assert.Equal(t, []any{"type"}, res.Issues[0].Path)
	assert.Equal(t, []any{1.0, 2.0}, res.Issues[0].Expected)
}

func TestValidate_YAMLInputAndLanguage(t *testing.T) {
	t.Cleanup(func() { i18n.SetLanguage("en") })
	schema := writeFile(t, "schema.yaml", "schema: {type: object, fields: {name: {type: string}}}\n")
	input := writeFile(t, "doc.yaml", "name: 1\n")
	var out, errOut bytes.Buffer
	code := run([]string{"validate", "-schema", schema, "-input", input, "-lang", "ja"}, nil, &out, &errOut)
	require.Equal(t, exitInvalid, code)
	assert.Contains(t, out.String(), "invalid_type")
	assert.NotContains(t, out.String(), "expected string")
}

func TestValidate_DecodeError(t *testing.T) {
	schema := writeFile(t, "schema.yaml", "schema: unknown\n")
	var out, errOut bytes.Buffer
	code := run([]string{"validate", "-schema", schema}, strings.NewReader(`{"a":1,"a":2}`), &out, &errOut)
	assert.Equal(t, exitInvalid, code)
	assert.Contains(t, errOut.String(), "duplicate_key")

	errOut.Reset()
	code = run([]string{"validate", "-schema", schema, "-dup", "warn"}, strings.NewReader(`{"a":1,"a":2}`), &out, &errOut)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, errOut.String(), "input warning")
}

func TestValidate_Dump(t *testing.T) {
	schema := writeFile(t, "schema.yaml", "schema: {type: array, items: number}\n")
	var out, errOut bytes.Buffer
	code := run([]string{"validate", "-schema", schema, "-dump"}, strings.NewReader(`[1,2]`), &out, &errOut)
	require.Equal(t, exitOK, code)
	assert.Contains(t, out.String(), "[]interface {}")
}

func TestJSONSchemaCmd(t *testing.T) {
	schema := writeFile(t, "schema.yaml", shapeDoc)
	var out, errOut bytes.Buffer
	code := run([]string{"jsonschema", "-schema", schema, "-mode", "strict"}, nil, &out, &errOut)
	require.Equal(t, exitOK, code, errOut.String())
	var doc map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	require.Len(t, doc["anyOf"], 2)
	first := doc["anyOf"].([]any)[0].(map[string]any)
	assert.Equal(t, false, first["additionalProperties"])
}

func TestUsageErrors(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.Equal(t, exitUsage, run(nil, nil, &out, &errOut))
	assert.Equal(t, exitUsage, run([]string{"nope"}, nil, &out, &errOut))
	assert.Equal(t, exitUsage, run([]string{"validate"}, nil, &out, &errOut))
	schema := writeFile(t, "schema.yaml", "schema: string\n")
	assert.Equal(t, exitUsage, run([]string{"validate", "-schema", schema, "-mode", "loose"}, nil, &out, &errOut))
}
