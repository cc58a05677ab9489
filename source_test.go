package goshape_test

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	g "github.com/reoring/goshape"
)

var orderSchema = g.Object(
	g.Field("id", g.String()),
	g.Field("qty", g.Number()),
	g.Field("items", g.Array(g.Object(g.Field("sku", g.String())))),
)

func TestParseFrom_JSON(t *testing.T) {
	ctx := context.Background()
	v, err := g.ParseFrom(ctx, orderSchema, g.JSONBytes([]byte(`{"id":"o1","qty":2,"items":[{"sku":"a"}]}`)))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "o1", "qty": 2.0, "items": []any{map[string]any{"sku": "a"}}}, v)

	_, err = g.ParseFrom(ctx, orderSchema, g.JSONReader(strings.NewReader(`{"id":1,"qty":2,"items":[{}]}`)))
	iss := issuesOf(t, err)
	require.Len(t, iss, 2)
	assert.Equal(t, "/id", iss[0].Path.Pointer())
	assert.Equal(t, "/items/0/sku", iss[1].Path.Pointer())
}

func TestParseFrom_YAML(t *testing.T) {
	doc := "id: o1\nqty: 3\nitems:\n  - sku: a\n  - sku: b\n"
	m, err := g.ParseFromAs[map[string]any](context.Background(), orderSchema, g.YAMLBytes([]byte(doc)))
	require.NoError(t, err)
	assert.Equal(t, 3.0, m["qty"])
	assert.Len(t, m["items"], 2)

	_, err = g.ParseFrom(context.Background(), orderSchema, g.YAMLReader(strings.NewReader("id: [")))
	var de *g.DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "parse_error", de.Code)
}

func TestParseFrom_DecodeErrors(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		src  g.Source
		opt  g.ParseOpt
		code string
		path string
	}{
		{"malformed", g.JSONBytes([]byte(`{"id":`)), g.ParseOpt{}, "parse_error", "/"},
		{"trailing", g.JSONBytes([]byte(`{} {}`)), g.ParseOpt{}, "parse_error", "/"},
		{"duplicate", g.JSONBytes([]byte(`{"id":"a","id":"b"}`)), g.ParseOpt{Strictness: g.Strictness{OnDuplicateKey: g.Error}}, "duplicate_key", "/id"},
		{"depth", g.JSONBytes([]byte(`{"items":[{"sku":"a"}]}`)), g.ParseOpt{MaxDepth: 2}, "max_depth", "/items/0"},
		{"size", g.JSONReader(strings.NewReader(`{"id":"0123456789"}`)), g.ParseOpt{MaxBytes: 10}, "truncated", "/"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := g.ParseFrom(ctx, orderSchema, tc.src, tc.opt)
			var de *g.DecodeError
			require.True(t, errors.As(err, &de), "got %v", err)
			assert.Equal(t, tc.code, de.Code)
			if tc.code != "parse_error" {
				assert.Equal(t, tc.path, de.Path)
			}
			_, isIssues := g.AsIssues(err)
			assert.False(t, isIssues)
		})
	}
}

func TestParseFrom_DuplicateKeyWarning(t *testing.T) {
	var warnings []*g.DecodeError
	opt := g.ParseOpt{
		Strictness: g.Strictness{OnDuplicateKey: g.Warn},
		OnWarning:  func(de *g.DecodeError) { warnings = append(warnings, de) },
	}
	v, err := g.ParseFrom(context.Background(), g.Unknown(), g.JSONBytes([]byte(`{"a":1,"a":2}`)), opt)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 2.0}, v)
	require.Len(t, warnings, 1)
	assert.Equal(t, "duplicate_key", warnings[0].Code)
	assert.Equal(t, "/a", warnings[0].Path)
}

func TestParseFrom_NumberModes(t *testing.T) {
	doc := []byte(`{"n": 12345678901234567890}`)
	v, err := g.ParseFrom(context.Background(), g.Record(g.Number()), g.JSONBytes(doc), g.ParseOpt{NumberMode: g.NumberJSONNumber})
	require.NoError(t, err)
	assert.Equal(t, json.Number("12345678901234567890"), v.(map[string]any)["n"])

	v, err = g.ParseFrom(context.Background(), g.Record(g.BigInt()), g.JSONBytes(doc), g.ParseOpt{NumberMode: g.NumberBigInt})
	require.NoError(t, err)
	want, _ := new(big.Int).SetString("12345678901234567890", 10)
	assert.Zero(t, want.Cmp(v.(map[string]any)["n"].(*big.Int)))
}

func TestParseFrom_ModeIsForwarded(t *testing.T) {
	_, err := g.ParseFrom(context.Background(), g.Object(), g.JSONBytes([]byte(`{"x":1}`)), g.ParseOpt{Mode: g.UnknownStrict})
	iss := issuesOf(t, err)
	assert.Equal(t, g.CodeUnrecognizedKey, iss[0].Code)
}

func TestParseFrom_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.ParseFrom(ctx, g.Unknown(), g.JSONBytes([]byte(`1`)))
	assert.ErrorIs(t, err, context.Canceled)
}
