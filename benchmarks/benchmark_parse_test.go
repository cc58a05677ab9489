package goshape_test

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"testing"

	g "github.com/reoring/goshape"
)

// ---- Helpers ----

func smallUserSchema() *g.Node {
	return g.Object(
		g.Field("id", g.String()),
		g.Field("name", g.String().Optional()),
	)
}

func smallUserJSON() []byte {
	return []byte(`{"id":"u_1","name":"alice"}`)
}

// generateHugeJSONArray returns a JSON array of objects of the form:
// [{"id":"obj_0","name":"n0","age":0,"active":true,"meta":{"score":0},"k0":"v0",...}, ...]
func generateHugeJSONArray(numObjects int, extraFields int) []byte {
	var buf bytes.Buffer
	buf.Grow(numObjects * (64 + extraFields*16))
	buf.WriteByte('[')
	for i := 0; i < numObjects; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		fmt.Fprintf(&buf, "\"id\":\"obj_%d\",", i)
		fmt.Fprintf(&buf, "\"name\":\"n%d\",", i)
		fmt.Fprintf(&buf, "\"age\":%d,", i)
		if i%2 == 0 {
			buf.WriteString("\"active\":true,")
		} else {
			buf.WriteString("\"active\":false,")
		}
		fmt.Fprintf(&buf, "\"meta\":{\"score\":%d}", i)
		for k := 0; k < extraFields; k++ {
			buf.WriteString(",\"k")
			buf.WriteString(strconv.Itoa(k))
			buf.WriteString("\":\"v")
			buf.WriteString(strconv.Itoa(i))
			buf.WriteString("\"")
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

func hugeItemSchema() *g.Node {
	return g.Object(
		g.Field("id", g.String()),
		g.Field("age", g.Number()),
		g.Field("active", g.Boolean()),
		g.Field("meta", g.Object(g.Field("score", g.Number()))),
	)
}

// kindUnion discriminates on a literal field with many branches.
func kindUnion(n int) *g.Node {
	branches := make([]*g.Node, n)
	for i := range branches {
		branches[i] = g.Object(
			g.Field("kind", g.Literal("k"+strconv.Itoa(i))),
			g.Field("value", g.Number()),
		)
	}
	return g.Union(branches...)
}

// ---- Benchmarks ----

func Benchmark_ParseFrom_SmallUser(b *testing.B) {
	for _, mode := range []g.UnknownPolicy{g.UnknownPassthrough, g.UnknownStrip, g.UnknownStrict} {
		b.Run(mode.String(), func(b *testing.B) {
			ctx := context.Background()
			s := smallUserSchema()
			data := smallUserJSON()
			opt := g.ParseOpt{Mode: mode}
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := g.ParseFrom(ctx, s, g.JSONBytes(data), opt); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func Benchmark_ParseFrom_HugeArray(b *testing.B) {
	ctx := context.Background()
	s := g.Array(hugeItemSchema())
	data := generateHugeJSONArray(1000, 8)
	for _, mode := range []g.UnknownPolicy{g.UnknownPassthrough, g.UnknownStrip} {
		b.Run(mode.String(), func(b *testing.B) {
			opt := g.ParseOpt{Mode: mode}
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := g.ParseFrom(ctx, s, g.JSONBytes(data), opt); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// Parse alone, excluding decoding, on an already materialized value.
func Benchmark_Parse_Value(b *testing.B) {
	s := g.Array(hugeItemSchema())
	v, err := g.ParseFrom(context.Background(), g.Unknown(), g.JSONBytes(generateHugeJSONArray(1000, 8)))
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Parse(v); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Union_Discriminate(b *testing.B) {
	u := kindUnion(32)
	hit := map[string]any{"kind": "k31", "value": 1.0}
	miss := map[string]any{"kind": "nope", "value": 1.0}
	b.Run("last-branch", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, err := u.Parse(hit); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("failure", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, err := u.Parse(miss); err == nil {
				b.Fatal("expected failure")
			}
		}
	})
}

func Benchmark_Issues_Flatten(b *testing.B) {
	s := g.Array(g.String())
	in := make([]any, 1000)
	for i := range in {
		in[i] = float64(i)
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, err := s.Parse(in)
		iss, _ := g.AsIssues(err)
		if len(iss) != len(in) {
			b.Fatalf("issues: %d", len(iss))
		}
	}
}
