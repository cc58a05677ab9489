package goshape

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reoring/goshape/internal/issuetree"
)

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b *Node
		want bool
	}{
		{"unknown-string", Unknown(), String(), true},
		{"unknown-nothing", Unknown(), Nothing(), false},
		{"nothing-nothing", Nothing(), Nothing(), true},
		{"nothing-optional", Nothing(), Number().Optional(), true},
		{"nothing-string", Nothing(), String(), false},
		{"number-number", Number(), Number(), true},
		{"number-string", Number(), String(), false},
		{"literal-base", Literal(1), Number(), true},
		{"literal-other-base", Literal(1), String(), false},
		{"literal-equal", Literal("a"), Literal("a"), true},
		{"literal-different", Literal("a"), Literal("b"), false},
		{"bigint-literal-number", Literal(big.NewInt(1)), Literal(1), false},
		{"union-pair", Union(Literal("a"), Boolean()), Union(Number(), Boolean()), true},
		{"union-disjoint", Union(Literal("a"), Null()), Union(Number(), Literal("b")), false},
		{"wrapped", String().Assert(func(any) bool { return true }), String(), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, b := shapeOf(tc.a), shapeOf(tc.b)
			assert.Equal(t, tc.want, overlaps(a, b))
			assert.Equal(t, tc.want, overlaps(b, a))
		})
	}
}

func TestShapeAt(t *testing.T) {
	n := Object(
		Field("kind", Literal("a")),
		Field("list", Array(String())),
	).Rest(Number())

	assert.Equal(t, []any{"a"}, shapeAt(n, []any{"kind"}, UnknownPassthrough).literals)
	assert.True(t, shapeAt(n, []any{"list", 0}, UnknownPassthrough).tags.has(TagString))
	assert.True(t, shapeAt(n, []any{"other"}, UnknownStrict).tags.has(TagNumber))

	closed := Object(Field("kind", Literal("a")))
	assert.True(t, shapeAt(closed, []any{"other"}, UnknownPassthrough).unknown)
	assert.True(t, shapeAt(closed, []any{"other"}, UnknownStrict).empty())
}

func TestCommonKeys(t *testing.T) {
	a := Object(Field("type", Literal(1)), Field("x", String()), Field("y", String()))
	b := Object(Field("y", Number()), Field("type", Literal(2)))
	c := Union(Object(Field("type", Literal(3)), Field("y", Null())), Object(Field("type", Literal(4)), Field("y", Null())))
	assert.Equal(t, []string{"type", "y"}, commonKeys([]*Node{a, b, c}))
	assert.Nil(t, commonKeys([]*Node{a, String()}))
}

func TestSameValue(t *testing.T) {
	m := map[string]any{"a": 1}
	s := []any{1, 2}
	assert.True(t, sameValue(m, m))
	assert.False(t, sameValue(m, map[string]any{"a": 1}))
	assert.True(t, sameValue(s, s))
	assert.False(t, sameValue(s, []any{1, 2}))
	assert.True(t, sameValue(math.NaN(), math.NaN()))
	assert.True(t, sameValue(Missing, Missing))
	assert.True(t, sameValue(nil, nil))
	assert.False(t, sameValue(nil, Missing))
	assert.False(t, sameValue(1, 1.0))
	type holder struct{ v any }
	assert.False(t, sameValue(holder{v: []any{}}, holder{v: []any{}}))
}

func TestSynthesize(t *testing.T) {
	shapes := []shape{shapeOf(Literal("a")), shapeOf(Number())}
	lit, _ := issuetree.First(synthesize(shapes, "b"))
	assert.Equal(t, CodeInvalidLiteral, lit.Value.code)
	typ, _ := issuetree.First(synthesize(shapes, true))
	assert.Equal(t, CodeInvalidType, typ.Value.code)
	assert.Equal(t, []any{"number", "string"}, typ.Value.expected)
}
