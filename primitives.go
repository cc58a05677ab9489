package goshape

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"

	json "github.com/goccy/go-json"
)

type missing struct{}

func (missing) String() string { return "undefined" }

// Missing is the value observed for an absent object key. Undefined accepts
// exactly this value, and Optional treats it as "not provided".
var Missing any = missing{}

// Tag is the runtime base type of a value.
type Tag string

const (
	TagUndefined Tag = "undefined"
	TagNull      Tag = "null"
	TagBoolean   Tag = "boolean"
	TagNumber    Tag = "number"
	TagBigInt    Tag = "bigint"
	TagString    Tag = "string"
	TagObject    Tag = "object"
	TagArray     Tag = "array"
	TagUnknown   Tag = "unknown" // Any other Go value.
)

// tagSet is a bitset over the base tags, in canonical order.
type tagSet uint16

var tagOrder = [...]Tag{TagUndefined, TagNull, TagBoolean, TagNumber, TagBigInt, TagString, TagObject, TagArray}

func tagBit(t Tag) tagSet {
	for i, o := range tagOrder {
		if o == t {
			return 1 << i
		}
	}
	return 0
}

func (s tagSet) has(t Tag) bool { return s&tagBit(t) != 0 }

func (s tagSet) list() []any {
	var out []any
	for i, t := range tagOrder {
		if s&(1<<i) != 0 {
			out = append(out, string(t))
		}
	}
	return out
}

// TagOf classifies a runtime value.
func TagOf(v any) Tag {
	switch v.(type) {
	case missing:
		return TagUndefined
	case nil:
		return TagNull
	case bool:
		return TagBoolean
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, json.Number:
		return TagNumber
	case *big.Int:
		return TagBigInt
	case string:
		return TagString
	case map[string]any:
		return TagObject
	case []any:
		return TagArray
	}
	return TagUnknown
}

func primitive(k Kind) *Node { return &Node{kind: k} }

// Unknown accepts any value, including Missing.
func Unknown() *Node { return primitive(KindUnknown) }

// Nothing accepts no value. Combined with Optional it marks a key that must
// be absent.
func Nothing() *Node { return primitive(KindNothing) }

// Undefined accepts only Missing.
func Undefined() *Node { return primitive(KindUndefined) }

// Null accepts nil.
func Null() *Node { return primitive(KindNull) }

// Boolean accepts bool.
func Boolean() *Node { return primitive(KindBoolean) }

// Number accepts Go integer and float kinds and json.Number.
func Number() *Node { return primitive(KindNumber) }

// BigInt accepts *big.Int.
func BigInt() *Node { return primitive(KindBigInt) }

// String accepts string.
func String() *Node { return primitive(KindString) }

func primitiveTag(k Kind) Tag {
	switch k {
	case KindUndefined:
		return TagUndefined
	case KindNull:
		return TagNull
	case KindBoolean:
		return TagBoolean
	case KindNumber:
		return TagNumber
	case KindBigInt:
		return TagBigInt
	case KindString:
		return TagString
	}
	return TagUnknown
}

// maxSafeInteger is the largest integer a float64 represents exactly in a
// contiguous range.
const maxSafeInteger = 1<<53 - 1

// ErrInvalidLiteral reports a literal value of an unsupported kind.
var ErrInvalidLiteral = errors.New("goshape: literal must be a string, bool, *big.Int or an integer within ±2^53")

// NewLiteral builds a node accepting exactly v.
func NewLiteral(v any) (*Node, error) {
	c, err := canonicalLiteral(v)
	if err != nil {
		return nil, err
	}
	return &Node{kind: KindLiteral, literal: c}, nil
}

// Literal is like NewLiteral but panics on an unsupported value.
func Literal(v any) *Node {
	n, err := NewLiteral(v)
	if err != nil {
		panic(err)
	}
	return n
}

func canonicalLiteral(v any) (any, error) {
	switch x := v.(type) {
	case string, bool:
		return x, nil
	case *big.Int:
		if x == nil {
			return nil, ErrInvalidLiteral
		}
		return new(big.Int).Set(x), nil
	}
	f, ok := numberValue(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > maxSafeInteger {
		return nil, fmt.Errorf("%w: got %T(%v)", ErrInvalidLiteral, v, v)
	}
	return f, nil
}

// numberValue converts any number-tagged value to float64.
func numberValue(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := strconv.ParseFloat(string(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// literalTag is the base tag of a canonical literal.
func literalTag(lit any) Tag {
	switch lit.(type) {
	case string:
		return TagString
	case bool:
		return TagBoolean
	case *big.Int:
		return TagBigInt
	}
	return TagNumber
}

// literalMatches compares an input value with a canonical literal.
func literalMatches(lit, v any) bool {
	switch l := lit.(type) {
	case string:
		s, ok := v.(string)
		return ok && s == l
	case bool:
		b, ok := v.(bool)
		return ok && b == l
	case *big.Int:
		b, ok := v.(*big.Int)
		return ok && b != nil && b.Cmp(l) == 0
	case float64:
		f, ok := numberValue(v)
		return ok && f == l
	}
	return false
}

func formatLiteral(lit any) string {
	switch l := lit.(type) {
	case string:
		return strconv.Quote(l)
	case float64:
		return strconv.FormatFloat(l, 'f', -1, 64)
	case *big.Int:
		return l.String() + "n"
	}
	return fmt.Sprint(lit)
}

// sameValue reports whether b is the very same value as a: containers by
// backing storage, scalars by equality.
func sameValue(a, b any) bool {
	switch x := a.(type) {
	case map[string]any:
		y, ok := b.(map[string]any)
		return ok && reflect.ValueOf(x).UnsafePointer() == reflect.ValueOf(y).UnsafePointer()
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		return len(x) == 0 && (x == nil) == (y == nil) || len(x) > 0 && &x[0] == &y[0]
	case float64:
		y, ok := b.(float64)
		return ok && (x == y || math.IsNaN(x) && math.IsNaN(y))
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if !ta.Comparable() {
		if ta.Kind() == reflect.Func || ta.Kind() == reflect.Map || ta.Kind() == reflect.Slice {
			return reflect.ValueOf(a).UnsafePointer() == reflect.ValueOf(b).UnsafePointer()
		}
		return false
	}
	return comparableEqual(a, b)
}

// comparableEqual is a == b for dynamically comparable values; structs
// holding uncomparable interface values report false instead of panicking.
func comparableEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
