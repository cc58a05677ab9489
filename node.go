package goshape

import (
	"fmt"
	"strings"
)

// Kind enumerates the closed set of validator variants.
type Kind int

const (
	KindUnknown Kind = iota
	KindNothing
	KindUndefined
	KindNull
	KindBoolean
	KindNumber
	KindBigInt
	KindString
	KindLiteral
	KindObject
	KindArray
	KindUnion
	KindAssert
	KindApply
	KindChain
	KindOptional
)

var kindNames = [...]string{
	KindUnknown:   "unknown",
	KindNothing:   "nothing",
	KindUndefined: "undefined",
	KindNull:      "null",
	KindBoolean:   "boolean",
	KindNumber:    "number",
	KindBigInt:    "bigint",
	KindString:    "string",
	KindLiteral:   "literal",
	KindObject:    "object",
	KindArray:     "array",
	KindUnion:     "union",
	KindAssert:    "assert",
	KindApply:     "apply",
	KindChain:     "chain",
	KindOptional:  "optional",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Node is an immutable validator. Nodes are built once with the
// constructors in this package and may be shared freely between parents and
// goroutines; no method mutates a Node after construction.
type Node struct {
	kind Kind

	// Literal
	literal any

	// Object
	fields   []FieldDef
	fieldIdx map[string]int
	rest     *Node

	// Array item, or the wrapped node of Assert/Apply/Chain/Optional.
	inner *Node

	// Union, after identity dedup.
	branches []*Node
	shapes   []shape

	// Wrappers
	pred    func(any) bool
	errSpec *CustomError
	apply   func(any) any
	chain   func(any) Result
}

// FieldDef is one declared object field.
type FieldDef struct {
	Name string
	Node *Node
}

// Field declares an object field. A field whose node accepts a missing value
// (see Optional) may be absent from the input.
func Field(name string, n *Node) FieldDef {
	if n == nil {
		panic("goshape: nil node for field " + name)
	}
	return FieldDef{Name: name, Node: n}
}

// Kind reports the variant of n.
func (n *Node) Kind() Kind { return n.kind }

// Fields returns a copy of the declared object fields in declaration order.
func (n *Node) Fields() []FieldDef {
	out := make([]FieldDef, len(n.fields))
	copy(out, n.fields)
	return out
}

// RestNode returns the validator applied to undeclared object keys, if any.
func (n *Node) RestNode() *Node { return n.rest }

// Item returns the element validator of an array node.
func (n *Node) Item() *Node {
	if n.kind != KindArray {
		return nil
	}
	return n.inner
}

// Inner returns the node wrapped by Assert, Apply, Chain or Optional.
func (n *Node) Inner() *Node {
	switch n.kind {
	case KindAssert, KindApply, KindChain, KindOptional:
		return n.inner
	}
	return nil
}

// Branches returns a copy of the union branches, duplicates removed.
func (n *Node) Branches() []*Node {
	out := make([]*Node, len(n.branches))
	copy(out, n.branches)
	return out
}

// LiteralValue returns the canonical literal value of a literal node.
func (n *Node) LiteralValue() any { return n.literal }

func (n *Node) field(name string) (*Node, bool) {
	i, ok := n.fieldIdx[name]
	if !ok {
		return nil, false
	}
	return n.fields[i].Node, true
}

// acceptsMissing reports whether n succeeds on an absent value.
func (n *Node) acceptsMissing() bool {
	switch n.kind {
	case KindOptional:
		return true
	case KindAssert, KindApply, KindChain:
		return n.inner.acceptsMissing()
	case KindUnion:
		for _, b := range n.branches {
			if b.acceptsMissing() {
				return true
			}
		}
	}
	return false
}

// String renders a compact description such as
// "object{id: string, tags?: array<string>}".
func (n *Node) String() string {
	var b strings.Builder
	n.describe(&b)
	return b.String()
}

func (n *Node) describe(b *strings.Builder) {
	switch n.kind {
	case KindLiteral:
		b.WriteString(formatLiteral(n.literal))
	case KindObject:
		b.WriteString("object{")
		for i, f := range n.fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name)
			if f.Node.acceptsMissing() {
				b.WriteByte('?')
			}
			b.WriteString(": ")
			f.Node.describe(b)
		}
		if n.rest != nil {
			if len(n.fields) > 0 {
				b.WriteString(", ")
			}
			b.WriteString("...: ")
			n.rest.describe(b)
		}
		b.WriteByte('}')
	case KindArray:
		b.WriteString("array<")
		n.inner.describe(b)
		b.WriteByte('>')
	case KindUnion:
		for i, br := range n.branches {
			if i > 0 {
				b.WriteString(" | ")
			}
			br.describe(b)
		}
	case KindAssert, KindApply, KindChain:
		n.inner.describe(b)
	case KindOptional:
		n.inner.describe(b)
		b.WriteString(" | undefined")
	default:
		b.WriteString(n.kind.String())
	}
}
