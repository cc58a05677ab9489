// Package jsonschema exports goshape validators as JSON Schema documents.
//
// Predicates and transforms (Assert, Apply, Chain) have no JSON Schema
// counterpart; they export as their inner schema.
package jsonschema

import (
	"errors"

	json "github.com/goccy/go-json"

	goshape "github.com/reoring/goshape"
)

// Draft is the dialect written to "$schema" by Document.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Schema is a minimal JSON Schema representation used for export.
type Schema struct {
	Dialect string `json:"$schema,omitempty"`

	// Core
	Type  string  `json:"type,omitempty"`
	Const any     `json:"const,omitempty"`
	Enum  []any   `json:"enum,omitempty"`
	Not   *Schema `json:"not,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items *Schema `json:"items,omitempty"`

	// Union
	AnyOf []*Schema `json:"anyOf,omitempty"`

	// hasConst distinguishes a falsy const from no const at all.
	hasConst bool
}

// MarshalJSON keeps falsy literals such as null, false, 0 and "" in
// "const", which omitempty would otherwise drop.
func (s *Schema) MarshalJSON() ([]byte, error) {
	type plain Schema
	if s.hasConst {
		return json.Marshal(struct {
			*plain
			Const any `json:"const"`
		}{plain: (*plain)(s), Const: s.Const})
	}
	return json.Marshal((*plain)(s))
}

// Options tunes the export.
type Options struct {
	// Mode is the unknown-key policy the validator will run under. Strict
	// objects without a rest validator export additionalProperties: false.
	Mode goshape.UnknownPolicy
}

// ErrNilNode is returned when FromNode is given a nil validator.
var ErrNilNode = errors.New("jsonschema: nil node")

// FromNode converts n into a Schema.
func FromNode(n *goshape.Node, opts ...Options) (*Schema, error) {
	if n == nil {
		return nil, ErrNilNode
	}
	var o Options
	if len(opts) > 0 {
		o = opts[len(opts)-1]
	}
	return o.convert(n), nil
}

// Document converts n and stamps the draft dialect.
func Document(n *goshape.Node, opts ...Options) (*Schema, error) {
	s, err := FromNode(n, opts...)
	if err != nil {
		return nil, err
	}
	s.Dialect = Draft
	return s, nil
}

// Marshal renders n as indented JSON Schema.
func Marshal(n *goshape.Node, opts ...Options) ([]byte, error) {
	s, err := Document(n, opts...)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(s, "", "  ")
}

func (o Options) convert(n *goshape.Node) *Schema {
	switch n.Kind() {
	case goshape.KindUnknown:
		return &Schema{}
	case goshape.KindNothing, goshape.KindUndefined:
		return &Schema{Not: &Schema{}}
	case goshape.KindNull:
		return &Schema{Type: "null"}
	case goshape.KindBoolean:
		return &Schema{Type: "boolean"}
	case goshape.KindNumber:
		return &Schema{Type: "number"}
	case goshape.KindBigInt:
		return &Schema{Type: "integer"}
	case goshape.KindString:
		return &Schema{Type: "string"}
	case goshape.KindLiteral:
		return &Schema{Const: n.LiteralValue(), hasConst: true}
	case goshape.KindObject:
		return o.object(n)
	case goshape.KindArray:
		return &Schema{Type: "array", Items: o.convert(n.Item())}
	case goshape.KindUnion:
		return o.union(n)
	}
	if inner := n.Inner(); inner != nil {
		return o.convert(inner)
	}
	return &Schema{}
}

func (o Options) object(n *goshape.Node) *Schema {
	s := &Schema{Type: "object"}
	fields := n.Fields()
	if len(fields) > 0 {
		s.Properties = make(map[string]*Schema, len(fields))
	}
	for _, f := range fields {
		s.Properties[f.Name] = o.convert(stripOptional(f.Node))
		if !optional(f.Node) {
			s.Required = append(s.Required, f.Name)
		}
	}
	switch {
	case n.RestNode() != nil:
		s.AdditionalProperties = o.convert(n.RestNode())
	case o.Mode == goshape.UnknownStrict:
		s.AdditionalProperties = false
	}
	return s
}

func (o Options) union(n *goshape.Node) *Schema {
	branches := n.Branches()
	kept := make([]*goshape.Node, 0, len(branches))
	for _, b := range branches {
		if b.Kind() != goshape.KindUndefined {
			kept = append(kept, b)
		}
	}
	if len(kept) == 1 {
		return o.convert(kept[0])
	}
	allLiterals := len(kept) > 0
	for _, b := range kept {
		if b.Kind() != goshape.KindLiteral {
			allLiterals = false
			break
		}
	}
	if allLiterals {
		s := &Schema{Enum: make([]any, 0, len(kept))}
		for _, b := range kept {
			s.Enum = append(s.Enum, b.LiteralValue())
		}
		return s
	}
	if len(kept) == 0 {
		return &Schema{Not: &Schema{}}
	}
	s := &Schema{AnyOf: make([]*Schema, 0, len(kept))}
	for _, b := range kept {
		s.AnyOf = append(s.AnyOf, o.convert(b))
	}
	return s
}

// optional reports whether a field accepts an absent key.
func optional(n *goshape.Node) bool {
	switch n.Kind() {
	case goshape.KindOptional:
		return true
	case goshape.KindUnion:
		for _, b := range n.Branches() {
			if optional(b) {
				return true
			}
		}
		return false
	case goshape.KindAssert, goshape.KindApply, goshape.KindChain:
		return optional(n.Inner())
	}
	return false
}

// stripOptional unwraps Optional so the property schema describes only
// present values.
func stripOptional(n *goshape.Node) *goshape.Node {
	for n.Kind() == goshape.KindOptional {
		n = n.Inner()
	}
	return n
}
