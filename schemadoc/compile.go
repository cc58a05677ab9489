package schemadoc

import (
	"log/slog"
	"math/big"
	"strconv"

	"gopkg.in/yaml.v3"

	goshape "github.com/reoring/goshape"
)

type compiler struct {
	log      *slog.Logger
	external map[string]*goshape.Node
	defs     map[string]*yaml.Node
	built    map[string]*goshape.Node
	active   map[string]bool
}

var primitives = map[string]func() *goshape.Node{
	"unknown":   goshape.Unknown,
	"nothing":   goshape.Nothing,
	"undefined": goshape.Undefined,
	"null":      goshape.Null,
	"boolean":   goshape.Boolean,
	"number":    goshape.Number,
	"bigint":    goshape.BigInt,
	"string":    goshape.String,
}

// ref resolves a definition name, compiling it on first use.
func (c *compiler) ref(name *yaml.Node) (*goshape.Node, error) {
	if name.Kind != yaml.ScalarNode {
		return nil, errorAt(name, "$ref must be a string")
	}
	key := name.Value
	if n, ok := c.built[key]; ok {
		return n, nil
	}
	def, ok := c.defs[key]
	if !ok {
		if n, ok := c.external[key]; ok && n != nil {
			return n, nil
		}
		return nil, errorAt(name, "undefined reference %q", key)
	}
	if c.active[key] {
		return nil, errorAt(name, "reference cycle through %q", key)
	}
	c.active[key] = true
	n, err := c.node(def)
	delete(c.active, key)
	if err != nil {
		return nil, err
	}
	c.built[key] = n
	c.log.Debug("schemadoc: compiled definition", slog.String("name", key), slog.String("node", n.String()))
	return n, nil
}

func (c *compiler) node(y *yaml.Node) (*goshape.Node, error) {
	if y.Kind == yaml.ScalarNode {
		mk, ok := primitives[y.Value]
		if !ok {
			return nil, errorAt(y, "unknown type %q", y.Value)
		}
		return mk(), nil
	}
	if y.Kind != yaml.MappingNode {
		return nil, errorAt(y, "schema node must be a mapping or a type name")
	}

	var typ, fields, rest, items, union, literal, ref *yaml.Node
	var optional, nullable bool
	for i := 0; i+1 < len(y.Content); i += 2 {
		k, v := y.Content[i], y.Content[i+1]
		switch k.Value {
		case "type":
			typ = v
		case "fields":
			fields = v
		case "rest":
			rest = v
		case "items":
			items = v
		case "union":
			union = v
		case "literal":
			literal = v
		case "$ref":
			ref = v
		case "optional", "nullable":
			var b bool
			if err := v.Decode(&b); err != nil {
				return nil, errorAt(v, "%s must be a boolean", k.Value)
			}
			if k.Value == "optional" {
				optional = b
			} else {
				nullable = b
			}
		default:
			return nil, errorAt(k, "unknown key %q", k.Value)
		}
	}

	set := 0
	for _, x := range []*yaml.Node{typ, union, literal, ref} {
		if x != nil {
			set++
		}
	}
	if set != 1 {
		return nil, errorAt(y, "exactly one of type, union, literal or $ref is required")
	}
	if typ == nil || typ.Value != "object" {
		if fields != nil || rest != nil {
			return nil, errorAt(y, "fields and rest require type: object")
		}
	}
	if items != nil && (typ == nil || typ.Value != "array") {
		return nil, errorAt(items, "items requires type: array")
	}

	var n *goshape.Node
	var err error
	switch {
	case ref != nil:
		n, err = c.ref(ref)
	case literal != nil:
		n, err = literalNode(literal)
	case union != nil:
		n, err = c.union(union)
	default:
		n, err = c.typed(typ, fields, rest, items, y)
	}
	if err != nil {
		return nil, err
	}
	if nullable {
		n = n.Nullable()
	}
	if optional {
		n = n.Optional()
	}
	return n, nil
}

func (c *compiler) typed(typ, fields, rest, items, at *yaml.Node) (*goshape.Node, error) {
	switch typ.Value {
	case "object":
		return c.object(fields, rest)
	case "array":
		if items == nil {
			return nil, errorAt(at, "type: array requires items")
		}
		it, err := c.node(items)
		if err != nil {
			return nil, err
		}
		return goshape.Array(it), nil
	}
	mk, ok := primitives[typ.Value]
	if !ok {
		return nil, errorAt(typ, "unknown type %q", typ.Value)
	}
	return mk(), nil
}

func (c *compiler) object(fields, rest *yaml.Node) (*goshape.Node, error) {
	var defs []goshape.FieldDef
	if fields != nil {
		if fields.Kind != yaml.MappingNode {
			return nil, errorAt(fields, "fields must be a mapping")
		}
		seen := make(map[string]bool, len(fields.Content)/2)
		for i := 0; i+1 < len(fields.Content); i += 2 {
			k, v := fields.Content[i], fields.Content[i+1]
			if seen[k.Value] {
				return nil, errorAt(k, "duplicate field %q", k.Value)
			}
			seen[k.Value] = true
			fn, err := c.node(v)
			if err != nil {
				return nil, err
			}
			defs = append(defs, goshape.Field(k.Value, fn))
		}
	}
	obj := goshape.Object(defs...)
	if rest != nil {
		rn, err := c.node(rest)
		if err != nil {
			return nil, err
		}
		obj = obj.Rest(rn)
	}
	return obj, nil
}

func (c *compiler) union(y *yaml.Node) (*goshape.Node, error) {
	if y.Kind != yaml.SequenceNode {
		return nil, errorAt(y, "union must be a sequence")
	}
	branches := make([]*goshape.Node, 0, len(y.Content))
	for _, b := range y.Content {
		n, err := c.node(b)
		if err != nil {
			return nil, err
		}
		branches = append(branches, n)
	}
	return goshape.Union(branches...), nil
}

func literalNode(y *yaml.Node) (*goshape.Node, error) {
	if y.Kind != yaml.ScalarNode {
		return nil, errorAt(y, "literal must be a scalar")
	}
	var v any
	switch y.ShortTag() {
	case "!!bool":
		var b bool
		if err := y.Decode(&b); err != nil {
			return nil, errorAt(y, "invalid literal: %v", err)
		}
		v = b
	case "!!int":
		if i, err := strconv.ParseInt(y.Value, 0, 64); err == nil {
			v = i
		} else if bi, ok := new(big.Int).SetString(y.Value, 0); ok {
			v = bi
		} else {
			return nil, errorAt(y, "invalid literal %q", y.Value)
		}
	case "!!float":
		var f float64
		if err := y.Decode(&f); err != nil {
			return nil, errorAt(y, "invalid literal: %v", err)
		}
		v = f
	case "!!str":
		v = y.Value
	default:
		return nil, errorAt(y, "invalid literal %q", y.Value)
	}
	n, err := goshape.NewLiteral(v)
	if err != nil {
		return nil, errorAt(y, "%v", err)
	}
	return n, nil
}
