package goshape

import (
	"fmt"
	"slices"

	"github.com/reoring/goshape/internal/issuetree"
)

// Object builds a validator for map[string]any records with the given
// fields in declaration order. Undeclared keys are governed by the parse
// mode unless a rest validator is attached with Rest.
func Object(fields ...FieldDef) *Node {
	return newObject(fields, nil)
}

// Record accepts maps whose every value matches n.
func Record(n *Node) *Node { return Object().Rest(n) }

func newObject(fields []FieldDef, rest *Node) *Node {
	o := &Node{kind: KindObject, rest: rest, fieldIdx: make(map[string]int, len(fields))}
	o.fields = make([]FieldDef, 0, len(fields))
	for _, f := range fields {
		if f.Node == nil {
			panic("goshape: nil node for field " + f.Name)
		}
		if i, dup := o.fieldIdx[f.Name]; dup {
			// A redeclared name keeps its position and takes the new node.
			o.fields[i] = f
			continue
		}
		o.fieldIdx[f.Name] = len(o.fields)
		o.fields = append(o.fields, f)
	}
	return o
}

func (n *Node) mustObject(op string) {
	if n.kind != KindObject {
		panic(fmt.Sprintf("goshape: %s on %s node", op, n.kind))
	}
}

// Rest returns a copy of the object whose undeclared keys are validated by r
// and kept in the result in every mode.
func (n *Node) Rest(r *Node) *Node {
	n.mustObject("Rest")
	return newObject(n.fields, r)
}

// Extend returns a copy of the object with more fields. Fields that reuse an
// existing name replace it in place.
func (n *Node) Extend(fields ...FieldDef) *Node {
	n.mustObject("Extend")
	all := make([]FieldDef, 0, len(n.fields)+len(fields))
	all = append(all, n.fields...)
	all = append(all, fields...)
	return newObject(all, n.rest)
}

// Pick returns a copy of the object restricted to the named fields. The rest
// validator is dropped.
func (n *Node) Pick(names ...string) *Node {
	n.mustObject("Pick")
	keep := make([]FieldDef, 0, len(names))
	for _, f := range n.fields {
		if slices.Contains(names, f.Name) {
			keep = append(keep, f)
		}
	}
	return newObject(keep, nil)
}

// Omit returns a copy of the object without the named fields. The rest
// validator is dropped.
func (n *Node) Omit(names ...string) *Node {
	n.mustObject("Omit")
	keep := make([]FieldDef, 0, len(n.fields))
	for _, f := range n.fields {
		if !slices.Contains(names, f.Name) {
			keep = append(keep, f)
		}
	}
	return newObject(keep, nil)
}

// Partial returns a copy of the object where every field is optional.
func (n *Node) Partial() *Node {
	n.mustObject("Partial")
	fields := make([]FieldDef, len(n.fields))
	for i, f := range n.fields {
		if f.Node.acceptsMissing() {
			fields[i] = f
			continue
		}
		fields[i] = FieldDef{Name: f.Name, Node: f.Node.Optional()}
	}
	return newObject(fields, n.rest)
}

func (p *parser) object(n *Node, v any) (any, *tree) {
	src, ok := v.(map[string]any)
	if !ok {
		return nil, invalidType(tagBit(TagObject))
	}
	if t := p.enter(); t != nil {
		return nil, t
	}
	defer p.leave()

	var (
		issues  *tree
		changed bool
		present int
	)
	vals := make([]any, len(n.fields))
	for i, f := range n.fields {
		in, found := src[f.Name]
		if found {
			present++
		}
		if !found || isMissing(in) {
			if !f.Node.acceptsMissing() {
				issues = issuetree.Join(issues, issuetree.Prepend(f.Name, leaf(issue{code: CodeMissingKey, key: f.Name})))
				continue
			}
			in = Missing
		}
		out, t := p.run(f.Node, in)
		if t != nil {
			issues = issuetree.Join(issues, issuetree.Prepend(f.Name, t))
			continue
		}
		vals[i] = out
		if !sameValue(out, in) {
			changed = true
		}
	}

	var (
		undeclared []string
		restVals   map[string]any
	)
	if len(src) > present {
		undeclared = make([]string, 0, len(src)-present)
		for k := range src {
			if _, declared := n.fieldIdx[k]; !declared {
				undeclared = append(undeclared, k)
			}
		}
		slices.Sort(undeclared)
		switch {
		case n.rest != nil:
			restVals = make(map[string]any, len(undeclared))
			for _, k := range undeclared {
				out, t := p.run(n.rest, src[k])
				if t != nil {
					issues = issuetree.Join(issues, issuetree.Prepend(k, t))
					continue
				}
				restVals[k] = out
				if !sameValue(out, src[k]) {
					changed = true
				}
			}
		case p.mode == UnknownStrict:
			for _, k := range undeclared {
				issues = issuetree.Join(issues, issuetree.Prepend(k, leaf(issue{code: CodeUnrecognizedKey, key: k})))
			}
		case p.mode == UnknownStrip:
			changed = true
		}
	}
	if issues != nil {
		return nil, issues
	}
	if !changed {
		return src, nil
	}

	res := make(map[string]any, len(n.fields)+len(undeclared))
	for i, f := range n.fields {
		if !isMissing(vals[i]) {
			res[f.Name] = vals[i]
		}
	}
	for _, k := range undeclared {
		switch {
		case restVals != nil:
			if out := restVals[k]; !isMissing(out) {
				res[k] = out
			}
		case p.mode == UnknownPassthrough:
			res[k] = src[k]
		}
	}
	return res, nil
}
