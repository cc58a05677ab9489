package goshape

import (
	"slices"

	"github.com/reoring/goshape/internal/issuetree"
)

// shape is the static acceptance summary of a validator at one path.
type shape struct {
	unknown  bool // accepts anything
	nothing  bool // contains a Nothing validator
	tags     tagSet
	literals []any
}

func (s *shape) merge(o shape) {
	s.unknown = s.unknown || o.unknown
	s.nothing = s.nothing || o.nothing
	s.tags |= o.tags
	for _, l := range o.literals {
		s.addLiteral(l)
	}
}

func (s *shape) addLiteral(l any) {
	if !containsLiteral(s.literals, l) {
		s.literals = append(s.literals, l)
	}
}

func containsLiteral(lits []any, l any) bool {
	for _, x := range lits {
		if literalMatches(x, l) {
			return true
		}
	}
	return false
}

func (s shape) empty() bool {
	return !s.unknown && !s.nothing && s.tags == 0 && len(s.literals) == 0
}

func (s shape) nothingOnly() bool {
	return s.nothing && !s.unknown && s.tags == 0 && len(s.literals) == 0
}

func (s shape) accepts(v any) bool {
	if s.unknown || s.tags.has(TagOf(v)) {
		return true
	}
	return containsLiteral(s.literals, v)
}

func shapeOf(n *Node) shape {
	var s shape
	switch n.kind {
	case KindUnknown:
		s.unknown = true
	case KindNothing:
		s.nothing = true
	case KindLiteral:
		s.literals = []any{n.literal}
	case KindObject:
		s.tags = tagBit(TagObject)
	case KindArray:
		s.tags = tagBit(TagArray)
	case KindUnion:
		for _, b := range n.branches {
			s.merge(shapeOf(b))
		}
	case KindAssert, KindApply, KindChain:
		s = shapeOf(n.inner)
	case KindOptional:
		s = shapeOf(n.inner)
		s.tags |= tagBit(TagUndefined)
	default:
		s.tags = tagBit(primitiveTag(n.kind))
	}
	return s
}

// overlaps reports whether some input could be accepted by both shapes.
func overlaps(a, b shape) bool {
	if a.unknown && b.unknown {
		return true
	}
	if a.unknown {
		return !b.empty() && !b.nothingOnly()
	}
	if b.unknown {
		return !a.empty() && !a.nothingOnly()
	}
	undef := tagBit(TagUndefined)
	if a.nothing && (b.nothing || b.tags&undef != 0) || b.nothing && a.tags&undef != 0 {
		return true
	}
	if a.tags&b.tags != 0 {
		return true
	}
	for _, l := range a.literals {
		if b.tags.has(literalTag(l)) || containsLiteral(b.literals, l) {
			return true
		}
	}
	for _, l := range b.literals {
		if a.tags.has(literalTag(l)) {
			return true
		}
	}
	return false
}

func disjoint(shapes []shape) bool {
	for i := range shapes {
		for j := i + 1; j < len(shapes); j++ {
			if overlaps(shapes[i], shapes[j]) {
				return false
			}
		}
	}
	return true
}

var unknownNode = Unknown()

// childrenAt lists the validators that would see the value one path segment
// below n.
func childrenAt(n *Node, key any, mode UnknownPolicy) []*Node {
	switch n.kind {
	case KindAssert, KindApply, KindChain, KindOptional:
		return childrenAt(n.inner, key, mode)
	case KindUnion:
		var out []*Node
		for _, b := range n.branches {
			out = append(out, childrenAt(b, key, mode)...)
		}
		return out
	case KindUnknown:
		return []*Node{unknownNode}
	case KindObject:
		name, ok := key.(string)
		if !ok {
			return nil
		}
		if f, ok := n.field(name); ok {
			return []*Node{f}
		}
		if n.rest != nil {
			return []*Node{n.rest}
		}
		if mode == UnknownStrict {
			return nil
		}
		return []*Node{unknownNode}
	case KindArray:
		if _, ok := key.(int); ok {
			return []*Node{n.inner}
		}
	}
	return nil
}

func shapeAt(n *Node, path []any, mode UnknownPolicy) shape {
	nodes := []*Node{n}
	for _, key := range path {
		var next []*Node
		for _, c := range nodes {
			next = append(next, childrenAt(c, key, mode)...)
		}
		nodes = next
	}
	var s shape
	for _, c := range nodes {
		s.merge(shapeOf(c))
	}
	return s
}

// objectsOf lists the object validators reachable from n without descending
// into a field.
func objectsOf(n *Node) []*Node {
	switch n.kind {
	case KindObject:
		return []*Node{n}
	case KindAssert, KindApply, KindChain, KindOptional:
		return objectsOf(n.inner)
	case KindUnion:
		var out []*Node
		for _, b := range n.branches {
			out = append(out, objectsOf(b)...)
		}
		return out
	}
	return nil
}

// commonKeys returns the field names declared by every object reachable from
// every candidate, in the declaration order of the first candidate.
func commonKeys(branches []*Node) []string {
	var keys []string
	perBranch := make([][]*Node, len(branches))
	for i, b := range branches {
		perBranch[i] = objectsOf(b)
		if len(perBranch[i]) == 0 {
			return nil
		}
	}
	for _, o := range perBranch[0] {
	next:
		for _, f := range o.fields {
			if slices.Contains(keys, f.Name) {
				continue
			}
			for _, objs := range perBranch {
				for _, other := range objs {
					if _, ok := other.field(f.Name); !ok {
						continue next
					}
				}
			}
			keys = append(keys, f.Name)
		}
	}
	return keys
}

func valueAt(v any, path []any) any {
	for _, key := range path {
		switch c := v.(type) {
		case map[string]any:
			name, _ := key.(string)
			x, ok := c[name]
			if !ok {
				return Missing
			}
			v = x
		case []any:
			i, ok := key.(int)
			if !ok || i < 0 || i >= len(c) {
				return Missing
			}
			v = c[i]
		default:
			return Missing
		}
	}
	return v
}

func prependPath(path []any, t *tree) *tree {
	for i := len(path) - 1; i >= 0; i-- {
		t = issuetree.Prepend(path[i], t)
	}
	return t
}

// synthesize builds the single issue reported when no shape accepts v.
func synthesize(shapes []shape, v any) *tree {
	var (
		lits    []any
		plain   tagSet
		litTags tagSet
	)
	for _, s := range shapes {
		plain |= s.tags
		for _, l := range s.literals {
			if !containsLiteral(lits, l) {
				lits = append(lits, l)
			}
			litTags |= tagBit(literalTag(l))
		}
	}
	if len(lits) > 0 && (plain == 0 || litTags&tagBit(TagOf(v)) != 0) {
		return invalidLiteral(lits)
	}
	return invalidType(plain | litTags)
}

// synthesizeAt reports the precise issue at path, where the input holds v.
func synthesizeAt(path []any, shapes []shape, v any) *tree {
	if isMissing(v) && len(path) > 0 {
		if key, ok := path[len(path)-1].(string); ok {
			return prependPath(path, leaf(issue{code: CodeMissingKey, key: key}))
		}
	}
	return prependPath(path, synthesize(shapes, v))
}

func invalidUnion() *tree { return leaf(issue{code: CodeInvalidUnion}) }

// discriminate turns the failures of every union branch into one report.
// Branches the input could not even structurally match are set aside; when a
// single candidate remains its own issues are returned. Otherwise the
// candidates are told apart by a field whose accepted values do not overlap,
// falling back to the paths where they actually failed.
func (p *parser) discriminate(n *Node, v any, trees []*tree) *tree {
	switch len(trees) {
	case 0:
		return invalidType(0)
	case 1:
		return trees[0]
	}
	var cands []int
	for i, s := range n.shapes {
		if s.accepts(v) {
			cands = append(cands, i)
		}
	}
	switch len(cands) {
	case 0:
		return synthesize(n.shapes, v)
	case 1:
		return trees[cands[0]]
	}
	if m, ok := v.(map[string]any); ok {
		if t := p.byDiscriminator(n, m, cands, trees); t != nil {
			return t
		}
	}
	return p.byFailurePaths(n, v, cands, trees)
}

func (p *parser) byDiscriminator(n *Node, m map[string]any, cands []int, trees []*tree) *tree {
	branches := make([]*Node, len(cands))
	for i, c := range cands {
		branches[i] = n.branches[c]
	}
	for _, key := range commonKeys(branches) {
		path := []any{key}
		shapes := make([]shape, len(branches))
		for i, b := range branches {
			shapes[i] = shapeAt(b, path, p.mode)
		}
		if !disjoint(shapes) {
			continue
		}
		val := valueAt(m, path)
		for i, s := range shapes {
			if s.accepts(val) {
				return trees[cands[i]]
			}
		}
		return synthesizeAt(path, shapes, val)
	}
	return nil
}

func (p *parser) byFailurePaths(n *Node, v any, cands []int, trees []*tree) *tree {
	var paths [][]any
	same := true
	for _, c := range cands {
		first, _ := issuetree.First(trees[c])
		if len(paths) > 0 && !slices.Equal(paths[0], first.Path) {
			same = false
		}
		if !slices.ContainsFunc(paths, func(q []any) bool { return slices.Equal(q, first.Path) }) {
			paths = append(paths, first.Path)
		}
	}
	shapesAt := func(path []any) []shape {
		shapes := make([]shape, len(cands))
		for i, c := range cands {
			shapes[i] = shapeAt(n.branches[c], path, p.mode)
		}
		return shapes
	}

	if same {
		path := paths[0]
		if len(path) == 0 {
			return invalidUnion()
		}
		shapes := shapesAt(path)
		if !disjoint(shapes) {
			return invalidUnion()
		}
		val := valueAt(v, path)
		for i, s := range shapes {
			if s.accepts(val) {
				return trees[cands[i]]
			}
		}
		return synthesizeAt(path, shapes, val)
	}

	for _, path := range paths {
		if disjoint(shapesAt(path)) {
			return trees[cands[0]]
		}
	}
	return invalidUnion()
}
