package goshape

// Union accepts a value when any branch does. Branches are tried in the
// given order and the first success wins. A branch that appears more than
// once (the same *Node) is kept only at its first position.
func Union(branches ...*Node) *Node {
	u := &Node{kind: KindUnion, branches: make([]*Node, 0, len(branches))}
	seen := make(map[*Node]struct{}, len(branches))
	for _, b := range branches {
		if b == nil {
			panic("goshape: nil union branch")
		}
		if _, dup := seen[b]; dup {
			continue
		}
		seen[b] = struct{}{}
		u.branches = append(u.branches, b)
	}
	u.shapes = make([]shape, len(u.branches))
	for i, b := range u.branches {
		u.shapes[i] = shapeOf(b)
	}
	return u
}

func (p *parser) union(n *Node, v any) (any, *tree) {
	var trees []*tree
	for _, b := range n.branches {
		out, t := p.run(b, v)
		if t == nil {
			return out, nil
		}
		trees = append(trees, t)
	}
	return nil, p.discriminate(n, v, trees)
}
