package goshape

import "github.com/reoring/goshape/internal/issuetree"

// Array builds a validator for []any whose every element matches item.
func Array(item *Node) *Node {
	if item == nil {
		panic("goshape: nil array item")
	}
	return &Node{kind: KindArray, inner: item}
}

func (p *parser) array(n *Node, v any) (any, *tree) {
	src, ok := v.([]any)
	if !ok {
		return nil, invalidType(tagBit(TagArray))
	}
	if t := p.enter(); t != nil {
		return nil, t
	}
	defer p.leave()

	var (
		issues *tree
		out    []any
	)
	for i, el := range src {
		r, t := p.run(n.inner, el)
		if t != nil {
			issues = issuetree.Join(issues, issuetree.Prepend(i, t))
			continue
		}
		if out == nil && !sameValue(r, el) {
			out = make([]any, len(src))
			copy(out, src[:i])
		}
		if out != nil {
			out[i] = r
		}
	}
	if issues != nil {
		return nil, issues
	}
	if out == nil {
		return src, nil
	}
	return out, nil
}
