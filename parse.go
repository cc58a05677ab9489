package goshape

import "fmt"

// parser carries the per-call state of one Parse invocation.
type parser struct {
	mode     UnknownPolicy
	maxDepth int
	depth    int
}

func newParser(opt ParseOpt) *parser {
	return &parser{mode: opt.Mode, maxDepth: opt.depthLimit()}
}

func isMissing(v any) bool {
	_, ok := v.(missing)
	return ok
}

// run evaluates n against v. A nil tree means success.
func (p *parser) run(n *Node, v any) (any, *tree) {
	switch n.kind {
	case KindUnknown:
		return v, nil
	case KindNothing:
		return nil, invalidType(0)
	case KindUndefined, KindNull, KindBoolean, KindNumber, KindBigInt, KindString:
		tag := primitiveTag(n.kind)
		if TagOf(v) != tag {
			return nil, invalidType(tagBit(tag))
		}
		return v, nil
	case KindLiteral:
		if !literalMatches(n.literal, v) {
			return nil, invalidLiteral([]any{n.literal})
		}
		return v, nil
	case KindObject:
		return p.object(n, v)
	case KindArray:
		return p.array(n, v)
	case KindUnion:
		return p.union(n, v)
	case KindAssert, KindApply, KindChain:
		out, t := p.run(n.inner, v)
		if t != nil {
			return nil, t
		}
		return p.finish(n, out)
	case KindOptional:
		if isMissing(v) {
			return p.missing(n.inner)
		}
		return p.run(n.inner, v)
	}
	panic(fmt.Sprintf("goshape: unhandled node kind %s", n.kind))
}

// missing evaluates n for an absent value: the base check is skipped and
// only the wrapper layers run.
func (p *parser) missing(n *Node) (any, *tree) {
	switch n.kind {
	case KindAssert, KindApply, KindChain:
		out, t := p.missing(n.inner)
		if t != nil {
			return nil, t
		}
		return p.finish(n, out)
	case KindOptional:
		return p.missing(n.inner)
	}
	return Missing, nil
}

// finish applies the post-processing step of a wrapper node.
func (p *parser) finish(n *Node, v any) (any, *tree) {
	switch n.kind {
	case KindAssert:
		if n.pred(v) {
			return v, nil
		}
		return nil, customError(n.errSpec)
	case KindApply:
		return n.apply(v), nil
	case KindChain:
		r := n.chain(v)
		if r.ok {
			return r.value, nil
		}
		spec := r.err
		if spec == nil {
			spec = &CustomError{}
		}
		return nil, customError(spec)
	}
	return v, nil
}

var errTooDeep = &CustomError{Message: "max depth exceeded"}

func (p *parser) enter() *tree {
	p.depth++
	if p.maxDepth > 0 && p.depth > p.maxDepth {
		p.depth--
		return customError(errTooDeep)
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

// Parse validates v against n. On success it returns the parsed value,
// which is v itself unless a transform or key policy changed something. On
// failure the error is a *ValidationError listing every issue found.
func (n *Node) Parse(v any, opts ...ParseOpt) (any, error) {
	out, t := newParser(lastOpt(opts)).run(n, v)
	if t != nil {
		return nil, newValidationError(t)
	}
	return out, nil
}

// Is reports whether v passes n.
func (n *Node) Is(v any, opts ...ParseOpt) bool {
	_, t := newParser(lastOpt(opts)).run(n, v)
	return t == nil
}

// ParseAs parses v and type-asserts the result to T.
func ParseAs[T any](n *Node, v any, opts ...ParseOpt) (T, error) {
	out, err := n.Parse(v, opts...)
	if err != nil {
		var zero T
		return zero, err
	}
	return castResult[T](out)
}

func castResult[T any](out any) (T, error) {
	var zero T
	if isMissing(out) || out == nil && any(zero) == nil {
		return zero, nil
	}
	typed, ok := out.(T)
	if !ok {
		return zero, fmt.Errorf("goshape: parsed value has type %T, want %T", out, zero)
	}
	return typed, nil
}

// MustParse is like Parse but panics on failure.
func MustParse(n *Node, v any, opts ...ParseOpt) any {
	out, err := n.Parse(v, opts...)
	if err != nil {
		panic(err)
	}
	return out
}
