package goshape

// Result is what a Chain function returns: either a new value (Ok) or a
// failure (Err).
type Result struct {
	ok    bool
	value any
	err   *CustomError
}

// Ok wraps a successful chain value.
func Ok(v any) Result { return Result{ok: true, value: v} }

// Err wraps a chain failure. The optional CustomError supplies the message
// and a path relative to the current position.
func Err(spec ...CustomError) Result { return Result{err: firstSpec(spec)} }

// IsOk reports whether r carries a value.
func (r Result) IsOk() bool { return r.ok }

// Value returns the carried value (nil for failures).
func (r Result) Value() any { return r.value }

func firstSpec(spec []CustomError) *CustomError {
	if len(spec) == 0 {
		return &CustomError{}
	}
	s := spec[0]
	return &s
}

// Assert refines n with a predicate over the parsed value. The value is
// passed through unchanged; a false predicate fails with custom_error.
func (n *Node) Assert(pred func(v any) bool, spec ...CustomError) *Node {
	if pred == nil {
		panic("goshape: nil assert predicate")
	}
	return &Node{kind: KindAssert, inner: n, pred: pred, errSpec: firstSpec(spec)}
}

// Apply transforms the parsed value. It never fails on its own.
func (n *Node) Apply(fn func(v any) any) *Node {
	if fn == nil {
		panic("goshape: nil apply function")
	}
	return &Node{kind: KindApply, inner: n, apply: fn}
}

// Chain runs a fallible transform over the parsed value.
func (n *Node) Chain(fn func(v any) Result) *Node {
	if fn == nil {
		panic("goshape: nil chain function")
	}
	return &Node{kind: KindChain, inner: n, chain: fn}
}

// Optional widens n to accept Missing. On Missing the base check of n is
// skipped but any Assert/Apply/Chain layers of n still run with Missing.
func (n *Node) Optional() *Node {
	return &Node{kind: KindOptional, inner: n}
}

// Nullable widens n to also accept nil.
func (n *Node) Nullable() *Node { return Union(n, Null()) }

// Default makes n optional and substitutes v when the value is Missing.
func (n *Node) Default(v any) *Node {
	return n.Optional().Apply(func(x any) any {
		if x == Missing {
			return v
		}
		return x
	})
}
