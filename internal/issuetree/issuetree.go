// Package issuetree implements the persistent failure tree produced while
// parsing. Joining and prepending allocate a single node; nothing is copied
// until Flatten walks the tree.
package issuetree

type nodeKind uint8

const (
	kindLeaf nodeKind = iota
	kindJoin
	kindPrepend
)

// Tree is an immutable issue tree carrying payloads of type T at its leaves.
// A nil *Tree means "no issues".
type Tree[T any] struct {
	kind  nodeKind
	value T
	key   any
	left  *Tree[T]
	right *Tree[T]
	size  int
}

// Entry is one flattened leaf together with its accumulated path.
type Entry[T any] struct {
	Path  []any
	Value T
}

// Leaf wraps a single payload.
func Leaf[T any](v T) *Tree[T] {
	return &Tree[T]{kind: kindLeaf, value: v, size: 1}
}

// Join composes two independent failure sets. Either side may be nil.
func Join[T any](a, b *Tree[T]) *Tree[T] {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return &Tree[T]{kind: kindJoin, left: a, right: b, size: a.size + b.size}
}

// Prepend records that every path inside t sits one segment deeper, under key.
func Prepend[T any](key any, t *Tree[T]) *Tree[T] {
	if t == nil {
		return nil
	}
	return &Tree[T]{kind: kindPrepend, key: key, left: t, size: t.size}
}

// Len reports the number of leaves.
func (t *Tree[T]) Len() int {
	if t == nil {
		return 0
	}
	return t.size
}

// Flatten walks the tree depth-first, left before right, and returns every
// leaf with its full path.
func Flatten[T any](t *Tree[T]) []Entry[T] {
	if t == nil {
		return nil
	}
	out := make([]Entry[T], 0, t.size)
	var walk func(n *Tree[T], path []any)
	walk = func(n *Tree[T], path []any) {
		switch n.kind {
		case kindLeaf:
			p := make([]any, len(path))
			copy(p, path)
			out = append(out, Entry[T]{Path: p, Value: n.value})
		case kindJoin:
			walk(n.left, path)
			walk(n.right, path)
		case kindPrepend:
			walk(n.left, append(path, n.key))
		}
	}
	walk(t, make([]any, 0, 8))
	return out
}

// First returns the leaf Flatten would list first, without flattening the
// rest of the tree.
func First[T any](t *Tree[T]) (Entry[T], bool) {
	if t == nil {
		return Entry[T]{}, false
	}
	var path []any
	for n := t; ; {
		switch n.kind {
		case kindLeaf:
			return Entry[T]{Path: path, Value: n.value}, true
		case kindJoin:
			n = n.left
		case kindPrepend:
			path = append(path, n.key)
			n = n.left
		}
	}
}
