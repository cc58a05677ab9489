package decode

import (
	"fmt"
	"strconv"
	"strings"
)

// Duplicate controls duplicate key handling.
type Duplicate int

const (
	DupIgnore Duplicate = iota
	DupWarn
	DupError
)

// Limits controls enforcement.
type Limits struct {
	OnDuplicate Duplicate
	MaxDepth    int // 0 disables the check.
	// Warn receives non-fatal issues (duplicate keys under DupWarn).
	Warn func(Issue)
}

// Enforce returns a TokenSource that applies duplicate key policy and
// maximum nesting depth while tokens flow through.
func Enforce(inner TokenSource, lim Limits) TokenSource {
	return &enforcer{inner: inner, lim: lim}
}

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind       containerKind
	keys       map[string]struct{}
	path       string
	nextIndex  int
	pendingKey string
}

type enforcer struct {
	inner TokenSource
	lim   Limits
	stack []frame
}

func (e *enforcer) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	path := e.pathFor(tok)

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		f := frame{kind: kindArray, path: path}
		if tok.Kind == KindBeginObject {
			f.kind = kindObject
			if e.lim.OnDuplicate != DupIgnore {
				f.keys = make(map[string]struct{})
			}
		}
		e.stack = append(e.stack, f)
		if e.lim.MaxDepth > 0 && len(e.stack) > e.lim.MaxDepth {
			return Token{}, &IssueError{Issue: Issue{Code: "max_depth", Path: normalizePath(path), Message: fmt.Sprintf("max depth %d exceeded", e.lim.MaxDepth)}}
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if top.keys != nil {
				if _, dup := top.keys[tok.String]; dup {
					is := Issue{Code: "duplicate_key", Path: normalizePath(path), Message: "key '" + tok.String + "' duplicated"}
					if e.lim.OnDuplicate == DupError {
						return Token{}, &IssueError{Issue: is}
					}
					if e.lim.Warn != nil {
						e.lim.Warn(is)
					}
				}
				top.keys[tok.String] = struct{}{}
			}
			top.pendingKey = tok.String
		}
	}
	return tok, nil
}

// pathFor computes the JSON Pointer of the value a token starts or names.
func (e *enforcer) pathFor(tok Token) string {
	if len(e.stack) == 0 {
		return ""
	}
	top := &e.stack[len(e.stack)-1]
	switch tok.Kind {
	case KindKey:
		return joinPointer(top.path, tok.String)
	case KindEndObject, KindEndArray:
		return top.path
	}
	if top.kind == kindArray {
		p := joinPointer(top.path, strconv.Itoa(top.nextIndex))
		top.nextIndex++
		return p
	}
	return joinPointer(top.path, top.pendingKey)
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func joinPointer(base, token string) string {
	return base + "/" + pointerEscaper.Replace(token)
}
