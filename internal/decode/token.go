// Package decode turns JSON and YAML documents into the untyped values the
// validator consumes. Every format is first lowered to a token stream so
// duplicate-key and depth enforcement is shared.
package decode

import (
	"errors"
	"io"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents one streaming token. Number holds the literal text.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
}

// TokenSource is a minimal interface required by the decoder.
type TokenSource interface {
	NextToken() (Token, error)
}

// Issue is a decode-level finding.
type Issue struct {
	Code    string // parse_error, duplicate_key, max_depth
	Path    string // JSON Pointer
	Message string
}

// IssueError is a fatal decode Issue.
type IssueError struct {
	Issue
	Err error
}

func (e *IssueError) Error() string { return e.Message }

func (e *IssueError) Unwrap() error { return e.Err }

func parseError(path string, err error) *IssueError {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return &IssueError{Issue: Issue{Code: "parse_error", Path: normalizePath(path), Message: err.Error()}, Err: err}
}

// sliceSource replays pre-built tokens.
type sliceSource struct {
	toks []Token
	pos  int
}

func (s *sliceSource) NextToken() (Token, error) {
	if s.pos >= len(s.toks) {
		return Token{}, io.EOF
	}
	t := s.toks[s.pos]
	s.pos++
	return t, nil
}
