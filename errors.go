package goshape

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/reoring/goshape/i18n"
	"github.com/reoring/goshape/internal/issuetree"
)

// Issue codes.
const (
	CodeInvalidType     = "invalid_type"
	CodeInvalidLiteral  = "invalid_literal"
	CodeMissingKey      = "missing_key"
	CodeUnrecognizedKey = "unrecognized_key"
	CodeInvalidUnion    = "invalid_union"
	CodeCustomError     = "custom_error"
)

// CustomError describes a user-defined failure raised by Assert or Chain.
// Path, when set, is appended to the position where the check ran.
type CustomError struct {
	Message string `json:"message,omitempty"`
	Path    Path   `json:"path,omitempty"`
}

// Issue represents a single validation failure.
type Issue struct {
	Code string `json:"code"`
	Path Path   `json:"path"`
	// Expected lists base type tags (invalid_type) or literal values
	// (invalid_literal).
	Expected []any        `json:"expected,omitempty"`
	Key      string       `json:"key,omitempty"`
	Error    *CustomError `json:"error,omitempty"`
	Message  string       `json:"message"`
}

// Issues is an ordered collection of validation failures that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path.Pointer())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// issue is the leaf payload of the internal tree.
type issue struct {
	code     string
	expected []any
	key      string
	custom   *CustomError
}

type tree = issuetree.Tree[issue]

func leaf(is issue) *tree { return issuetree.Leaf(is) }

func invalidType(tags tagSet) *tree {
	return leaf(issue{code: CodeInvalidType, expected: tags.list()})
}

func invalidLiteral(lits []any) *tree {
	return leaf(issue{code: CodeInvalidLiteral, expected: lits})
}

func customError(spec *CustomError) *tree {
	return leaf(issue{code: CodeCustomError, custom: spec})
}

// ValidationError is returned by Parse when the input does not match. It
// keeps the issue tree and flattens it on first use.
type ValidationError struct {
	tree   *tree
	once   sync.Once
	issues Issues
}

func newValidationError(t *tree) *ValidationError { return &ValidationError{tree: t} }

// Issues returns the ordered issue list. The list is computed once and
// shared by later calls; callers must not modify it.
func (e *ValidationError) Issues() Issues {
	e.once.Do(func() { e.issues = realize(e.tree) })
	return e.issues
}

func (e *ValidationError) Error() string {
	return "goshape: validation failed: " + e.Issues().Error()
}

// As lets errors.As extract Issues directly.
func (e *ValidationError) As(target any) bool {
	if p, ok := target.(*Issues); ok {
		*p = e.Issues()
		return true
	}
	return false
}

func realize(t *tree) Issues {
	entries := issuetree.Flatten(t)
	out := make(Issues, 0, len(entries))
	for _, en := range entries {
		is := en.Value
		p := Path(en.Path)
		if is.custom != nil && len(is.custom.Path) > 0 {
			p = p.append(is.custom.Path...)
		}
		out = append(out, Issue{
			Code:     is.code,
			Path:     p,
			Expected: is.expected,
			Key:      is.key,
			Error:    is.custom,
			Message:  message(is),
		})
	}
	return out
}

func message(is issue) string {
	if is.custom != nil && is.custom.Message != "" {
		return is.custom.Message
	}
	data := map[string]string{}
	if len(is.expected) > 0 {
		parts := make([]string, len(is.expected))
		for i, e := range is.expected {
			if s, ok := e.(string); ok && is.code == CodeInvalidType {
				parts[i] = s
				continue
			}
			parts[i] = formatLiteral(e)
		}
		data["expected"] = strings.Join(parts, ", ")
	}
	if is.key != "" {
		data["key"] = is.key
	}
	return i18n.T(is.code, data)
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// DecodeError reports a malformed or over-limit input document. It is
// returned by ParseFrom before any validation runs.
type DecodeError struct {
	Code    string // parse_error, duplicate_key, max_depth or truncated.
	Path    string // JSON Pointer of the offending token, when known.
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Path != "" && e.Path != "/" {
		return fmt.Sprintf("goshape: decode %s at %s: %s", e.Code, e.Path, e.Message)
	}
	return fmt.Sprintf("goshape: decode %s: %s", e.Code, e.Message)
}

func (e *DecodeError) Unwrap() error { return e.Err }
