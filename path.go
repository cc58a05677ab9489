package goshape

import (
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Path locates a value inside the parsed input. Segments are object keys
// (string) or array indices (int).
type Path []any

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// Pointer renders the path as an RFC 6901 JSON Pointer; the root is "/".
func (p Path) Pointer() string {
	if len(p) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, seg := range p {
		b.WriteByte('/')
		switch s := seg.(type) {
		case string:
			b.WriteString(pointerEscaper.Replace(s))
		case int:
			b.WriteString(strconv.Itoa(s))
		default:
			b.WriteString(pointerEscaper.Replace(formatLiteral(s)))
		}
	}
	return b.String()
}

func (p Path) String() string { return p.Pointer() }

// MarshalJSON encodes the root path as [] rather than null.
func (p Path) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]any(p))
}

// Field returns a copy of p extended by an object key.
func (p Path) Field(name string) Path { return p.append(name) }

// Index returns a copy of p extended by an array index.
func (p Path) Index(i int) Path { return p.append(i) }

func (p Path) append(seg ...any) Path {
	out := make(Path, 0, len(p)+len(seg))
	out = append(out, p...)
	return append(out, seg...)
}
