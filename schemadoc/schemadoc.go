// Package schemadoc compiles declarative YAML (or JSON) schema documents into
// goshape validators.
//
// A document has an optional "definitions" mapping and a required "schema"
// node:
//
//	definitions:
//	  id: {type: string}
//	schema:
//	  type: object
//	  fields:
//	    id: {$ref: id}
//	    kind: {literal: user}
//	    tags: {type: array, items: {type: string}, optional: true}
//	  rest: {type: number}
//
// Each definition compiles once; every $ref to it yields the same *Node.
package schemadoc

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	goshape "github.com/reoring/goshape"
)

// Error is a load failure tied to a document location.
type Error struct {
	Line   int
	Column int
	Msg    string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("schemadoc: line %d col %d: %s", e.Line, e.Column, e.Msg)
	}
	return "schemadoc: " + e.Msg
}

func errorAt(n *yaml.Node, format string, args ...any) *Error {
	e := &Error{Msg: fmt.Sprintf(format, args...)}
	if n != nil {
		e.Line, e.Column = n.Line, n.Column
	}
	return e
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for debug output. nil means slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(ld *Loader) { ld.log = l }
}

// WithDefinitions makes prebuilt nodes referable by name through $ref.
// Document definitions with the same name take precedence.
func WithDefinitions(defs map[string]*goshape.Node) Option {
	return func(ld *Loader) {
		for k, v := range defs {
			ld.external[k] = v
		}
	}
}

// Loader compiles schema documents.
type Loader struct {
	log      *slog.Logger
	external map[string]*goshape.Node
}

// New returns a Loader configured by opts.
func New(opts ...Option) *Loader {
	ld := &Loader{external: map[string]*goshape.Node{}}
	for _, o := range opts {
		o(ld)
	}
	if ld.log == nil {
		ld.log = slog.Default()
	}
	return ld
}

// Load compiles one document with a default Loader.
func Load(data []byte, opts ...Option) (*goshape.Node, error) {
	return New(opts...).Load(data)
}

// LoadFile reads and compiles the document at path.
func LoadFile(path string, opts ...Option) (*goshape.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schemadoc: read %s: %w", path, err)
	}
	return New(opts...).Load(data)
}

// LoadReader compiles the document read from r.
func (ld *Loader) LoadReader(r io.Reader) (*goshape.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("schemadoc: read: %w", err)
	}
	return ld.Load(data)
}

// Load compiles data into a Node.
func (ld *Loader) Load(data []byte) (*goshape.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &Error{Msg: err.Error()}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &Error{Msg: "empty document"}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errorAt(root, "document must be a mapping")
	}
	c := &compiler{
		log:      ld.log,
		external: ld.external,
		defs:     map[string]*yaml.Node{},
		built:    map[string]*goshape.Node{},
		active:   map[string]bool{},
	}
	var schema, defs *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		switch k.Value {
		case "definitions":
			if v.Kind != yaml.MappingNode {
				return nil, errorAt(v, "definitions must be a mapping")
			}
			for j := 0; j+1 < len(v.Content); j += 2 {
				c.defs[v.Content[j].Value] = v.Content[j+1]
			}
			defs = v
		case "schema":
			schema = v
		default:
			return nil, errorAt(k, "unknown top-level key %q", k.Value)
		}
	}
	if schema == nil {
		return nil, errorAt(root, "missing \"schema\"")
	}
	// Compile every definition so unused ones are still checked.
	if defs != nil {
		for i := 0; i+1 < len(defs.Content); i += 2 {
			if _, err := c.ref(defs.Content[i]); err != nil {
				return nil, err
			}
		}
	}
	return c.node(schema)
}
