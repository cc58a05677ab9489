package decode

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"

	"gopkg.in/yaml.v3"
)

// maxAliasExpansions caps alias dereferences to keep "billion laughs"
// documents bounded.
const maxAliasExpansions = 10000

// NewYAML parses the first YAML document in data and replays it as tokens.
// An empty document yields a single null token.
func NewYAML(data []byte) (TokenSource, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, parseError("", err)
	}
	l := &yamlLowerer{}
	if doc.Kind == 0 {
		return &sliceSource{toks: []Token{{Kind: KindNull}}}, nil
	}
	if err := l.node(&doc, "", nil); err != nil {
		return nil, err
	}
	return &sliceSource{toks: l.toks}, nil
}

type yamlLowerer struct {
	toks    []Token
	aliases int
}

func (l *yamlLowerer) node(n *yaml.Node, path string, active []*yaml.Node) error {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			l.toks = append(l.toks, Token{Kind: KindNull})
			return nil
		}
		return l.node(n.Content[0], path, active)
	case yaml.AliasNode:
		l.aliases++
		if l.aliases > maxAliasExpansions {
			return &IssueError{Issue: Issue{Code: "parse_error", Path: normalizePath(path), Message: "too many alias expansions"}}
		}
		for _, a := range active {
			if a == n.Alias {
				return &IssueError{Issue: Issue{Code: "parse_error", Path: normalizePath(path), Message: "recursive alias"}}
			}
		}
		return l.node(n.Alias, path, append(active, n.Alias))
	case yaml.MappingNode:
		l.toks = append(l.toks, Token{Kind: KindBeginObject})
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return &IssueError{Issue: Issue{Code: "parse_error", Path: normalizePath(path), Message: fmt.Sprintf("line %d: mapping keys must be scalars", k.Line)}}
			}
			l.toks = append(l.toks, Token{Kind: KindKey, String: k.Value})
			if err := l.node(v, joinPointer(path, k.Value), active); err != nil {
				return err
			}
		}
		l.toks = append(l.toks, Token{Kind: KindEndObject})
	case yaml.SequenceNode:
		l.toks = append(l.toks, Token{Kind: KindBeginArray})
		for i, c := range n.Content {
			if err := l.node(c, joinPointer(path, strconv.Itoa(i)), active); err != nil {
				return err
			}
		}
		l.toks = append(l.toks, Token{Kind: KindEndArray})
	case yaml.ScalarNode:
		tok, err := scalarToken(n)
		if err != nil {
			return parseError(path, err)
		}
		l.toks = append(l.toks, tok)
	default:
		return parseError(path, errors.New("unsupported YAML node"))
	}
	return nil
}

func scalarToken(n *yaml.Node) (Token, error) {
	switch n.ShortTag() {
	case "!!null":
		return Token{Kind: KindNull}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Token{}, err
		}
		return Token{Kind: KindBool, Bool: b}, nil
	case "!!int":
		var i big.Int
		var x int64
		if err := n.Decode(&x); err == nil {
			return Token{Kind: KindNumber, Number: strconv.FormatInt(x, 10)}, nil
		}
		if _, ok := i.SetString(n.Value, 0); ok {
			return Token{Kind: KindNumber, Number: i.String()}, nil
		}
		var u uint64
		if err := n.Decode(&u); err != nil {
			return Token{}, err
		}
		return Token{Kind: KindNumber, Number: strconv.FormatUint(u, 10)}, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Token{}, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Token{}, fmt.Errorf("line %d: non-finite number %q", n.Line, n.Value)
		}
		return Token{Kind: KindNumber, Number: strconv.FormatFloat(f, 'g', -1, 64)}, nil
	}
	return Token{Kind: KindString, String: n.Value}, nil
}
