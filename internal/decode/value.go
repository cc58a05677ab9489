package decode

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// NumberMode selects how number tokens are materialized.
type NumberMode int

const (
	NumberFloat64 NumberMode = iota
	NumberJSONNumber
	NumberBigInt
)

const maxSafeInteger = 1<<53 - 1

func convertNumber(text string, mode NumberMode) (any, error) {
	switch mode {
	case NumberJSONNumber:
		return json.Number(text), nil
	case NumberBigInt:
		if !strings.ContainsAny(text, ".eE") {
			var i big.Int
			if _, ok := i.SetString(text, 10); ok {
				if !i.IsInt64() || math.Abs(float64(i.Int64())) > maxSafeInteger {
					return &i, nil
				}
			}
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", text, err)
	}
	return f, nil
}

// Value reads exactly one value from src.
func Value(src TokenSource, mode NumberMode) (any, error) {
	d := &builder{src: src, mode: mode}
	tok, err := src.NextToken()
	if err != nil {
		var ie *IssueError
		if errors.As(err, &ie) {
			return nil, ie
		}
		return nil, parseError("", err)
	}
	v, err := d.value(tok, "")
	if err != nil {
		return nil, err
	}
	if _, err := src.NextToken(); !errors.Is(err, io.EOF) {
		return nil, parseError("", errors.New("unexpected data after top-level value"))
	}
	return v, nil
}

type builder struct {
	src  TokenSource
	mode NumberMode
}

func (d *builder) next(path string) (Token, error) {
	tok, err := d.src.NextToken()
	if err != nil {
		var ie *IssueError
		if errors.As(err, &ie) {
			return Token{}, ie
		}
		return Token{}, parseError(path, err)
	}
	return tok, nil
}

func (d *builder) value(tok Token, path string) (any, error) {
	switch tok.Kind {
	case KindBeginObject:
		m := make(map[string]any)
		for {
			kt, err := d.next(path)
			if err != nil {
				return nil, err
			}
			if kt.Kind == KindEndObject {
				return m, nil
			}
			if kt.Kind != KindKey {
				return nil, parseError(path, io.ErrUnexpectedEOF)
			}
			child := joinPointer(path, kt.String)
			vt, err := d.next(child)
			if err != nil {
				return nil, err
			}
			v, err := d.value(vt, child)
			if err != nil {
				return nil, err
			}
			m[kt.String] = v
		}
	case KindBeginArray:
		arr := []any{}
		for {
			et, err := d.next(path)
			if err != nil {
				return nil, err
			}
			if et.Kind == KindEndArray {
				return arr, nil
			}
			v, err := d.value(et, joinPointer(path, strconv.Itoa(len(arr))))
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
	case KindString:
		return tok.String, nil
	case KindNumber:
		v, err := convertNumber(tok.Number, d.mode)
		if err != nil {
			return nil, parseError(path, err)
		}
		return v, nil
	case KindBool:
		return tok.Bool, nil
	case KindNull:
		return nil, nil
	}
	return nil, parseError(path, fmt.Errorf("unexpected token kind %d", tok.Kind))
}
