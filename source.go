package goshape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/reoring/goshape/internal/decode"
)

// Source produces one untyped value for validation. Implementations apply
// the ParseOpt limits (MaxBytes, MaxDepth, duplicate keys, NumberMode).
type Source interface {
	Decode(ctx context.Context, opt ParseOpt) (any, error)
}

type format int

const (
	formatJSON format = iota
	formatYAML
)

type docSource struct {
	format format
	data   []byte
	r      io.Reader
}

// JSONBytes wraps a byte slice as a JSON Source.
func JSONBytes(b []byte) Source { return &docSource{format: formatJSON, data: b} }

// JSONReader wraps an io.Reader as a JSON Source. The reader is consumed
// as a stream unless MaxBytes is set.
func JSONReader(r io.Reader) Source { return &docSource{format: formatJSON, r: r} }

// YAMLBytes wraps a byte slice as a YAML Source. Only the first document is
// read.
func YAMLBytes(b []byte) Source { return &docSource{format: formatYAML, data: b} }

// YAMLReader wraps an io.Reader as a YAML Source.
func YAMLReader(r io.Reader) Source { return &docSource{format: formatYAML, r: r} }

// ctxReader stops reading once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func (s *docSource) Decode(ctx context.Context, opt ParseOpt) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var r io.Reader
	data := s.data
	if s.r != nil {
		r = ctxReader{ctx: ctx, r: s.r}
	} else {
		r = bytes.NewReader(data)
	}
	if opt.MaxBytes > 0 || (s.format == formatYAML && s.r != nil) {
		buf, err := readCapped(r, opt.MaxBytes)
		if err != nil {
			return nil, err
		}
		data = buf
		r = bytes.NewReader(data)
	}

	var toks decode.TokenSource
	switch s.format {
	case formatYAML:
		ts, err := decode.NewYAML(data)
		if err != nil {
			return nil, fromDecode(err)
		}
		toks = ts
	default:
		toks = decode.NewJSON(r)
	}
	toks = decode.Enforce(toks, decode.Limits{
		OnDuplicate: toDecodeDup(opt.Strictness.OnDuplicateKey),
		MaxDepth:    opt.depthLimit(),
		Warn:        warnSink(opt.OnWarning),
	})
	v, err := decode.Value(toks, toDecodeNumberMode(opt.NumberMode))
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		return nil, fromDecode(err)
	}
	return v, nil
}

// readCapped reads r fully, failing with a truncated DecodeError when more
// than limit bytes are available. limit <= 0 disables the cap.
func readCapped(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, readError(err)
		}
		return b, nil
	}
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, readError(err)
	}
	if int64(len(b)) > limit {
		return nil, &DecodeError{Code: "truncated", Path: "/", Message: fmt.Sprintf("input exceeds %d bytes", limit)}
	}
	return b, nil
}

func readError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &DecodeError{Code: "parse_error", Path: "/", Message: err.Error(), Err: err}
}

func fromDecode(err error) error {
	var ie *decode.IssueError
	if errors.As(err, &ie) {
		return &DecodeError{Code: ie.Code, Path: ie.Path, Message: ie.Message, Err: ie.Err}
	}
	return &DecodeError{Code: "parse_error", Path: "/", Message: err.Error(), Err: err}
}

func warnSink(fn func(*DecodeError)) func(decode.Issue) {
	if fn == nil {
		return nil
	}
	return func(is decode.Issue) {
		fn(&DecodeError{Code: is.Code, Path: is.Path, Message: is.Message})
	}
}

func toDecodeDup(s Severity) decode.Duplicate {
	switch s {
	case Warn:
		return decode.DupWarn
	case Error:
		return decode.DupError
	default:
		return decode.DupIgnore
	}
}

func toDecodeNumberMode(m NumberMode) decode.NumberMode {
	switch m {
	case NumberJSONNumber:
		return decode.NumberJSONNumber
	case NumberBigInt:
		return decode.NumberBigInt
	default:
		return decode.NumberFloat64
	}
}

// ParseFrom decodes src under opts and validates the result against n.
// Decode failures are returned as *DecodeError; validation failures as
// *ValidationError.
func ParseFrom(ctx context.Context, n *Node, src Source, opts ...ParseOpt) (any, error) {
	opt := lastOpt(opts)
	v, err := src.Decode(ctx, opt)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return n.Parse(v, opt)
}

// ParseFromAs is ParseFrom followed by a type assertion on the result.
func ParseFromAs[T any](ctx context.Context, n *Node, src Source, opts ...ParseOpt) (T, error) {
	var zero T
	v, err := ParseFrom(ctx, n, src, opts...)
	if err != nil {
		return zero, err
	}
	return castResult[T](v)
}
