// Package middleware validates JSON request bodies at net/http boundaries.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	json "github.com/goccy/go-json"

	goshape "github.com/reoring/goshape"
)

// ctxKeyValue is a typed context key for the parsed request body.
type ctxKeyValue struct{}

// ContextWithValue attaches a parsed body to the context.
func ContextWithValue(ctx context.Context, v any) context.Context {
	return context.WithValue(ctx, ctxKeyValue{}, v)
}

// ValueFromContext retrieves the parsed body stored by Validate.
func ValueFromContext(ctx context.Context) (any, bool) {
	v := ctx.Value(ctxKeyValue{})
	if v == nil {
		return nil, false
	}
	return v, true
}

// DefaultParseOpt returns a recommended default for HTTP JSON boundaries.
// - Duplicate keys are errors
// - Unknown keys are stripped
// - Bodies are capped at 1 MiB
func DefaultParseOpt() goshape.ParseOpt {
	return goshape.ParseOpt{
		Mode:       goshape.UnknownStrip,
		Strictness: goshape.Strictness{OnDuplicateKey: goshape.Error},
		MaxBytes:   1 << 20,
	}
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues []goshape.Issue) map[string]any {
	return map[string]any{"issues": issues}
}

// Option configures Validate.
type Option func(*config)

type config struct {
	log *slog.Logger
}

// WithLogger sets the logger for rejected requests. nil means slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.log = l }
}

// Validate parses each request body against n before calling next. Invalid
// bodies are answered with 422 and an issues payload; undecodable ones with
// 400.
func Validate(n *goshape.Node, opt goshape.ParseOpt, next http.Handler, opts ...Option) http.Handler {
	cfg := config{}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.log == nil {
		cfg.log = slog.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, err := goshape.ParseFrom(r.Context(), n, goshape.JSONReader(r.Body), opt)
		if err != nil {
			reject(w, r, cfg.log, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithValue(r.Context(), v)))
	})
}

func reject(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	if issues, ok := goshape.AsIssues(err); ok {
		log.InfoContext(r.Context(), "request rejected",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("issues", len(issues)))
		writeJSON(w, http.StatusUnprocessableEntity, ErrorPayload(issues))
		return
	}
	var de *goshape.DecodeError
	if errors.As(err, &de) {
		log.InfoContext(r.Context(), "request body undecodable",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("code", de.Code))
		status := http.StatusBadRequest
		if de.Code == "truncated" {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, map[string]any{"error": map[string]any{"code": de.Code, "path": de.Path, "message": de.Message}})
		return
	}
	log.WarnContext(r.Context(), "request validation aborted", slog.Any("err", err))
	http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
