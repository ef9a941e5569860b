package correlation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
)

type contextKey struct{}

// scope is what a context carries: an id plus attributes added to every
// record logged with that context.
type scope struct {
	id    string
	attrs []slog.Attr
}

// NewID generates an 8-character hex correlation ID (4 random bytes).
func NewID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func fromContext(ctx context.Context) scope {
	s, _ := ctx.Value(contextKey{}).(scope)
	return s
}

// WithID returns a context carrying id. Attributes already on ctx are kept.
func WithID(ctx context.Context, id string) context.Context {
	s := fromContext(ctx)
	s.id = id
	return context.WithValue(ctx, contextKey{}, s)
}

// WithAttrs returns a context whose log records also carry attrs.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	s := fromContext(ctx)
	merged := make([]slog.Attr, 0, len(s.attrs)+len(attrs))
	merged = append(merged, s.attrs...)
	merged = append(merged, attrs...)
	s.attrs = merged
	return context.WithValue(ctx, contextKey{}, s)
}

// ID extracts the correlation ID from ctx, returning ("", false) if not present.
func ID(ctx context.Context) (string, bool) {
	s := fromContext(ctx)
	return s.id, s.id != ""
}

// Handler wraps a slog.Handler and adds "correlation_id" plus any scoped
// attributes from the record's context.
type Handler struct {
	inner slog.Handler
}

func NewHandler(inner slog.Handler) *Handler {
	return &Handler{inner: inner}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	s := fromContext(ctx)
	if s.id != "" {
		r.AddAttrs(slog.String("correlation_id", s.id))
	}
	r.AddAttrs(s.attrs...)
	if err := h.inner.Handle(ctx, r); err != nil {
		return fmt.Errorf("correlation handler: %w", err)
	}
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{inner: h.inner.WithAttrs(attrs)}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{inner: h.inner.WithGroup(name)}
}
