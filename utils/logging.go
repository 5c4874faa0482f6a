package utils

import (
	"io"
	"log/slog"

	"github.com/samber/oops"
)

// NewLogger returns a JSON logger in production and a text logger
// everywhere else.
func NewLogger(w io.Writer, production bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if production {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// LogError logs err with its oops code and context when it has them.
func LogError(logger *slog.Logger, msg string, err error) {
	if o, ok := oops.AsOops(err); ok {
		attrs := []any{"error", o.Error()}
		if code := o.Code(); code != nil {
			attrs = append(attrs, "code", code)
		}
		if ctx := o.Context(); len(ctx) > 0 {
			attrs = append(attrs, "context", ctx)
		}
		logger.Error(msg, attrs...)
		return
	}
	logger.Error(msg, "error", err)
}
