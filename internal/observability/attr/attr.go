// Package attr holds the slog attribute helpers shared by services and handlers.
package attr

import (
	"context"
	"log/slog"
)

type ctxKey string

// CorrelationIDKey is the context key carrying the correlation id of the current message or
// request.
const CorrelationIDKey ctxKey = "correlation_id"

// WithCorrelationID stores id in ctx.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// ExtractCorrelationID returns the correlation id attribute, empty when absent.
func ExtractCorrelationID(ctx context.Context) slog.Attr {
	id, _ := ctx.Value(CorrelationIDKey).(string)
	return slog.String("correlation_id", id)
}

func String(key, value string) slog.Attr { return slog.String(key, value) }

func Uint64(key string, value uint64) slog.Attr { return slog.Uint64(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func Any(key string, value any) slog.Attr { return slog.Any(key, value) }

func Bool(key string, value bool) slog.Attr { return slog.Bool(key, value) }

// Signer tags the address that signed an instruction.
func Signer(address string) slog.Attr { return slog.String("signer", address) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
