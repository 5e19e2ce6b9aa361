// Package handlerwrapper adapts typed payload handlers to watermill handler functions.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/trivia-ledger/internal/observability/attr"
	"github.com/Black-And-White-Club/trivia-ledger/internal/signing"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Metadata keys understood by the wrapper and the event bus.
const (
	MetadataTopic         = "topic"
	MetadataCorrelationID = "correlation_id"
	MetadataSigner        = "signer"
	MetadataSignature     = "signature"
)

type ctxKey string

const ctxKeySigner ctxKey = "signer"

// Result is one outgoing message produced by a handler.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// Options tunes the wrapper.
type Options struct {
	// RequireSignature rejects messages whose payload is not signed by the metadata signer.
	RequireSignature bool
}

// SignerFromContext returns the verified signer of the message being handled.
func SignerFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(ctxKeySigner).(string)
	return s, ok && s != ""
}

// WithSigner stores a verified signer in ctx.
func WithSigner(ctx context.Context, signer string) context.Context {
	return context.WithValue(ctx, ctxKeySigner, signer)
}

// WrapTransformingTyped decodes the message payload into T, runs handler and encodes the
// results as outgoing messages. The outgoing topic travels in metadata.
func WrapTransformingTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	opts Options,
	handler func(context.Context, *T) ([]Result, error),
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx := msg.Context()
		ctx, span := tracer.Start(ctx, handlerName, trace.WithAttributes(
			attribute.String("message.uuid", msg.UUID),
		))
		defer span.End()

		correlationID := msg.Metadata.Get(MetadataCorrelationID)
		if correlationID == "" {
			correlationID = msg.UUID
		}
		ctx = attr.WithCorrelationID(ctx, correlationID)

		if opts.RequireSignature {
			signer := msg.Metadata.Get(MetadataSigner)
			if err := signing.Verify(signer, msg.Payload, msg.Metadata.Get(MetadataSignature)); err != nil {
				// Unsigned or forged messages are dropped, not retried.
				logger.WarnContext(ctx, "Rejected message with invalid signature",
					attr.ExtractCorrelationID(ctx),
					attr.String("handler", handlerName),
					attr.Signer(signer),
					attr.Error(err),
				)
				span.RecordError(err)
				return nil, nil
			}
			ctx = WithSigner(ctx, signer)
		}

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.WarnContext(ctx, "Dropping message with undecodable payload",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.Error(err),
			)
			span.RecordError(err)
			return nil, nil
		}

		results, err := handler(ctx, payload)
		if err != nil {
			logger.ErrorContext(ctx, "Handler failed",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.Error(err),
			)
			span.RecordError(err)
			return nil, err
		}

		out := make([]*message.Message, 0, len(results))
		for _, r := range results {
			m, err := buildMessage(r, correlationID)
			if err != nil {
				span.RecordError(err)
				return nil, err
			}
			out = append(out, m)
		}
		return out, nil
	}
}

func buildMessage(r Result, correlationID string) (*message.Message, error) {
	body, err := json.Marshal(r.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload for %s: %w", r.Topic, err)
	}
	m := message.NewMessage(watermill.NewUUID(), body)
	for k, v := range r.Metadata {
		m.Metadata.Set(k, v)
	}
	m.Metadata.Set(MetadataTopic, r.Topic)
	m.Metadata.Set(MetadataCorrelationID, correlationID)
	return m, nil
}
