package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	authcallout "github.com/Black-And-White-Club/trivia-ledger/app/modules/authcallout/application"
	"github.com/Black-And-White-Club/trivia-ledger/internal/observability/attr"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/trace"
)

// AuthHandler handles NATS auth callout messages.
type AuthHandler struct {
	service authcallout.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	service authcallout.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// HandleAuthCallout processes an auth callout message from NATS.
func (h *AuthHandler) HandleAuthCallout(msg *nats.Msg) {
	reply := h.Decide(context.Background(), msg.Data)
	if err := msg.Respond(reply); err != nil {
		h.logger.Error("Failed to send auth response",
			attr.Error(err),
		)
	}
}

// Decide turns a raw request into the encoded response.
func (h *AuthHandler) Decide(ctx context.Context, data []byte) []byte {
	ctx, span := h.tracer.Start(ctx, "AuthHandler.Decide")
	defer span.End()

	var req authcallout.AuthRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.logger.WarnContext(ctx, "Failed to unmarshal auth request",
			attr.Error(err),
		)
		return encodeResponse(&authcallout.AuthResponse{Error: "invalid request format"})
	}

	resp, err := h.service.HandleAuthRequest(ctx, &req)
	if err != nil {
		h.logger.ErrorContext(ctx, "Auth request processing failed",
			attr.Error(err),
		)
		return encodeResponse(&authcallout.AuthResponse{Error: "internal error"})
	}
	if resp.Error != "" {
		h.logger.WarnContext(ctx, "Auth request denied",
			attr.String("error", resp.Error),
		)
	}
	return encodeResponse(resp)
}

func encodeResponse(resp *authcallout.AuthResponse) []byte {
	data, _ := json.Marshal(resp)
	return data
}
