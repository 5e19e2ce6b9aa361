package authhandlers

import (
	"context"
	"encoding/json"

	"github.com/Black-And-White-Club/trivia-ledger/internal/observability/attr"
	"github.com/nats-io/nats.go"
)

// NATSReply is the response to a request-reply auth message. Exactly one of Result and Error
// is set.
type NATSReply struct {
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// HandleNATSChallenge answers a ChallengeRequest sent over NATS.
func (h *AuthHandlers) HandleNATSChallenge(msg *nats.Msg) {
	ctx, span := h.tracer.Start(context.Background(), "AuthHandlers.HandleNATSChallenge")
	defer span.End()

	var req ChallengeRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		h.respond(ctx, msg, nil, err)
		return
	}
	challenge, err := h.service.IssueChallenge(ctx, req.Address)
	h.respond(ctx, msg, challenge, err)
}

// HandleNATSToken answers a TokenRequest sent over NATS.
func (h *AuthHandlers) HandleNATSToken(msg *nats.Msg) {
	ctx, span := h.tracer.Start(context.Background(), "AuthHandlers.HandleNATSToken")
	defer span.End()

	var req TokenRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		h.respond(ctx, msg, nil, err)
		return
	}
	resp, err := h.service.ExchangeChallenge(ctx, req.Address, req.Nonce, req.Signature)
	h.respond(ctx, msg, resp, err)
}

func (h *AuthHandlers) respond(ctx context.Context, msg *nats.Msg, result any, err error) {
	data, mErr := encodeReply(result, err)
	if mErr != nil {
		h.logger.ErrorContext(ctx, "Failed to marshal auth reply", attr.Error(mErr))
		return
	}
	if msg.Reply == "" {
		h.logger.WarnContext(ctx, "Auth request without reply subject", attr.String("subject", msg.Subject))
		return
	}
	if rErr := msg.Respond(data); rErr != nil {
		h.logger.ErrorContext(ctx, "Failed to send auth reply",
			attr.String("subject", msg.Subject),
			attr.Error(rErr),
		)
	}
}

func encodeReply(result any, err error) ([]byte, error) {
	reply := NATSReply{Result: result}
	if err != nil {
		reply = NATSReply{Error: err.Error()}
	}
	return json.Marshal(reply)
}
