package authhandlers

import (
	"errors"
	"log/slog"
	"net/http"

	authservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/auth/application"
	"github.com/Black-And-White-Club/trivia-ledger/internal/httpapi"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/trace"
)

// Handlers serves the session endpoints over HTTP and NATS request-reply.
type Handlers interface {
	HandleChallenge(w http.ResponseWriter, r *http.Request)
	HandleToken(w http.ResponseWriter, r *http.Request)
	HandleNATSChallenge(msg *nats.Msg)
	HandleNATSToken(msg *nats.Msg)
}

// AuthHandlers implements the Handlers interface.
type AuthHandlers struct {
	service authservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewAuthHandlers creates a new AuthHandlers instance.
func NewAuthHandlers(
	service authservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &AuthHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// ChallengeRequest is the body of POST /auth/challenge.
type ChallengeRequest struct {
	Address string `json:"address"`
}

// TokenRequest is the body of POST /auth/token. Signature is the unpadded base64url ed25519
// signature of the nonce bytes.
type TokenRequest struct {
	Address   string `json:"address"`
	Nonce     string `json:"nonce"`
	Signature string `json:"signature"`
}

// HandleChallenge issues a nonce for the requested address.
func (h *AuthHandlers) HandleChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AuthHandlers.HandleChallenge")
	defer span.End()

	var req ChallengeRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.BadRequest(w, err.Error())
		return
	}

	challenge, err := h.service.IssueChallenge(ctx, req.Address)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, challenge)
}

// HandleToken redeems a signed nonce for a bearer token.
func (h *AuthHandlers) HandleToken(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AuthHandlers.HandleToken")
	defer span.End()

	var req TokenRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.BadRequest(w, err.Error())
		return
	}

	resp, err := h.service.ExchangeChallenge(ctx, req.Address, req.Nonce, req.Signature)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, resp)
}

func (h *AuthHandlers) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Auth request failed", slog.String("error", err.Error()))
		httpapi.WriteJSON(w, status, httpapi.ErrorBody{Name: "Internal", Message: http.StatusText(status)})
		return
	}
	httpapi.WriteJSON(w, status, httpapi.ErrorBody{Name: "Unauthorized", Message: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, authservice.ErrInvalidAddress):
		return http.StatusBadRequest
	case errors.Is(err, authservice.ErrUnknownChallenge),
		errors.Is(err, authservice.ErrChallengeExpired),
		errors.Is(err, authservice.ErrInvalidSignature),
		errors.Is(err, authservice.ErrMissingToken),
		errors.Is(err, authservice.ErrInvalidToken),
		errors.Is(err, authservice.ErrExpiredToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
