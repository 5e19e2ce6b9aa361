package authhandlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	authservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/auth/application"
	authdomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/trivia-ledger/app/modules/auth/infrastructure/jwt"
	"github.com/Black-And-White-Club/trivia-ledger/internal/clock"
	"github.com/Black-And-White-Club/trivia-ledger/internal/handlerwrapper"
	"github.com/Black-And-White-Club/trivia-ledger/internal/signing"
	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/time/rate"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newHandlers(svc authservice.Service) Handlers {
	return NewAuthHandlers(svc, discard, noop.NewTracerProvider().Tracer("test"))
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestAuthHandlers_HandleChallenge(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantTrace  []string
	}{
		{name: "success", body: `{"address":"UA"}`, wantStatus: http.StatusOK, wantTrace: []string{"IssueChallenge"}},
		{name: "bad json", body: `{`, wantStatus: http.StatusBadRequest},
		{name: "bad address", body: `{"address":"x"}`, err: authservice.ErrInvalidAddress, wantStatus: http.StatusBadRequest, wantTrace: []string{"IssueChallenge"}},
		{name: "internal", body: `{"address":"UA"}`, err: errors.New("entropy"), wantStatus: http.StatusInternalServerError, wantTrace: []string{"IssueChallenge"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &FakeService{}
			if tt.err != nil {
				svc.IssueChallengeFunc = func(context.Context, string) (*authdomain.Challenge, error) { return nil, tt.err }
			}
			rec := post(newHandlers(svc).HandleChallenge, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantTrace, svc.Trace())
		})
	}
}

func TestAuthHandlers_HandleToken(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "success", wantStatus: http.StatusOK},
		{name: "unknown nonce", err: authservice.ErrUnknownChallenge, wantStatus: http.StatusUnauthorized},
		{name: "expired nonce", err: authservice.ErrChallengeExpired, wantStatus: http.StatusUnauthorized},
		{name: "bad signature", err: authservice.ErrInvalidSignature, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got [3]string
			svc := &FakeService{
				ExchangeChallengeFunc: func(_ context.Context, address, nonce, signature string) (*authservice.TokenResponse, error) {
					got = [3]string{address, nonce, signature}
					if tt.err != nil {
						return nil, tt.err
					}
					return &authservice.TokenResponse{Token: "jwt", Signer: address}, nil
				},
			}
			rec := post(newHandlers(svc).HandleToken, `{"address":"UA","nonce":"n","signature":"s"}`)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, [3]string{"UA", "n", "s"}, got)
		})
	}
}

// TestSessionFlow drives challenge, token and a bearer-protected route with the real
// service.
func TestSessionFlow(t *testing.T) {
	svc := authservice.NewService(
		authjwt.NewProvider("test-secret-at-least-32-chars-long!!", ""),
		authservice.NewChallengeStore(),
		clock.RealClock{},
		authservice.Config{},
		discard,
		nil,
	)
	h := newHandlers(svc)

	r := chi.NewRouter()
	r.Post("/auth/challenge", h.HandleChallenge)
	r.Post("/auth/token", h.HandleToken)
	r.Group(func(r chi.Router) {
		r.Use(BearerMiddleware(svc, discard))
		r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
			signer, _ := handlerwrapper.SignerFromContext(r.Context())
			_, _ = w.Write([]byte(signer))
		})
	})

	kp, address, err := signing.NewSigner()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/challenge", strings.NewReader(`{"address":"`+address+`"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var challenge authdomain.Challenge
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &challenge))

	sig, err := signing.Sign(kp, []byte(challenge.Nonce))
	require.NoError(t, err)
	body, err := json.Marshal(TokenRequest{Address: address, Nonce: challenge.Nonce, Signature: sig})
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(string(body))))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var token authservice.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &token))
	assert.Equal(t, address, token.Signer)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token.Token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, address, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewKeyedRateLimiter(rate.Every(time.Hour), 2)
	handler := RateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(signer string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if signer != "" {
			req = req.WithContext(handlerwrapper.WithSigner(req.Context(), signer))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call("UALICE"))
	assert.Equal(t, http.StatusNoContent, call("UALICE"))
	assert.Equal(t, http.StatusTooManyRequests, call("UALICE"))
	assert.Equal(t, http.StatusNoContent, call("UBOB"), "buckets are per signer")
	assert.Equal(t, http.StatusNoContent, call(""))
}

func TestCORSMiddleware(t *testing.T) {
	handler := CORSMiddleware([]string{"https://trivia.example"})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{name: "allowed origin", method: http.MethodGet, origin: "https://trivia.example", wantStatus: http.StatusOK, wantAllow: "https://trivia.example"},
		{name: "other origin", method: http.MethodGet, origin: "https://evil.example", wantStatus: http.StatusOK},
		{name: "preflight", method: http.MethodOptions, origin: "https://trivia.example", wantStatus: http.StatusNoContent, wantAllow: "https://trivia.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantAllow, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestEncodeReply(t *testing.T) {
	data, err := encodeReply(&authdomain.Challenge{Address: "UA", Nonce: "n"}, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":{"address":"UA","nonce":"n","expires_at":"0001-01-01T00:00:00Z"}}`, string(data))

	data, err = encodeReply(nil, authservice.ErrInvalidAddress)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"address is not a valid signer"}`, string(data))
}

func TestHandleNATSChallengeWithoutReply(t *testing.T) {
	svc := &FakeService{}
	newHandlers(svc).HandleNATSChallenge(&nats.Msg{Subject: "auth.challenge", Data: []byte(`{"address":"UA"}`)})
	assert.Equal(t, []string{"IssueChallenge"}, svc.Trace())
}
