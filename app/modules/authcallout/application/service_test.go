package authcallout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Black-And-White-Club/trivia-ledger/app/events"
	authdomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/auth/domain"
	"github.com/Black-And-White-Club/trivia-ledger/internal/clock"
	"github.com/nats-io/nkeys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const (
	goodToken = "good-token"
	signer    = "UDXU4RCSJNZOIQHZNWXHXORDPRTGNJAHAHFRGZNEEJCPQTT2M7NLCNF4"
)

func newTestService(t *testing.T, cfg Config) (*AuthCalloutService, nkeys.KeyPair) {
	t.Helper()
	account, err := nkeys.CreateAccount()
	require.NoError(t, err)
	sessions := &FakeSessions{
		ValidateTokenFunc: func(token string) (*authdomain.Claims, error) {
			if token != goodToken {
				return nil, errors.New("token is expired")
			}
			return &authdomain.Claims{Signer: signer, ExpiresAt: t0.Add(2 * time.Hour)}, nil
		},
	}
	svc := NewService(sessions, account, clock.NewFake(t0), cfg,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		noop.NewTracerProvider().Tracer("test"),
	)
	return svc, account
}

func TestHandleAuthRequest(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		req         AuthRequest
		wantError   string
		wantName    string
		wantExpires time.Time
		canPublish  bool
	}{
		{
			name:        "session token caps expiry at token lifetime",
			cfg:         Config{IssuerAccount: "TRIVIA", UserTTL: 24 * time.Hour},
			req:         AuthRequest{UserNkey: "UCONN", ConnectOpts: ConnectOptions{Password: goodToken}},
			wantName:    signer,
			wantExpires: t0.Add(2 * time.Hour),
			canPublish:  true,
		},
		{
			name:        "user ttl shorter than token",
			cfg:         Config{IssuerAccount: "TRIVIA", UserTTL: 30 * time.Minute},
			req:         AuthRequest{UserNkey: "UCONN", ConnectOpts: ConnectOptions{Password: goodToken}},
			wantName:    signer,
			wantExpires: t0.Add(30 * time.Minute),
			canPublish:  true,
		},
		{
			name:      "missing token",
			cfg:       Config{},
			req:       AuthRequest{UserNkey: "UCONN"},
			wantError: "missing authentication token",
		},
		{
			name:      "invalid token",
			cfg:       Config{},
			req:       AuthRequest{UserNkey: "UCONN", ConnectOpts: ConnectOptions{Password: "stale"}},
			wantError: "invalid token: token is expired",
		},
		{
			name:        "anonymous viewer",
			cfg:         Config{AllowAnonymous: true, UserTTL: time.Hour},
			req:         AuthRequest{UserNkey: "UCONN"},
			wantName:    "anonymous",
			wantExpires: t0.Add(time.Hour),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, account := newTestService(t, tt.cfg)
			resp, err := svc.HandleAuthRequest(context.Background(), &tt.req)
			require.NoError(t, err)

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, resp.Error)
				assert.Empty(t, resp.Jwt)
				return
			}
			require.Empty(t, resp.Error)

			claims, err := decodeUserClaims(resp.Jwt)
			require.NoError(t, err)
			issuer, err := account.PublicKey()
			require.NoError(t, err)

			assert.Equal(t, issuer, claims.Issuer)
			assert.Equal(t, tt.req.UserNkey, claims.Subject)
			assert.Equal(t, tt.wantName, claims.Name)
			assert.Equal(t, tt.cfg.IssuerAccount, claims.Audience)
			assert.Equal(t, tt.wantExpires.Unix(), claims.Expires)
			assert.Equal(t, t0.Unix(), claims.IssuedAt)
			assert.Contains(t, claims.Permissions.Sub.Allow, "tournament.>")
			if tt.canPublish {
				assert.Contains(t, claims.Permissions.Pub.Allow, events.ScoreSubmitRequestedV1)
				assert.Contains(t, claims.Permissions.Pub.Deny, events.RewardClaimedV1)
			} else {
				assert.Equal(t, []string{">"}, claims.Permissions.Pub.Deny)
				assert.Empty(t, claims.Permissions.Pub.Allow)
			}
		})
	}
}

func TestHandleAuthRequest_SubjectDefaultsToSigningKey(t *testing.T) {
	svc, account := newTestService(t, Config{})
	resp, err := svc.HandleAuthRequest(context.Background(), &AuthRequest{ConnectOpts: ConnectOptions{Password: goodToken}})
	require.NoError(t, err)

	claims, err := decodeUserClaims(resp.Jwt)
	require.NoError(t, err)
	pub, err := account.PublicKey()
	require.NoError(t, err)
	assert.Equal(t, pub, claims.Subject)
	assert.Equal(t, t0.Add(2*time.Hour).Unix(), claims.Expires)
}
