package authservice

import (
	"context"
	"time"

	authdomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/auth/domain"
)

// Service defines the authentication service interface.
type Service interface {
	// IssueChallenge hands address a single-use nonce to sign.
	IssueChallenge(ctx context.Context, address string) (*authdomain.Challenge, error)

	// ExchangeChallenge redeems a signed nonce for a session token whose subject is address.
	ExchangeChallenge(ctx context.Context, address, nonce, signature string) (*TokenResponse, error)

	// ValidateToken validates a session token and returns the claims if valid.
	ValidateToken(ctx context.Context, tokenString string) (*authdomain.Claims, error)
}

// TokenResponse is a freshly minted session.
type TokenResponse struct {
	Token     string    `json:"token"`
	Signer    string    `json:"signer"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Config holds the configuration for the auth service.
type Config struct {
	TokenTTL     time.Duration
	ChallengeTTL time.Duration
}
