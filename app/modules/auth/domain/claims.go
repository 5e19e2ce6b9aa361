package authdomain

import (
	"time"
)

// Claims represents the domain model for an API session. Signer is the nkey user public key
// that proved possession of its seed.
type Claims struct {
	Signer    string
	TokenID   string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// IsExpired checks if the claims have expired at now.
func (c *Claims) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Challenge is a nonce handed to an address that must sign it to obtain a session.
type Challenge struct {
	Address   string    `json:"address"`
	Nonce     string    `json:"nonce"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired checks if the challenge can no longer be redeemed at now.
func (c *Challenge) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
