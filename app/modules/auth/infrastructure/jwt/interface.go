package authjwt

import (
	"time"

	authdomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/auth/domain"
)

// Provider defines the interface for JWT token operations.
type Provider interface {
	// GenerateToken creates a signed JWT whose subject is signer.
	GenerateToken(signer string, ttl time.Duration) (string, error)

	// ValidateToken validates a JWT token and returns the claims if valid.
	ValidateToken(tokenString string) (*authdomain.Claims, error)
}
