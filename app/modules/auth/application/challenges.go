package authservice

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	authdomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/auth/domain"
)

const (
	nonceBytes = 32
	// cleanupThreshold is the minimum store size before a pruning pass runs.
	cleanupThreshold = 1000
)

// ChallengeStore keeps outstanding nonces in memory. Expired entries are pruned inline once
// the store grows past cleanupThreshold.
type ChallengeStore struct {
	mu      sync.Mutex
	pending map[string]authdomain.Challenge
}

// NewChallengeStore creates an empty store.
func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{pending: make(map[string]authdomain.Challenge)}
}

// Issue records a new nonce for address, valid until now+ttl.
func (s *ChallengeStore) Issue(address string, now time.Time, ttl time.Duration) (authdomain.Challenge, error) {
	buf := make([]byte, nonceBytes)
	if _, err := rand.Read(buf); err != nil {
		return authdomain.Challenge{}, fmt.Errorf("failed to generate nonce: %w", err)
	}
	c := authdomain.Challenge{
		Address:   address,
		Nonce:     base64.RawURLEncoding.EncodeToString(buf),
		ExpiresAt: now.Add(ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) > cleanupThreshold {
		for k, p := range s.pending {
			if p.IsExpired(now) {
				delete(s.pending, k)
			}
		}
	}
	s.pending[c.Nonce] = c
	return c, nil
}

// Redeem removes nonce and returns it. A nonce can be redeemed once, whatever the outcome
// of the signature check that follows.
func (s *ChallengeStore) Redeem(address, nonce string, now time.Time) (authdomain.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.pending[nonce]
	if !ok || c.Address != address {
		return authdomain.Challenge{}, ErrUnknownChallenge
	}
	delete(s.pending, nonce)
	if c.IsExpired(now) {
		return authdomain.Challenge{}, ErrChallengeExpired
	}
	return c, nil
}

// Len reports the number of outstanding nonces.
func (s *ChallengeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
