package authservice

import "errors"

var (
	// ErrInvalidToken is returned when the token is invalid.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrMissingToken is returned when no token is provided.
	ErrMissingToken = errors.New("missing authentication token")

	// ErrInvalidAddress is returned when the address is not an nkey user public key.
	ErrInvalidAddress = errors.New("address is not a valid signer")

	// ErrUnknownChallenge is returned for nonces that were never issued, were already redeemed
	// or belong to another address.
	ErrUnknownChallenge = errors.New("unknown challenge")

	// ErrChallengeExpired is returned when the nonce outlived its TTL.
	ErrChallengeExpired = errors.New("challenge has expired")

	// ErrInvalidSignature is returned when the nonce signature does not verify.
	ErrInvalidSignature = errors.New("challenge signature does not match address")

	// ErrGenerateToken is returned when token generation fails.
	ErrGenerateToken = errors.New("failed to generate token")
)
