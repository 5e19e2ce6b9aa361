// Package signing proves that a message was produced by the holder of a signer address.
// Signer addresses are nkey user public keys; signatures are raw ed25519 signatures encoded
// as unpadded base64url.
package signing

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/nats-io/nkeys"
)

var (
	ErrInvalidAddress   = errors.New("signer address is not a valid user public key")
	ErrInvalidSignature = errors.New("signature does not match signer")
	ErrMissingSignature = errors.New("signature missing")
)

// ValidateAddress reports whether address is a well-formed signer address.
func ValidateAddress(address string) error {
	if !nkeys.IsValidPublicUserKey(address) {
		return ErrInvalidAddress
	}
	return nil
}

// Verify checks sig against payload for address.
func Verify(address string, payload []byte, sig string) error {
	if sig == "" {
		return ErrMissingSignature
	}
	if err := ValidateAddress(address); err != nil {
		return err
	}
	kp, err := nkeys.FromPublicKey(address)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	raw, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if err := kp.Verify(payload, raw); err != nil {
		return ErrInvalidSignature
	}
	return nil
}

// Sign signs payload with kp. Used by tooling and tests.
func Sign(kp nkeys.KeyPair, payload []byte) (string, error) {
	raw, err := kp.Sign(payload)
	if err != nil {
		return "", fmt.Errorf("failed to sign payload: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// NewSigner creates a fresh user key pair and returns it with its address.
func NewSigner() (nkeys.KeyPair, string, error) {
	kp, err := nkeys.CreateUser()
	if err != nil {
		return nil, "", fmt.Errorf("failed to create user key: %w", err)
	}
	pub, err := kp.PublicKey()
	if err != nil {
		return nil, "", fmt.Errorf("failed to read public key: %w", err)
	}
	return kp, pub, nil
}

// FromSeed loads a key pair from an nkey seed, as stored in admin configuration.
func FromSeed(seed string) (nkeys.KeyPair, string, error) {
	kp, err := nkeys.FromSeed([]byte(seed))
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse seed: %w", err)
	}
	pub, err := kp.PublicKey()
	if err != nil {
		return nil, "", fmt.Errorf("failed to read public key: %w", err)
	}
	return kp, pub, nil
}
