package authcallout

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nkeys"
)

const jwtAlgorithm = "ed25519-nkey"

// UserClaims is the payload of a NATS user JWT.
type UserClaims struct {
	Subject     string          `json:"sub"`
	Audience    string          `json:"aud,omitempty"`
	Expires     int64           `json:"exp,omitempty"`
	IssuedAt    int64           `json:"iat"`
	Issuer      string          `json:"iss"`
	Name        string          `json:"name,omitempty"`
	Type        string          `json:"type"`
	Version     int             `json:"version"`
	Permissions UserPermissions `json:"nats"`
}

// UserPermissions are the subjects the connection may use.
type UserPermissions struct {
	Pub  PermissionRules `json:"pub,omitempty"`
	Sub  PermissionRules `json:"sub,omitempty"`
	Resp *RespPermission `json:"resp,omitempty"`
}

// PermissionRules lists allowed and denied subject patterns.
type PermissionRules struct {
	Allow []string `json:"allow,omitempty"`
	Deny  []string `json:"deny,omitempty"`
}

// RespPermission lets the user answer one request per inbox within TTL milliseconds.
type RespPermission struct {
	Max int `json:"max,omitempty"`
	TTL int `json:"ttl,omitempty"`
}

// NewUserClaims returns claims for subject issued at now.
func NewUserClaims(subject string, now time.Time) *UserClaims {
	return &UserClaims{
		Subject:  subject,
		IssuedAt: now.Unix(),
		Type:     "user",
		Version:  2,
		Permissions: UserPermissions{
			Resp: &RespPermission{Max: 1, TTL: 5000},
		},
	}
}

// Encode signs the claims with kp, which becomes the issuer.
func (c *UserClaims) Encode(kp nkeys.KeyPair) (string, error) {
	issuer, err := kp.PublicKey()
	if err != nil {
		return "", fmt.Errorf("failed to get issuer public key: %w", err)
	}
	c.Issuer = issuer

	headerJSON, err := json.Marshal(map[string]string{"typ": "JWT", "alg": jwtAlgorithm})
	if err != nil {
		return "", fmt.Errorf("failed to marshal header: %w", err)
	}
	claimsJSON, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) + "." +
		base64.RawURLEncoding.EncodeToString(claimsJSON)

	sig, err := kp.Sign([]byte(signingInput))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}
