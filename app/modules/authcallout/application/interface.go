package authcallout

import "context"

// Service decides NATS connection requests.
type Service interface {
	HandleAuthRequest(ctx context.Context, req *AuthRequest) (*AuthResponse, error)
}

// AuthRequest is the auth callout request relayed by the NATS server.
type AuthRequest struct {
	UserNkey    string         `json:"user_nkey,omitempty"`
	ConnectOpts ConnectOptions `json:"connect_opts"`
	ClientInfo  ClientInfo     `json:"client_info"`
}

// ConnectOptions carries the client's credentials. Password holds the session token.
type ConnectOptions struct {
	Password string `json:"pass"`
	User     string `json:"user,omitempty"`
}

// ClientInfo describes the connecting client.
type ClientInfo struct {
	Host string `json:"host,omitempty"`
	ID   uint64 `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// AuthResponse carries either a signed user JWT or a refusal.
type AuthResponse struct {
	Jwt   string `json:"jwt,omitempty"`
	Error string `json:"error,omitempty"`
}
