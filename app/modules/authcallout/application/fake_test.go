package authcallout

import (
	"context"

	authservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/auth/application"
	authdomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/auth/domain"
)

// FakeSessions implements authservice.Service. Only ValidateToken is used by the callout.
type FakeSessions struct {
	ValidateTokenFunc func(token string) (*authdomain.Claims, error)
}

var _ authservice.Service = (*FakeSessions)(nil)

func (f *FakeSessions) IssueChallenge(context.Context, string) (*authdomain.Challenge, error) {
	return nil, nil
}

func (f *FakeSessions) ExchangeChallenge(context.Context, string, string, string) (*authservice.TokenResponse, error) {
	return nil, nil
}

func (f *FakeSessions) ValidateToken(_ context.Context, token string) (*authdomain.Claims, error) {
	if f.ValidateTokenFunc != nil {
		return f.ValidateTokenFunc(token)
	}
	return nil, nil
}
