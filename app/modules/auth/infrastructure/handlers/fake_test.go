package authhandlers

import (
	"context"

	authservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/auth/application"
	authdomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/auth/domain"
)

// ------------------------
// Fake Service
// ------------------------

type FakeService struct {
	trace []string

	IssueChallengeFunc    func(ctx context.Context, address string) (*authdomain.Challenge, error)
	ExchangeChallengeFunc func(ctx context.Context, address, nonce, signature string) (*authservice.TokenResponse, error)
	ValidateTokenFunc     func(ctx context.Context, tokenString string) (*authdomain.Claims, error)
}

func (f *FakeService) Trace() []string {
	return f.trace
}

func (f *FakeService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeService) IssueChallenge(ctx context.Context, address string) (*authdomain.Challenge, error) {
	f.record("IssueChallenge")
	if f.IssueChallengeFunc != nil {
		return f.IssueChallengeFunc(ctx, address)
	}
	return &authdomain.Challenge{Address: address, Nonce: "nonce"}, nil
}

func (f *FakeService) ExchangeChallenge(ctx context.Context, address, nonce, signature string) (*authservice.TokenResponse, error) {
	f.record("ExchangeChallenge")
	if f.ExchangeChallengeFunc != nil {
		return f.ExchangeChallengeFunc(ctx, address, nonce, signature)
	}
	return &authservice.TokenResponse{Token: "token", Signer: address}, nil
}

func (f *FakeService) ValidateToken(ctx context.Context, tokenString string) (*authdomain.Claims, error) {
	f.record("ValidateToken")
	if f.ValidateTokenFunc != nil {
		return f.ValidateTokenFunc(ctx, tokenString)
	}
	return &authdomain.Claims{Signer: tokenString}, nil
}

var _ authservice.Service = (*FakeService)(nil)
