package authservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	authdomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/trivia-ledger/app/modules/auth/infrastructure/jwt"
	"github.com/Black-And-White-Club/trivia-ledger/internal/clock"
	"github.com/Black-And-White-Club/trivia-ledger/internal/observability/attr"
	"github.com/Black-And-White-Club/trivia-ledger/internal/signing"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	DefaultTokenTTL     = 24 * time.Hour
	DefaultChallengeTTL = 2 * time.Minute
)

// service implements the Service interface.
type service struct {
	jwtProvider authjwt.Provider
	challenges  *ChallengeStore
	clock       clock.Clock
	config      Config
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewService creates a new auth service.
func NewService(
	jwtProvider authjwt.Provider,
	challenges *ChallengeStore,
	clk clock.Clock,
	config Config,
	logger *slog.Logger,
	tracer trace.Tracer,
) Service {
	if config.TokenTTL <= 0 {
		config.TokenTTL = DefaultTokenTTL
	}
	if config.ChallengeTTL <= 0 {
		config.ChallengeTTL = DefaultChallengeTTL
	}
	if challenges == nil {
		challenges = NewChallengeStore()
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("auth")
	}
	return &service{
		jwtProvider: jwtProvider,
		challenges:  challenges,
		clock:       clk,
		config:      config,
		logger:      logger,
		tracer:      tracer,
	}
}

// IssueChallenge hands address a single-use nonce to sign.
func (s *service) IssueChallenge(ctx context.Context, address string) (*authdomain.Challenge, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.IssueChallenge")
	defer span.End()

	if err := signing.ValidateAddress(address); err != nil {
		return nil, ErrInvalidAddress
	}

	c, err := s.challenges.Issue(address, s.clock.Now(), s.config.ChallengeTTL)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.logger.DebugContext(ctx, "Issued challenge",
		attr.String("address", address),
		attr.Any("expires_at", c.ExpiresAt),
	)
	return &c, nil
}

// ExchangeChallenge redeems a signed nonce for a session token.
func (s *service) ExchangeChallenge(ctx context.Context, address, nonce, signature string) (*TokenResponse, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.ExchangeChallenge")
	defer span.End()

	if err := signing.ValidateAddress(address); err != nil {
		return nil, ErrInvalidAddress
	}

	now := s.clock.Now()
	c, err := s.challenges.Redeem(address, nonce, now)
	if err != nil {
		s.logger.WarnContext(ctx, "Challenge rejected",
			attr.String("address", address),
			attr.Error(err),
		)
		return nil, err
	}

	if err := signing.Verify(address, []byte(c.Nonce), signature); err != nil {
		s.logger.WarnContext(ctx, "Challenge signature rejected",
			attr.String("address", address),
			attr.Error(err),
		)
		return nil, ErrInvalidSignature
	}

	token, err := s.jwtProvider.GenerateToken(address, s.config.TokenTTL)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", ErrGenerateToken, err)
	}

	s.logger.InfoContext(ctx, "Issued session token", attr.Signer(address))
	return &TokenResponse{
		Token:     token,
		Signer:    address,
		ExpiresAt: now.Add(s.config.TokenTTL),
	}, nil
}

// ValidateToken validates a session token and returns the claims if valid.
func (s *service) ValidateToken(ctx context.Context, tokenString string) (*authdomain.Claims, error) {
	_, span := s.tracer.Start(ctx, "AuthService.ValidateToken")
	defer span.End()

	if tokenString == "" {
		return nil, ErrMissingToken
	}

	claims, err := s.jwtProvider.ValidateToken(tokenString)
	if err != nil {
		if errors.Is(err, authjwt.ErrExpiredToken) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if err := signing.ValidateAddress(claims.Signer); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
