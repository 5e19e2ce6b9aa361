package authcallout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	authservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/auth/application"
	"github.com/Black-And-White-Club/trivia-ledger/app/modules/authcallout/infrastructure/permissions"
	"github.com/Black-And-White-Club/trivia-ledger/internal/clock"
	"github.com/Black-And-White-Club/trivia-ledger/internal/observability/attr"
	"github.com/nats-io/nkeys"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// DefaultUserTTL bounds the NATS credentials when the session token outlives it.
const DefaultUserTTL = 24 * time.Hour

// Config holds the callout settings.
type Config struct {
	IssuerAccount  string
	UserTTL        time.Duration
	AllowAnonymous bool
}

// AuthCalloutService implements the Service interface.
type AuthCalloutService struct {
	sessions          authservice.Service
	permissionBuilder *permissions.Builder
	signingKey        nkeys.KeyPair
	clock             clock.Clock
	config            Config
	logger            *slog.Logger
	tracer            trace.Tracer
}

// NewService creates a new AuthCalloutService. Session tokens are validated by sessions.
func NewService(
	sessions authservice.Service,
	signingKey nkeys.KeyPair,
	clk clock.Clock,
	config Config,
	logger *slog.Logger,
	tracer trace.Tracer,
) *AuthCalloutService {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if config.UserTTL <= 0 {
		config.UserTTL = DefaultUserTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("authcallout")
	}
	return &AuthCalloutService{
		sessions:          sessions,
		permissionBuilder: permissions.NewBuilder(),
		signingKey:        signingKey,
		clock:             clk,
		config:            config,
		logger:            logger,
		tracer:            tracer,
	}
}

// HandleAuthRequest processes a NATS auth callout request. Refusals are reported in the
// response; the error return is reserved for failures to sign.
func (s *AuthCalloutService) HandleAuthRequest(ctx context.Context, req *AuthRequest) (*AuthResponse, error) {
	ctx, span := s.tracer.Start(ctx, "AuthCalloutService.HandleAuthRequest")
	defer span.End()

	now := s.clock.Now()
	tokenString := req.ConnectOpts.Password
	if tokenString == "" {
		if !s.config.AllowAnonymous {
			s.logger.WarnContext(ctx, "Auth request missing token",
				attr.String("client_host", req.ClientInfo.Host),
			)
			return &AuthResponse{Error: "missing authentication token"}, nil
		}
		return s.issue(ctx, req, "anonymous", now.Add(s.config.UserTTL), s.permissionBuilder.Viewer())
	}

	claims, err := s.sessions.ValidateToken(ctx, tokenString)
	if err != nil {
		s.logger.WarnContext(ctx, "Token validation failed",
			attr.Error(err),
			attr.String("client_host", req.ClientInfo.Host),
		)
		return &AuthResponse{Error: fmt.Sprintf("invalid token: %v", err)}, nil
	}

	expires := now.Add(s.config.UserTTL)
	if claims.ExpiresAt.Before(expires) {
		expires = claims.ExpiresAt
	}
	return s.issue(ctx, req, claims.Signer, expires, s.permissionBuilder.Signer())
}

func (s *AuthCalloutService) issue(ctx context.Context, req *AuthRequest, name string, expires time.Time, perms *permissions.Permissions) (*AuthResponse, error) {
	subject := req.UserNkey
	if subject == "" {
		pub, err := s.signingKey.PublicKey()
		if err != nil {
			return nil, fmt.Errorf("failed to get public key: %w", err)
		}
		subject = pub
	}

	uc := NewUserClaims(subject, s.clock.Now())
	uc.Name = name
	uc.Audience = s.config.IssuerAccount
	uc.Expires = expires.Unix()
	uc.Permissions.Pub.Allow = perms.Publish.Allow
	uc.Permissions.Pub.Deny = perms.Publish.Deny
	uc.Permissions.Sub.Allow = perms.Subscribe.Allow
	uc.Permissions.Sub.Deny = perms.Subscribe.Deny

	token, err := uc.Encode(s.signingKey)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to generate user JWT",
			attr.Error(err),
			attr.String("name", name),
		)
		return nil, err
	}

	s.logger.InfoContext(ctx, "Auth request approved",
		attr.String("name", name),
		attr.String("client_host", req.ClientInfo.Host),
	)
	return &AuthResponse{Jwt: token}, nil
}
