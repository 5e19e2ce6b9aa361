package authcallout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	authservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/auth/application"
	authcalloutservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/authcallout/application"
	authhandlers "github.com/Black-And-White-Club/trivia-ledger/app/modules/authcallout/infrastructure/handlers"
	"github.com/Black-And-White-Club/trivia-ledger/config"
	"github.com/Black-And-White-Club/trivia-ledger/internal/clock"
	"github.com/Black-And-White-Club/trivia-ledger/internal/observability"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nkeys"
)

// AuthCalloutSubject is the NATS subject for auth callout requests.
const AuthCalloutSubject = "$SYS.REQ.USER.AUTH"

// Module answers NATS auth callouts with credentials scoped to the session's signer.
type Module struct {
	config       *config.Config
	handler      *authhandlers.AuthHandler
	subscription *nats.Subscription
	nc           *nats.Conn
	cancelFunc   context.CancelFunc
	logger       *slog.Logger
}

// NewModule creates a new auth callout module.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	sessions authservice.Service,
	nc *nats.Conn,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer("authcallout")

	logger.InfoContext(ctx, "Initializing auth callout module")

	signingKey, err := nkeys.FromSeed([]byte(cfg.AuthCallout.SigningKey))
	if err != nil {
		return nil, fmt.Errorf("failed to parse signing key: %w", err)
	}

	service := authcalloutservice.NewService(sessions, signingKey, clock.RealClock{}, authcalloutservice.Config{
		IssuerAccount:  cfg.AuthCallout.IssuerAccount,
		UserTTL:        cfg.AuthCallout.UserTTL,
		AllowAnonymous: cfg.AuthCallout.AllowAnonymous,
	}, logger, tracer)

	return &Module{
		config:  cfg,
		handler: authhandlers.NewAuthHandler(service, logger, tracer),
		nc:      nc,
		logger:  logger,
	}, nil
}

// Run subscribes to the callout subject until ctx is done.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting auth callout module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	subject := m.config.AuthCallout.Subject
	if subject == "" {
		subject = AuthCalloutSubject
	}

	var err error
	m.subscription, err = m.nc.Subscribe(subject, m.handler.HandleAuthCallout)
	if err != nil {
		m.logger.ErrorContext(ctx, "Failed to subscribe to auth callout subject",
			"subject", subject,
			"error", err,
		)
		return
	}

	m.logger.InfoContext(ctx, "Subscribed to auth callout subject",
		"subject", subject,
	)

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Auth callout module goroutine stopped")
}

// Close stops the auth callout module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	if m.subscription != nil {
		if err := m.subscription.Unsubscribe(); err != nil {
			return fmt.Errorf("error unsubscribing: %w", err)
		}
	}
	m.logger.Info("Auth callout module stopped")
	return nil
}
