package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	authservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/auth/application"
	authhandlers "github.com/Black-And-White-Club/trivia-ledger/app/modules/auth/infrastructure/handlers"
	authjwt "github.com/Black-And-White-Club/trivia-ledger/app/modules/auth/infrastructure/jwt"
	authrouter "github.com/Black-And-White-Club/trivia-ledger/app/modules/auth/infrastructure/router"
	"github.com/Black-And-White-Club/trivia-ledger/config"
	"github.com/Black-And-White-Club/trivia-ledger/internal/clock"
	"github.com/Black-And-White-Club/trivia-ledger/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats.go"
	"golang.org/x/time/rate"
)

// Module represents the signer authentication module.
type Module struct {
	config        *config.Config
	observability observability.Observability
	service       authservice.Service
	handlers      authhandlers.Handlers
	router        *authrouter.Router
	limiter       *authhandlers.KeyedRateLimiter
	cancelFunc    context.CancelFunc
	logger        *slog.Logger
}

// NewModule creates a new auth module. nc may be nil, in which case sessions are only
// available over HTTP.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	nc *nats.Conn,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer("auth")

	logger.InfoContext(ctx, "Initializing auth module")

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is not configured")
	}

	jwtProvider := authjwt.NewProvider(cfg.JWT.Secret, cfg.JWT.Issuer)
	service := authservice.NewService(
		jwtProvider,
		authservice.NewChallengeStore(),
		clock.RealClock{},
		authservice.Config{
			TokenTTL:     cfg.JWT.DefaultTTL,
			ChallengeTTL: cfg.JWT.ChallengeTTL,
		},
		logger,
		tracer,
	)

	handlers := authhandlers.NewAuthHandlers(service, logger, tracer)

	var router *authrouter.Router
	if nc != nil {
		router = authrouter.NewRouter(handlers, nc)
	}

	return &Module{
		config:        cfg,
		observability: obs,
		service:       service,
		handlers:      handlers,
		router:        router,
		limiter:       authhandlers.NewKeyedRateLimiter(rate.Limit(cfg.HTTP.RatePerSecond), cfg.HTTP.Burst),
		logger:        logger,
	}, nil
}

// RegisterRoutes mounts the session endpoints under r.
func (m *Module) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Use(authhandlers.RateLimitMiddleware(m.limiter))
		r.Post("/challenge", m.handlers.HandleChallenge)
		r.Post("/token", m.handlers.HandleToken)
	})
}

// CORS returns the cross-origin middleware for the API.
func (m *Module) CORS() func(http.Handler) http.Handler {
	return authhandlers.CORSMiddleware(m.config.HTTP.AllowedOrigins)
}

// SignedMiddleware returns the chain for instruction routes: bearer authentication followed
// by the per-signer rate limit.
func (m *Module) SignedMiddleware() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		authhandlers.BearerMiddleware(m.service, m.logger),
		authhandlers.RateLimitMiddleware(m.limiter),
	}
}

// Run starts the auth module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting auth module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.router != nil {
		if err := m.router.Start(""); err != nil {
			m.logger.ErrorContext(ctx, "Failed to start auth router",
				"error", err,
			)
			return
		}
		m.logger.InfoContext(ctx, "Auth module started",
			"challenge_subject", authrouter.ChallengeRequestSubject,
			"token_subject", authrouter.TokenRequestSubject,
		)
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Auth module goroutine stopped")
}

// Close stops the auth module.
func (m *Module) Close() error {
	m.logger.Info("Stopping auth module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.router != nil {
		if err := m.router.Stop(); err != nil {
			m.logger.Error("Error stopping auth router", "error", err)
			return fmt.Errorf("error stopping router: %w", err)
		}
	}

	m.logger.Info("Auth module stopped")
	return nil
}

// GetService returns the auth service for use by other modules.
func (m *Module) GetService() authservice.Service {
	return m.service
}
