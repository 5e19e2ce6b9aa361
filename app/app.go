package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/trivia-ledger/app/eventbus"
	"github.com/Black-And-White-Club/trivia-ledger/app/events"
	"github.com/Black-And-White-Club/trivia-ledger/app/modules/auth"
	"github.com/Black-And-White-Club/trivia-ledger/app/modules/authcallout"
	"github.com/Black-And-White-Club/trivia-ledger/app/modules/ledger"
	"github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank"
	"github.com/Black-And-White-Club/trivia-ledger/app/modules/reward"
	"github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament"
	"github.com/Black-And-White-Club/trivia-ledger/config"
	"github.com/Black-And-White-Club/trivia-ledger/db/bundb"
	"github.com/Black-And-White-Club/trivia-ledger/internal/metrics"
	"github.com/Black-And-White-Club/trivia-ledger/internal/observability"
	"github.com/ThreeDotsLabs/watermill"
	wmmetrics "github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
)

// Module is the lifecycle shared by every program module.
type Module interface {
	Run(ctx context.Context, wg *sync.WaitGroup)
	Close() error
}

// RouteModule is a module that serves HTTP routes.
type RouteModule interface {
	RegisterRoutes(public, signed chi.Router)
}

// App holds the process-wide dependencies and the program modules.
type App struct {
	Config        *config.Config
	Observability observability.Observability
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Router        *message.Router
	HTTPServer    *http.Server

	AuthModule         *auth.Module
	AuthCalloutModule  *authcallout.Module
	LedgerModule       *ledger.Module
	QuestionBankModule *questionbank.Module
	TournamentModule   *tournament.Module
	RewardModule       *reward.Module

	wg sync.WaitGroup
}

// Initialize connects to Postgres and NATS and builds every module.
func (app *App) Initialize(ctx context.Context, cfg *config.Config) error {
	app.Config = cfg
	app.Observability = observability.New(config.ToObsConfig(cfg), nil)
	logger := app.Observability.Logger

	logger.InfoContext(ctx, "Initializing application")

	db, err := bundb.Open(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		return err
	}
	app.DB = db

	eventBus, err := eventbus.NewEventBus(ctx, cfg.NATS.URL, cfg.NATS.QueueGroup, logger)
	if err != nil {
		return fmt.Errorf("failed to create event bus: %w", err)
	}
	app.EventBus = eventBus
	if err := eventBus.EnsureStream(ctx, cfg.NATS.Stream, events.Subjects()...); err != nil {
		return fmt.Errorf("failed to ensure stream: %w", err)
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 30 * time.Second}, watermill.NewSlogLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create message router: %w", err)
	}
	router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			Logger:          watermill.NewSlogLogger(logger),
		}.Middleware,
	)
	metricsBuilder := wmmetrics.NewPrometheusMetricsBuilder(app.Observability.Registry, "trivia_ledger", "router")
	metricsBuilder.AddPrometheusRouterMetrics(router)
	app.Router = router

	return app.initializeModules(ctx, metrics.NewPrometheus(app.Observability.Registry))
}

func (app *App) initializeModules(ctx context.Context, opMetrics metrics.OperationMetrics) error {
	cfg, obs := app.Config, app.Observability

	var err error
	if app.AuthModule, err = auth.NewModule(ctx, cfg, obs, app.EventBus.Conn()); err != nil {
		return fmt.Errorf("failed to initialize auth module: %w", err)
	}
	if cfg.AuthCallout.Enabled && app.EventBus.Conn() != nil {
		if app.AuthCalloutModule, err = authcallout.NewModule(ctx, cfg, obs, app.AuthModule.GetService(), app.EventBus.Conn()); err != nil {
			return fmt.Errorf("failed to initialize auth callout module: %w", err)
		}
	}
	if app.LedgerModule, err = ledger.NewLedgerModule(ctx, cfg, obs, opMetrics, app.DB); err != nil {
		return fmt.Errorf("failed to initialize ledger module: %w", err)
	}
	if app.QuestionBankModule, err = questionbank.NewQuestionBankModule(ctx, cfg, obs, opMetrics, app.EventBus, app.Router, ctx, app.DB); err != nil {
		return fmt.Errorf("failed to initialize question bank module: %w", err)
	}
	if app.TournamentModule, err = tournament.NewTournamentModule(
		ctx, cfg, obs, opMetrics, app.EventBus, app.Router, ctx, app.DB,
		app.LedgerModule.Repository, app.QuestionBankModule.QuestionBankService,
	); err != nil {
		return fmt.Errorf("failed to initialize tournament module: %w", err)
	}
	if app.RewardModule, err = reward.NewRewardModule(
		ctx, cfg, obs, opMetrics, app.EventBus, app.Router, ctx, app.DB,
		app.LedgerModule.Repository,
	); err != nil {
		return fmt.Errorf("failed to initialize reward module: %w", err)
	}

	app.HTTPServer = &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	obs.Logger.InfoContext(ctx, "Modules initialized")
	return nil
}

// Handler builds the HTTP API.
func (app *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Handle("/metrics", promhttp.HandlerFor(app.Observability.Registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(app.AuthModule.CORS())
		app.AuthModule.RegisterRoutes(api)

		api.Group(func(signed chi.Router) {
			signed.Use(app.AuthModule.SignedMiddleware()...)
			for _, m := range app.routeModules() {
				m.RegisterRoutes(api, signed)
			}
		})
	})
	return r
}

func (app *App) routeModules() []RouteModule {
	return []RouteModule{app.LedgerModule, app.QuestionBankModule, app.TournamentModule, app.RewardModule}
}

// modules lists the initialized modules; a failed Initialize leaves later ones nil.
func (app *App) modules() []Module {
	var out []Module
	if app.AuthModule != nil {
		out = append(out, app.AuthModule)
	}
	if app.AuthCalloutModule != nil {
		out = append(out, app.AuthCalloutModule)
	}
	if app.LedgerModule != nil {
		out = append(out, app.LedgerModule)
	}
	if app.QuestionBankModule != nil {
		out = append(out, app.QuestionBankModule)
	}
	if app.TournamentModule != nil {
		out = append(out, app.TournamentModule)
	}
	if app.RewardModule != nil {
		out = append(out, app.RewardModule)
	}
	return out
}

// Run starts the modules, the message router and the HTTP server, and blocks until ctx is
// cancelled or the server fails.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger

	for _, m := range app.modules() {
		app.wg.Add(1)
		go m.Run(ctx, &app.wg)
	}

	errCh := make(chan error, 2)
	go func() {
		if err := app.Router.Run(ctx); err != nil {
			errCh <- fmt.Errorf("message router stopped: %w", err)
		}
	}()
	go func() {
		logger.InfoContext(ctx, "HTTP server listening", slog.String("address", app.HTTPServer.Addr))
		if err := app.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server stopped: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Close shuts everything down in reverse dependency order.
func (app *App) Close(ctx context.Context) error {
	logger := app.Observability.Logger
	logger.InfoContext(ctx, "Shutting down application")

	var errs []error
	if app.HTTPServer != nil {
		if err := app.HTTPServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server: %w", err))
		}
	}
	if app.Router != nil {
		if err := app.Router.Close(); err != nil {
			errs = append(errs, fmt.Errorf("message router: %w", err))
		}
	}
	for _, m := range app.modules() {
		if err := m.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	app.wg.Wait()

	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event bus: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}
	return errors.Join(errs...)
}
