package tournament

import (
	"context"
	"fmt"
	"sync"

	"github.com/Black-And-White-Club/trivia-ledger/app/eventbus"
	ledgerdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/ledger/infrastructure/repositories"
	tournamentservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/application"
	tournamenthandlers "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/infrastructure/handlers"
	tournamentdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/infrastructure/repositories"
	tournamentrouter "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/infrastructure/router"
	"github.com/Black-And-White-Club/trivia-ledger/config"
	"github.com/Black-And-White-Club/trivia-ledger/internal/clock"
	"github.com/Black-And-White-Club/trivia-ledger/internal/metrics"
	"github.com/Black-And-White-Club/trivia-ledger/internal/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the tournament module.
type Module struct {
	TournamentService tournamentservice.Service
	TournamentRouter  *tournamentrouter.TournamentRouter
	HTTP              *tournamenthandlers.HTTPHandlers
	cancelFunc        context.CancelFunc
	observability     observability.Observability
}

// NewTournamentModule creates and initializes a new tournament module. Entry fees move
// through ledgerRepo inside each instruction; questions sizes new tournaments.
func NewTournamentModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	opMetrics metrics.OperationMetrics,
	eventBus eventbus.EventBus,
	router *message.Router,
	routerCtx context.Context,
	db *bun.DB,
	ledgerRepo ledgerdb.Repository,
	questions tournamentservice.QuestionSource,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer("tournament")

	logger.InfoContext(ctx, "tournament.NewTournamentModule initializing")

	repo := tournamentdb.NewRepository(db)
	service := tournamentservice.NewTournamentService(repo, ledgerRepo, questions, logger, opMetrics, tracer, db, clock.RealClock{}, tournamentservice.Config{
		Asset:                 cfg.Ledger.NativeAsset,
		MinParticipants:       cfg.Tournament.MinParticipants,
		RequireQuestionSupply: cfg.Tournament.RequireQuestionSupply,
	})

	handlers := tournamenthandlers.NewTournamentHandlers(service, logger, tracer)

	tRouter := tournamentrouter.NewTournamentRouter(logger, router, eventBus, eventBus, tracer)
	if err := tRouter.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure tournament router: %w", err)
	}

	return &Module{
		TournamentService: service,
		TournamentRouter:  tRouter,
		HTTP:              tournamenthandlers.NewHTTPHandlers(service, eventBus, clock.RealClock{}, logger),
		observability:     obs,
	}, nil
}

// RegisterRoutes mounts the tournament HTTP routes.
func (m *Module) RegisterRoutes(public, signed chi.Router) {
	m.HTTP.PublicRoutes(public)
	m.HTTP.SignedRoutes(signed)
}

// Run starts the tournament module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting tournament module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Tournament module goroutine stopped")
}

// Close shuts down the tournament module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	m.observability.Logger.Info("Tournament module stopped")
	return nil
}
