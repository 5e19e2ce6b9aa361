package reward

import (
	"context"
	"fmt"
	"sync"

	"github.com/Black-And-White-Club/trivia-ledger/app/eventbus"
	ledgerdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/ledger/infrastructure/repositories"
	rewardservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/application"
	rewardhandlers "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/infrastructure/handlers"
	rewarddb "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/infrastructure/repositories"
	rewardrouter "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/infrastructure/router"
	"github.com/Black-And-White-Club/trivia-ledger/config"
	"github.com/Black-And-White-Club/trivia-ledger/internal/clock"
	"github.com/Black-And-White-Club/trivia-ledger/internal/metrics"
	"github.com/Black-And-White-Club/trivia-ledger/internal/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the reward distributor module.
type Module struct {
	RewardService rewardservice.Service
	RewardRouter  *rewardrouter.RewardRouter
	HTTP          *rewardhandlers.HTTPHandlers
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewRewardModule creates and initializes a new reward module.
func NewRewardModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	opMetrics metrics.OperationMetrics,
	eventBus eventbus.EventBus,
	router *message.Router,
	routerCtx context.Context,
	db *bun.DB,
	ledgerRepo ledgerdb.Repository,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer("reward")

	logger.InfoContext(ctx, "reward.NewRewardModule initializing")

	repo := rewarddb.NewRepository(db)
	service := rewardservice.NewRewardService(repo, ledgerRepo, logger, opMetrics, tracer, db, clock.RealClock{}, rewardservice.Config{
		NativeAsset:           cfg.Ledger.NativeAsset,
		DefaultPlatformFeeBps: cfg.Reward.DefaultPlatformFeeBps,
	})

	handlers := rewardhandlers.NewRewardHandlers(service, logger, tracer)

	rRouter := rewardrouter.NewRewardRouter(logger, router, eventBus, eventBus, tracer)
	if err := rRouter.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure reward router: %w", err)
	}

	return &Module{
		RewardService: service,
		RewardRouter:  rRouter,
		HTTP:          rewardhandlers.NewHTTPHandlers(service, eventBus, logger),
		observability: obs,
	}, nil
}

// RegisterRoutes mounts the reward HTTP routes.
func (m *Module) RegisterRoutes(public, signed chi.Router) {
	m.HTTP.PublicRoutes(public)
	m.HTTP.SignedRoutes(signed)
}

// Run starts the reward module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting reward module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Reward module goroutine stopped")
}

// Close shuts down the reward module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	m.observability.Logger.Info("Reward module stopped")
	return nil
}
