package ledger

import (
	"context"
	"sync"

	ledgerservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/ledger/application"
	ledgerhandlers "github.com/Black-And-White-Club/trivia-ledger/app/modules/ledger/infrastructure/handlers"
	ledgerdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/ledger/infrastructure/repositories"
	"github.com/Black-And-White-Club/trivia-ledger/config"
	"github.com/Black-And-White-Club/trivia-ledger/internal/metrics"
	"github.com/Black-And-White-Club/trivia-ledger/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the ledger module. Its Repository is shared with the programs that
// move funds inside their own transactions.
type Module struct {
	LedgerService ledgerservice.Service
	Repository    ledgerdb.Repository
	HTTP          *ledgerhandlers.HTTPHandlers
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewLedgerModule creates and initializes a new ledger module.
func NewLedgerModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	opMetrics metrics.OperationMetrics,
	db *bun.DB,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "ledger.NewLedgerModule initializing")

	repo := ledgerdb.NewRepository(db)
	service := ledgerservice.NewLedgerService(repo, logger, opMetrics, obs.Tracer("ledger"), db, cfg.Ledger.MintAuthority)

	return &Module{
		LedgerService: service,
		Repository:    repo,
		HTTP:          ledgerhandlers.NewHTTPHandlers(service, logger, cfg.Ledger.NativeAsset),
		observability: obs,
	}, nil
}

// RegisterRoutes mounts the ledger HTTP routes.
func (m *Module) RegisterRoutes(public, signed chi.Router) {
	m.HTTP.PublicRoutes(public)
	m.HTTP.SignedRoutes(signed)
}

// Run starts the ledger module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting ledger module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Ledger module goroutine stopped")
}

// Close shuts down the ledger module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	m.observability.Logger.Info("Ledger module stopped")
	return nil
}
