package questionbank

import (
	"context"
	"fmt"
	"sync"

	"github.com/Black-And-White-Club/trivia-ledger/app/eventbus"
	questionbankservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/application"
	questionbankhandlers "github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/infrastructure/handlers"
	questionbankdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/infrastructure/repositories"
	questionbankrouter "github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/infrastructure/router"
	"github.com/Black-And-White-Club/trivia-ledger/config"
	"github.com/Black-And-White-Club/trivia-ledger/internal/clock"
	"github.com/Black-And-White-Club/trivia-ledger/internal/metrics"
	"github.com/Black-And-White-Club/trivia-ledger/internal/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the question bank module.
type Module struct {
	QuestionBankService questionbankservice.Service
	QuestionBankRouter  *questionbankrouter.QuestionBankRouter
	HTTP                *questionbankhandlers.HTTPHandlers
	cancelFunc          context.CancelFunc
	observability       observability.Observability
}

// NewQuestionBankModule creates and initializes a new question bank module.
func NewQuestionBankModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	opMetrics metrics.OperationMetrics,
	eventBus eventbus.EventBus,
	router *message.Router,
	routerCtx context.Context,
	db *bun.DB,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer("questionbank")

	logger.InfoContext(ctx, "questionbank.NewQuestionBankModule initializing")

	// 1. Initialize Repository
	repo := questionbankdb.NewRepository(db)

	// 2. Initialize Service
	service := questionbankservice.NewQuestionBankService(repo, logger, opMetrics, tracer, db, clock.RealClock{}, questionbankservice.Config{
		MinSubmitReputation: cfg.QuestionBank.MinSubmitReputation,
	})

	// 3. Initialize Handlers
	handlers := questionbankhandlers.NewQuestionBankHandlers(service, logger, tracer)

	// 4. Initialize Router
	qbRouter := questionbankrouter.NewQuestionBankRouter(logger, router, eventBus, eventBus, tracer)
	if err := qbRouter.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure question bank router: %w", err)
	}

	return &Module{
		QuestionBankService: service,
		QuestionBankRouter:  qbRouter,
		HTTP:                questionbankhandlers.NewHTTPHandlers(service, eventBus, logger),
		observability:       obs,
	}, nil
}

// RegisterRoutes mounts the question bank HTTP routes.
func (m *Module) RegisterRoutes(public, signed chi.Router) {
	m.HTTP.PublicRoutes(public)
	m.HTTP.SignedRoutes(signed)
}

// Run starts the question bank module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting question bank module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Question bank module goroutine stopped")
}

// Close shuts down the question bank module. The shared watermill router is closed by the
// application.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	m.observability.Logger.Info("Question bank module stopped")
	return nil
}
