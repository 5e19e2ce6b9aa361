package tournamentrouter

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/trivia-ledger/app/eventbus"
	"github.com/Black-And-White-Club/trivia-ledger/app/events"
	tournamenthandlers "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/infrastructure/handlers"
	"github.com/Black-And-White-Club/trivia-ledger/internal/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// TournamentRouter handles Watermill handler registration for tournament events.
type TournamentRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	tracer     trace.Tracer
}

// NewTournamentRouter creates a new TournamentRouter.
func NewTournamentRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
) *TournamentRouter {
	return &TournamentRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure sets up the router with handlers.
func (r *TournamentRouter) Configure(_ context.Context, handlers tournamenthandlers.Handlers) error {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	r.logger.Info("Registering tournament handlers",
		slog.String("score_subject", events.ScoreSubmitRequestedV1),
		slog.String("complete_subject", events.TournamentCompleteRequestedV1),
	)

	registerHandler(deps, events.ScoreSubmitRequestedV1, handlers.HandleScoreSubmitRequest)
	registerHandler(deps, events.TournamentCompleteRequestedV1, handlers.HandleCompleteRequest)
	return nil
}

type handlerDeps struct {
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	logger     *slog.Logger
	tracer     trace.Tracer
}

// registerHandler registers a signed instruction handler. The outgoing topic is taken from
// message metadata by the publisher.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "tournament." + topic

	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"",
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			handlerwrapper.Options{RequireSignature: true},
			handler,
		),
	)
}
