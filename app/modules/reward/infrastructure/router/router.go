package rewardrouter

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/trivia-ledger/app/eventbus"
	"github.com/Black-And-White-Club/trivia-ledger/app/events"
	rewardhandlers "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/infrastructure/handlers"
	"github.com/Black-And-White-Club/trivia-ledger/internal/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// RewardRouter handles Watermill handler registration for reward events.
type RewardRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	tracer     trace.Tracer
}

// NewRewardRouter creates a new RewardRouter.
func NewRewardRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
) *RewardRouter {
	return &RewardRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure sets up the router with handlers.
func (r *RewardRouter) Configure(_ context.Context, handlers rewardhandlers.Handlers) error {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	r.logger.Info("Registering reward handlers",
		slog.String("distribute_subject", events.RewardDistributeRequestedV1),
		slog.String("claim_subject", events.RewardClaimRequestedV1),
	)

	registerHandler(deps, events.RewardDistributeRequestedV1, handlers.HandleDistributeRequest)
	registerHandler(deps, events.RewardClaimRequestedV1, handlers.HandleClaimRequest)
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
	handlerName := "reward." + topic

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
