package questionbankrouter

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/trivia-ledger/app/eventbus"
	"github.com/Black-And-White-Club/trivia-ledger/app/events"
	questionbankhandlers "github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/infrastructure/handlers"
	"github.com/Black-And-White-Club/trivia-ledger/internal/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// QuestionBankRouter handles Watermill handler registration for question bank events.
type QuestionBankRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	tracer     trace.Tracer
}

// NewQuestionBankRouter creates a new QuestionBankRouter.
func NewQuestionBankRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
) *QuestionBankRouter {
	return &QuestionBankRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure sets up the router with handlers.
func (r *QuestionBankRouter) Configure(_ context.Context, handlers questionbankhandlers.Handlers) error {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	r.logger.Info("Registering question bank handlers",
		slog.String("submit_subject", events.QuestionSubmitRequestedV1),
		slog.String("vote_subject", events.VoteRequestedV1),
	)

	registerHandler(deps, events.QuestionSubmitRequestedV1, handlers.HandleSubmitQuestionRequest)
	registerHandler(deps, events.VoteRequestedV1, handlers.HandleVoteRequest)
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
	handlerName := "questionbank." + topic

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
