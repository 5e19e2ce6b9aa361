package questionbankhandlers

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/trivia-ledger/app/events"
	questionbankservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/application"
	questionbankdomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/domain"
	questionbankdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/infrastructure/repositories"
	"github.com/Black-And-White-Club/trivia-ledger/internal/handlerwrapper"
	"github.com/Black-And-White-Club/trivia-ledger/internal/observability/attr"
	"go.opentelemetry.io/otel/trace"
)

// QuestionBankHandlers implements the Handlers interface.
type QuestionBankHandlers struct {
	service questionbankservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewQuestionBankHandlers creates a new QuestionBankHandlers instance.
func NewQuestionBankHandlers(
	service questionbankservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &QuestionBankHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// HandleSubmitQuestionRequest handles signed question submissions.
func (h *QuestionBankHandlers) HandleSubmitQuestionRequest(ctx context.Context, payload *events.QuestionSubmitRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "QuestionBankHandlers.HandleSubmitQuestionRequest")
	defer span.End()

	signer, _ := handlerwrapper.SignerFromContext(ctx)
	question, err := h.service.SubmitQuestion(ctx, signer, questionbankdomain.QuestionInput{
		Text:         payload.Text,
		Options:      payload.Options,
		CorrectIndex: payload.CorrectIndex,
		Category:     payload.Category,
		Difficulty:   questionbankdomain.Difficulty(payload.Difficulty),
	})
	if err != nil {
		return h.failed("SubmitQuestion", err)
	}

	h.logger.InfoContext(ctx, "Question submitted",
		attr.ExtractCorrelationID(ctx),
		attr.Uint64("question_id", question.ID),
		attr.Signer(signer),
	)
	return []handlerwrapper.Result{{
		Topic:   events.QuestionSubmittedV1,
		Payload: SubmittedPayload(question),
	}}, nil
}

// HandleVoteRequest handles signed curator votes.
func (h *QuestionBankHandlers) HandleVoteRequest(ctx context.Context, payload *events.VoteRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "QuestionBankHandlers.HandleVoteRequest")
	defer span.End()

	signer, _ := handlerwrapper.SignerFromContext(ctx)
	res, err := h.service.VoteOnQuestion(ctx, signer, payload.QuestionID, payload.Approve)
	if err != nil {
		return h.failed("VoteOnQuestion", err)
	}
	if !res.Finalized {
		return nil, nil
	}
	return []handlerwrapper.Result{{
		Topic:   events.QuestionFinalizedV1,
		Payload: FinalizedPayload(res.Question),
	}}, nil
}

// failed turns a domain error into a failure event and hands anything else back to the
// router for redelivery.
func (h *QuestionBankHandlers) failed(operation string, err error) ([]handlerwrapper.Result, error) {
	if result, ok := events.Failed(events.QuestionBankFailedV1, operation, err); ok {
		return []handlerwrapper.Result{result}, nil
	}
	return nil, err
}

// SubmittedPayload builds the submitted event for q.
func SubmittedPayload(q *questionbankdb.Question) *events.QuestionSubmittedPayloadV1 {
	return &events.QuestionSubmittedPayloadV1{
		QuestionID: q.ID,
		Submitter:  q.Submitter,
		Category:   q.Category,
		Difficulty: q.Difficulty,
	}
}

// FinalizedPayload builds the finalized event for q.
func FinalizedPayload(q *questionbankdb.Question) *events.QuestionFinalizedPayloadV1 {
	return &events.QuestionFinalizedPayloadV1{
		QuestionID: q.ID,
		Status:     q.Status,
		Approvals:  q.Approvals,
		Rejections: q.Rejections,
	}
}
