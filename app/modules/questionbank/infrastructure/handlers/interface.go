package questionbankhandlers

import (
	"context"

	"github.com/Black-And-White-Club/trivia-ledger/app/events"
	"github.com/Black-And-White-Club/trivia-ledger/internal/handlerwrapper"
)

// Handlers defines the interface for question bank event handlers.
type Handlers interface {
	// HandleSubmitQuestionRequest stores a signed question submission.
	HandleSubmitQuestionRequest(ctx context.Context, payload *events.QuestionSubmitRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleVoteRequest records a signed curator vote.
	HandleVoteRequest(ctx context.Context, payload *events.VoteRequestedPayloadV1) ([]handlerwrapper.Result, error)
}
