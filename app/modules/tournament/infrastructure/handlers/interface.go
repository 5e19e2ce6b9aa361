package tournamenthandlers

import (
	"context"

	"github.com/Black-And-White-Club/trivia-ledger/app/events"
	"github.com/Black-And-White-Club/trivia-ledger/internal/handlerwrapper"
)

// Handlers defines the interface for tournament event handlers.
type Handlers interface {
	HandleScoreSubmitRequest(ctx context.Context, payload *events.ScoreSubmitRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleCompleteRequest(ctx context.Context, payload *events.TournamentCompleteRequestedPayloadV1) ([]handlerwrapper.Result, error)
}
