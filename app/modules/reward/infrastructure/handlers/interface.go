package rewardhandlers

import (
	"context"

	"github.com/Black-And-White-Club/trivia-ledger/app/events"
	"github.com/Black-And-White-Club/trivia-ledger/internal/handlerwrapper"
)

// Handlers defines the interface for reward event handlers.
type Handlers interface {
	HandleDistributeRequest(ctx context.Context, payload *events.RewardDistributeRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleClaimRequest(ctx context.Context, payload *events.RewardClaimRequestedPayloadV1) ([]handlerwrapper.Result, error)
}
