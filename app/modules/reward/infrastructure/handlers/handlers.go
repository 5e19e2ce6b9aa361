package rewardhandlers

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/trivia-ledger/app/events"
	rewardservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/application"
	rewarddomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/domain"
	"github.com/Black-And-White-Club/trivia-ledger/internal/handlerwrapper"
	"github.com/Black-And-White-Club/trivia-ledger/internal/observability/attr"
	"go.opentelemetry.io/otel/trace"
)

// RewardHandlers implements the Handlers interface.
type RewardHandlers struct {
	service rewardservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewRewardHandlers creates a new RewardHandlers instance.
func NewRewardHandlers(service rewardservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &RewardHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// HandleDistributeRequest distributes a pool over the given rankings.
func (h *RewardHandlers) HandleDistributeRequest(ctx context.Context, payload *events.RewardDistributeRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "RewardHandlers.HandleDistributeRequest")
	defer span.End()

	signer, _ := handlerwrapper.SignerFromContext(ctx)
	rankings := make([]rewarddomain.Ranking, len(payload.Rankings))
	for i, r := range payload.Rankings {
		rankings[i] = rewarddomain.Ranking{Participant: r.Participant, Rank: r.Rank}
	}

	alloc, err := h.service.DistributeRewards(ctx, signer, payload.PoolID, rankings)
	if err != nil {
		return h.failed("DistributeRewards", err)
	}
	return []handlerwrapper.Result{{
		Topic:   events.RewardDistributedV1,
		Payload: DistributedPayload(payload.PoolID, alloc),
	}}, nil
}

// HandleClaimRequest pays the signer's entitlement.
func (h *RewardHandlers) HandleClaimRequest(ctx context.Context, payload *events.RewardClaimRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "RewardHandlers.HandleClaimRequest")
	defer span.End()

	signer, _ := handlerwrapper.SignerFromContext(ctx)
	claim, err := h.service.ClaimReward(ctx, signer, payload.PoolID)
	if err != nil {
		return h.failed("ClaimReward", err)
	}

	h.logger.InfoContext(ctx, "Reward claimed",
		attr.ExtractCorrelationID(ctx),
		attr.Uint64("pool_id", claim.PoolID),
		attr.Signer(signer),
		attr.Uint64("amount", claim.Amount),
	)
	return []handlerwrapper.Result{{
		Topic: events.RewardClaimedV1,
		Payload: &events.RewardClaimedPayloadV1{
			PoolID:   claim.PoolID,
			Claimant: claim.Claimant,
			Amount:   claim.Amount,
		},
	}}, nil
}

func (h *RewardHandlers) failed(operation string, err error) ([]handlerwrapper.Result, error) {
	if result, ok := events.Failed(events.RewardFailedV1, operation, err); ok {
		return []handlerwrapper.Result{result}, nil
	}
	return nil, err
}

// DistributedPayload converts an allocation into the distributed event.
func DistributedPayload(poolID uint64, alloc *rewarddomain.Allocation) *events.RewardDistributedPayloadV1 {
	out := &events.RewardDistributedPayloadV1{
		PoolID:       poolID,
		PlatformFee:  alloc.PlatformFee,
		Entitlements: make([]events.EntitlementV1, len(alloc.Entitlements)),
	}
	for i, e := range alloc.Entitlements {
		out.Entitlements[i] = events.EntitlementV1{Participant: e.Participant, Rank: e.Rank, Amount: e.Amount}
	}
	return out
}
