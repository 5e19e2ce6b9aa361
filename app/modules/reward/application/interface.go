package rewardservice

import (
	"context"

	rewarddomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/domain"
	rewarddb "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/infrastructure/repositories"
)

// Service defines the Reward Distributor instructions and queries.
type Service interface {
	Initialize(ctx context.Context, authority, treasury string) (*rewarddb.State, error)
	CreateRewardPool(ctx context.Context, signer string, params rewarddomain.CreateParams) (*rewarddb.Pool, error)
	FundRewardPool(ctx context.Context, signer string, id, amount uint64) (*rewarddb.Pool, error)
	DistributeRewards(ctx context.Context, signer string, id uint64, rankings []rewarddomain.Ranking) (*rewarddomain.Allocation, error)
	ClaimReward(ctx context.Context, signer string, id uint64) (*rewarddb.Claim, error)
	UpdateDistributionCriteria(ctx context.Context, signer string, id uint64, criteria rewarddomain.Criteria, tiers []rewarddomain.Tier) (*rewarddb.Pool, error)
	CloseRewardPool(ctx context.Context, signer string, id uint64) (*rewarddb.Pool, error)

	GetState(ctx context.Context) (*rewarddb.State, error)
	GetPool(ctx context.Context, id uint64) (*rewarddb.Pool, error)
	GetDistribution(ctx context.Context, id uint64) (*rewarddb.Distribution, error)
	GetClaim(ctx context.Context, id uint64, claimant string) (*rewarddb.Claim, error)
	GetClaimableAmount(ctx context.Context, id uint64, claimant string) (uint64, error)
	ListClaims(ctx context.Context, id uint64) ([]rewarddb.Claim, error)
}

// Config holds the tunables read from the ledger and reward config sections.
type Config struct {
	NativeAsset           string
	DefaultPlatformFeeBps uint16
}
