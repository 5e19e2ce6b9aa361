package rewardhandlers

import (
	"context"

	rewardservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/application"
	rewarddomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/domain"
	rewarddb "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/infrastructure/repositories"
)

// ------------------------
// Fake Reward Service
// ------------------------

type FakeRewardService struct {
	trace []string

	DistributeRewardsFunc func(ctx context.Context, signer string, id uint64, rankings []rewarddomain.Ranking) (*rewarddomain.Allocation, error)
	ClaimRewardFunc       func(ctx context.Context, signer string, id uint64) (*rewarddb.Claim, error)
}

func NewFakeRewardService() *FakeRewardService {
	return &FakeRewardService{trace: []string{}}
}

func (f *FakeRewardService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeRewardService) Initialize(ctx context.Context, authority, treasury string) (*rewarddb.State, error) {
	f.record("Initialize")
	return &rewarddb.State{Authority: authority, Treasury: treasury}, nil
}

func (f *FakeRewardService) CreateRewardPool(ctx context.Context, signer string, params rewarddomain.CreateParams) (*rewarddb.Pool, error) {
	f.record("CreateRewardPool")
	return &rewarddb.Pool{ID: 1, Authority: signer, Name: params.Name}, nil
}

func (f *FakeRewardService) FundRewardPool(ctx context.Context, signer string, id, amount uint64) (*rewarddb.Pool, error) {
	f.record("FundRewardPool")
	return &rewarddb.Pool{ID: id, Funded: amount}, nil
}

func (f *FakeRewardService) DistributeRewards(ctx context.Context, signer string, id uint64, rankings []rewarddomain.Ranking) (*rewarddomain.Allocation, error) {
	f.record("DistributeRewards")
	if f.DistributeRewardsFunc != nil {
		return f.DistributeRewardsFunc(ctx, signer, id, rankings)
	}
	alloc := &rewarddomain.Allocation{}
	for _, r := range rankings {
		alloc.Entitlements = append(alloc.Entitlements, rewarddomain.Entitlement{Participant: r.Participant, Rank: r.Rank, Amount: 100})
	}
	return alloc, nil
}

func (f *FakeRewardService) ClaimReward(ctx context.Context, signer string, id uint64) (*rewarddb.Claim, error) {
	f.record("ClaimReward")
	if f.ClaimRewardFunc != nil {
		return f.ClaimRewardFunc(ctx, signer, id)
	}
	return &rewarddb.Claim{PoolID: id, Claimant: signer, Amount: 100, Claimed: true}, nil
}

func (f *FakeRewardService) UpdateDistributionCriteria(ctx context.Context, signer string, id uint64, criteria rewarddomain.Criteria, tiers []rewarddomain.Tier) (*rewarddb.Pool, error) {
	f.record("UpdateDistributionCriteria")
	return &rewarddb.Pool{ID: id, Criteria: string(criteria)}, nil
}

func (f *FakeRewardService) CloseRewardPool(ctx context.Context, signer string, id uint64) (*rewarddb.Pool, error) {
	f.record("CloseRewardPool")
	return &rewarddb.Pool{ID: id}, nil
}

func (f *FakeRewardService) GetState(ctx context.Context) (*rewarddb.State, error) {
	f.record("GetState")
	return &rewarddb.State{}, nil
}

func (f *FakeRewardService) GetPool(ctx context.Context, id uint64) (*rewarddb.Pool, error) {
	f.record("GetPool")
	return &rewarddb.Pool{ID: id, Active: true}, nil
}

func (f *FakeRewardService) GetDistribution(ctx context.Context, id uint64) (*rewarddb.Distribution, error) {
	f.record("GetDistribution")
	return &rewarddb.Distribution{PoolID: id}, nil
}

func (f *FakeRewardService) GetClaim(ctx context.Context, id uint64, claimant string) (*rewarddb.Claim, error) {
	f.record("GetClaim")
	return &rewarddb.Claim{PoolID: id, Claimant: claimant}, nil
}

func (f *FakeRewardService) GetClaimableAmount(ctx context.Context, id uint64, claimant string) (uint64, error) {
	f.record("GetClaimableAmount")
	return 0, nil
}

func (f *FakeRewardService) ListClaims(ctx context.Context, id uint64) ([]rewarddb.Claim, error) {
	f.record("ListClaims")
	return nil, nil
}

// --- Accessors for assertions ---

func (f *FakeRewardService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ rewardservice.Service = (*FakeRewardService)(nil)
