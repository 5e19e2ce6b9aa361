package rewardservice

import (
	"context"

	rewarddb "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/infrastructure/repositories"
	"github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/infrastructure/repositories/rewarddbtest"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Reward Repo
// ------------------------

// FakeRewardRepo records calls and delegates to an in-memory store unless a hook is set.
type FakeRewardRepo struct {
	*rewarddbtest.MemoryRepository
	trace []string

	CreateClaimsFunc func(ctx context.Context, db bun.IDB, claims []rewarddb.Claim) error
	UpdateClaimFunc  func(ctx context.Context, db bun.IDB, claim *rewarddb.Claim) error
}

func NewFakeRewardRepo() *FakeRewardRepo {
	return &FakeRewardRepo{
		MemoryRepository: rewarddbtest.NewMemoryRepository(),
		trace:            []string{},
	}
}

func (f *FakeRewardRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeRewardRepo) GetPool(ctx context.Context, db bun.IDB, id uint64, forUpdate bool) (*rewarddb.Pool, error) {
	f.record("GetPool")
	return f.MemoryRepository.GetPool(ctx, db, id, forUpdate)
}

func (f *FakeRewardRepo) UpdatePool(ctx context.Context, db bun.IDB, pool *rewarddb.Pool) error {
	f.record("UpdatePool")
	return f.MemoryRepository.UpdatePool(ctx, db, pool)
}

func (f *FakeRewardRepo) CreateClaims(ctx context.Context, db bun.IDB, claims []rewarddb.Claim) error {
	f.record("CreateClaims")
	if f.CreateClaimsFunc != nil {
		return f.CreateClaimsFunc(ctx, db, claims)
	}
	return f.MemoryRepository.CreateClaims(ctx, db, claims)
}

func (f *FakeRewardRepo) GetClaim(ctx context.Context, db bun.IDB, poolID uint64, claimant string, forUpdate bool) (*rewarddb.Claim, error) {
	f.record("GetClaim")
	return f.MemoryRepository.GetClaim(ctx, db, poolID, claimant, forUpdate)
}

func (f *FakeRewardRepo) UpdateClaim(ctx context.Context, db bun.IDB, claim *rewarddb.Claim) error {
	f.record("UpdateClaim")
	if f.UpdateClaimFunc != nil {
		return f.UpdateClaimFunc(ctx, db, claim)
	}
	return f.MemoryRepository.UpdateClaim(ctx, db, claim)
}

// --- Accessors for assertions ---

func (f *FakeRewardRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeRewardRepo) ResetTrace() {
	f.trace = f.trace[:0]
}

var _ rewarddb.Repository = (*FakeRewardRepo)(nil)
