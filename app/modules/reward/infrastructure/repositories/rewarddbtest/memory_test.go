package rewarddbtest

import (
	"context"
	"testing"

	rewarddomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/domain"
	rewarddb "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepositoryClaims(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	claims := []rewarddb.Claim{
		{Address: uuid.New(), PoolID: 1, Claimant: "UBOB", Rank: 2, Amount: 300},
		{Address: uuid.New(), PoolID: 1, Claimant: "UALICE", Rank: 1, Amount: 700},
	}
	require.NoError(t, repo.CreateClaims(ctx, nil, claims))

	dup := []rewarddb.Claim{{Address: uuid.New(), PoolID: 1, Claimant: "UCAROL"}, claims[0]}
	assert.ErrorIs(t, repo.CreateClaims(ctx, nil, dup), rewarddb.ErrDuplicate)
	_, err := repo.GetClaim(ctx, nil, 1, "UCAROL", false)
	assert.ErrorIs(t, err, rewarddb.ErrNotFound, "a rejected batch must not be partially written")

	listed, err := repo.ListClaims(ctx, nil, 1)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "UALICE", listed[0].Claimant)

	got, err := repo.GetClaim(ctx, nil, 1, "UBOB", true)
	require.NoError(t, err)
	got.Claimed = true
	require.NoError(t, repo.UpdateClaim(ctx, nil, got))

	again, err := repo.GetClaim(ctx, nil, 1, "UBOB", false)
	require.NoError(t, err)
	assert.True(t, again.Claimed)
}

func TestMemoryRepositoryDistribution(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	tiers := []rewarddomain.Tier{{RankStart: 1, RankEnd: 1, BasisPoints: 10_000}}
	require.NoError(t, repo.SaveDistribution(ctx, nil, &rewarddb.Distribution{PoolID: 4, Tiers: tiers}))
	tiers[0].BasisPoints = 1

	got, err := repo.GetDistribution(ctx, nil, 4)
	require.NoError(t, err)
	assert.Equal(t, uint16(10_000), got.Tiers[0].BasisPoints, "stored tiers must not alias the caller's slice")

	require.NoError(t, repo.DeleteDistribution(ctx, nil, 4))
	_, err = repo.GetDistribution(ctx, nil, 4)
	assert.ErrorIs(t, err, rewarddb.ErrNotFound)
}
