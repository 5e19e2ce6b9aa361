package rewardservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/Black-And-White-Club/trivia-ledger/app/modules/ledger/infrastructure/repositories/ledgerdbtest"
	rewardservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/application"
	rewarddomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/domain"
	"github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/infrastructure/repositories/rewarddbtest"
	tournamentservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/application"
	tournamentdomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/domain"
	"github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/infrastructure/repositories/tournamentdbtest"
	"github.com/Black-And-White-Club/trivia-ledger/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTournamentToRewards plays a two-player tournament and pays its standings out of a
// separately funded pool.
func TestTournamentToRewards(t *testing.T) {
	const (
		asset     = "TRIV"
		authority = "UAUTHORITY"
		organizer = "UORGANIZER"
		sponsor   = "USPONSOR"
	)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFake(start)
	ledger := ledgerdbtest.NewMemoryRepository()

	tournaments := tournamentservice.NewTournamentService(tournamentdbtest.NewMemoryRepository(), ledger, nil, nil, nil, nil, nil, clk,
		tournamentservice.Config{Asset: asset, MinParticipants: 2})
	rewards := rewardservice.NewRewardService(rewarddbtest.NewMemoryRepository(), ledger, nil, nil, nil, nil, clk,
		rewardservice.Config{NativeAsset: asset})

	_, err := tournaments.Initialize(ctx, authority)
	require.NoError(t, err)
	_, err = rewards.Initialize(ctx, authority, "")
	require.NoError(t, err)

	tournament, err := tournaments.CreateTournament(ctx, organizer, tournamentdomain.CreateParams{
		Name:            "Friday Night Trivia",
		EntryFee:        100,
		MaxParticipants: 2,
		StartTime:       start.Add(time.Hour),
		Duration:        30 * time.Minute,
		QuestionCount:   10,
	})
	require.NoError(t, err)
	for _, p := range []string{"UALICE", "UBOB"} {
		require.NoError(t, ledger.Mint(ctx, nil, p, asset, 100, "entry"))
		_, err := tournaments.RegisterForTournament(ctx, p, tournament.ID)
		require.NoError(t, err)
		clk.Advance(time.Second)
	}

	clk.Set(tournament.StartTime)
	_, err = tournaments.StartTournament(ctx, organizer, tournament.ID)
	require.NoError(t, err)
	_, err = tournaments.SubmitScore(ctx, organizer, tournament.ID, "UBOB", 60)
	require.NoError(t, err)
	_, err = tournaments.SubmitScore(ctx, organizer, tournament.ID, "UALICE", 80)
	require.NoError(t, err)
	standings, err := tournaments.CompleteTournament(ctx, organizer, tournament.ID)
	require.NoError(t, err)

	noFee := uint16(0)
	pool, err := rewards.CreateRewardPool(ctx, authority, rewarddomain.CreateParams{
		Name:           "Friday Night prizes",
		Target:         1_000,
		Kind:           rewarddomain.KindNative,
		Criteria:       rewarddomain.CriteriaTiered,
		StartTime:      clk.Now(),
		EndTime:        clk.Now().Add(24 * time.Hour),
		PlatformFeeBps: &noFee,
		Tiers: []rewarddomain.Tier{
			{RankStart: 1, RankEnd: 1, BasisPoints: 7_000},
			{RankStart: 2, RankEnd: 2, BasisPoints: 3_000},
		},
	})
	require.NoError(t, err)
	require.NoError(t, ledger.Mint(ctx, nil, sponsor, asset, 1_000, "prizes"))
	_, err = rewards.FundRewardPool(ctx, sponsor, pool.ID, 1_000)
	require.NoError(t, err)

	rankings := make([]rewarddomain.Ranking, len(standings.Entries))
	for i, s := range standings.Entries {
		rankings[i] = rewarddomain.Ranking{Participant: s.Participant, Rank: s.Rank}
	}
	alloc, err := rewards.DistributeRewards(ctx, authority, pool.ID, rankings)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000), alloc.Total())

	want := map[string]uint64{"UALICE": 700, "UBOB": 300}
	for participant, amount := range want {
		claim, err := rewards.ClaimReward(ctx, participant, pool.ID)
		require.NoError(t, err)
		assert.Equal(t, amount, claim.Amount, participant)

		balance, err := ledger.GetBalance(ctx, nil, participant, asset)
		require.NoError(t, err)
		assert.Equal(t, amount, balance, participant)
	}

	pool, err = rewards.GetPool(ctx, pool.ID)
	require.NoError(t, err)
	assert.Zero(t, pool.VaultBalance())

	vault, err := ledger.GetBalance(ctx, nil, tournament.Vault, asset)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), vault, "entry fees stay escrowed until release")
}
