package rewarddomain

import (
	"fmt"
	"math"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tiers(bps ...uint16) []Tier {
	out := make([]Tier, len(bps))
	for i, b := range bps {
		rank := uint32(i + 1)
		out[i] = Tier{RankStart: rank, RankEnd: rank, BasisPoints: b}
	}
	return out
}

func ranked(participants ...string) []Ranking {
	out := make([]Ranking, len(participants))
	for i, p := range participants {
		out[i] = Ranking{Participant: p, Rank: uint32(i + 1)}
	}
	return out
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name     string
		funded   uint64
		feeBps   uint16
		criteria Criteria
		tiers    []Tier
		rankings []Ranking
		wantFee  uint64
		want     []Entitlement
	}{
		{
			name:     "seventy thirty",
			funded:   1_000,
			criteria: CriteriaTiered,
			tiers:    tiers(7_000, 3_000),
			rankings: ranked("alice", "bob"),
			want: []Entitlement{
				{Participant: "alice", Rank: 1, Amount: 700},
				{Participant: "bob", Rank: 2, Amount: 300},
			},
		},
		{
			name:     "fifty thirty twenty divides evenly",
			funded:   1_000,
			criteria: CriteriaTiered,
			tiers:    tiers(5_000, 3_000, 2_000),
			rankings: ranked("a", "b", "c"),
			want: []Entitlement{
				{Participant: "a", Rank: 1, Amount: 500},
				{Participant: "b", Rank: 2, Amount: 300},
				{Participant: "c", Rank: 3, Amount: 200},
			},
		},
		{
			name:     "rounding remainder goes to the lowest occupied tier",
			funded:   1_001,
			criteria: CriteriaTiered,
			tiers:    tiers(5_000, 3_000, 2_000),
			rankings: ranked("a", "b", "c"),
			want: []Entitlement{
				{Participant: "a", Rank: 1, Amount: 500},
				{Participant: "b", Rank: 2, Amount: 300},
				{Participant: "c", Rank: 3, Amount: 201},
			},
		},
		{
			name:     "shared tier splits equally",
			funded:   1_000,
			criteria: CriteriaTiered,
			tiers: []Tier{
				{RankStart: 1, RankEnd: 1, BasisPoints: 5_000},
				{RankStart: 2, RankEnd: 4, BasisPoints: 5_000},
			},
			rankings: ranked("a", "b", "c", "d"),
			want: []Entitlement{
				{Participant: "a", Rank: 1, Amount: 500},
				{Participant: "b", Rank: 2, Amount: 166},
				{Participant: "c", Rank: 3, Amount: 166},
				{Participant: "d", Rank: 4, Amount: 168},
			},
		},
		{
			name:     "unreached tier stays in the pool",
			funded:   1_000,
			criteria: CriteriaTiered,
			tiers:    tiers(7_000, 3_000),
			rankings: ranked("solo"),
			want:     []Entitlement{{Participant: "solo", Rank: 1, Amount: 700}},
		},
		{
			name:     "ranks outside every tier get nothing",
			funded:   1_000,
			criteria: CriteriaTiered,
			tiers:    tiers(7_000, 3_000),
			rankings: ranked("a", "b", "c"),
			want: []Entitlement{
				{Participant: "a", Rank: 1, Amount: 700},
				{Participant: "b", Rank: 2, Amount: 300},
			},
		},
		{
			name:     "input order does not matter",
			funded:   1_000,
			criteria: CriteriaTiered,
			tiers:    tiers(7_000, 3_000),
			rankings: []Ranking{{Participant: "b", Rank: 2}, {Participant: "a", Rank: 1}},
			want: []Entitlement{
				{Participant: "a", Rank: 1, Amount: 700},
				{Participant: "b", Rank: 2, Amount: 300},
			},
		},
		{
			name:     "fee comes off before the split",
			funded:   1_000,
			feeBps:   250,
			criteria: CriteriaTiered,
			tiers:    tiers(10_000),
			rankings: ranked("winner"),
			wantFee:  25,
			want:     []Entitlement{{Participant: "winner", Rank: 1, Amount: 975}},
		},
		{
			name:     "equal share remainder to last",
			funded:   1_000,
			criteria: CriteriaEqualShare,
			rankings: ranked("a", "b", "c"),
			want: []Entitlement{
				{Participant: "a", Rank: 1, Amount: 333},
				{Participant: "b", Rank: 2, Amount: 333},
				{Participant: "c", Rank: 3, Amount: 334},
			},
		},
		{
			name:     "full fee leaves nothing to claim",
			funded:   1_000,
			feeBps:   10_000,
			criteria: CriteriaEqualShare,
			rankings: ranked("a"),
			wantFee:  1_000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Allocate(tt.funded, tt.feeBps, tt.criteria, tt.tiers, tt.rankings)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFee, got.PlatformFee)
			assert.Equal(t, tt.funded-tt.wantFee, got.Distributable)
			if diff := cmp.Diff(tt.want, got.Entitlements); diff != "" {
				t.Errorf("Allocate() entitlements mismatch (-want +got):\n%s", diff)
			}
			assert.LessOrEqual(t, got.Total()+got.PlatformFee, tt.funded)
		})
	}
}

func TestAllocateRejects(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		tiers    []Tier
		rankings []Ranking
		want     error
	}{
		{"no rankings", CriteriaEqualShare, nil, nil, ErrNoRankings},
		{"rank zero", CriteriaEqualShare, nil, []Ranking{{Participant: "a", Rank: 0}}, ErrInvalidRank},
		{"empty participant", CriteriaEqualShare, nil, []Ranking{{Rank: 1}}, ErrInvalidRank},
		{"duplicate", CriteriaEqualShare, nil, []Ranking{{Participant: "a", Rank: 1}, {Participant: "a", Rank: 2}}, ErrDuplicateParticipant},
		{"unknown criteria", Criteria("random_drop"), nil, ranked("a"), ErrInvalidCriteria},
		{"tiers on equal share", CriteriaEqualShare, tiers(10_000), ranked("a"), ErrUnexpectedTiers},
		{"bad tiers", CriteriaTiered, tiers(9_999), ranked("a"), ErrTierMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Allocate(1_000, 0, tt.criteria, tt.tiers, tt.rankings)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestShareOf(t *testing.T) {
	got, err := ShareOf(math.MaxUint64, BasisPointsTotal)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), got)

	got, err = ShareOf(math.MaxInt64, 3_333)
	require.NoError(t, err)
	assert.Equal(t, uint64(3_074_149_899_883_696_776), got)

	got, err = ShareOf(999, 1)
	require.NoError(t, err)
	assert.Zero(t, got)

	_, err = ShareOf(1, BasisPointsTotal+1)
	assert.ErrorIs(t, err, ErrOverflow)
}

// Random tier sets and rankings never pay out more than was funded.
func TestAllocateNeverOverpays(t *testing.T) {
	faker := gofakeit.New(7)

	for i := 0; i < 500; i++ {
		funded := uint64(faker.IntRange(1, math.MaxInt64))
		feeBps := uint16(faker.IntRange(0, BasisPointsTotal))

		var set []Tier
		remaining := BasisPointsTotal
		var rank uint32 = 1
		for remaining > 0 && len(set) < MaxTiers-1 {
			bps := faker.IntRange(1, remaining)
			width := uint32(faker.IntRange(1, 5))
			set = append(set, Tier{RankStart: rank, RankEnd: rank + width - 1, BasisPoints: uint16(bps)})
			rank += width
			remaining -= bps
		}
		if remaining > 0 {
			set = append(set, Tier{RankStart: rank, RankEnd: rank, BasisPoints: uint16(remaining)})
		}

		n := faker.IntRange(1, 40)
		rankings := make([]Ranking, n)
		for j := range rankings {
			rankings[j] = Ranking{Participant: fmt.Sprintf("p%d", j), Rank: uint32(faker.IntRange(1, 60))}
		}

		for _, c := range []struct {
			criteria Criteria
			tiers    []Tier
		}{{CriteriaTiered, set}, {CriteriaEqualShare, nil}} {
			got, err := Allocate(funded, feeBps, c.criteria, c.tiers, rankings)
			require.NoError(t, err)
			assert.LessOrEqual(t, got.Total(), got.Distributable)
			assert.LessOrEqual(t, got.Total()+got.PlatformFee, funded)
			if c.criteria == CriteriaEqualShare {
				assert.Equal(t, got.Distributable, got.Total())
			}
		}
	}
}
