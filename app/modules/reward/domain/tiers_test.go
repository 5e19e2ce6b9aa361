package rewarddomain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTiers(t *testing.T) {
	tests := []struct {
		name  string
		tiers []Tier
		want  error
	}{
		{
			name:  "single winner takes all",
			tiers: []Tier{{RankStart: 1, RankEnd: 1, BasisPoints: 10_000}},
		},
		{
			name: "fifty thirty twenty",
			tiers: []Tier{
				{RankStart: 1, RankEnd: 1, BasisPoints: 5_000},
				{RankStart: 2, RankEnd: 2, BasisPoints: 3_000},
				{RankStart: 3, RankEnd: 3, BasisPoints: 2_000},
			},
		},
		{
			name: "range tier",
			tiers: []Tier{
				{RankStart: 1, RankEnd: 1, BasisPoints: 4_000},
				{RankStart: 2, RankEnd: 10, BasisPoints: 6_000},
			},
		},
		{
			name: "sum 9999",
			tiers: []Tier{
				{RankStart: 1, RankEnd: 1, BasisPoints: 7_000},
				{RankStart: 2, RankEnd: 2, BasisPoints: 2_999},
			},
			want: ErrTierMismatch,
		},
		{
			name: "sum 10001",
			tiers: []Tier{
				{RankStart: 1, RankEnd: 1, BasisPoints: 7_000},
				{RankStart: 2, RankEnd: 2, BasisPoints: 3_001},
			},
			want: ErrTierMismatch,
		},
		{
			name:  "empty",
			tiers: nil,
			want:  ErrNoTiers,
		},
		{
			name:  "does not start at rank 1",
			tiers: []Tier{{RankStart: 2, RankEnd: 3, BasisPoints: 10_000}},
			want:  ErrInvalidTierRange,
		},
		{
			name: "gap",
			tiers: []Tier{
				{RankStart: 1, RankEnd: 1, BasisPoints: 5_000},
				{RankStart: 3, RankEnd: 3, BasisPoints: 5_000},
			},
			want: ErrInvalidTierRange,
		},
		{
			name: "overlap",
			tiers: []Tier{
				{RankStart: 1, RankEnd: 2, BasisPoints: 5_000},
				{RankStart: 2, RankEnd: 3, BasisPoints: 5_000},
			},
			want: ErrInvalidTierRange,
		},
		{
			name:  "inverted range",
			tiers: []Tier{{RankStart: 1, RankEnd: 0, BasisPoints: 10_000}},
			want:  ErrInvalidTierRange,
		},
		{
			name: "zero share",
			tiers: []Tier{
				{RankStart: 1, RankEnd: 1, BasisPoints: 10_000},
				{RankStart: 2, RankEnd: 2, BasisPoints: 0},
			},
			want: ErrZeroTier,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTiers(tt.tiers)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateTiersLimit(t *testing.T) {
	build := func(n int) []Tier {
		tiers := make([]Tier, n)
		for i := range tiers {
			rank := uint32(i + 1)
			tiers[i] = Tier{RankStart: rank, RankEnd: rank, BasisPoints: 1}
		}
		tiers[0].BasisPoints = uint16(BasisPointsTotal - n + 1)
		return tiers
	}

	assert.NoError(t, ValidateTiers(build(MaxTiers)))
	assert.ErrorIs(t, ValidateTiers(build(MaxTiers+1)), ErrNoTiers)
}
