package rewarddomain

import "errors"

var (
	ErrNoTiers          = errors.New("tiered pools need 1 to 50 tiers")
	ErrUnexpectedTiers  = errors.New("only tiered pools take tiers")
	ErrInvalidTierRange = errors.New("tier ranks must start at 1 and be contiguous")
	ErrZeroTier         = errors.New("every tier needs a positive share")
	ErrTierMismatch     = errors.New("tier shares must sum to 10000 basis points")
)

// Tier maps the inclusive rank range [RankStart, RankEnd] to a share in basis points.
type Tier struct {
	RankStart   uint32 `json:"rank_start"`
	RankEnd     uint32 `json:"rank_end"`
	BasisPoints uint16 `json:"basis_points"`
}

// Contains reports whether rank falls in t.
func (t Tier) Contains(rank uint32) bool {
	return rank >= t.RankStart && rank <= t.RankEnd
}

// ValidateTiers checks that tiers start at rank 1, follow each other without gaps or
// overlaps and sum to exactly BasisPointsTotal.
func ValidateTiers(tiers []Tier) error {
	if len(tiers) == 0 || len(tiers) > MaxTiers {
		return ErrNoTiers
	}
	var next uint32 = 1
	var sum uint32
	for _, t := range tiers {
		if t.RankStart != next || t.RankEnd < t.RankStart {
			return ErrInvalidTierRange
		}
		if t.BasisPoints == 0 {
			return ErrZeroTier
		}
		sum += uint32(t.BasisPoints)
		next = t.RankEnd + 1
		if next == 0 {
			return ErrInvalidTierRange
		}
	}
	if sum != BasisPointsTotal {
		return ErrTierMismatch
	}
	return nil
}
