package rewarddomain

import (
	"errors"
	"math/bits"
	"sort"
)

var (
	ErrNoRankings           = errors.New("rankings must not be empty")
	ErrInvalidRank          = errors.New("ranks start at 1 and participants must be set")
	ErrDuplicateParticipant = errors.New("participant ranked twice")
	ErrOverflow             = errors.New("distribution exceeds funded balance")
)

// Ranking places a participant at a rank. Rank 1 is the winner.
type Ranking struct {
	Participant string `json:"participant"`
	Rank        uint32 `json:"rank"`
}

// Entitlement is the amount a participant may claim.
type Entitlement struct {
	Participant string `json:"participant"`
	Rank        uint32 `json:"rank"`
	Amount      uint64 `json:"amount"`
}

// Allocation is the outcome of splitting a funded pool. Entitlements holds only non-zero
// amounts, ordered by rank.
type Allocation struct {
	PlatformFee   uint64        `json:"platform_fee"`
	Distributable uint64        `json:"distributable"`
	Entitlements  []Entitlement `json:"entitlements"`
}

// Total is the sum of all entitlements.
func (a *Allocation) Total() uint64 {
	var total uint64
	for _, e := range a.Entitlements {
		total += e.Amount
	}
	return total
}

// ShareOf returns amount * bps / 10000 rounded down, computed with a 128-bit intermediate.
func ShareOf(amount uint64, bps uint16) (uint64, error) {
	if bps > BasisPointsTotal {
		return 0, ErrOverflow
	}
	hi, lo := bits.Mul64(amount, uint64(bps))
	if hi >= BasisPointsTotal {
		return 0, ErrOverflow
	}
	q, _ := bits.Div64(hi, lo, BasisPointsTotal)
	return q, nil
}

// Allocate takes the platform fee off funded and splits the rest among rankings.
//
// Tiered pools give each tier its share of the distributable amount, divided equally among
// the participants ranked inside it. Equal share pools divide it by head count. Every
// rounding remainder goes to the lowest-ranked paid participant, so the entitlements never
// exceed what was funded. Tiers nobody reached stay in the pool.
func Allocate(funded uint64, feeBps uint16, criteria Criteria, tiers []Tier, rankings []Ranking) (*Allocation, error) {
	if err := ValidateCriteria(criteria, tiers); err != nil {
		return nil, err
	}
	ranked, err := sortRankings(rankings)
	if err != nil {
		return nil, err
	}

	fee, err := ShareOf(funded, feeBps)
	if err != nil {
		return nil, err
	}
	distributable := funded - fee

	amounts := make([]uint64, len(ranked))
	switch criteria {
	case CriteriaTiered:
		if err := splitTiers(distributable, tiers, ranked, amounts); err != nil {
			return nil, err
		}
	case CriteriaEqualShare:
		n := uint64(len(ranked))
		for i := range amounts {
			amounts[i] = distributable / n
		}
		amounts[len(amounts)-1] += distributable % n
	}

	alloc := &Allocation{PlatformFee: fee, Distributable: distributable}
	for i, r := range ranked {
		if amounts[i] == 0 {
			continue
		}
		alloc.Entitlements = append(alloc.Entitlements, Entitlement{
			Participant: r.Participant,
			Rank:        r.Rank,
			Amount:      amounts[i],
		})
	}

	if alloc.Total() > distributable {
		return nil, ErrOverflow
	}
	return alloc, nil
}

func splitTiers(distributable uint64, tiers []Tier, ranked []Ranking, amounts []uint64) error {
	var paid, unreached uint64
	last := -1
	for _, t := range tiers {
		share, err := ShareOf(distributable, t.BasisPoints)
		if err != nil {
			return err
		}
		var members []int
		for i, r := range ranked {
			if t.Contains(r.Rank) {
				members = append(members, i)
			}
		}
		if len(members) == 0 {
			unreached += share
			continue
		}
		each := share / uint64(len(members))
		for _, i := range members {
			amounts[i] = each
			paid += each
		}
		last = members[len(members)-1]
	}
	if last >= 0 {
		amounts[last] += distributable - paid - unreached
	}
	return nil
}

// sortRankings validates rankings and returns a copy ordered by rank. Participants sharing a
// rank keep their input order.
func sortRankings(rankings []Ranking) ([]Ranking, error) {
	if len(rankings) == 0 {
		return nil, ErrNoRankings
	}
	seen := make(map[string]struct{}, len(rankings))
	for _, r := range rankings {
		if r.Rank == 0 || r.Participant == "" {
			return nil, ErrInvalidRank
		}
		if _, dup := seen[r.Participant]; dup {
			return nil, ErrDuplicateParticipant
		}
		seen[r.Participant] = struct{}{}
	}
	ranked := make([]Ranking, len(rankings))
	copy(ranked, rankings)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Rank < ranked[j].Rank })
	return ranked, nil
}
