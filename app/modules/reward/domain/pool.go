// Package rewarddomain holds the reward pool rules: parameter validation, tier sets and the
// distribution arithmetic.
package rewarddomain

import (
	"errors"
	"math"
	"strings"
	"time"
)

const (
	MaxNameLen       = 50
	MaxTiers         = 50
	BasisPointsTotal = 10_000
	MaxAmount        = math.MaxInt64
)

// Kind is the asset class a pool pays out in.
type Kind string

const (
	KindNative Kind = "native"
	KindToken  Kind = "token"
)

// Criteria selects how a pool is split among ranked participants.
type Criteria string

const (
	CriteriaTiered     Criteria = "tiered"
	CriteriaEqualShare Criteria = "equal_share"
)

func (c Criteria) valid() bool {
	return c == CriteriaTiered || c == CriteriaEqualShare
}

var (
	ErrInvalidName        = errors.New("pool name must be 1 to 50 bytes")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidEndTime     = errors.New("end time must be after start time")
	ErrMissingToken       = errors.New("token pools require a token id")
	ErrUnexpectedToken    = errors.New("native pools take no token id")
	ErrInvalidKind        = errors.New("unknown reward kind")
	ErrInvalidPlatformFee = errors.New("platform fee exceeds 10000 basis points")
	ErrInvalidCriteria    = errors.New("unknown distribution criteria")
)

// CreateParams are the authority-supplied pool parameters. A nil PlatformFeeBps takes the
// configured default.
type CreateParams struct {
	Name           string
	Target         uint64
	Kind           Kind
	TokenID        string
	Criteria       Criteria
	StartTime      time.Time
	EndTime        time.Time
	PlatformFeeBps *uint16
	Tiers          []Tier
}

// Validate checks p and returns it with the name trimmed. The fee must be resolved first.
func (p CreateParams) Validate() (CreateParams, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" || len(p.Name) > MaxNameLen {
		return p, ErrInvalidName
	}
	if p.Target == 0 || p.Target > MaxAmount {
		return p, ErrInvalidAmount
	}
	if !p.StartTime.Before(p.EndTime) {
		return p, ErrInvalidEndTime
	}
	switch p.Kind {
	case KindNative:
		if p.TokenID != "" {
			return p, ErrUnexpectedToken
		}
	case KindToken:
		if strings.TrimSpace(p.TokenID) == "" {
			return p, ErrMissingToken
		}
	default:
		return p, ErrInvalidKind
	}
	if p.PlatformFeeBps != nil && *p.PlatformFeeBps > BasisPointsTotal {
		return p, ErrInvalidPlatformFee
	}
	if err := ValidateCriteria(p.Criteria, p.Tiers); err != nil {
		return p, err
	}
	return p, nil
}

// ValidateCriteria checks that tiers fit criteria: tiered pools need a valid tier set and the
// other criteria take none.
func ValidateCriteria(criteria Criteria, tiers []Tier) error {
	if !criteria.valid() {
		return ErrInvalidCriteria
	}
	if criteria != CriteriaTiered {
		if len(tiers) > 0 {
			return ErrUnexpectedTiers
		}
		return nil
	}
	return ValidateTiers(tiers)
}
