package rewarddb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for Reward Distributor persistence.
type Repository interface {
	GetState(ctx context.Context, db bun.IDB, forUpdate bool) (*State, error)
	CreateState(ctx context.Context, db bun.IDB, state *State) error
	UpdateState(ctx context.Context, db bun.IDB, state *State) error

	CreatePool(ctx context.Context, db bun.IDB, pool *Pool) error
	// GetPool returns ErrNotFound for an unknown id. forUpdate locks the row for the rest of
	// the transaction.
	GetPool(ctx context.Context, db bun.IDB, id uint64, forUpdate bool) (*Pool, error)
	UpdatePool(ctx context.Context, db bun.IDB, pool *Pool) error

	GetDistribution(ctx context.Context, db bun.IDB, poolID uint64) (*Distribution, error)
	// SaveDistribution inserts or replaces the tier set of a pool.
	SaveDistribution(ctx context.Context, db bun.IDB, dist *Distribution) error
	DeleteDistribution(ctx context.Context, db bun.IDB, poolID uint64) error

	// CreateClaims inserts all claims of a distribution, ErrDuplicate when any exists.
	CreateClaims(ctx context.Context, db bun.IDB, claims []Claim) error
	GetClaim(ctx context.Context, db bun.IDB, poolID uint64, claimant string, forUpdate bool) (*Claim, error)
	UpdateClaim(ctx context.Context, db bun.IDB, claim *Claim) error
	// ListClaims returns a pool's claims ordered by rank.
	ListClaims(ctx context.Context, db bun.IDB, poolID uint64) ([]Claim, error)
}
