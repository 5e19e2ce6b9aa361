package rewarddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Black-And-White-Club/trivia-ledger/db/bundb"
	"github.com/uptrace/bun"
)

var (
	ErrNotFound  = errors.New("reward record not found")
	ErrDuplicate = errors.New("reward record already exists")
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new reward repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) GetState(ctx context.Context, db bun.IDB, forUpdate bool) (*State, error) {
	state := new(State)
	q := r.resolveDB(db).NewSelect().Model(state).Limit(1)
	if forUpdate {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reward distributor state: %w", err)
	}
	return state, nil
}

func (r *Impl) CreateState(ctx context.Context, db bun.IDB, state *State) error {
	if _, err := r.resolveDB(db).NewInsert().Model(state).Exec(ctx); err != nil {
		if bundb.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create reward distributor state: %w", err)
	}
	return nil
}

func (r *Impl) UpdateState(ctx context.Context, db bun.IDB, state *State) error {
	state.UpdatedAt = time.Now().UTC()
	_, err := r.resolveDB(db).NewUpdate().
		Model(state).
		Column("pool_count", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update reward distributor state: %w", err)
	}
	return nil
}

func (r *Impl) CreatePool(ctx context.Context, db bun.IDB, pool *Pool) error {
	if _, err := r.resolveDB(db).NewInsert().Model(pool).Exec(ctx); err != nil {
		if bundb.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create reward pool %d: %w", pool.ID, err)
	}
	return nil
}

func (r *Impl) GetPool(ctx context.Context, db bun.IDB, id uint64, forUpdate bool) (*Pool, error) {
	pool := new(Pool)
	q := r.resolveDB(db).NewSelect().Model(pool).Where("id = ?", id)
	if forUpdate {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reward pool %d: %w", id, err)
	}
	return pool, nil
}

func (r *Impl) UpdatePool(ctx context.Context, db bun.IDB, pool *Pool) error {
	pool.UpdatedAt = time.Now().UTC()
	_, err := r.resolveDB(db).NewUpdate().
		Model(pool).
		Column(
			"criteria", "funded", "distributed_balance", "returned_balance", "platform_fee",
			"entitled", "active", "distributed_at", "closed_at", "updated_at",
		).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update reward pool %d: %w", pool.ID, err)
	}
	return nil
}

func (r *Impl) GetDistribution(ctx context.Context, db bun.IDB, poolID uint64) (*Distribution, error) {
	dist := new(Distribution)
	if err := r.resolveDB(db).NewSelect().Model(dist).Where("pool_id = ?", poolID).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get distribution for pool %d: %w", poolID, err)
	}
	return dist, nil
}

func (r *Impl) SaveDistribution(ctx context.Context, db bun.IDB, dist *Distribution) error {
	dist.UpdatedAt = time.Now().UTC()
	_, err := r.resolveDB(db).NewInsert().
		Model(dist).
		On("CONFLICT (pool_id) DO UPDATE").
		Set("tiers = EXCLUDED.tiers").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save distribution for pool %d: %w", dist.PoolID, err)
	}
	return nil
}

func (r *Impl) DeleteDistribution(ctx context.Context, db bun.IDB, poolID uint64) error {
	_, err := r.resolveDB(db).NewDelete().
		Model((*Distribution)(nil)).
		Where("pool_id = ?", poolID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete distribution for pool %d: %w", poolID, err)
	}
	return nil
}

func (r *Impl) CreateClaims(ctx context.Context, db bun.IDB, claims []Claim) error {
	if len(claims) == 0 {
		return nil
	}
	if _, err := r.resolveDB(db).NewInsert().Model(&claims).Exec(ctx); err != nil {
		if bundb.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create %d claims: %w", len(claims), err)
	}
	return nil
}

func (r *Impl) GetClaim(ctx context.Context, db bun.IDB, poolID uint64, claimant string, forUpdate bool) (*Claim, error) {
	claim := new(Claim)
	q := r.resolveDB(db).NewSelect().
		Model(claim).
		Where("pool_id = ?", poolID).
		Where("claimant = ?", claimant)
	if forUpdate {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}
	return claim, nil
}

func (r *Impl) UpdateClaim(ctx context.Context, db bun.IDB, claim *Claim) error {
	_, err := r.resolveDB(db).NewUpdate().
		Model(claim).
		Column("claimed", "claimed_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update claim: %w", err)
	}
	return nil
}

func (r *Impl) ListClaims(ctx context.Context, db bun.IDB, poolID uint64) ([]Claim, error) {
	var claims []Claim
	err := r.resolveDB(db).NewSelect().
		Model(&claims).
		Where("pool_id = ?", poolID).
		Order("rank ASC", "claimant ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims for pool %d: %w", poolID, err)
	}
	return claims, nil
}
