package tournamentdb

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
	ErrNotFound  = errors.New("tournament record not found")
	ErrDuplicate = errors.New("tournament record already exists")
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new tournament repository.
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
		return nil, fmt.Errorf("failed to get tournament manager state: %w", err)
	}
	return state, nil
}

func (r *Impl) CreateState(ctx context.Context, db bun.IDB, state *State) error {
	if _, err := r.resolveDB(db).NewInsert().Model(state).Exec(ctx); err != nil {
		if bundb.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create tournament manager state: %w", err)
	}
	return nil
}

func (r *Impl) UpdateState(ctx context.Context, db bun.IDB, state *State) error {
	state.UpdatedAt = time.Now().UTC()
	_, err := r.resolveDB(db).NewUpdate().
		Model(state).
		Column("tournament_count", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update tournament manager state: %w", err)
	}
	return nil
}

func (r *Impl) CreateTournament(ctx context.Context, db bun.IDB, t *Tournament) error {
	if _, err := r.resolveDB(db).NewInsert().Model(t).Exec(ctx); err != nil {
		if bundb.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create tournament %d: %w", t.ID, err)
	}
	return nil
}

func (r *Impl) GetTournament(ctx context.Context, db bun.IDB, id uint64, forUpdate bool) (*Tournament, error) {
	t := new(Tournament)
	q := r.resolveDB(db).NewSelect().Model(t).Where("id = ?", id)
	if forUpdate {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	return t, nil
}

func (r *Impl) UpdateTournament(ctx context.Context, db bun.IDB, t *Tournament) error {
	t.UpdatedAt = time.Now().UTC()
	_, err := r.resolveDB(db).NewUpdate().
		Model(t).
		Column("prize_pool", "registered_count", "submitted_count", "actual_start", "ended_at", "status", "prize_released", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update tournament %d: %w", t.ID, err)
	}
	return nil
}

func (r *Impl) ListTournaments(ctx context.Context, db bun.IDB, filter ListFilter) ([]Tournament, error) {
	var tournaments []Tournament
	q := r.resolveDB(db).NewSelect().Model(&tournaments).Order("id DESC")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

func (r *Impl) CreateRegistration(ctx context.Context, db bun.IDB, reg *Registration) error {
	if _, err := r.resolveDB(db).NewInsert().Model(reg).Exec(ctx); err != nil {
		if bundb.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

func (r *Impl) GetRegistration(ctx context.Context, db bun.IDB, tournamentID uint64, participant string, forUpdate bool) (*Registration, error) {
	reg := new(Registration)
	q := r.resolveDB(db).NewSelect().
		Model(reg).
		Where("tournament_id = ?", tournamentID).
		Where("participant = ?", participant)
	if forUpdate {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return reg, nil
}

func (r *Impl) UpdateRegistration(ctx context.Context, db bun.IDB, reg *Registration) error {
	_, err := r.resolveDB(db).NewUpdate().
		Model(reg).
		Column("score", "score_submitted", "submitted_at", "final_rank", "refunded").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update registration: %w", err)
	}
	return nil
}

func (r *Impl) ListRegistrations(ctx context.Context, db bun.IDB, tournamentID uint64) ([]Registration, error) {
	var regs []Registration
	err := r.resolveDB(db).NewSelect().
		Model(&regs).
		Where("tournament_id = ?", tournamentID).
		Order("seq ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for tournament %d: %w", tournamentID, err)
	}
	return regs, nil
}
