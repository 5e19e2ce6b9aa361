package questionbankdb

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
	// ErrNotFound is returned when an account does not exist.
	ErrNotFound = errors.New("question bank record not found")
	// ErrDuplicate is returned when an account already exists at the derived address.
	ErrDuplicate = errors.New("question bank record already exists")
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new question bank repository.
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
		return nil, fmt.Errorf("failed to get question bank state: %w", err)
	}
	return state, nil
}

func (r *Impl) CreateState(ctx context.Context, db bun.IDB, state *State) error {
	if _, err := r.resolveDB(db).NewInsert().Model(state).Exec(ctx); err != nil {
		if bundb.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create question bank state: %w", err)
	}
	return nil
}

func (r *Impl) UpdateState(ctx context.Context, db bun.IDB, state *State) error {
	state.UpdatedAt = time.Now().UTC()
	_, err := r.resolveDB(db).NewUpdate().
		Model(state).
		Column("curators", "total_questions", "approved_questions", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update question bank state: %w", err)
	}
	return nil
}

func (r *Impl) CreateQuestion(ctx context.Context, db bun.IDB, q *Question) error {
	if _, err := r.resolveDB(db).NewInsert().Model(q).Exec(ctx); err != nil {
		if bundb.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create question %d: %w", q.ID, err)
	}
	return nil
}

func (r *Impl) GetQuestion(ctx context.Context, db bun.IDB, id uint64, forUpdate bool) (*Question, error) {
	question := new(Question)
	q := r.resolveDB(db).NewSelect().Model(question).Where("id = ?", id)
	if forUpdate {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get question %d: %w", id, err)
	}
	return question, nil
}

func (r *Impl) UpdateQuestion(ctx context.Context, db bun.IDB, q *Question) error {
	_, err := r.resolveDB(db).NewUpdate().
		Model(q).
		Column("approvals", "rejections", "status", "finalized_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update question %d: %w", q.ID, err)
	}
	return nil
}

func approvedQuery(q *bun.SelectQuery, filter ApprovedFilter) *bun.SelectQuery {
	q = q.Where("status = ?", "approved")
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Difficulty != 0 {
		q = q.Where("difficulty = ?", filter.Difficulty)
	}
	return q
}

func (r *Impl) ListApproved(ctx context.Context, db bun.IDB, filter ApprovedFilter) ([]Question, error) {
	var questions []Question
	q := approvedQuery(r.resolveDB(db).NewSelect().Model(&questions), filter).Order("id ASC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list approved questions: %w", err)
	}
	return questions, nil
}

func (r *Impl) ListPending(ctx context.Context, db bun.IDB) ([]Question, error) {
	var questions []Question
	err := r.resolveDB(db).NewSelect().
		Model(&questions).
		Where("status = ?", "pending").
		Order("id ASC").
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending questions: %w", err)
	}
	return questions, nil
}

func (r *Impl) CountApproved(ctx context.Context, db bun.IDB, filter ApprovedFilter) (uint64, error) {
	n, err := approvedQuery(r.resolveDB(db).NewSelect().Model((*Question)(nil)), filter).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count approved questions: %w", err)
	}
	return uint64(n), nil
}

func (r *Impl) CreateVote(ctx context.Context, db bun.IDB, vote *Vote) error {
	if _, err := r.resolveDB(db).NewInsert().Model(vote).Exec(ctx); err != nil {
		if bundb.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create vote: %w", err)
	}
	return nil
}

func (r *Impl) ListVotes(ctx context.Context, db bun.IDB, questionID uint64) ([]Vote, error) {
	var votes []Vote
	err := r.resolveDB(db).NewSelect().
		Model(&votes).
		Where("question_id = ?", questionID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes for question %d: %w", questionID, err)
	}
	return votes, nil
}

func (r *Impl) GetReputation(ctx context.Context, db bun.IDB, owner string) (*Reputation, error) {
	rep := new(Reputation)
	err := r.resolveDB(db).NewSelect().Model(rep).Where("owner = ?", owner).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reputation: %w", err)
	}
	return rep, nil
}

func (r *Impl) UpsertReputation(ctx context.Context, db bun.IDB, rep *Reputation) error {
	rep.UpdatedAt = time.Now().UTC()
	_, err := r.resolveDB(db).NewInsert().
		Model(rep).
		On("CONFLICT (owner) DO UPDATE").
		Set("score = EXCLUDED.score").
		Set("correct_votes = EXCLUDED.correct_votes").
		Set("incorrect_votes = EXCLUDED.incorrect_votes").
		Set("questions_submitted = EXCLUDED.questions_submitted").
		Set("questions_approved = EXCLUDED.questions_approved").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert reputation: %w", err)
	}
	return nil
}
