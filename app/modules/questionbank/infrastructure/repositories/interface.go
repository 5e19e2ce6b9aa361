package questionbankdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for Question Bank persistence.
type Repository interface {
	// GetState returns the singleton state, ErrNotFound before Initialize. forUpdate locks
	// the row for the rest of the transaction.
	GetState(ctx context.Context, db bun.IDB, forUpdate bool) (*State, error)
	// CreateState inserts the state, ErrDuplicate when it already exists.
	CreateState(ctx context.Context, db bun.IDB, state *State) error
	UpdateState(ctx context.Context, db bun.IDB, state *State) error

	CreateQuestion(ctx context.Context, db bun.IDB, q *Question) error
	GetQuestion(ctx context.Context, db bun.IDB, id uint64, forUpdate bool) (*Question, error)
	UpdateQuestion(ctx context.Context, db bun.IDB, q *Question) error
	ListApproved(ctx context.Context, db bun.IDB, filter ApprovedFilter) ([]Question, error)
	CountApproved(ctx context.Context, db bun.IDB, filter ApprovedFilter) (uint64, error)
	// ListPending returns the questions still open for voting, locked for update, by id.
	ListPending(ctx context.Context, db bun.IDB) ([]Question, error)

	// CreateVote inserts a vote, ErrDuplicate when the voter already voted.
	CreateVote(ctx context.Context, db bun.IDB, vote *Vote) error
	ListVotes(ctx context.Context, db bun.IDB, questionID uint64) ([]Vote, error)

	GetReputation(ctx context.Context, db bun.IDB, owner string) (*Reputation, error)
	UpsertReputation(ctx context.Context, db bun.IDB, rep *Reputation) error
}
