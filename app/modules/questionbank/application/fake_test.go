package questionbankservice

import (
	"context"

	questionbankdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/infrastructure/repositories"
	"github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/infrastructure/repositories/questionbankdbtest"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Question Bank Repo
// ------------------------

// FakeQuestionBankRepo records calls and delegates to an in-memory store unless a hook is set.
type FakeQuestionBankRepo struct {
	*questionbankdbtest.MemoryRepository
	trace []string

	UpdateStateFunc      func(ctx context.Context, db bun.IDB, state *questionbankdb.State) error
	CreateVoteFunc       func(ctx context.Context, db bun.IDB, vote *questionbankdb.Vote) error
	UpsertReputationFunc func(ctx context.Context, db bun.IDB, rep *questionbankdb.Reputation) error
}

func NewFakeQuestionBankRepo() *FakeQuestionBankRepo {
	return &FakeQuestionBankRepo{
		MemoryRepository: questionbankdbtest.NewMemoryRepository(),
		trace:            []string{},
	}
}

func (f *FakeQuestionBankRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeQuestionBankRepo) GetState(ctx context.Context, db bun.IDB, forUpdate bool) (*questionbankdb.State, error) {
	f.record("GetState")
	return f.MemoryRepository.GetState(ctx, db, forUpdate)
}

func (f *FakeQuestionBankRepo) UpdateState(ctx context.Context, db bun.IDB, state *questionbankdb.State) error {
	f.record("UpdateState")
	if f.UpdateStateFunc != nil {
		return f.UpdateStateFunc(ctx, db, state)
	}
	return f.MemoryRepository.UpdateState(ctx, db, state)
}

func (f *FakeQuestionBankRepo) CreateVote(ctx context.Context, db bun.IDB, vote *questionbankdb.Vote) error {
	f.record("CreateVote")
	if f.CreateVoteFunc != nil {
		return f.CreateVoteFunc(ctx, db, vote)
	}
	return f.MemoryRepository.CreateVote(ctx, db, vote)
}

func (f *FakeQuestionBankRepo) UpsertReputation(ctx context.Context, db bun.IDB, rep *questionbankdb.Reputation) error {
	f.record("UpsertReputation")
	if f.UpsertReputationFunc != nil {
		return f.UpsertReputationFunc(ctx, db, rep)
	}
	return f.MemoryRepository.UpsertReputation(ctx, db, rep)
}

// --- Accessors for assertions ---

func (f *FakeQuestionBankRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ questionbankdb.Repository = (*FakeQuestionBankRepo)(nil)
