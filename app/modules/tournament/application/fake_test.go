package tournamentservice

import (
	"context"

	tournamentdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/infrastructure/repositories/tournamentdbtest"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Tournament Repo
// ------------------------

// FakeTournamentRepo records calls and delegates to an in-memory store unless a hook is set.
type FakeTournamentRepo struct {
	*tournamentdbtest.MemoryRepository
	trace []string

	UpdateTournamentFunc   func(ctx context.Context, db bun.IDB, t *tournamentdb.Tournament) error
	UpdateRegistrationFunc func(ctx context.Context, db bun.IDB, reg *tournamentdb.Registration) error
}

func NewFakeTournamentRepo() *FakeTournamentRepo {
	return &FakeTournamentRepo{
		MemoryRepository: tournamentdbtest.NewMemoryRepository(),
		trace:            []string{},
	}
}

func (f *FakeTournamentRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeTournamentRepo) GetTournament(ctx context.Context, db bun.IDB, id uint64, forUpdate bool) (*tournamentdb.Tournament, error) {
	f.record("GetTournament")
	return f.MemoryRepository.GetTournament(ctx, db, id, forUpdate)
}

func (f *FakeTournamentRepo) UpdateTournament(ctx context.Context, db bun.IDB, t *tournamentdb.Tournament) error {
	f.record("UpdateTournament")
	if f.UpdateTournamentFunc != nil {
		return f.UpdateTournamentFunc(ctx, db, t)
	}
	return f.MemoryRepository.UpdateTournament(ctx, db, t)
}

func (f *FakeTournamentRepo) CreateRegistration(ctx context.Context, db bun.IDB, reg *tournamentdb.Registration) error {
	f.record("CreateRegistration")
	return f.MemoryRepository.CreateRegistration(ctx, db, reg)
}

func (f *FakeTournamentRepo) UpdateRegistration(ctx context.Context, db bun.IDB, reg *tournamentdb.Registration) error {
	f.record("UpdateRegistration")
	if f.UpdateRegistrationFunc != nil {
		return f.UpdateRegistrationFunc(ctx, db, reg)
	}
	return f.MemoryRepository.UpdateRegistration(ctx, db, reg)
}

// --- Accessors for assertions ---

func (f *FakeTournamentRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ tournamentdb.Repository = (*FakeTournamentRepo)(nil)

// ------------------------
// Fake Question Source
// ------------------------

type FakeQuestionSource struct {
	CountApprovedQuestionsFunc func(ctx context.Context, category string, difficulty uint8) (uint64, error)
}

func (f *FakeQuestionSource) CountApprovedQuestions(ctx context.Context, category string, difficulty uint8) (uint64, error) {
	if f.CountApprovedQuestionsFunc != nil {
		return f.CountApprovedQuestionsFunc(ctx, category, difficulty)
	}
	return 0, nil
}

var _ QuestionSource = (*FakeQuestionSource)(nil)
