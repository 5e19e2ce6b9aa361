package tournamenthandlers

import (
	"context"

	tournamentservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/application"
	tournamentdomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/domain"
	tournamentdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/infrastructure/repositories"
)

// ------------------------
// Fake Tournament Service
// ------------------------

type FakeTournamentService struct {
	trace []string

	SubmitScoreFunc        func(ctx context.Context, signer string, id uint64, participant string, score uint32) (*tournamentdb.Registration, error)
	CompleteTournamentFunc func(ctx context.Context, signer string, id uint64) (*tournamentservice.Standings, error)
	GetTournamentFunc      func(ctx context.Context, id uint64) (*tournamentdb.Tournament, error)
}

func NewFakeTournamentService() *FakeTournamentService {
	return &FakeTournamentService{trace: []string{}}
}

func (f *FakeTournamentService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeTournamentService) Initialize(ctx context.Context, authority string) (*tournamentdb.State, error) {
	f.record("Initialize")
	return &tournamentdb.State{Authority: authority}, nil
}

func (f *FakeTournamentService) CreateTournament(ctx context.Context, signer string, params tournamentdomain.CreateParams) (*tournamentdb.Tournament, error) {
	f.record("CreateTournament")
	return &tournamentdb.Tournament{ID: 1, Organizer: signer, Name: params.Name}, nil
}

func (f *FakeTournamentService) RegisterForTournament(ctx context.Context, signer string, id uint64) (*tournamentdb.Registration, error) {
	f.record("RegisterForTournament")
	return &tournamentdb.Registration{TournamentID: id, Participant: signer}, nil
}

func (f *FakeTournamentService) StartTournament(ctx context.Context, signer string, id uint64) (*tournamentdb.Tournament, error) {
	f.record("StartTournament")
	return &tournamentdb.Tournament{ID: id}, nil
}

func (f *FakeTournamentService) SubmitScore(ctx context.Context, signer string, id uint64, participant string, score uint32) (*tournamentdb.Registration, error) {
	f.record("SubmitScore")
	if f.SubmitScoreFunc != nil {
		return f.SubmitScoreFunc(ctx, signer, id, participant, score)
	}
	return &tournamentdb.Registration{TournamentID: id, Participant: participant, Score: score, ScoreSubmitted: true}, nil
}

func (f *FakeTournamentService) CompleteTournament(ctx context.Context, signer string, id uint64) (*tournamentservice.Standings, error) {
	f.record("CompleteTournament")
	if f.CompleteTournamentFunc != nil {
		return f.CompleteTournamentFunc(ctx, signer, id)
	}
	return &tournamentservice.Standings{TournamentID: id, Final: true}, nil
}

func (f *FakeTournamentService) CancelTournament(ctx context.Context, signer string, id uint64) (*tournamentdb.Tournament, error) {
	f.record("CancelTournament")
	return &tournamentdb.Tournament{ID: id}, nil
}

func (f *FakeTournamentService) ClaimRefund(ctx context.Context, signer string, id uint64) (*tournamentdb.Registration, error) {
	f.record("ClaimRefund")
	return &tournamentdb.Registration{TournamentID: id, Participant: signer, Refunded: true}, nil
}

func (f *FakeTournamentService) ReleasePrizePool(ctx context.Context, signer string, id uint64, destination string) (*tournamentdb.Tournament, error) {
	f.record("ReleasePrizePool")
	return &tournamentdb.Tournament{ID: id, PrizeReleased: true}, nil
}

func (f *FakeTournamentService) GetState(ctx context.Context) (*tournamentdb.State, error) {
	f.record("GetState")
	return &tournamentdb.State{}, nil
}

func (f *FakeTournamentService) GetTournament(ctx context.Context, id uint64) (*tournamentdb.Tournament, error) {
	f.record("GetTournament")
	if f.GetTournamentFunc != nil {
		return f.GetTournamentFunc(ctx, id)
	}
	return &tournamentdb.Tournament{ID: id}, nil
}

func (f *FakeTournamentService) ListTournaments(ctx context.Context, status string, limit int) ([]tournamentdb.Tournament, error) {
	f.record("ListTournaments")
	return nil, nil
}

func (f *FakeTournamentService) ListRegistrations(ctx context.Context, id uint64) ([]tournamentdb.Registration, error) {
	f.record("ListRegistrations")
	return nil, nil
}

func (f *FakeTournamentService) GetStandings(ctx context.Context, id uint64) (*tournamentservice.Standings, error) {
	f.record("GetStandings")
	return &tournamentservice.Standings{TournamentID: id}, nil
}

// --- Accessors for assertions ---

func (f *FakeTournamentService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ tournamentservice.Service = (*FakeTournamentService)(nil)
