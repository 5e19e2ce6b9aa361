package tournamentservice

import (
	"context"

	tournamentdomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/domain"
	tournamentdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/infrastructure/repositories"
)

// Service defines the Tournament Manager instructions and queries.
type Service interface {
	Initialize(ctx context.Context, authority string) (*tournamentdb.State, error)
	CreateTournament(ctx context.Context, signer string, params tournamentdomain.CreateParams) (*tournamentdb.Tournament, error)
	RegisterForTournament(ctx context.Context, signer string, id uint64) (*tournamentdb.Registration, error)
	StartTournament(ctx context.Context, signer string, id uint64) (*tournamentdb.Tournament, error)
	SubmitScore(ctx context.Context, signer string, id uint64, participant string, score uint32) (*tournamentdb.Registration, error)
	CompleteTournament(ctx context.Context, signer string, id uint64) (*Standings, error)
	CancelTournament(ctx context.Context, signer string, id uint64) (*tournamentdb.Tournament, error)
	ClaimRefund(ctx context.Context, signer string, id uint64) (*tournamentdb.Registration, error)
	ReleasePrizePool(ctx context.Context, signer string, id uint64, destination string) (*tournamentdb.Tournament, error)

	GetState(ctx context.Context) (*tournamentdb.State, error)
	GetTournament(ctx context.Context, id uint64) (*tournamentdb.Tournament, error)
	ListTournaments(ctx context.Context, status string, limit int) ([]tournamentdb.Tournament, error)
	ListRegistrations(ctx context.Context, id uint64) ([]tournamentdb.Registration, error)
	GetStandings(ctx context.Context, id uint64) (*Standings, error)
}

// QuestionSource is the read-only view of the Question Bank used to size a tournament.
type QuestionSource interface {
	CountApprovedQuestions(ctx context.Context, category string, difficulty uint8) (uint64, error)
}

// Standings is a tournament's ranking. Final is set once the tournament completed.
type Standings struct {
	TournamentID uint64                      `json:"tournament_id"`
	Final        bool                        `json:"final"`
	Entries      []tournamentdomain.Standing `json:"entries"`
}

// Config holds the tunables read from the tournament config section.
type Config struct {
	Asset                 string
	MinParticipants       uint32
	RequireQuestionSupply bool
}
