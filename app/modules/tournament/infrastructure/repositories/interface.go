package tournamentdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for Tournament Manager persistence.
type Repository interface {
	GetState(ctx context.Context, db bun.IDB, forUpdate bool) (*State, error)
	CreateState(ctx context.Context, db bun.IDB, state *State) error
	UpdateState(ctx context.Context, db bun.IDB, state *State) error

	CreateTournament(ctx context.Context, db bun.IDB, t *Tournament) error
	// GetTournament returns ErrNotFound for an unknown id. forUpdate locks the row, which
	// serializes registrations against the capacity check.
	GetTournament(ctx context.Context, db bun.IDB, id uint64, forUpdate bool) (*Tournament, error)
	UpdateTournament(ctx context.Context, db bun.IDB, t *Tournament) error
	ListTournaments(ctx context.Context, db bun.IDB, filter ListFilter) ([]Tournament, error)

	// CreateRegistration inserts a registration, ErrDuplicate when the participant already
	// holds a seat.
	CreateRegistration(ctx context.Context, db bun.IDB, reg *Registration) error
	GetRegistration(ctx context.Context, db bun.IDB, tournamentID uint64, participant string, forUpdate bool) (*Registration, error)
	UpdateRegistration(ctx context.Context, db bun.IDB, reg *Registration) error
	// ListRegistrations returns a tournament's registrations in registration order.
	ListRegistrations(ctx context.Context, db bun.IDB, tournamentID uint64) ([]Registration, error)
}
