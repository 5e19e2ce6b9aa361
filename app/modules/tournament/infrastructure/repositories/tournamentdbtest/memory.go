// Package tournamentdbtest provides an in-memory tournament store for tests.
package tournamentdbtest

import (
	"context"
	"sort"
	"sync"

	tournamentdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MemoryRepository is a tournamentdb.Repository held in maps. It ignores the db handle.
type MemoryRepository struct {
	mu            sync.Mutex
	state         *tournamentdb.State
	tournaments   map[uint64]tournamentdb.Tournament
	registrations map[uuid.UUID]tournamentdb.Registration
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		tournaments:   make(map[uint64]tournamentdb.Tournament),
		registrations: make(map[uuid.UUID]tournamentdb.Registration),
	}
}

func (m *MemoryRepository) GetState(_ context.Context, _ bun.IDB, _ bool) (*tournamentdb.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil, tournamentdb.ErrNotFound
	}
	c := *m.state
	return &c, nil
}

func (m *MemoryRepository) CreateState(_ context.Context, _ bun.IDB, state *tournamentdb.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		return tournamentdb.ErrDuplicate
	}
	c := *state
	m.state = &c
	return nil
}

func (m *MemoryRepository) UpdateState(_ context.Context, _ bun.IDB, state *tournamentdb.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return tournamentdb.ErrNotFound
	}
	c := *state
	m.state = &c
	return nil
}

func (m *MemoryRepository) CreateTournament(_ context.Context, _ bun.IDB, t *tournamentdb.Tournament) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tournaments[t.ID]; ok {
		return tournamentdb.ErrDuplicate
	}
	m.tournaments[t.ID] = *t
	return nil
}

func (m *MemoryRepository) GetTournament(_ context.Context, _ bun.IDB, id uint64, _ bool) (*tournamentdb.Tournament, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tournaments[id]
	if !ok {
		return nil, tournamentdb.ErrNotFound
	}
	return &t, nil
}

func (m *MemoryRepository) UpdateTournament(_ context.Context, _ bun.IDB, t *tournamentdb.Tournament) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tournaments[t.ID]; !ok {
		return tournamentdb.ErrNotFound
	}
	m.tournaments[t.ID] = *t
	return nil
}

func (m *MemoryRepository) ListTournaments(_ context.Context, _ bun.IDB, filter tournamentdb.ListFilter) ([]tournamentdb.Tournament, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []tournamentdb.Tournament
	for _, t := range m.tournaments {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *MemoryRepository) CreateRegistration(_ context.Context, _ bun.IDB, reg *tournamentdb.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.registrations[reg.Address]; ok {
		return tournamentdb.ErrDuplicate
	}
	m.registrations[reg.Address] = *reg
	return nil
}

func (m *MemoryRepository) GetRegistration(_ context.Context, _ bun.IDB, tournamentID uint64, participant string, _ bool) (*tournamentdb.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, reg := range m.registrations {
		if reg.TournamentID == tournamentID && reg.Participant == participant {
			return &reg, nil
		}
	}
	return nil, tournamentdb.ErrNotFound
}

func (m *MemoryRepository) UpdateRegistration(_ context.Context, _ bun.IDB, reg *tournamentdb.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.registrations[reg.Address]; !ok {
		return tournamentdb.ErrNotFound
	}
	m.registrations[reg.Address] = *reg
	return nil
}

func (m *MemoryRepository) ListRegistrations(_ context.Context, _ bun.IDB, tournamentID uint64) ([]tournamentdb.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []tournamentdb.Registration
	for _, reg := range m.registrations {
		if reg.TournamentID == tournamentID {
			out = append(out, reg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

var _ tournamentdb.Repository = (*MemoryRepository)(nil)
