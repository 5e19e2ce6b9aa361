// Package rewarddbtest provides an in-memory reward store for tests.
package rewarddbtest

import (
	"context"
	"sort"
	"sync"

	rewarddb "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MemoryRepository is a rewarddb.Repository held in maps. It ignores the db handle.
type MemoryRepository struct {
	mu            sync.Mutex
	state         *rewarddb.State
	pools         map[uint64]rewarddb.Pool
	distributions map[uint64]rewarddb.Distribution
	claims        map[uuid.UUID]rewarddb.Claim
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		pools:         make(map[uint64]rewarddb.Pool),
		distributions: make(map[uint64]rewarddb.Distribution),
		claims:        make(map[uuid.UUID]rewarddb.Claim),
	}
}

func (m *MemoryRepository) GetState(_ context.Context, _ bun.IDB, _ bool) (*rewarddb.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil, rewarddb.ErrNotFound
	}
	c := *m.state
	return &c, nil
}

func (m *MemoryRepository) CreateState(_ context.Context, _ bun.IDB, state *rewarddb.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		return rewarddb.ErrDuplicate
	}
	c := *state
	m.state = &c
	return nil
}

func (m *MemoryRepository) UpdateState(_ context.Context, _ bun.IDB, state *rewarddb.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return rewarddb.ErrNotFound
	}
	c := *state
	m.state = &c
	return nil
}

func (m *MemoryRepository) CreatePool(_ context.Context, _ bun.IDB, pool *rewarddb.Pool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pools[pool.ID]; ok {
		return rewarddb.ErrDuplicate
	}
	m.pools[pool.ID] = *pool
	return nil
}

func (m *MemoryRepository) GetPool(_ context.Context, _ bun.IDB, id uint64, _ bool) (*rewarddb.Pool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pool, ok := m.pools[id]
	if !ok {
		return nil, rewarddb.ErrNotFound
	}
	return &pool, nil
}

func (m *MemoryRepository) UpdatePool(_ context.Context, _ bun.IDB, pool *rewarddb.Pool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pools[pool.ID]; !ok {
		return rewarddb.ErrNotFound
	}
	m.pools[pool.ID] = *pool
	return nil
}

func (m *MemoryRepository) GetDistribution(_ context.Context, _ bun.IDB, poolID uint64) (*rewarddb.Distribution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dist, ok := m.distributions[poolID]
	if !ok {
		return nil, rewarddb.ErrNotFound
	}
	dist.Tiers = append(dist.Tiers[:0:0], dist.Tiers...)
	return &dist, nil
}

func (m *MemoryRepository) SaveDistribution(_ context.Context, _ bun.IDB, dist *rewarddb.Distribution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *dist
	c.Tiers = append(dist.Tiers[:0:0], dist.Tiers...)
	m.distributions[dist.PoolID] = c
	return nil
}

func (m *MemoryRepository) DeleteDistribution(_ context.Context, _ bun.IDB, poolID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.distributions, poolID)
	return nil
}

func (m *MemoryRepository) CreateClaims(_ context.Context, _ bun.IDB, claims []rewarddb.Claim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range claims {
		if _, ok := m.claims[c.Address]; ok {
			return rewarddb.ErrDuplicate
		}
	}
	for _, c := range claims {
		m.claims[c.Address] = c
	}
	return nil
}

func (m *MemoryRepository) GetClaim(_ context.Context, _ bun.IDB, poolID uint64, claimant string, _ bool) (*rewarddb.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.claims {
		if c.PoolID == poolID && c.Claimant == claimant {
			return &c, nil
		}
	}
	return nil, rewarddb.ErrNotFound
}

func (m *MemoryRepository) UpdateClaim(_ context.Context, _ bun.IDB, claim *rewarddb.Claim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.claims[claim.Address]; !ok {
		return rewarddb.ErrNotFound
	}
	m.claims[claim.Address] = *claim
	return nil
}

func (m *MemoryRepository) ListClaims(_ context.Context, _ bun.IDB, poolID uint64) ([]rewarddb.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []rewarddb.Claim
	for _, c := range m.claims {
		if c.PoolID == poolID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].Claimant < out[j].Claimant
	})
	return out, nil
}

var _ rewarddb.Repository = (*MemoryRepository)(nil)
