// Package ledgerdbtest provides an in-memory ledger store for tests.
package ledgerdbtest

import (
	"context"
	"sort"
	"sync"
	"time"

	ledgerdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/ledger/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// MemoryRepository is a ledgerdb.Repository held in maps. It ignores the db handle.
type MemoryRepository struct {
	mu        sync.Mutex
	balances  map[[2]string]uint64
	transfers []ledgerdb.Transfer
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{balances: make(map[[2]string]uint64)}
}

func (m *MemoryRepository) GetBalance(_ context.Context, _ bun.IDB, holder, asset string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[[2]string{holder, asset}], nil
}

func (m *MemoryRepository) Credit(_ context.Context, _ bun.IDB, holder, asset string, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.credit(holder, asset, amount)
}

func (m *MemoryRepository) credit(holder, asset string, amount uint64) error {
	key := [2]string{holder, asset}
	if amount > ledgerdb.MaxAmount || m.balances[key] > ledgerdb.MaxAmount-amount {
		return ledgerdb.ErrBalanceOverflow
	}
	m.balances[key] += amount
	return nil
}

func (m *MemoryRepository) Debit(_ context.Context, _ bun.IDB, holder, asset string, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.debit(holder, asset, amount)
}

func (m *MemoryRepository) debit(holder, asset string, amount uint64) error {
	key := [2]string{holder, asset}
	if m.balances[key] < amount {
		return ledgerdb.ErrInsufficientFunds
	}
	m.balances[key] -= amount
	return nil
}

func (m *MemoryRepository) Transfer(_ context.Context, _ bun.IDB, from, to, asset string, amount uint64, memo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if from == to {
		return ledgerdb.ErrSelfTransfer
	}
	if amount == 0 {
		return nil
	}
	if err := m.debit(from, asset, amount); err != nil {
		return err
	}
	if err := m.credit(to, asset, amount); err != nil {
		m.balances[[2]string{from, asset}] += amount
		return err
	}
	m.journal(from, to, asset, amount, memo)
	return nil
}

func (m *MemoryRepository) Mint(_ context.Context, _ bun.IDB, to, asset string, amount uint64, memo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.credit(to, asset, amount); err != nil {
		return err
	}
	m.journal("", to, asset, amount, memo)
	return nil
}

func (m *MemoryRepository) journal(from, to, asset string, amount uint64, memo string) {
	m.transfers = append(m.transfers, ledgerdb.Transfer{
		ID:         int64(len(m.transfers) + 1),
		FromHolder: from,
		ToHolder:   to,
		Asset:      asset,
		Amount:     amount,
		Memo:       memo,
		CreatedAt:  time.Now().UTC(),
	})
}

func (m *MemoryRepository) ListTransfers(_ context.Context, _ bun.IDB, holder string, limit int) ([]ledgerdb.Transfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ledgerdb.Transfer
	for _, t := range m.transfers {
		if t.FromHolder == holder || t.ToHolder == holder {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ ledgerdb.Repository = (*MemoryRepository)(nil)
