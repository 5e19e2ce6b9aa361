package ledgerdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for balance persistence. Callers pass the instruction's
// transaction so fund movement commits together with the state it pays for.
type Repository interface {
	// GetBalance returns the balance of holder in asset; a missing row is a zero balance.
	GetBalance(ctx context.Context, db bun.IDB, holder, asset string) (uint64, error)

	// Credit adds amount to holder's balance.
	Credit(ctx context.Context, db bun.IDB, holder, asset string, amount uint64) error

	// Debit subtracts amount from holder's balance, failing with ErrInsufficientFunds.
	Debit(ctx context.Context, db bun.IDB, holder, asset string, amount uint64) error

	// Transfer debits from, credits to and appends a journal entry.
	Transfer(ctx context.Context, db bun.IDB, from, to, asset string, amount uint64, memo string) error

	// Mint credits to and journals a transfer with an empty source.
	Mint(ctx context.Context, db bun.IDB, to, asset string, amount uint64, memo string) error

	// ListTransfers returns the newest transfers touching holder.
	ListTransfers(ctx context.Context, db bun.IDB, holder string, limit int) ([]Transfer, error)
}
