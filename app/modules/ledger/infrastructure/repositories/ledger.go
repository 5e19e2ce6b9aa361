package ledgerdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/uptrace/bun"
)

var (
	// ErrInsufficientFunds is returned when a debit exceeds the holder's balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrBalanceOverflow is returned when a credit would exceed the storable maximum.
	ErrBalanceOverflow = errors.New("balance overflow")
	// ErrSelfTransfer is returned when source and destination are the same holder.
	ErrSelfTransfer = errors.New("transfer to self")
)

// MaxAmount is the largest balance a bigint column holds.
const MaxAmount = uint64(math.MaxInt64)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new ledger repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) GetBalance(ctx context.Context, db bun.IDB, holder, asset string) (uint64, error) {
	db = r.resolveDB(db)
	b := new(Balance)
	err := db.NewSelect().
		Model(b).
		Where("holder = ?", holder).
		Where("asset = ?", asset).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return b.Amount, nil
}

func (r *Impl) Credit(ctx context.Context, db bun.IDB, holder, asset string, amount uint64) error {
	db = r.resolveDB(db)
	if amount == 0 {
		return nil
	}
	if amount > MaxAmount {
		return ErrBalanceOverflow
	}

	b := &Balance{Holder: holder, Asset: asset, Amount: amount, UpdatedAt: time.Now().UTC()}
	res, err := db.NewInsert().
		Model(b).
		On("CONFLICT (holder, asset) DO UPDATE").
		Set("amount = lb.amount + EXCLUDED.amount").
		Set("updated_at = EXCLUDED.updated_at").
		Where("lb.amount <= ? - EXCLUDED.amount", int64(MaxAmount)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to credit balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read credit result: %w", err)
	}
	if n == 0 {
		return ErrBalanceOverflow
	}
	return nil
}

func (r *Impl) Debit(ctx context.Context, db bun.IDB, holder, asset string, amount uint64) error {
	db = r.resolveDB(db)
	if amount == 0 {
		return nil
	}
	res, err := db.NewUpdate().
		Model((*Balance)(nil)).
		Set("amount = amount - ?", amount).
		Set("updated_at = ?", time.Now().UTC()).
		Where("holder = ?", holder).
		Where("asset = ?", asset).
		Where("amount >= ?", amount).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to debit balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read debit result: %w", err)
	}
	if n == 0 {
		return ErrInsufficientFunds
	}
	return nil
}

func (r *Impl) Transfer(ctx context.Context, db bun.IDB, from, to, asset string, amount uint64, memo string) error {
	db = r.resolveDB(db)
	if from == to {
		return ErrSelfTransfer
	}
	if amount == 0 {
		return nil
	}
	if err := r.Debit(ctx, db, from, asset, amount); err != nil {
		return err
	}
	if err := r.Credit(ctx, db, to, asset, amount); err != nil {
		return err
	}
	return r.journal(ctx, db, from, to, asset, amount, memo)
}

func (r *Impl) Mint(ctx context.Context, db bun.IDB, to, asset string, amount uint64, memo string) error {
	db = r.resolveDB(db)
	if err := r.Credit(ctx, db, to, asset, amount); err != nil {
		return err
	}
	return r.journal(ctx, db, "", to, asset, amount, memo)
}

func (r *Impl) journal(ctx context.Context, db bun.IDB, from, to, asset string, amount uint64, memo string) error {
	t := &Transfer{
		FromHolder: from,
		ToHolder:   to,
		Asset:      asset,
		Amount:     amount,
		Memo:       memo,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := db.NewInsert().Model(t).Exec(ctx); err != nil {
		return fmt.Errorf("failed to journal transfer: %w", err)
	}
	return nil
}

func (r *Impl) ListTransfers(ctx context.Context, db bun.IDB, holder string, limit int) ([]Transfer, error) {
	db = r.resolveDB(db)
	var transfers []Transfer
	err := db.NewSelect().
		Model(&transfers).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("from_holder = ?", holder).WhereOr("to_holder = ?", holder)
		}).
		OrderExpr("id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return transfers, nil
}
