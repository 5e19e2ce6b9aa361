package ledgerdb

import (
	"time"

	"github.com/uptrace/bun"
)

// Balance is the amount of one asset held by one holder.
type Balance struct {
	bun.BaseModel `bun:"table:ledger_balances,alias:lb"`
	Holder        string    `bun:"holder,pk" json:"holder"`
	Asset         string    `bun:"asset,pk" json:"asset"`
	Amount        uint64    `bun:"amount,notnull" json:"amount"`
	UpdatedAt     time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// Transfer is one journaled movement between holders. From is empty for mints.
type Transfer struct {
	bun.BaseModel `bun:"table:ledger_transfers,alias:lt"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	FromHolder    string    `bun:"from_holder,notnull" json:"from"`
	ToHolder      string    `bun:"to_holder,notnull" json:"to"`
	Asset         string    `bun:"asset,notnull" json:"asset"`
	Amount        uint64    `bun:"amount,notnull" json:"amount"`
	Memo          string    `bun:"memo,notnull" json:"memo"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
