package ledgerservice

import (
	"context"

	ledgerdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/ledger/infrastructure/repositories"
)

// Service exposes balances to transports and tooling.
type Service interface {
	Mint(ctx context.Context, signer, holder, asset string, amount uint64) (*BalanceView, error)
	GetBalance(ctx context.Context, holder, asset string) (*BalanceView, error)
	ListTransfers(ctx context.Context, holder string, limit int) ([]ledgerdb.Transfer, error)
}

// BalanceView is the read model of one balance.
type BalanceView struct {
	Holder string `json:"holder"`
	Asset  string `json:"asset"`
	Amount uint64 `json:"amount"`
}
