package ledgerservice

import (
	"errors"

	ledgerdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/ledger/infrastructure/repositories"
	"github.com/Black-And-White-Club/trivia-ledger/internal/ledgererr"
)

var (
	ErrUnauthorizedMint  = ledgererr.New(6300, ledgererr.Authorization, "UnauthorizedMint", "signer may not mint")
	ErrInvalidAmount     = ledgererr.New(6301, ledgererr.Validation, "InvalidAmount", "amount must be positive and within range")
	ErrInsufficientFunds = ledgererr.New(6302, ledgererr.Capacity, "InsufficientFunds", "insufficient funds")
	ErrInvalidHolder     = ledgererr.New(6303, ledgererr.Validation, "InvalidHolder", "holder and asset are required")
	ErrBalanceOverflow   = ledgererr.New(6304, ledgererr.Arithmetic, "BalanceOverflow", "balance would overflow")
	ErrSelfTransfer      = ledgererr.New(6305, ledgererr.Validation, "SelfTransfer", "source and destination are the same holder")
)

// DomainError maps a repository transfer error onto the ledger's domain errors. Other
// programs use it to turn a failed fund movement into a failure result.
func DomainError(err error) (*ledgererr.Error, bool) {
	switch {
	case errors.Is(err, ledgerdb.ErrInsufficientFunds):
		return ErrInsufficientFunds, true
	case errors.Is(err, ledgerdb.ErrBalanceOverflow):
		return ErrBalanceOverflow, true
	case errors.Is(err, ledgerdb.ErrSelfTransfer):
		return ErrSelfTransfer, true
	}
	return nil, false
}
