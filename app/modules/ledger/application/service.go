package ledgerservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	ledgerdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/ledger/infrastructure/repositories"
	"github.com/Black-And-White-Club/trivia-ledger/internal/metrics"
	"github.com/Black-And-White-Club/trivia-ledger/internal/observability/attr"
	"github.com/Black-And-White-Club/trivia-ledger/internal/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	serviceName       = "LedgerService"
	maxTransfersLimit = 100
)

// LedgerService implements the Service interface.
type LedgerService struct {
	repo          ledgerdb.Repository
	logger        *slog.Logger
	metrics       metrics.OperationMetrics
	tracer        trace.Tracer
	db            *bun.DB
	mintAuthority string
}

// NewLedgerService creates a new LedgerService. An empty mintAuthority disables Mint.
func NewLedgerService(
	repo ledgerdb.Repository,
	logger *slog.Logger,
	opMetrics metrics.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	mintAuthority string,
) *LedgerService {
	if logger == nil {
		logger = slog.Default()
	}
	if opMetrics == nil {
		opMetrics = metrics.NewNoop()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("ledger")
	}
	return &LedgerService{
		repo:          repo,
		logger:        logger,
		metrics:       opMetrics,
		tracer:        tracer,
		db:            db,
		mintAuthority: mintAuthority,
	}
}

// Mint credits holder out of thin air. Only the configured mint authority may call it.
func (s *LedgerService) Mint(ctx context.Context, signer, holder, asset string, amount uint64) (*BalanceView, error) {
	mintTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*BalanceView, error], error) {
		if s.mintAuthority == "" || signer != s.mintAuthority {
			return results.FailureResult[*BalanceView, error](ErrUnauthorizedMint), nil
		}
		if holder == "" || asset == "" {
			return results.FailureResult[*BalanceView, error](ErrInvalidHolder), nil
		}
		if amount == 0 || amount > ledgerdb.MaxAmount {
			return results.FailureResult[*BalanceView, error](ErrInvalidAmount), nil
		}

		if err := s.repo.Mint(ctx, db, holder, asset, amount, "mint"); err != nil {
			if derr, ok := DomainError(err); ok {
				return results.FailureResult[*BalanceView, error](derr), nil
			}
			return results.OperationResult[*BalanceView, error]{}, fmt.Errorf("failed to mint: %w", err)
		}

		balance, err := s.repo.GetBalance(ctx, db, holder, asset)
		if err != nil {
			return results.OperationResult[*BalanceView, error]{}, err
		}
		s.metrics.RecordFundsMoved(ctx, serviceName, asset, amount)
		return results.SuccessResult[*BalanceView, error](&BalanceView{Holder: holder, Asset: asset, Amount: balance}), nil
	}

	result, err := withTelemetry(s, ctx, "Mint", holder, func(ctx context.Context) (results.OperationResult[*BalanceView, error], error) {
		return runInTx(s, ctx, mintTx)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// GetBalance returns holder's balance in asset.
func (s *LedgerService) GetBalance(ctx context.Context, holder, asset string) (*BalanceView, error) {
	if holder == "" || asset == "" {
		return nil, ErrInvalidHolder
	}
	amount, err := s.repo.GetBalance(ctx, s.idb(), holder, asset)
	if err != nil {
		return nil, err
	}
	return &BalanceView{Holder: holder, Asset: asset, Amount: amount}, nil
}

// ListTransfers returns the newest journal entries touching holder.
func (s *LedgerService) ListTransfers(ctx context.Context, holder string, limit int) ([]ledgerdb.Transfer, error) {
	if limit <= 0 || limit > maxTransfersLimit {
		limit = maxTransfersLimit
	}
	return s.repo.ListTransfers(ctx, s.idb(), holder, limit)
}

// idb avoids handing repositories a typed-nil *bun.DB.
func (s *LedgerService) idb() bun.IDB {
	if s.db == nil {
		return nil
	}
	return s.db
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *LedgerService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("identifier", identifier),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	} else {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	return result, nil
}

// runInTx runs fn inside a serializable transaction. A failure result rolls the transaction
// back as well, so a rejected instruction leaves no writes behind.
func runInTx[S any, F any](
	s *LedgerService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := s.db.RunInTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		if txErr != nil {
			return txErr
		}
		if result.IsFailure() {
			return errRollback
		}
		return nil
	})
	if errors.Is(err, errRollback) {
		return result, nil
	}
	return result, err
}

var errRollback = errors.New("rollback failed instruction")
