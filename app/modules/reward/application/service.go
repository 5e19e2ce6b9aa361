package rewardservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	ledgerservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/ledger/application"
	ledgerdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/ledger/infrastructure/repositories"
	rewarddomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/domain"
	rewarddb "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/infrastructure/repositories"
	"github.com/Black-And-White-Club/trivia-ledger/internal/address"
	"github.com/Black-And-White-Club/trivia-ledger/internal/clock"
	"github.com/Black-And-White-Club/trivia-ledger/internal/ledgererr"
	"github.com/Black-And-White-Club/trivia-ledger/internal/metrics"
	"github.com/Black-And-White-Club/trivia-ledger/internal/observability/attr"
	"github.com/Black-And-White-Club/trivia-ledger/internal/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const serviceName = "RewardService"

// RewardService implements the Service interface.
type RewardService struct {
	repo    rewarddb.Repository
	ledger  ledgerdb.Repository
	logger  *slog.Logger
	metrics metrics.OperationMetrics
	tracer  trace.Tracer
	db      *bun.DB
	clock   clock.Clock
	config  Config
}

// NewRewardService creates a new RewardService.
func NewRewardService(
	repo rewarddb.Repository,
	ledger ledgerdb.Repository,
	logger *slog.Logger,
	opMetrics metrics.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	clk clock.Clock,
	cfg Config,
) *RewardService {
	if logger == nil {
		logger = slog.Default()
	}
	if opMetrics == nil {
		opMetrics = metrics.NewNoop()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("reward")
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &RewardService{
		repo:    repo,
		ledger:  ledger,
		logger:  logger,
		metrics: opMetrics,
		tracer:  tracer,
		db:      db,
		clock:   clk,
		config:  cfg,
	}
}

type (
	stateResult      = results.OperationResult[*rewarddb.State, error]
	poolResult       = results.OperationResult[*rewarddb.Pool, error]
	claimResult      = results.OperationResult[*rewarddb.Claim, error]
	allocationResult = results.OperationResult[*rewarddomain.Allocation, error]
)

// Initialize creates the reward distributor state. An empty treasury defaults to the
// authority.
func (s *RewardService) Initialize(ctx context.Context, authority, treasury string) (*rewarddb.State, error) {
	initTx := func(ctx context.Context, db bun.IDB) (stateResult, error) {
		if authority == "" {
			return fail[*rewarddb.State](ErrInvalidAddress)
		}
		if treasury == "" {
			treasury = authority
		}
		now := s.clock.Now()
		state := &rewarddb.State{
			Address:   address.Derive(address.Reward, "state"),
			Authority: authority,
			Treasury:  treasury,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.CreateState(ctx, db, state); err != nil {
			if errors.Is(err, rewarddb.ErrDuplicate) {
				return fail[*rewarddb.State](ErrAlreadyInitialized)
			}
			return stateResult{}, err
		}
		return results.SuccessResult[*rewarddb.State, error](state), nil
	}

	return unwrap(withTelemetry(s, ctx, "Initialize", authority, func(ctx context.Context) (stateResult, error) {
		return runInTx(s, ctx, initTx)
	}))
}

// CreateRewardPool opens a pool. Only the authority may create pools.
func (s *RewardService) CreateRewardPool(ctx context.Context, signer string, params rewarddomain.CreateParams) (*rewarddb.Pool, error) {
	createTx := func(ctx context.Context, db bun.IDB) (poolResult, error) {
		state, err := s.repo.GetState(ctx, db, true)
		if err != nil {
			if errors.Is(err, rewarddb.ErrNotFound) {
				return fail[*rewarddb.Pool](ErrNotInitialized)
			}
			return poolResult{}, err
		}
		if signer != state.Authority {
			return fail[*rewarddb.Pool](ErrUnauthorizedAuthority)
		}
		if params.PlatformFeeBps == nil {
			fee := s.config.DefaultPlatformFeeBps
			params.PlatformFeeBps = &fee
		}
		valid, err := params.Validate()
		if err != nil {
			return failDomain[*rewarddb.Pool](err)
		}
		if state.PoolCount == math.MaxInt64 {
			return fail[*rewarddb.Pool](ErrArithmeticOverflow)
		}

		id := state.PoolCount + 1
		now := s.clock.Now()
		pool := &rewarddb.Pool{
			ID:             id,
			Address:        address.Derive(address.Reward, "pool", address.ID(id)),
			Authority:      state.Authority,
			Name:           valid.Name,
			Target:         valid.Target,
			Kind:           string(valid.Kind),
			Asset:          s.config.NativeAsset,
			Vault:          address.Vault(address.Reward, "pool", id),
			Criteria:       string(valid.Criteria),
			PlatformFeeBps: *valid.PlatformFeeBps,
			StartTime:      valid.StartTime,
			EndTime:        valid.EndTime,
			Active:         true,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if valid.Kind == rewarddomain.KindToken {
			token := valid.TokenID
			pool.TokenID = &token
			pool.Asset = token
		}
		if err := s.repo.CreatePool(ctx, db, pool); err != nil {
			return poolResult{}, err
		}
		if valid.Criteria == rewarddomain.CriteriaTiered {
			if err := s.repo.SaveDistribution(ctx, db, s.distribution(id, valid.Tiers)); err != nil {
				return poolResult{}, err
			}
		}

		state.PoolCount = id
		if err := s.repo.UpdateState(ctx, db, state); err != nil {
			return poolResult{}, err
		}
		return results.SuccessResult[*rewarddb.Pool, error](pool), nil
	}

	return unwrap(withTelemetry(s, ctx, "CreateRewardPool", signer, func(ctx context.Context) (poolResult, error) {
		return runInTx(s, ctx, createTx)
	}))
}

// FundRewardPool moves amount from signer into the pool vault.
func (s *RewardService) FundRewardPool(ctx context.Context, signer string, id, amount uint64) (*rewarddb.Pool, error) {
	fundTx := func(ctx context.Context, db bun.IDB) (poolResult, error) {
		if signer == "" {
			return fail[*rewarddb.Pool](ErrInvalidAddress)
		}
		if amount == 0 || amount > rewarddomain.MaxAmount {
			return fail[*rewarddb.Pool](ErrInvalidRewardAmount)
		}
		pool, failure, err := s.loadPool(ctx, db, id)
		if failure != nil || err != nil {
			return failWith[*rewarddb.Pool](failure, err)
		}
		if !pool.Active {
			return fail[*rewarddb.Pool](ErrPoolNotActive)
		}
		if pool.DistributedAt != nil {
			return fail[*rewarddb.Pool](ErrAlreadyDistributed)
		}
		if amount > pool.Target-pool.Funded {
			return fail[*rewarddb.Pool](ErrFundingExceedsTarget)
		}

		if failure, err := s.transfer(ctx, db, signer, pool.Vault, pool.Asset, amount, memo("funding", id)); failure != nil || err != nil {
			return failWith[*rewarddb.Pool](failure, err)
		}
		pool.Funded += amount
		if err := s.repo.UpdatePool(ctx, db, pool); err != nil {
			return poolResult{}, err
		}
		s.metrics.RecordFundsMoved(ctx, serviceName, pool.Asset, amount)
		return results.SuccessResult[*rewarddb.Pool, error](pool), nil
	}

	return unwrap(withTelemetry(s, ctx, "FundRewardPool", address.ID(id), func(ctx context.Context) (poolResult, error) {
		return runInTx(s, ctx, fundTx)
	}))
}

// DistributeRewards takes the platform fee, computes every entitlement and records one claim
// per paid participant. A pool distributes once, within its claim window; funds of a pool
// left undistributed at EndTime return to the authority through CloseRewardPool.
func (s *RewardService) DistributeRewards(ctx context.Context, signer string, id uint64, rankings []rewarddomain.Ranking) (*rewarddomain.Allocation, error) {
	distributeTx := func(ctx context.Context, db bun.IDB) (allocationResult, error) {
		state, err := s.repo.GetState(ctx, db, false)
		if err != nil {
			if errors.Is(err, rewarddb.ErrNotFound) {
				return fail[*rewarddomain.Allocation](ErrNotInitialized)
			}
			return allocationResult{}, err
		}
		pool, failure, err := s.loadPool(ctx, db, id)
		if failure != nil || err != nil {
			return failWith[*rewarddomain.Allocation](failure, err)
		}
		if signer != pool.Authority {
			return fail[*rewarddomain.Allocation](ErrUnauthorizedAuthority)
		}
		if !pool.Active {
			return fail[*rewarddomain.Allocation](ErrPoolNotActive)
		}
		if pool.DistributedAt != nil {
			return fail[*rewarddomain.Allocation](ErrAlreadyDistributed)
		}
		now := s.clock.Now()
		if now.Before(pool.StartTime) {
			return fail[*rewarddomain.Allocation](ErrPoolNotStarted)
		}
		if now.After(pool.EndTime) {
			return fail[*rewarddomain.Allocation](ErrClaimPeriodEnded)
		}

		var tiers []rewarddomain.Tier
		if rewarddomain.Criteria(pool.Criteria) == rewarddomain.CriteriaTiered {
			dist, err := s.repo.GetDistribution(ctx, db, id)
			if err != nil {
				if errors.Is(err, rewarddb.ErrNotFound) {
					return fail[*rewarddomain.Allocation](ErrDistributionNotFound)
				}
				return allocationResult{}, err
			}
			tiers = dist.Tiers
		}

		alloc, err := rewarddomain.Allocate(pool.Funded, pool.PlatformFeeBps, rewarddomain.Criteria(pool.Criteria), tiers, rankings)
		if err != nil {
			return failDomain[*rewarddomain.Allocation](err)
		}
		entitled := alloc.Total()
		if pool.DistributedBalance+alloc.PlatformFee+entitled > pool.Funded {
			return fail[*rewarddomain.Allocation](ErrArithmeticOverflow)
		}

		if failure, err := s.transfer(ctx, db, pool.Vault, state.Treasury, pool.Asset, alloc.PlatformFee, memo("platform fee", id)); failure != nil || err != nil {
			return failWith[*rewarddomain.Allocation](failure, err)
		}

		claims := make([]rewarddb.Claim, len(alloc.Entitlements))
		for i, e := range alloc.Entitlements {
			claims[i] = rewarddb.Claim{
				Address:   address.Derive(address.Reward, "claim", address.ID(id), e.Participant),
				PoolID:    id,
				Claimant:  e.Participant,
				Rank:      e.Rank,
				Amount:    e.Amount,
				CreatedAt: now,
			}
		}
		if err := s.repo.CreateClaims(ctx, db, claims); err != nil {
			if errors.Is(err, rewarddb.ErrDuplicate) {
				return fail[*rewarddomain.Allocation](ErrAlreadyDistributed)
			}
			return allocationResult{}, err
		}

		pool.PlatformFee = alloc.PlatformFee
		pool.DistributedBalance += alloc.PlatformFee
		pool.Entitled = entitled
		pool.DistributedAt = &now
		if err := s.repo.UpdatePool(ctx, db, pool); err != nil {
			return allocationResult{}, err
		}

		s.metrics.RecordFundsMoved(ctx, serviceName, pool.Asset, alloc.PlatformFee)
		s.logger.InfoContext(ctx, "Rewards distributed",
			attr.ExtractCorrelationID(ctx),
			attr.Uint64("pool_id", id),
			attr.Uint64("platform_fee", alloc.PlatformFee),
			attr.Uint64("entitled", entitled),
			attr.Int("claims", len(claims)),
		)
		return results.SuccessResult[*rewarddomain.Allocation, error](alloc), nil
	}

	return unwrap(withTelemetry(s, ctx, "DistributeRewards", address.ID(id), func(ctx context.Context) (allocationResult, error) {
		return runInTx(s, ctx, distributeTx)
	}))
}

// ClaimReward pays signer's entitlement. The claimed flag and the transfer commit together.
func (s *RewardService) ClaimReward(ctx context.Context, signer string, id uint64) (*rewarddb.Claim, error) {
	claimTx := func(ctx context.Context, db bun.IDB) (claimResult, error) {
		pool, failure, err := s.loadPool(ctx, db, id)
		if failure != nil || err != nil {
			return failWith[*rewarddb.Claim](failure, err)
		}
		claim, err := s.repo.GetClaim(ctx, db, id, signer, true)
		if err != nil {
			if errors.Is(err, rewarddb.ErrNotFound) {
				return fail[*rewarddb.Claim](ErrClaimNotFound)
			}
			return claimResult{}, err
		}
		if claim.Claimed {
			return fail[*rewarddb.Claim](ErrAlreadyClaimed)
		}
		if !pool.Active {
			return fail[*rewarddb.Claim](ErrPoolNotActive)
		}
		now := s.clock.Now()
		if now.Before(pool.StartTime) {
			return fail[*rewarddb.Claim](ErrClaimPeriodNotStarted)
		}
		if now.After(pool.EndTime) {
			return fail[*rewarddb.Claim](ErrClaimPeriodEnded)
		}
		if claim.Amount > pool.Funded-pool.DistributedBalance {
			return fail[*rewarddb.Claim](ErrInsufficientPoolFunds)
		}

		if failure, err := s.transfer(ctx, db, pool.Vault, signer, pool.Asset, claim.Amount, memo("claim", id)); failure != nil || err != nil {
			return failWith[*rewarddb.Claim](failure, err)
		}
		claim.Claimed = true
		claim.ClaimedAt = &now
		if err := s.repo.UpdateClaim(ctx, db, claim); err != nil {
			return claimResult{}, err
		}
		pool.DistributedBalance += claim.Amount
		if err := s.repo.UpdatePool(ctx, db, pool); err != nil {
			return claimResult{}, err
		}
		s.metrics.RecordFundsMoved(ctx, serviceName, pool.Asset, claim.Amount)
		return results.SuccessResult[*rewarddb.Claim, error](claim), nil
	}

	return unwrap(withTelemetry(s, ctx, "ClaimReward", signer, func(ctx context.Context) (claimResult, error) {
		return runInTx(s, ctx, claimTx)
	}))
}

// UpdateDistributionCriteria replaces a pool's criteria and tiers before it starts.
func (s *RewardService) UpdateDistributionCriteria(ctx context.Context, signer string, id uint64, criteria rewarddomain.Criteria, tiers []rewarddomain.Tier) (*rewarddb.Pool, error) {
	updateTx := func(ctx context.Context, db bun.IDB) (poolResult, error) {
		pool, failure, err := s.loadPool(ctx, db, id)
		if failure != nil || err != nil {
			return failWith[*rewarddb.Pool](failure, err)
		}
		if signer != pool.Authority {
			return fail[*rewarddb.Pool](ErrUnauthorizedAuthority)
		}
		if !pool.Active || pool.DistributedAt != nil || !s.clock.Now().Before(pool.StartTime) {
			return fail[*rewarddb.Pool](ErrCannotUpdateActivePool)
		}
		if err := rewarddomain.ValidateCriteria(criteria, tiers); err != nil {
			return failDomain[*rewarddb.Pool](err)
		}

		if criteria == rewarddomain.CriteriaTiered {
			err = s.repo.SaveDistribution(ctx, db, s.distribution(id, tiers))
		} else {
			err = s.repo.DeleteDistribution(ctx, db, id)
		}
		if err != nil {
			return poolResult{}, err
		}
		pool.Criteria = string(criteria)
		if err := s.repo.UpdatePool(ctx, db, pool); err != nil {
			return poolResult{}, err
		}
		return results.SuccessResult[*rewarddb.Pool, error](pool), nil
	}

	return unwrap(withTelemetry(s, ctx, "UpdateDistributionCriteria", address.ID(id), func(ctx context.Context) (poolResult, error) {
		return runInTx(s, ctx, updateTx)
	}))
}

// CloseRewardPool returns whatever the vault still holds to the authority once the claim
// period is over. Unclaimed entitlements expire.
func (s *RewardService) CloseRewardPool(ctx context.Context, signer string, id uint64) (*rewarddb.Pool, error) {
	closeTx := func(ctx context.Context, db bun.IDB) (poolResult, error) {
		pool, failure, err := s.loadPool(ctx, db, id)
		if failure != nil || err != nil {
			return failWith[*rewarddb.Pool](failure, err)
		}
		if signer != pool.Authority {
			return fail[*rewarddb.Pool](ErrUnauthorizedAuthority)
		}
		if !pool.Active {
			return fail[*rewarddb.Pool](ErrPoolNotActive)
		}
		now := s.clock.Now()
		if !now.After(pool.EndTime) {
			return fail[*rewarddb.Pool](ErrPoolStillActive)
		}

		remaining := pool.VaultBalance()
		if failure, err := s.transfer(ctx, db, pool.Vault, pool.Authority, pool.Asset, remaining, memo("close", id)); failure != nil || err != nil {
			return failWith[*rewarddb.Pool](failure, err)
		}
		pool.ReturnedBalance += remaining
		pool.Active = false
		pool.ClosedAt = &now
		if err := s.repo.UpdatePool(ctx, db, pool); err != nil {
			return poolResult{}, err
		}
		s.logger.InfoContext(ctx, "Reward pool closed",
			attr.ExtractCorrelationID(ctx),
			attr.Uint64("pool_id", id),
			attr.Uint64("returned", remaining),
		)
		return results.SuccessResult[*rewarddb.Pool, error](pool), nil
	}

	return unwrap(withTelemetry(s, ctx, "CloseRewardPool", address.ID(id), func(ctx context.Context) (poolResult, error) {
		return runInTx(s, ctx, closeTx)
	}))
}

func (s *RewardService) loadPool(ctx context.Context, db bun.IDB, id uint64) (*rewarddb.Pool, *ledgererr.Error, error) {
	pool, err := s.repo.GetPool(ctx, db, id, true)
	if err != nil {
		if errors.Is(err, rewarddb.ErrNotFound) {
			return nil, ErrPoolNotFound, nil
		}
		return nil, nil, err
	}
	return pool, nil, nil
}

func (s *RewardService) distribution(id uint64, tiers []rewarddomain.Tier) *rewarddb.Distribution {
	return &rewarddb.Distribution{
		PoolID:    id,
		Address:   address.Derive(address.Reward, "distribution", address.ID(id)),
		Tiers:     tiers,
		UpdatedAt: s.clock.Now(),
	}
}

// transfer moves funds inside the instruction's transaction. Ledger rejections come back as
// domain failures.
func (s *RewardService) transfer(ctx context.Context, db bun.IDB, from, to, asset string, amount uint64, note string) (*ledgererr.Error, error) {
	if amount == 0 {
		return nil, nil
	}
	if err := s.ledger.Transfer(ctx, db, from, to, asset, amount, note); err != nil {
		if failure, ok := ledgerservice.DomainError(err); ok {
			return failure, nil
		}
		return nil, fmt.Errorf("failed to transfer %s: %w", note, err)
	}
	return nil, nil
}

func memo(what string, id uint64) string {
	return fmt.Sprintf("reward pool %d %s", id, what)
}

// GetState returns the reward distributor state.
func (s *RewardService) GetState(ctx context.Context) (*rewarddb.State, error) {
	state, err := s.repo.GetState(ctx, s.idb(), false)
	if errors.Is(err, rewarddb.ErrNotFound) {
		return nil, ErrNotInitialized
	}
	return state, err
}

// GetPool returns one pool.
func (s *RewardService) GetPool(ctx context.Context, id uint64) (*rewarddb.Pool, error) {
	pool, err := s.repo.GetPool(ctx, s.idb(), id, false)
	if errors.Is(err, rewarddb.ErrNotFound) {
		return nil, ErrPoolNotFound
	}
	return pool, err
}

// GetDistribution returns the tier set of a tiered pool.
func (s *RewardService) GetDistribution(ctx context.Context, id uint64) (*rewarddb.Distribution, error) {
	if _, err := s.GetPool(ctx, id); err != nil {
		return nil, err
	}
	dist, err := s.repo.GetDistribution(ctx, s.idb(), id)
	if errors.Is(err, rewarddb.ErrNotFound) {
		return nil, ErrDistributionNotFound
	}
	return dist, err
}

// GetClaim returns claimant's claim record in a pool.
func (s *RewardService) GetClaim(ctx context.Context, id uint64, claimant string) (*rewarddb.Claim, error) {
	claim, err := s.repo.GetClaim(ctx, s.idb(), id, claimant, false)
	if errors.Is(err, rewarddb.ErrNotFound) {
		return nil, ErrClaimNotFound
	}
	return claim, err
}

// GetClaimableAmount is what ClaimReward would pay claimant right now, or zero.
func (s *RewardService) GetClaimableAmount(ctx context.Context, id uint64, claimant string) (uint64, error) {
	pool, err := s.GetPool(ctx, id)
	if err != nil {
		return 0, err
	}
	claim, err := s.repo.GetClaim(ctx, s.idb(), id, claimant, false)
	if errors.Is(err, rewarddb.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	now := s.clock.Now()
	if claim.Claimed || !pool.Active || now.Before(pool.StartTime) || now.After(pool.EndTime) {
		return 0, nil
	}
	return claim.Amount, nil
}

// ListClaims returns a pool's claims by rank.
func (s *RewardService) ListClaims(ctx context.Context, id uint64) ([]rewarddb.Claim, error) {
	if _, err := s.GetPool(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListClaims(ctx, s.idb(), id)
}

func (s *RewardService) idb() bun.IDB {
	if s.db == nil {
		return nil
	}
	return s.db
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

func fail[S any](failure *ledgererr.Error) (results.OperationResult[S, error], error) {
	return results.FailureResult[S, error](failure), nil
}

func failWith[S any](failure *ledgererr.Error, err error) (results.OperationResult[S, error], error) {
	if err != nil {
		return results.OperationResult[S, error]{}, err
	}
	return fail[S](failure)
}

// failDomain turns a rewarddomain rule violation into a failure result. Anything else is
// returned as an error.
func failDomain[S any](err error) (results.OperationResult[S, error], error) {
	if failure, ok := domainError(err); ok {
		return fail[S](failure)
	}
	return results.OperationResult[S, error]{}, err
}

func unwrap[S any](result results.OperationResult[S, error], err error) (S, error) {
	var zero S
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	return *result.Success, nil
}

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *RewardService,
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
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		return result, nil
	}

	s.logger.InfoContext(ctx, "Operation completed successfully",
		attr.ExtractCorrelationID(ctx),
		attr.String("operation", operationName),
		attr.String("identifier", identifier),
	)
	s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	return result, nil
}

// runInTx runs fn inside a serializable transaction. A failure result rolls back.
func runInTx[S any, F any](
	s *RewardService,
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
