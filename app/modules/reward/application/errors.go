package rewardservice

import (
	"errors"

	rewarddomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/domain"
	"github.com/Black-And-White-Club/trivia-ledger/internal/ledgererr"
)

var (
	ErrAlreadyInitialized     = ledgererr.New(6200, ledgererr.State, "AlreadyInitialized", "reward distributor is already initialized")
	ErrNotInitialized         = ledgererr.New(6201, ledgererr.State, "NotInitialized", "reward distributor is not initialized")
	ErrUnauthorizedAuthority  = ledgererr.New(6202, ledgererr.Authorization, "UnauthorizedAuthority", "unauthorized authority")
	ErrInvalidPoolName        = ledgererr.New(6203, ledgererr.Validation, "InvalidPoolName", "invalid pool name (max 50 characters)")
	ErrInvalidRewardAmount    = ledgererr.New(6204, ledgererr.Validation, "InvalidRewardAmount", "invalid reward amount")
	ErrInvalidEndTime         = ledgererr.New(6205, ledgererr.Validation, "InvalidEndTime", "end time must be after start time")
	ErrMissingTokenMint       = ledgererr.New(6206, ledgererr.Validation, "MissingTokenMint", "token pools require a token id")
	ErrUnexpectedTokenMint    = ledgererr.New(6207, ledgererr.Validation, "UnexpectedTokenMint", "native pools take no token id")
	ErrInvalidRewardKind      = ledgererr.New(6208, ledgererr.Validation, "InvalidRewardKind", "reward kind must be native or token")
	ErrInvalidPlatformFee     = ledgererr.New(6209, ledgererr.Validation, "InvalidPlatformFee", "platform fee must be at most 10000 basis points")
	ErrInvalidCriteria        = ledgererr.New(6210, ledgererr.Validation, "InvalidCriteria", "unknown distribution criteria")
	ErrInvalidTiers           = ledgererr.New(6211, ledgererr.Validation, "InvalidTiers", "tiers must be contiguous from rank 1 with positive shares")
	ErrTierMismatch           = ledgererr.New(6212, ledgererr.Validation, "TierMismatch", "tier shares must sum to exactly 10000 basis points")
	ErrPoolNotFound           = ledgererr.New(6213, ledgererr.NotFound, "PoolNotFound", "pool not found with the given id")
	ErrPoolNotActive          = ledgererr.New(6214, ledgererr.State, "PoolNotActive", "pool is not active")
	ErrFundingExceedsTarget   = ledgererr.New(6215, ledgererr.Capacity, "FundingExceedsTarget", "funding would exceed the pool target")
	ErrAlreadyDistributed     = ledgererr.New(6216, ledgererr.Duplication, "AlreadyDistributed", "pool rewards were already distributed")
	ErrPoolNotStarted         = ledgererr.New(6217, ledgererr.State, "PoolNotStarted", "pool has not started yet")
	ErrInvalidRankings        = ledgererr.New(6218, ledgererr.Validation, "InvalidRankings", "rankings must be non-empty with ranks starting at 1")
	ErrDuplicateParticipant   = ledgererr.New(6219, ledgererr.Duplication, "DuplicateParticipant", "participant ranked more than once")
	ErrClaimNotFound          = ledgererr.New(6220, ledgererr.NotFound, "ClaimNotFound", "invalid claim record for user")
	ErrAlreadyClaimed         = ledgererr.New(6221, ledgererr.Duplication, "AlreadyClaimed", "reward was already claimed")
	ErrClaimPeriodNotStarted  = ledgererr.New(6222, ledgererr.State, "ClaimPeriodNotStarted", "claim period has not started yet")
	ErrClaimPeriodEnded       = ledgererr.New(6223, ledgererr.State, "ClaimPeriodEnded", "claim period has ended for this pool")
	ErrInsufficientPoolFunds  = ledgererr.New(6224, ledgererr.Capacity, "InsufficientPoolFunds", "insufficient funds in the reward pool")
	ErrCannotUpdateActivePool = ledgererr.New(6225, ledgererr.State, "CannotUpdateActivePool", "cannot update a pool that started or distributed")
	ErrPoolStillActive        = ledgererr.New(6226, ledgererr.State, "PoolStillActive", "pool is still active")
	ErrDistributionNotFound   = ledgererr.New(6227, ledgererr.NotFound, "DistributionNotFound", "pool has no custom distribution")
	ErrArithmeticOverflow     = ledgererr.New(6228, ledgererr.Arithmetic, "ArithmeticOverflow", "arithmetic overflow")
	ErrInvalidAddress         = ledgererr.New(6229, ledgererr.Validation, "InvalidAddress", "address is required")
)

var domainErrors = []struct {
	err  error
	code *ledgererr.Error
}{
	{rewarddomain.ErrInvalidName, ErrInvalidPoolName},
	{rewarddomain.ErrInvalidAmount, ErrInvalidRewardAmount},
	{rewarddomain.ErrInvalidEndTime, ErrInvalidEndTime},
	{rewarddomain.ErrMissingToken, ErrMissingTokenMint},
	{rewarddomain.ErrUnexpectedToken, ErrUnexpectedTokenMint},
	{rewarddomain.ErrInvalidKind, ErrInvalidRewardKind},
	{rewarddomain.ErrInvalidPlatformFee, ErrInvalidPlatformFee},
	{rewarddomain.ErrInvalidCriteria, ErrInvalidCriteria},
	{rewarddomain.ErrNoTiers, ErrInvalidTiers},
	{rewarddomain.ErrUnexpectedTiers, ErrInvalidTiers},
	{rewarddomain.ErrInvalidTierRange, ErrInvalidTiers},
	{rewarddomain.ErrZeroTier, ErrInvalidTiers},
	{rewarddomain.ErrTierMismatch, ErrTierMismatch},
	{rewarddomain.ErrNoRankings, ErrInvalidRankings},
	{rewarddomain.ErrInvalidRank, ErrInvalidRankings},
	{rewarddomain.ErrDuplicateParticipant, ErrDuplicateParticipant},
	{rewarddomain.ErrOverflow, ErrArithmeticOverflow},
}

// domainError maps a rewarddomain rule violation to its coded error.
func domainError(err error) (*ledgererr.Error, bool) {
	for _, m := range domainErrors {
		if errors.Is(err, m.err) {
			return m.code, true
		}
	}
	return nil, false
}
