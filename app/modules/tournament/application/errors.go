package tournamentservice

import (
	"errors"

	tournamentdomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/domain"
	"github.com/Black-And-White-Club/trivia-ledger/internal/ledgererr"
)

var (
	ErrAlreadyInitialized         = ledgererr.New(6100, ledgererr.State, "AlreadyInitialized", "tournament manager is already initialized")
	ErrNotInitialized             = ledgererr.New(6101, ledgererr.State, "NotInitialized", "tournament manager is not initialized")
	ErrInvalidName                = ledgererr.New(6102, ledgererr.Validation, "InvalidName", "name must be 1 to 64 bytes")
	ErrInvalidDescription         = ledgererr.New(6103, ledgererr.Validation, "InvalidDescription", "description must be at most 400 bytes")
	ErrInvalidEntryFee            = ledgererr.New(6104, ledgererr.Validation, "InvalidEntryFee", "entry fee exceeds the maximum amount")
	ErrInvalidMaxParticipants     = ledgererr.New(6105, ledgererr.Validation, "InvalidMaxParticipants", "max participants must be positive")
	ErrInvalidStartTime           = ledgererr.New(6106, ledgererr.Validation, "InvalidStartTime", "start time must not be in the past")
	ErrInvalidDuration            = ledgererr.New(6107, ledgererr.Validation, "InvalidDuration", "duration must be positive")
	ErrInvalidQuestionCount       = ledgererr.New(6108, ledgererr.Validation, "InvalidQuestionCount", "question count must be 1 to 50")
	ErrInvalidDifficulty          = ledgererr.New(6109, ledgererr.Validation, "InvalidDifficulty", "difficulty must be 1, 2 or 3")
	ErrInvalidCategory            = ledgererr.New(6110, ledgererr.Validation, "InvalidCategory", "category must be at most 32 bytes")
	ErrInsufficientQuestions      = ledgererr.New(6111, ledgererr.Capacity, "InsufficientQuestions", "not enough approved questions for this tournament")
	ErrTournamentNotFound         = ledgererr.New(6112, ledgererr.NotFound, "TournamentNotFound", "tournament does not exist")
	ErrRegistrationClosed         = ledgererr.New(6113, ledgererr.State, "RegistrationClosed", "registration is closed")
	ErrTournamentFull             = ledgererr.New(6114, ledgererr.Capacity, "TournamentFull", "tournament is full")
	ErrAlreadyRegistered          = ledgererr.New(6115, ledgererr.Duplication, "AlreadyRegistered", "participant is already registered")
	ErrTournamentNotStarted       = ledgererr.New(6116, ledgererr.State, "TournamentNotStarted", "start time has not been reached")
	ErrInsufficientParticipants   = ledgererr.New(6117, ledgererr.Capacity, "InsufficientParticipants", "not enough participants to start")
	ErrTournamentNotActive        = ledgererr.New(6118, ledgererr.State, "TournamentNotActive", "tournament is not active")
	ErrTournamentEnded            = ledgererr.New(6119, ledgererr.State, "TournamentEnded", "tournament playing window has ended")
	ErrUnauthorizedScoreSubmitter = ledgererr.New(6120, ledgererr.Authorization, "UnauthorizedScoreSubmitter", "only the participant or the organizer may submit a score")
	ErrNotRegistered              = ledgererr.New(6121, ledgererr.NotFound, "NotRegistered", "participant is not registered")
	ErrScoreAlreadySubmitted      = ledgererr.New(6122, ledgererr.Duplication, "ScoreAlreadySubmitted", "score was already submitted")
	ErrScoreExceedsMaximum        = ledgererr.New(6123, ledgererr.Validation, "ScoreExceedsMaximum", "score exceeds the maximum for this tournament")
	ErrTournamentNotEnded         = ledgererr.New(6124, ledgererr.State, "TournamentNotEnded", "tournament has not ended and scores are outstanding")
	ErrUnauthorizedCancel         = ledgererr.New(6125, ledgererr.Authorization, "UnauthorizedCancel", "only the organizer or the authority may cancel")
	ErrCannotCancel               = ledgererr.New(6126, ledgererr.State, "CannotCancel", "tournament can no longer be cancelled")
	ErrTournamentNotCancelled     = ledgererr.New(6127, ledgererr.State, "TournamentNotCancelled", "refunds are only available for cancelled tournaments")
	ErrAlreadyRefunded            = ledgererr.New(6128, ledgererr.Duplication, "AlreadyRefunded", "entry fee was already refunded")
	ErrUnauthorizedOrganizer      = ledgererr.New(6129, ledgererr.Authorization, "UnauthorizedOrganizer", "only the organizer may release the prize pool")
	ErrTournamentNotCompleted     = ledgererr.New(6130, ledgererr.State, "TournamentNotCompleted", "tournament is not completed")
	ErrPrizeAlreadyReleased       = ledgererr.New(6131, ledgererr.Duplication, "PrizeAlreadyReleased", "prize pool was already released")
	ErrArithmeticOverflow         = ledgererr.New(6132, ledgererr.Arithmetic, "ArithmeticOverflow", "arithmetic overflow")
	ErrInvalidTournamentState     = ledgererr.New(6133, ledgererr.State, "InvalidTournamentState", "tournament is not in registration")
	ErrInvalidAddress             = ledgererr.New(6134, ledgererr.Validation, "InvalidAddress", "address is required")
)

// validationError maps a domain validation failure to its coded error. ok is false for
// anything that is not a known validation failure.
func validationError(err error) (failure *ledgererr.Error, ok bool) {
	switch {
	case errors.Is(err, tournamentdomain.ErrInvalidName):
		return ErrInvalidName, true
	case errors.Is(err, tournamentdomain.ErrInvalidDescription):
		return ErrInvalidDescription, true
	case errors.Is(err, tournamentdomain.ErrInvalidEntryFee):
		return ErrInvalidEntryFee, true
	case errors.Is(err, tournamentdomain.ErrInvalidMaxParticipants):
		return ErrInvalidMaxParticipants, true
	case errors.Is(err, tournamentdomain.ErrInvalidStartTime):
		return ErrInvalidStartTime, true
	case errors.Is(err, tournamentdomain.ErrInvalidDuration):
		return ErrInvalidDuration, true
	case errors.Is(err, tournamentdomain.ErrInvalidQuestionCount):
		return ErrInvalidQuestionCount, true
	case errors.Is(err, tournamentdomain.ErrInvalidDifficulty):
		return ErrInvalidDifficulty, true
	case errors.Is(err, tournamentdomain.ErrInvalidCategory):
		return ErrInvalidCategory, true
	}
	return nil, false
}
