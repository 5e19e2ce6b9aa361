package questionbankservice

import (
	"errors"

	questionbankdomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/domain"
	"github.com/Black-And-White-Club/trivia-ledger/internal/ledgererr"
)

var (
	ErrAlreadyInitialized      = ledgererr.New(6000, ledgererr.State, "AlreadyInitialized", "question bank is already initialized")
	ErrNotInitialized          = ledgererr.New(6001, ledgererr.State, "NotInitialized", "question bank is not initialized")
	ErrUnauthorizedAuthority   = ledgererr.New(6002, ledgererr.Authorization, "UnauthorizedAuthority", "only the authority may manage curators")
	ErrUnauthorizedCurator     = ledgererr.New(6003, ledgererr.Authorization, "UnauthorizedCurator", "only curators may vote")
	ErrCuratorAlreadyExists    = ledgererr.New(6004, ledgererr.Duplication, "CuratorAlreadyExists", "curator is already in the set")
	ErrCuratorNotFound         = ledgererr.New(6005, ledgererr.State, "CuratorNotFound", "curator is not in the set")
	ErrTooManyCurators         = ledgererr.New(6006, ledgererr.Capacity, "TooManyCurators", "curator set is full")
	ErrCannotRemoveAuthority   = ledgererr.New(6007, ledgererr.Validation, "CannotRemoveAuthority", "the authority cannot be removed from the curator set")
	ErrInvalidQuestionText     = ledgererr.New(6008, ledgererr.Validation, "InvalidQuestionText", "question text must be non-empty and at most 400 bytes")
	ErrInvalidOptionCount      = ledgererr.New(6009, ledgererr.Validation, "InvalidOptionCount", "a question needs 2 to 4 options")
	ErrInvalidOption           = ledgererr.New(6010, ledgererr.Validation, "InvalidOption", "options must be non-empty and at most 80 bytes")
	ErrInvalidCorrectAnswer    = ledgererr.New(6011, ledgererr.Validation, "InvalidCorrectAnswer", "correct answer index is out of range")
	ErrInvalidDifficulty       = ledgererr.New(6012, ledgererr.Validation, "InvalidDifficulty", "difficulty must be 1, 2 or 3")
	ErrInvalidCategory         = ledgererr.New(6013, ledgererr.Validation, "InvalidCategory", "category must be non-empty and at most 32 bytes")
	ErrInsufficientReputation  = ledgererr.New(6014, ledgererr.Authorization, "InsufficientReputation", "submitter reputation is below the minimum")
	ErrQuestionNotFound        = ledgererr.New(6015, ledgererr.NotFound, "QuestionNotFound", "question does not exist")
	ErrQuestionNotPending      = ledgererr.New(6016, ledgererr.State, "QuestionNotPending", "question is already finalized")
	ErrAlreadyVoted            = ledgererr.New(6017, ledgererr.Duplication, "AlreadyVoted", "curator already voted on this question")
	ErrCannotVoteOnOwnQuestion = ledgererr.New(6018, ledgererr.Authorization, "CannotVoteOnOwnQuestion", "submitters cannot vote on their own question")
	ErrInvalidAddress          = ledgererr.New(6019, ledgererr.Validation, "InvalidAddress", "address is required")
	ErrReputationNotFound      = ledgererr.New(6020, ledgererr.NotFound, "ReputationNotFound", "no reputation record for owner")
	ErrArithmeticOverflow      = ledgererr.New(6021, ledgererr.Arithmetic, "ArithmeticOverflow", "counter overflow")
)

// validationError maps a domain validation failure to its coded error.
func validationError(err error) error {
	switch {
	case errors.Is(err, questionbankdomain.ErrEmptyText), errors.Is(err, questionbankdomain.ErrTextTooLong):
		return ErrInvalidQuestionText
	case errors.Is(err, questionbankdomain.ErrOptionCount):
		return ErrInvalidOptionCount
	case errors.Is(err, questionbankdomain.ErrEmptyOption), errors.Is(err, questionbankdomain.ErrOptionTooLong):
		return ErrInvalidOption
	case errors.Is(err, questionbankdomain.ErrCorrectIndex):
		return ErrInvalidCorrectAnswer
	case errors.Is(err, questionbankdomain.ErrInvalidDifficulty):
		return ErrInvalidDifficulty
	case errors.Is(err, questionbankdomain.ErrInvalidCategory):
		return ErrInvalidCategory
	}
	return err
}
