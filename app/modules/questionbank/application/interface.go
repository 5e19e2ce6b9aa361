package questionbankservice

import (
	"context"

	questionbankdomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/domain"
	questionbankdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/infrastructure/repositories"
)

// Service defines the Question Bank instructions and queries.
type Service interface {
	Initialize(ctx context.Context, authority string) (*questionbankdb.State, error)
	AddCurator(ctx context.Context, signer, curator string) (*questionbankdb.State, error)
	RemoveCurator(ctx context.Context, signer, curator string) (*questionbankdb.State, error)
	SubmitQuestion(ctx context.Context, signer string, input questionbankdomain.QuestionInput) (*questionbankdb.Question, error)
	VoteOnQuestion(ctx context.Context, signer string, questionID uint64, approve bool) (*VoteResult, error)

	GetState(ctx context.Context) (*questionbankdb.State, error)
	GetQuestion(ctx context.Context, id uint64) (*questionbankdb.Question, error)
	ListApprovedQuestions(ctx context.Context, category string, difficulty uint8, limit int) ([]questionbankdb.Question, error)
	CountApprovedQuestions(ctx context.Context, category string, difficulty uint8) (uint64, error)
	GetReputation(ctx context.Context, owner string) (*questionbankdb.Reputation, error)
}

// VoteResult is the question after a vote. Finalized is true only for the vote that moved
// the question out of Pending.
type VoteResult struct {
	Question  *questionbankdb.Question `json:"question"`
	Finalized bool                     `json:"finalized"`
}

// Config holds the tunable curation rules.
type Config struct {
	// MinSubmitReputation rejects submitters below this score. Zero disables the check.
	MinSubmitReputation int64
}
