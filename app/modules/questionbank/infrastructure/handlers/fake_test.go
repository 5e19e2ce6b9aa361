package questionbankhandlers

import (
	"context"

	questionbankservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/application"
	questionbankdomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/domain"
	questionbankdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/infrastructure/repositories"
)

// ------------------------
// Fake Question Bank Service
// ------------------------

type FakeQuestionBankService struct {
	trace []string

	SubmitQuestionFunc func(ctx context.Context, signer string, input questionbankdomain.QuestionInput) (*questionbankdb.Question, error)
	VoteOnQuestionFunc func(ctx context.Context, signer string, questionID uint64, approve bool) (*questionbankservice.VoteResult, error)
	GetQuestionFunc    func(ctx context.Context, id uint64) (*questionbankdb.Question, error)
}

func NewFakeQuestionBankService() *FakeQuestionBankService {
	return &FakeQuestionBankService{
		trace: []string{},
	}
}

func (f *FakeQuestionBankService) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Service Interface Implementation ---

func (f *FakeQuestionBankService) Initialize(ctx context.Context, authority string) (*questionbankdb.State, error) {
	f.record("Initialize")
	return &questionbankdb.State{Authority: authority, Curators: []string{authority}}, nil
}

func (f *FakeQuestionBankService) AddCurator(ctx context.Context, signer, curator string) (*questionbankdb.State, error) {
	f.record("AddCurator")
	return nil, nil
}

func (f *FakeQuestionBankService) RemoveCurator(ctx context.Context, signer, curator string) (*questionbankdb.State, error) {
	f.record("RemoveCurator")
	return nil, nil
}

func (f *FakeQuestionBankService) SubmitQuestion(ctx context.Context, signer string, input questionbankdomain.QuestionInput) (*questionbankdb.Question, error) {
	f.record("SubmitQuestion")
	if f.SubmitQuestionFunc != nil {
		return f.SubmitQuestionFunc(ctx, signer, input)
	}
	return &questionbankdb.Question{ID: 1, Submitter: signer}, nil
}

func (f *FakeQuestionBankService) VoteOnQuestion(ctx context.Context, signer string, questionID uint64, approve bool) (*questionbankservice.VoteResult, error) {
	f.record("VoteOnQuestion")
	if f.VoteOnQuestionFunc != nil {
		return f.VoteOnQuestionFunc(ctx, signer, questionID, approve)
	}
	return &questionbankservice.VoteResult{Question: &questionbankdb.Question{ID: questionID}}, nil
}

func (f *FakeQuestionBankService) GetState(ctx context.Context) (*questionbankdb.State, error) {
	f.record("GetState")
	return nil, questionbankservice.ErrNotInitialized
}

func (f *FakeQuestionBankService) GetQuestion(ctx context.Context, id uint64) (*questionbankdb.Question, error) {
	f.record("GetQuestion")
	if f.GetQuestionFunc != nil {
		return f.GetQuestionFunc(ctx, id)
	}
	return nil, questionbankservice.ErrQuestionNotFound
}

func (f *FakeQuestionBankService) ListApprovedQuestions(ctx context.Context, category string, difficulty uint8, limit int) ([]questionbankdb.Question, error) {
	f.record("ListApprovedQuestions")
	return nil, nil
}

func (f *FakeQuestionBankService) CountApprovedQuestions(ctx context.Context, category string, difficulty uint8) (uint64, error) {
	f.record("CountApprovedQuestions")
	return 0, nil
}

func (f *FakeQuestionBankService) GetReputation(ctx context.Context, owner string) (*questionbankdb.Reputation, error) {
	f.record("GetReputation")
	return nil, questionbankservice.ErrReputationNotFound
}

// --- Accessors for assertions ---

func (f *FakeQuestionBankService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ questionbankservice.Service = (*FakeQuestionBankService)(nil)
