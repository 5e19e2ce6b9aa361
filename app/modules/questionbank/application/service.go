package questionbankservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	questionbankdomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/domain"
	questionbankdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/infrastructure/repositories"
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

const (
	serviceName      = "QuestionBankService"
	maxApprovedLimit = 50
)

// QuestionBankService implements the Service interface.
type QuestionBankService struct {
	repo    questionbankdb.Repository
	logger  *slog.Logger
	metrics metrics.OperationMetrics
	tracer  trace.Tracer
	db      *bun.DB
	clock   clock.Clock
	config  Config
}

// NewQuestionBankService creates a new QuestionBankService.
func NewQuestionBankService(
	repo questionbankdb.Repository,
	logger *slog.Logger,
	opMetrics metrics.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	clk clock.Clock,
	cfg Config,
) *QuestionBankService {
	if logger == nil {
		logger = slog.Default()
	}
	if opMetrics == nil {
		opMetrics = metrics.NewNoop()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("questionbank")
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &QuestionBankService{
		repo:    repo,
		logger:  logger,
		metrics: opMetrics,
		tracer:  tracer,
		db:      db,
		clock:   clk,
		config:  cfg,
	}
}

type stateResult = results.OperationResult[*questionbankdb.State, error]

// Initialize creates the question bank state with authority as its first curator.
func (s *QuestionBankService) Initialize(ctx context.Context, authority string) (*questionbankdb.State, error) {
	initTx := func(ctx context.Context, db bun.IDB) (stateResult, error) {
		if authority == "" {
			return results.FailureResult[*questionbankdb.State, error](ErrInvalidAddress), nil
		}
		now := s.clock.Now()
		state := &questionbankdb.State{
			Address:   address.Derive(address.QuestionBank, "state"),
			Authority: authority,
			Curators:  []string{authority},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.CreateState(ctx, db, state); err != nil {
			if errors.Is(err, questionbankdb.ErrDuplicate) {
				return results.FailureResult[*questionbankdb.State, error](ErrAlreadyInitialized), nil
			}
			return stateResult{}, err
		}
		return results.SuccessResult[*questionbankdb.State, error](state), nil
	}

	return unwrap(withTelemetry(s, ctx, "Initialize", authority, func(ctx context.Context) (stateResult, error) {
		return runInTx(s, ctx, initTx)
	}))
}

// AddCurator appends curator to the curator set.
func (s *QuestionBankService) AddCurator(ctx context.Context, signer, curator string) (*questionbankdb.State, error) {
	addTx := func(ctx context.Context, db bun.IDB) (stateResult, error) {
		state, failure, err := s.authorityState(ctx, db, signer)
		if failure != nil || err != nil {
			return stateResultOf(failure, err)
		}
		if curator == "" {
			return results.FailureResult[*questionbankdb.State, error](ErrInvalidAddress), nil
		}
		if state.IsCurator(curator) {
			return results.FailureResult[*questionbankdb.State, error](ErrCuratorAlreadyExists), nil
		}
		if len(state.Curators) >= questionbankdomain.MaxCurators {
			return results.FailureResult[*questionbankdb.State, error](ErrTooManyCurators), nil
		}

		state.Curators = append(state.Curators, curator)
		if err := s.repo.UpdateState(ctx, db, state); err != nil {
			return stateResult{}, err
		}
		return results.SuccessResult[*questionbankdb.State, error](state), nil
	}

	return unwrap(withTelemetry(s, ctx, "AddCurator", curator, func(ctx context.Context) (stateResult, error) {
		return runInTx(s, ctx, addTx)
	}))
}

// RemoveCurator removes curator from the curator set, preserving the order of the rest.
func (s *QuestionBankService) RemoveCurator(ctx context.Context, signer, curator string) (*questionbankdb.State, error) {
	removeTx := func(ctx context.Context, db bun.IDB) (stateResult, error) {
		state, failure, err := s.authorityState(ctx, db, signer)
		if failure != nil || err != nil {
			return stateResultOf(failure, err)
		}
		if curator == state.Authority {
			return results.FailureResult[*questionbankdb.State, error](ErrCannotRemoveAuthority), nil
		}
		if !state.IsCurator(curator) {
			return results.FailureResult[*questionbankdb.State, error](ErrCuratorNotFound), nil
		}

		kept := make([]string, 0, len(state.Curators))
		for _, c := range state.Curators {
			if c != curator {
				kept = append(kept, c)
			}
		}
		state.Curators = kept
		if err := s.repo.UpdateState(ctx, db, state); err != nil {
			return stateResult{}, err
		}

		// A smaller electorate can decide questions that were waiting on the removed curator.
		pending, err := s.repo.ListPending(ctx, db)
		if err != nil {
			return stateResult{}, err
		}
		now := s.clock.Now()
		for i := range pending {
			q := &pending[i]
			finalized, err := s.resolve(ctx, db, state, q, now)
			if err != nil {
				return stateResult{}, err
			}
			if !finalized {
				continue
			}
			if err := s.repo.UpdateQuestion(ctx, db, q); err != nil {
				return stateResult{}, err
			}
		}
		return results.SuccessResult[*questionbankdb.State, error](state), nil
	}

	return unwrap(withTelemetry(s, ctx, "RemoveCurator", curator, func(ctx context.Context) (stateResult, error) {
		return runInTx(s, ctx, removeTx)
	}))
}

// authorityState loads the state for update and checks that signer is its authority.
func (s *QuestionBankService) authorityState(ctx context.Context, db bun.IDB, signer string) (*questionbankdb.State, *ledgererr.Error, error) {
	state, err := s.repo.GetState(ctx, db, true)
	if err != nil {
		if errors.Is(err, questionbankdb.ErrNotFound) {
			return nil, ErrNotInitialized, nil
		}
		return nil, nil, err
	}
	if signer != state.Authority {
		return nil, ErrUnauthorizedAuthority, nil
	}
	return state, nil, nil
}

func stateResultOf(failure *ledgererr.Error, err error) (stateResult, error) {
	if err != nil {
		return stateResult{}, err
	}
	return results.FailureResult[*questionbankdb.State, error](failure), nil
}

type questionResult = results.OperationResult[*questionbankdb.Question, error]

// SubmitQuestion validates input and stores it as a Pending question with the next id.
func (s *QuestionBankService) SubmitQuestion(ctx context.Context, signer string, input questionbankdomain.QuestionInput) (*questionbankdb.Question, error) {
	submitTx := func(ctx context.Context, db bun.IDB) (questionResult, error) {
		if signer == "" {
			return results.FailureResult[*questionbankdb.Question, error](ErrInvalidAddress), nil
		}
		valid, err := questionbankdomain.Validate(input)
		if err != nil {
			return results.FailureResult[*questionbankdb.Question, error](validationError(err)), nil
		}

		state, err := s.repo.GetState(ctx, db, true)
		if err != nil {
			if errors.Is(err, questionbankdb.ErrNotFound) {
				return results.FailureResult[*questionbankdb.Question, error](ErrNotInitialized), nil
			}
			return questionResult{}, err
		}
		if state.TotalQuestions == math.MaxInt64 {
			return results.FailureResult[*questionbankdb.Question, error](ErrArithmeticOverflow), nil
		}

		rep, err := s.reputationOrBootstrap(ctx, db, signer)
		if err != nil {
			return questionResult{}, err
		}
		if s.config.MinSubmitReputation > 0 && rep.Score < s.config.MinSubmitReputation {
			return results.FailureResult[*questionbankdb.Question, error](ErrInsufficientReputation), nil
		}

		id := state.TotalQuestions + 1
		question := &questionbankdb.Question{
			ID:           id,
			Address:      address.Derive(address.QuestionBank, "question", address.ID(id)),
			Text:         valid.Text,
			Options:      valid.Options.Slice(),
			CorrectIndex: valid.CorrectIndex,
			Category:     valid.Category,
			Difficulty:   uint8(valid.Difficulty),
			Status:       string(questionbankdomain.StatusPending),
			Submitter:    signer,
			CreatedAt:    s.clock.Now(),
		}
		if err := s.repo.CreateQuestion(ctx, db, question); err != nil {
			return questionResult{}, err
		}

		state.TotalQuestions = id
		if err := s.repo.UpdateState(ctx, db, state); err != nil {
			return questionResult{}, err
		}

		rep.QuestionsSubmitted++
		if err := s.repo.UpsertReputation(ctx, db, rep); err != nil {
			return questionResult{}, err
		}
		return results.SuccessResult[*questionbankdb.Question, error](question), nil
	}

	return unwrap(withTelemetry(s, ctx, "SubmitQuestion", signer, func(ctx context.Context) (questionResult, error) {
		return runInTx(s, ctx, submitTx)
	}))
}

// reputationOrBootstrap returns owner's reputation, creating the bootstrap record in memory
// when none exists yet. The caller persists it.
func (s *QuestionBankService) reputationOrBootstrap(ctx context.Context, db bun.IDB, owner string) (*questionbankdb.Reputation, error) {
	rep, err := s.repo.GetReputation(ctx, db, owner)
	if err == nil {
		return rep, nil
	}
	if !errors.Is(err, questionbankdb.ErrNotFound) {
		return nil, err
	}
	return &questionbankdb.Reputation{
		Owner:   owner,
		Address: address.Derive(address.QuestionBank, "reputation", owner),
		Score:   questionbankdomain.BootstrapReputation,
	}, nil
}

type voteResult = results.OperationResult[*VoteResult, error]

// VoteOnQuestion records a curator vote and finalizes the question once a side reaches
// quorum. Finalization settles submitter and voter reputation in the same transaction.
func (s *QuestionBankService) VoteOnQuestion(ctx context.Context, signer string, questionID uint64, approve bool) (*VoteResult, error) {
	voteTx := func(ctx context.Context, db bun.IDB) (voteResult, error) {
		state, err := s.repo.GetState(ctx, db, false)
		if err != nil {
			if errors.Is(err, questionbankdb.ErrNotFound) {
				return results.FailureResult[*VoteResult, error](ErrNotInitialized), nil
			}
			return voteResult{}, err
		}
		if !state.IsCurator(signer) {
			return results.FailureResult[*VoteResult, error](ErrUnauthorizedCurator), nil
		}

		question, err := s.repo.GetQuestion(ctx, db, questionID, true)
		if err != nil {
			if errors.Is(err, questionbankdb.ErrNotFound) {
				return results.FailureResult[*VoteResult, error](ErrQuestionNotFound), nil
			}
			return voteResult{}, err
		}
		if question.Status != string(questionbankdomain.StatusPending) {
			return results.FailureResult[*VoteResult, error](ErrQuestionNotPending), nil
		}
		if question.Submitter == signer {
			return results.FailureResult[*VoteResult, error](ErrCannotVoteOnOwnQuestion), nil
		}

		now := s.clock.Now()
		vote := &questionbankdb.Vote{
			Address:    address.Derive(address.QuestionBank, "vote", address.ID(questionID), signer),
			QuestionID: questionID,
			Voter:      signer,
			Approve:    approve,
			CreatedAt:  now,
		}
		if err := s.repo.CreateVote(ctx, db, vote); err != nil {
			if errors.Is(err, questionbankdb.ErrDuplicate) {
				return results.FailureResult[*VoteResult, error](ErrAlreadyVoted), nil
			}
			return voteResult{}, err
		}

		if approve {
			question.Approvals++
		} else {
			question.Rejections++
		}

		finalized, err := s.resolve(ctx, db, state, question, now)
		if err != nil {
			return voteResult{}, err
		}

		if err := s.repo.UpdateQuestion(ctx, db, question); err != nil {
			return voteResult{}, err
		}
		return results.SuccessResult[*VoteResult, error](&VoteResult{Question: question, Finalized: finalized}), nil
	}

	return unwrap(withTelemetry(s, ctx, "VoteOnQuestion", address.ID(questionID), func(ctx context.Context) (voteResult, error) {
		return runInTx(s, ctx, voteTx)
	}))
}

// resolve finalizes question when its tally or the remaining electorate decides it. The
// caller persists the question.
func (s *QuestionBankService) resolve(ctx context.Context, db bun.IDB, state *questionbankdb.State, question *questionbankdb.Question, now time.Time) (bool, error) {
	votes, err := s.repo.ListVotes(ctx, db, question.ID)
	if err != nil {
		return false, err
	}
	voted := make(map[string]bool, len(votes))
	for _, v := range votes {
		voted[v.Voter] = true
	}
	eligible, outstanding := questionbankdomain.Electorate(state.Curators, question.Submitter, voted)
	outcome := questionbankdomain.Outcome(question.Approvals, question.Rejections, eligible, outstanding)
	if outcome == questionbankdomain.StatusPending {
		return false, nil
	}

	question.Status = string(outcome)
	question.FinalizedAt = &now
	if err := s.settleReputation(ctx, db, question, outcome, votes); err != nil {
		return false, err
	}
	if outcome == questionbankdomain.StatusApproved {
		state.ApprovedQuestions++
		if err := s.repo.UpdateState(ctx, db, state); err != nil {
			return false, err
		}
	}
	return true, nil
}

// settleReputation applies the finalization deltas to the submitter and every voter.
func (s *QuestionBankService) settleReputation(ctx context.Context, db bun.IDB, question *questionbankdb.Question, outcome questionbankdomain.Status, votes []questionbankdb.Vote) error {
	submitter, err := s.reputationOrBootstrap(ctx, db, question.Submitter)
	if err != nil {
		return err
	}
	submitter.Score = questionbankdomain.ApplyDelta(submitter.Score, questionbankdomain.SubmitterDelta(outcome))
	if outcome == questionbankdomain.StatusApproved {
		submitter.QuestionsApproved++
	}
	if err := s.repo.UpsertReputation(ctx, db, submitter); err != nil {
		return err
	}

	for _, v := range votes {
		rep, err := s.reputationOrBootstrap(ctx, db, v.Voter)
		if err != nil {
			return err
		}
		delta, matched := questionbankdomain.VoterDelta(v.Approve, outcome)
		rep.Score = questionbankdomain.ApplyDelta(rep.Score, delta)
		if matched {
			rep.CorrectVotes++
		} else {
			rep.IncorrectVotes++
		}
		if err := s.repo.UpsertReputation(ctx, db, rep); err != nil {
			return err
		}
	}

	s.logger.InfoContext(ctx, "Question finalized",
		attr.ExtractCorrelationID(ctx),
		attr.Uint64("question_id", question.ID),
		attr.String("status", string(outcome)),
		attr.Int("votes", len(votes)),
	)
	return nil
}

// GetState returns the question bank state.
func (s *QuestionBankService) GetState(ctx context.Context) (*questionbankdb.State, error) {
	state, err := s.repo.GetState(ctx, s.idb(), false)
	if errors.Is(err, questionbankdb.ErrNotFound) {
		return nil, ErrNotInitialized
	}
	return state, err
}

// GetQuestion returns one question.
func (s *QuestionBankService) GetQuestion(ctx context.Context, id uint64) (*questionbankdb.Question, error) {
	q, err := s.repo.GetQuestion(ctx, s.idb(), id, false)
	if errors.Is(err, questionbankdb.ErrNotFound) {
		return nil, ErrQuestionNotFound
	}
	return q, err
}

func approvedFilter(category string, difficulty uint8, limit int) (questionbankdb.ApprovedFilter, error) {
	filter := questionbankdb.ApprovedFilter{Difficulty: difficulty, Limit: limit}
	if category != "" {
		c, err := questionbankdomain.NormalizeCategory(category)
		if err != nil {
			return filter, ErrInvalidCategory
		}
		filter.Category = c
	}
	if difficulty != 0 && !questionbankdomain.Difficulty(difficulty).Valid() {
		return filter, ErrInvalidDifficulty
	}
	return filter, nil
}

// ListApprovedQuestions returns approved questions, oldest first. An empty category or a
// zero difficulty matches all.
func (s *QuestionBankService) ListApprovedQuestions(ctx context.Context, category string, difficulty uint8, limit int) ([]questionbankdb.Question, error) {
	if limit <= 0 || limit > maxApprovedLimit {
		limit = maxApprovedLimit
	}
	filter, err := approvedFilter(category, difficulty, limit)
	if err != nil {
		return nil, err
	}
	return s.repo.ListApproved(ctx, s.idb(), filter)
}

// CountApprovedQuestions counts approved questions matching the filter. Tournament creation
// reads it to size a question set.
func (s *QuestionBankService) CountApprovedQuestions(ctx context.Context, category string, difficulty uint8) (uint64, error) {
	filter, err := approvedFilter(category, difficulty, 0)
	if err != nil {
		return 0, err
	}
	return s.repo.CountApproved(ctx, s.idb(), filter)
}

// GetReputation returns owner's reputation.
func (s *QuestionBankService) GetReputation(ctx context.Context, owner string) (*questionbankdb.Reputation, error) {
	rep, err := s.repo.GetReputation(ctx, s.idb(), owner)
	if errors.Is(err, questionbankdb.ErrNotFound) {
		return nil, ErrReputationNotFound
	}
	return rep, err
}

func (s *QuestionBankService) idb() bun.IDB {
	if s.db == nil {
		return nil
	}
	return s.db
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// unwrap turns an operation result into the (value, error) pair returned to callers.
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
	s *QuestionBankService,
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

// runInTx runs fn inside a serializable transaction. A failure result rolls back.
func runInTx[S any, F any](
	s *QuestionBankService,
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
