package tournamentservice

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
	tournamentdomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/domain"
	tournamentdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/infrastructure/repositories"
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
	serviceName  = "TournamentService"
	maxListLimit = 100
)

// TournamentService implements the Service interface.
type TournamentService struct {
	repo      tournamentdb.Repository
	ledger    ledgerdb.Repository
	questions QuestionSource
	logger    *slog.Logger
	metrics   metrics.OperationMetrics
	tracer    trace.Tracer
	db        *bun.DB
	clock     clock.Clock
	config    Config
}

// NewTournamentService creates a new TournamentService. questions may be nil, which skips
// the question supply check.
func NewTournamentService(
	repo tournamentdb.Repository,
	ledger ledgerdb.Repository,
	questions QuestionSource,
	logger *slog.Logger,
	opMetrics metrics.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	clk clock.Clock,
	cfg Config,
) *TournamentService {
	if logger == nil {
		logger = slog.Default()
	}
	if opMetrics == nil {
		opMetrics = metrics.NewNoop()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("tournament")
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &TournamentService{
		repo:      repo,
		ledger:    ledger,
		questions: questions,
		logger:    logger,
		metrics:   opMetrics,
		tracer:    tracer,
		db:        db,
		clock:     clk,
		config:    cfg,
	}
}

type (
	stateResult        = results.OperationResult[*tournamentdb.State, error]
	tournamentResult   = results.OperationResult[*tournamentdb.Tournament, error]
	registrationResult = results.OperationResult[*tournamentdb.Registration, error]
	standingsResult    = results.OperationResult[*Standings, error]
)

// Initialize creates the tournament manager state.
func (s *TournamentService) Initialize(ctx context.Context, authority string) (*tournamentdb.State, error) {
	initTx := func(ctx context.Context, db bun.IDB) (stateResult, error) {
		if authority == "" {
			return fail[*tournamentdb.State](ErrInvalidAddress)
		}
		now := s.clock.Now()
		state := &tournamentdb.State{
			Address:   address.Derive(address.Tournament, "state"),
			Authority: authority,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.CreateState(ctx, db, state); err != nil {
			if errors.Is(err, tournamentdb.ErrDuplicate) {
				return fail[*tournamentdb.State](ErrAlreadyInitialized)
			}
			return stateResult{}, err
		}
		return results.SuccessResult[*tournamentdb.State, error](state), nil
	}

	return unwrap(withTelemetry(s, ctx, "Initialize", authority, func(ctx context.Context) (stateResult, error) {
		return runInTx(s, ctx, initTx)
	}))
}

// CreateTournament validates params and opens a tournament for registration with signer as
// organizer.
func (s *TournamentService) CreateTournament(ctx context.Context, signer string, params tournamentdomain.CreateParams) (*tournamentdb.Tournament, error) {
	createTx := func(ctx context.Context, db bun.IDB) (tournamentResult, error) {
		if signer == "" {
			return fail[*tournamentdb.Tournament](ErrInvalidAddress)
		}
		now := s.clock.Now()
		valid, err := params.Validate(now)
		if err != nil {
			if failure, ok := validationError(err); ok {
				return fail[*tournamentdb.Tournament](failure)
			}
			return tournamentResult{}, err
		}

		state, err := s.repo.GetState(ctx, db, true)
		if err != nil {
			if errors.Is(err, tournamentdb.ErrNotFound) {
				return fail[*tournamentdb.Tournament](ErrNotInitialized)
			}
			return tournamentResult{}, err
		}
		if state.TournamentCount == math.MaxInt64 {
			return fail[*tournamentdb.Tournament](ErrArithmeticOverflow)
		}

		if s.config.RequireQuestionSupply && s.questions != nil {
			var difficulty uint8
			if valid.Difficulty != nil {
				difficulty = *valid.Difficulty
			}
			available, err := s.questions.CountApprovedQuestions(ctx, valid.Category, difficulty)
			if err != nil {
				return tournamentResult{}, fmt.Errorf("failed to count approved questions: %w", err)
			}
			if available < uint64(valid.QuestionCount) {
				return fail[*tournamentdb.Tournament](ErrInsufficientQuestions)
			}
		}

		id := state.TournamentCount + 1
		tournament := &tournamentdb.Tournament{
			ID:              id,
			Address:         address.Derive(address.Tournament, "tournament", address.ID(id)),
			Organizer:       signer,
			Name:            valid.Name,
			Description:     valid.Description,
			EntryFee:        valid.EntryFee,
			Asset:           s.config.Asset,
			Vault:           address.Vault(address.Tournament, "tournament", id),
			MaxParticipants: valid.MaxParticipants,
			StartTime:       valid.StartTime,
			DurationSeconds: int64(valid.Duration / time.Second),
			QuestionCount:   valid.QuestionCount,
			Category:        valid.Category,
			Difficulty:      valid.Difficulty,
			Status:          string(tournamentdomain.StatusRegistration),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if tournament.DurationSeconds == 0 {
			return fail[*tournamentdb.Tournament](ErrInvalidDuration)
		}
		if err := s.repo.CreateTournament(ctx, db, tournament); err != nil {
			return tournamentResult{}, err
		}

		state.TournamentCount = id
		if err := s.repo.UpdateState(ctx, db, state); err != nil {
			return tournamentResult{}, err
		}
		return results.SuccessResult[*tournamentdb.Tournament, error](tournament), nil
	}

	return unwrap(withTelemetry(s, ctx, "CreateTournament", signer, func(ctx context.Context) (tournamentResult, error) {
		return runInTx(s, ctx, createTx)
	}))
}

// RegisterForTournament seats signer and moves the entry fee into the tournament vault.
func (s *TournamentService) RegisterForTournament(ctx context.Context, signer string, id uint64) (*tournamentdb.Registration, error) {
	registerTx := func(ctx context.Context, db bun.IDB) (registrationResult, error) {
		if signer == "" {
			return fail[*tournamentdb.Registration](ErrInvalidAddress)
		}
		t, failure, err := s.loadTournament(ctx, db, id)
		if failure != nil || err != nil {
			return failWith[*tournamentdb.Registration](failure, err)
		}

		now := s.clock.Now()
		if t.Status != string(tournamentdomain.StatusRegistration) || !now.Before(t.StartTime) {
			return fail[*tournamentdb.Registration](ErrRegistrationClosed)
		}
		if t.RegisteredCount >= t.MaxParticipants {
			return fail[*tournamentdb.Registration](ErrTournamentFull)
		}
		if _, err := s.repo.GetRegistration(ctx, db, id, signer, false); err == nil {
			return fail[*tournamentdb.Registration](ErrAlreadyRegistered)
		} else if !errors.Is(err, tournamentdb.ErrNotFound) {
			return registrationResult{}, err
		}
		if t.PrizePool > tournamentdomain.MaxAmount-t.EntryFee {
			return fail[*tournamentdb.Registration](ErrArithmeticOverflow)
		}

		if failure, err := s.transfer(ctx, db, signer, t.Vault, t.Asset, t.EntryFee, memo("entry fee", id)); failure != nil || err != nil {
			return failWith[*tournamentdb.Registration](failure, err)
		}

		seq := uint64(t.RegisteredCount) + 1
		reg := &tournamentdb.Registration{
			Address:      address.Derive(address.Tournament, "registration", address.ID(id), signer),
			TournamentID: id,
			Participant:  signer,
			PaidFee:      t.EntryFee,
			Seq:          seq,
			RegisteredAt: now,
		}
		if err := s.repo.CreateRegistration(ctx, db, reg); err != nil {
			if errors.Is(err, tournamentdb.ErrDuplicate) {
				return fail[*tournamentdb.Registration](ErrAlreadyRegistered)
			}
			return registrationResult{}, err
		}

		t.PrizePool += t.EntryFee
		t.RegisteredCount++
		if err := s.repo.UpdateTournament(ctx, db, t); err != nil {
			return registrationResult{}, err
		}
		return results.SuccessResult[*tournamentdb.Registration, error](reg), nil
	}

	return unwrap(withTelemetry(s, ctx, "RegisterForTournament", address.ID(id), func(ctx context.Context) (registrationResult, error) {
		return runInTx(s, ctx, registerTx)
	}))
}

// StartTournament moves a tournament to Active once its start time is reached.
func (s *TournamentService) StartTournament(ctx context.Context, signer string, id uint64) (*tournamentdb.Tournament, error) {
	startTx := func(ctx context.Context, db bun.IDB) (tournamentResult, error) {
		t, failure, err := s.loadTournament(ctx, db, id)
		if failure != nil || err != nil {
			return failWith[*tournamentdb.Tournament](failure, err)
		}
		if t.Status != string(tournamentdomain.StatusRegistration) {
			return fail[*tournamentdb.Tournament](ErrInvalidTournamentState)
		}
		now := s.clock.Now()
		if now.Before(t.StartTime) {
			return fail[*tournamentdb.Tournament](ErrTournamentNotStarted)
		}
		if t.RegisteredCount < s.config.MinParticipants {
			return fail[*tournamentdb.Tournament](ErrInsufficientParticipants)
		}

		t.Status = string(tournamentdomain.StatusActive)
		t.ActualStart = &now
		if err := s.repo.UpdateTournament(ctx, db, t); err != nil {
			return tournamentResult{}, err
		}
		s.logger.InfoContext(ctx, "Tournament started",
			attr.ExtractCorrelationID(ctx),
			attr.Uint64("tournament_id", id),
			attr.Signer(signer),
			attr.Uint64("participants", uint64(t.RegisteredCount)),
		)
		return results.SuccessResult[*tournamentdb.Tournament, error](t), nil
	}

	return unwrap(withTelemetry(s, ctx, "StartTournament", address.ID(id), func(ctx context.Context) (tournamentResult, error) {
		return runInTx(s, ctx, startTx)
	}))
}

// SubmitScore records a participant's score. The organizer may submit on the participant's
// behalf.
func (s *TournamentService) SubmitScore(ctx context.Context, signer string, id uint64, participant string, score uint32) (*tournamentdb.Registration, error) {
	submitTx := func(ctx context.Context, db bun.IDB) (registrationResult, error) {
		t, failure, err := s.loadTournament(ctx, db, id)
		if failure != nil || err != nil {
			return failWith[*tournamentdb.Registration](failure, err)
		}
		if t.Status != string(tournamentdomain.StatusActive) {
			return fail[*tournamentdb.Registration](ErrTournamentNotActive)
		}
		now := s.clock.Now()
		if !now.Before(t.EndsAt()) {
			return fail[*tournamentdb.Registration](ErrTournamentEnded)
		}
		if signer != participant && signer != t.Organizer {
			return fail[*tournamentdb.Registration](ErrUnauthorizedScoreSubmitter)
		}

		reg, err := s.repo.GetRegistration(ctx, db, id, participant, true)
		if err != nil {
			if errors.Is(err, tournamentdb.ErrNotFound) {
				return fail[*tournamentdb.Registration](ErrNotRegistered)
			}
			return registrationResult{}, err
		}
		if reg.ScoreSubmitted {
			return fail[*tournamentdb.Registration](ErrScoreAlreadySubmitted)
		}
		if score > tournamentdomain.MaxScore(t.QuestionCount) {
			return fail[*tournamentdb.Registration](ErrScoreExceedsMaximum)
		}

		reg.Score = score
		reg.ScoreSubmitted = true
		reg.SubmittedAt = &now
		if err := s.repo.UpdateRegistration(ctx, db, reg); err != nil {
			return registrationResult{}, err
		}
		t.SubmittedCount++
		if err := s.repo.UpdateTournament(ctx, db, t); err != nil {
			return registrationResult{}, err
		}
		return results.SuccessResult[*tournamentdb.Registration, error](reg), nil
	}

	return unwrap(withTelemetry(s, ctx, "SubmitScore", participant, func(ctx context.Context) (registrationResult, error) {
		return runInTx(s, ctx, submitTx)
	}))
}

// CompleteTournament locks scores, writes final ranks and returns the ranking.
func (s *TournamentService) CompleteTournament(ctx context.Context, signer string, id uint64) (*Standings, error) {
	completeTx := func(ctx context.Context, db bun.IDB) (standingsResult, error) {
		t, failure, err := s.loadTournament(ctx, db, id)
		if failure != nil || err != nil {
			return failWith[*Standings](failure, err)
		}
		if t.Status != string(tournamentdomain.StatusActive) {
			return fail[*Standings](ErrTournamentNotActive)
		}
		now := s.clock.Now()
		if now.Before(t.EndsAt()) && t.SubmittedCount < t.RegisteredCount {
			return fail[*Standings](ErrTournamentNotEnded)
		}

		regs, err := s.repo.ListRegistrations(ctx, db, id)
		if err != nil {
			return standingsResult{}, err
		}
		ranking := tournamentdomain.Rank(entries(regs))
		ranks := make(map[string]uint32, len(ranking))
		for _, st := range ranking {
			ranks[st.Participant] = st.Rank
		}
		for i := range regs {
			rank := ranks[regs[i].Participant]
			regs[i].FinalRank = &rank
			if err := s.repo.UpdateRegistration(ctx, db, &regs[i]); err != nil {
				return standingsResult{}, err
			}
		}

		t.Status = string(tournamentdomain.StatusCompleted)
		t.EndedAt = &now
		if err := s.repo.UpdateTournament(ctx, db, t); err != nil {
			return standingsResult{}, err
		}
		s.logger.InfoContext(ctx, "Tournament completed",
			attr.ExtractCorrelationID(ctx),
			attr.Uint64("tournament_id", id),
			attr.Signer(signer),
			attr.Int("ranked", len(ranking)),
		)
		return results.SuccessResult[*Standings, error](&Standings{TournamentID: id, Final: true, Entries: ranking}), nil
	}

	return unwrap(withTelemetry(s, ctx, "CompleteTournament", address.ID(id), func(ctx context.Context) (standingsResult, error) {
		return runInTx(s, ctx, completeTx)
	}))
}

// CancelTournament cancels a tournament that has not completed. Participants then claim
// their refunds individually.
func (s *TournamentService) CancelTournament(ctx context.Context, signer string, id uint64) (*tournamentdb.Tournament, error) {
	cancelTx := func(ctx context.Context, db bun.IDB) (tournamentResult, error) {
		state, err := s.repo.GetState(ctx, db, false)
		if err != nil {
			if errors.Is(err, tournamentdb.ErrNotFound) {
				return fail[*tournamentdb.Tournament](ErrNotInitialized)
			}
			return tournamentResult{}, err
		}
		t, failure, err := s.loadTournament(ctx, db, id)
		if failure != nil || err != nil {
			return failWith[*tournamentdb.Tournament](failure, err)
		}
		if signer != t.Organizer && signer != state.Authority {
			return fail[*tournamentdb.Tournament](ErrUnauthorizedCancel)
		}
		if !tournamentdomain.Status(t.Status).Cancellable() {
			return fail[*tournamentdb.Tournament](ErrCannotCancel)
		}

		now := s.clock.Now()
		t.Status = string(tournamentdomain.StatusCancelled)
		t.EndedAt = &now
		if err := s.repo.UpdateTournament(ctx, db, t); err != nil {
			return tournamentResult{}, err
		}
		return results.SuccessResult[*tournamentdb.Tournament, error](t), nil
	}

	return unwrap(withTelemetry(s, ctx, "CancelTournament", address.ID(id), func(ctx context.Context) (tournamentResult, error) {
		return runInTx(s, ctx, cancelTx)
	}))
}

// ClaimRefund returns signer's entry fee from a cancelled tournament, exactly once.
func (s *TournamentService) ClaimRefund(ctx context.Context, signer string, id uint64) (*tournamentdb.Registration, error) {
	refundTx := func(ctx context.Context, db bun.IDB) (registrationResult, error) {
		t, failure, err := s.loadTournament(ctx, db, id)
		if failure != nil || err != nil {
			return failWith[*tournamentdb.Registration](failure, err)
		}
		if t.Status != string(tournamentdomain.StatusCancelled) {
			return fail[*tournamentdb.Registration](ErrTournamentNotCancelled)
		}
		reg, err := s.repo.GetRegistration(ctx, db, id, signer, true)
		if err != nil {
			if errors.Is(err, tournamentdb.ErrNotFound) {
				return fail[*tournamentdb.Registration](ErrNotRegistered)
			}
			return registrationResult{}, err
		}
		if reg.Refunded {
			return fail[*tournamentdb.Registration](ErrAlreadyRefunded)
		}
		if reg.PaidFee > t.PrizePool {
			return fail[*tournamentdb.Registration](ErrArithmeticOverflow)
		}

		if failure, err := s.transfer(ctx, db, t.Vault, signer, t.Asset, reg.PaidFee, memo("refund", id)); failure != nil || err != nil {
			return failWith[*tournamentdb.Registration](failure, err)
		}

		reg.Refunded = true
		if err := s.repo.UpdateRegistration(ctx, db, reg); err != nil {
			return registrationResult{}, err
		}
		t.PrizePool -= reg.PaidFee
		if err := s.repo.UpdateTournament(ctx, db, t); err != nil {
			return registrationResult{}, err
		}
		return results.SuccessResult[*tournamentdb.Registration, error](reg), nil
	}

	return unwrap(withTelemetry(s, ctx, "ClaimRefund", address.ID(id), func(ctx context.Context) (registrationResult, error) {
		return runInTx(s, ctx, refundTx)
	}))
}

// ReleasePrizePool moves the escrowed prize pool of a completed tournament to destination,
// which defaults to the organizer.
func (s *TournamentService) ReleasePrizePool(ctx context.Context, signer string, id uint64, destination string) (*tournamentdb.Tournament, error) {
	releaseTx := func(ctx context.Context, db bun.IDB) (tournamentResult, error) {
		t, failure, err := s.loadTournament(ctx, db, id)
		if failure != nil || err != nil {
			return failWith[*tournamentdb.Tournament](failure, err)
		}
		if signer != t.Organizer {
			return fail[*tournamentdb.Tournament](ErrUnauthorizedOrganizer)
		}
		if t.Status != string(tournamentdomain.StatusCompleted) {
			return fail[*tournamentdb.Tournament](ErrTournamentNotCompleted)
		}
		if t.PrizeReleased {
			return fail[*tournamentdb.Tournament](ErrPrizeAlreadyReleased)
		}
		if destination == "" {
			destination = t.Organizer
		}

		if failure, err := s.transfer(ctx, db, t.Vault, destination, t.Asset, t.PrizePool, memo("prize pool", id)); failure != nil || err != nil {
			return failWith[*tournamentdb.Tournament](failure, err)
		}
		t.PrizeReleased = true
		if err := s.repo.UpdateTournament(ctx, db, t); err != nil {
			return tournamentResult{}, err
		}
		s.metrics.RecordFundsMoved(ctx, serviceName, t.Asset, t.PrizePool)
		return results.SuccessResult[*tournamentdb.Tournament, error](t), nil
	}

	return unwrap(withTelemetry(s, ctx, "ReleasePrizePool", address.ID(id), func(ctx context.Context) (tournamentResult, error) {
		return runInTx(s, ctx, releaseTx)
	}))
}

// loadTournament locks the tournament row for the rest of the instruction.
func (s *TournamentService) loadTournament(ctx context.Context, db bun.IDB, id uint64) (*tournamentdb.Tournament, *ledgererr.Error, error) {
	t, err := s.repo.GetTournament(ctx, db, id, true)
	if err != nil {
		if errors.Is(err, tournamentdb.ErrNotFound) {
			return nil, ErrTournamentNotFound, nil
		}
		return nil, nil, err
	}
	return t, nil, nil
}

// transfer moves funds inside the instruction's transaction. Ledger rejections come back as
// domain failures.
func (s *TournamentService) transfer(ctx context.Context, db bun.IDB, from, to, asset string, amount uint64, note string) (*ledgererr.Error, error) {
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
	return fmt.Sprintf("tournament %d %s", id, what)
}

func entries(regs []tournamentdb.Registration) []tournamentdomain.Entry {
	out := make([]tournamentdomain.Entry, len(regs))
	for i, r := range regs {
		out[i] = tournamentdomain.Entry{
			Participant:  r.Participant,
			Score:        r.Score,
			RegisteredAt: r.RegisteredAt,
			Seq:          r.Seq,
		}
	}
	return out
}

// GetState returns the tournament manager state.
func (s *TournamentService) GetState(ctx context.Context) (*tournamentdb.State, error) {
	state, err := s.repo.GetState(ctx, s.idb(), false)
	if errors.Is(err, tournamentdb.ErrNotFound) {
		return nil, ErrNotInitialized
	}
	return state, err
}

// GetTournament returns one tournament.
func (s *TournamentService) GetTournament(ctx context.Context, id uint64) (*tournamentdb.Tournament, error) {
	t, err := s.repo.GetTournament(ctx, s.idb(), id, false)
	if errors.Is(err, tournamentdb.ErrNotFound) {
		return nil, ErrTournamentNotFound
	}
	return t, err
}

// ListTournaments returns tournaments newest first, optionally filtered by status.
func (s *TournamentService) ListTournaments(ctx context.Context, status string, limit int) ([]tournamentdb.Tournament, error) {
	switch tournamentdomain.Status(status) {
	case "", tournamentdomain.StatusRegistration, tournamentdomain.StatusActive,
		tournamentdomain.StatusCompleted, tournamentdomain.StatusCancelled:
	default:
		return nil, ErrInvalidTournamentState
	}
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	return s.repo.ListTournaments(ctx, s.idb(), tournamentdb.ListFilter{Status: status, Limit: limit})
}

// ListRegistrations returns a tournament's registrations in registration order.
func (s *TournamentService) ListRegistrations(ctx context.Context, id uint64) ([]tournamentdb.Registration, error) {
	if _, err := s.GetTournament(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListRegistrations(ctx, s.idb(), id)
}

// GetStandings ranks the current registrations. The ranking is final once the tournament
// completed; before that it is provisional.
func (s *TournamentService) GetStandings(ctx context.Context, id uint64) (*Standings, error) {
	t, err := s.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	regs, err := s.repo.ListRegistrations(ctx, s.idb(), id)
	if err != nil {
		return nil, err
	}
	return &Standings{
		TournamentID: id,
		Final:        t.Status == string(tournamentdomain.StatusCompleted),
		Entries:      tournamentdomain.Rank(entries(regs)),
	}, nil
}

func (s *TournamentService) idb() bun.IDB {
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

// failWith returns err when set, otherwise a failure result.
func failWith[S any](failure *ledgererr.Error, err error) (results.OperationResult[S, error], error) {
	if err != nil {
		return results.OperationResult[S, error]{}, err
	}
	return fail[S](failure)
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
	s *TournamentService,
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
	s *TournamentService,
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
