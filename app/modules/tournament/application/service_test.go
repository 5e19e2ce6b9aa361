package tournamentservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	ledgerservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/ledger/application"
	"github.com/Black-And-White-Club/trivia-ledger/app/modules/ledger/infrastructure/repositories/ledgerdbtest"
	tournamentdomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/domain"
	tournamentdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/infrastructure/repositories/tournamentdbtest"
	"github.com/Black-And-White-Club/trivia-ledger/internal/clock"
	"github.com/Black-And-White-Club/trivia-ledger/internal/ledgererr"
	"github.com/Black-And-White-Club/trivia-ledger/internal/metrics"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	authority = "UAUTHORITY"
	organizer = "UORGANIZER"
	asset     = "TRIV"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	svc    *TournamentService
	repo   *FakeTournamentRepo
	ledger *ledgerdbtest.MemoryRepository
	clock  *clock.Fake
}

func newHarness(t *testing.T, questions QuestionSource, cfg Config) *harness {
	t.Helper()
	if cfg.Asset == "" {
		cfg.Asset = asset
	}
	h := &harness{
		repo:   NewFakeTournamentRepo(),
		ledger: ledgerdbtest.NewMemoryRepository(),
		clock:  clock.NewFake(t0),
	}
	h.svc = NewTournamentService(
		h.repo,
		h.ledger,
		questions,
		slog.Default(),
		metrics.NewNoop(),
		noop.NewTracerProvider().Tracer("test"),
		nil,
		h.clock,
		cfg,
	)
	_, err := h.svc.Initialize(context.Background(), authority)
	require.NoError(t, err)
	return h
}

func (h *harness) fund(t *testing.T, holder string, amount uint64) {
	t.Helper()
	require.NoError(t, h.ledger.Mint(context.Background(), nil, holder, asset, amount, "test funding"))
}

func (h *harness) balance(t *testing.T, holder string) uint64 {
	t.Helper()
	b, err := h.ledger.GetBalance(context.Background(), nil, holder, asset)
	require.NoError(t, err)
	return b
}

func params(maxParticipants uint32, fee uint64) tournamentdomain.CreateParams {
	return tournamentdomain.CreateParams{
		Name:            gofakeit.Company() + " Cup",
		Description:     gofakeit.Sentence(8),
		EntryFee:        fee,
		MaxParticipants: maxParticipants,
		StartTime:       t0.Add(time.Hour),
		Duration:        30 * time.Minute,
		QuestionCount:   10,
	}
}

// create opens a tournament and registers each participant after funding them with the fee.
func (h *harness) create(t *testing.T, p tournamentdomain.CreateParams, participants ...string) *tournamentdb.Tournament {
	t.Helper()
	ctx := context.Background()
	tournament, err := h.svc.CreateTournament(ctx, organizer, p)
	require.NoError(t, err)
	for _, participant := range participants {
		h.fund(t, participant, p.EntryFee)
		_, err := h.svc.RegisterForTournament(ctx, participant, tournament.ID)
		require.NoError(t, err)
		h.clock.Advance(time.Second)
	}
	return tournament
}

func TestInitialize(t *testing.T) {
	h := newHarness(t, nil, Config{})
	_, err := h.svc.Initialize(context.Background(), "UOTHER")
	assert.ErrorIs(t, err, ErrAlreadyInitialized)

	state, err := h.svc.GetState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, authority, state.Authority)
	assert.Zero(t, state.TournamentCount)
}

func TestCreateTournament(t *testing.T) {
	h := newHarness(t, nil, Config{})
	ctx := context.Background()

	first, err := h.svc.CreateTournament(ctx, organizer, params(4, 100))
	require.NoError(t, err)
	second, err := h.svc.CreateTournament(ctx, organizer, params(4, 100))
	require.NoError(t, err)

	assert.Equal(t, uint64(1), first.ID)
	assert.Equal(t, uint64(2), second.ID)
	assert.Equal(t, string(tournamentdomain.StatusRegistration), first.Status)
	assert.Equal(t, organizer, first.Organizer)
	assert.Equal(t, asset, first.Asset)
	assert.Zero(t, first.RegisteredCount)
	assert.NotEqual(t, first.Vault, second.Vault)
	assert.Equal(t, int64(1800), first.DurationSeconds)

	state, err := h.svc.GetState(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), state.TournamentCount)
}

func TestCreateTournamentValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*tournamentdomain.CreateParams)
		wantErr error
	}{
		{name: "start in past", mutate: func(p *tournamentdomain.CreateParams) { p.StartTime = t0.Add(-time.Minute) }, wantErr: ErrInvalidStartTime},
		{name: "no seats", mutate: func(p *tournamentdomain.CreateParams) { p.MaxParticipants = 0 }, wantErr: ErrInvalidMaxParticipants},
		{name: "sub-second duration", mutate: func(p *tournamentdomain.CreateParams) { p.Duration = time.Millisecond }, wantErr: ErrInvalidDuration},
		{name: "too many questions", mutate: func(p *tournamentdomain.CreateParams) { p.QuestionCount = 51 }, wantErr: ErrInvalidQuestionCount},
		{name: "fee out of range", mutate: func(p *tournamentdomain.CreateParams) { p.EntryFee = tournamentdomain.MaxAmount + 1 }, wantErr: ErrInvalidEntryFee},
		{name: "blank name", mutate: func(p *tournamentdomain.CreateParams) { p.Name = "   " }, wantErr: ErrInvalidName},
		{name: "unknown difficulty", mutate: func(p *tournamentdomain.CreateParams) { d := uint8(7); p.Difficulty = &d }, wantErr: ErrInvalidDifficulty},
		{name: "unusable category", mutate: func(p *tournamentdomain.CreateParams) { p.Category = "!!!" }, wantErr: ErrInvalidCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil, Config{})
			p := params(4, 10)
			tt.mutate(&p)
			_, err := h.svc.CreateTournament(context.Background(), organizer, p)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, ledgererr.Validation, ledgererr.KindOf(err))

			state, err := h.svc.GetState(context.Background())
			require.NoError(t, err)
			assert.Zero(t, state.TournamentCount)
		})
	}
}

func TestCreateTournamentQuestionSupply(t *testing.T) {
	var gotCategory string
	var gotDifficulty uint8
	questions := &FakeQuestionSource{
		CountApprovedQuestionsFunc: func(_ context.Context, category string, difficulty uint8) (uint64, error) {
			gotCategory, gotDifficulty = category, difficulty
			return 9, nil
		},
	}
	h := newHarness(t, questions, Config{RequireQuestionSupply: true})

	hard := uint8(3)
	p := params(4, 10)
	p.Category = "World History"
	p.Difficulty = &hard

	_, err := h.svc.CreateTournament(context.Background(), organizer, p)
	assert.ErrorIs(t, err, ErrInsufficientQuestions)
	assert.Equal(t, "world-history", gotCategory)
	assert.Equal(t, hard, gotDifficulty)

	p.QuestionCount = 9
	_, err = h.svc.CreateTournament(context.Background(), organizer, p)
	assert.NoError(t, err)
}

func TestCreateTournamentNotInitialized(t *testing.T) {
	svc := NewTournamentService(tournamentdbtest.NewMemoryRepository(), ledgerdbtest.NewMemoryRepository(), nil, nil, nil, nil, nil, clock.NewFake(t0), Config{})
	_, err := svc.CreateTournament(context.Background(), organizer, params(4, 10))
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestRegisterCapacity(t *testing.T) {
	h := newHarness(t, nil, Config{})
	ctx := context.Background()
	tournament := h.create(t, params(2, 100), "UALICE", "UBOB")

	h.fund(t, "UCAROL", 100)
	_, err := h.svc.RegisterForTournament(ctx, "UCAROL", tournament.ID)
	assert.ErrorIs(t, err, ErrTournamentFull)
	assert.Equal(t, ledgererr.Capacity, ledgererr.KindOf(err))
	assert.Equal(t, uint64(100), h.balance(t, "UCAROL"), "rejected registration must not move funds")

	got, err := h.svc.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), got.RegisteredCount)
	assert.Equal(t, uint64(200), got.PrizePool)
	assert.Equal(t, uint64(200), h.balance(t, got.Vault))
}

func TestRegisterForTournamentFailures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, h *harness, id uint64)
		signer  string
		id      uint64
		wantErr error
	}{
		{
			name:    "unknown tournament",
			signer:  "UALICE",
			id:      99,
			wantErr: ErrTournamentNotFound,
		},
		{
			name: "already registered",
			setup: func(t *testing.T, h *harness, id uint64) {
				h.fund(t, "UALICE", 200)
				_, err := h.svc.RegisterForTournament(context.Background(), "UALICE", id)
				require.NoError(t, err)
			},
			signer:  "UALICE",
			wantErr: ErrAlreadyRegistered,
		},
		{
			name:    "insufficient funds",
			signer:  "UBROKE",
			wantErr: ledgerservice.ErrInsufficientFunds,
		},
		{
			name: "start time reached",
			setup: func(t *testing.T, h *harness, _ uint64) {
				h.fund(t, "ULATE", 100)
				h.clock.Advance(time.Hour)
			},
			signer:  "ULATE",
			wantErr: ErrRegistrationClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil, Config{})
			tournament := h.create(t, params(4, 100))
			id := tournament.ID
			if tt.id != 0 {
				id = tt.id
			}
			if tt.setup != nil {
				tt.setup(t, h, tournament.ID)
			}

			_, err := h.svc.RegisterForTournament(context.Background(), tt.signer, id)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTournamentLifecycle(t *testing.T) {
	h := newHarness(t, nil, Config{MinParticipants: 2})
	ctx := context.Background()
	tournament := h.create(t, params(4, 100), "UALICE", "UBOB", "UCAROL")
	id := tournament.ID

	_, err := h.svc.StartTournament(ctx, "UANYONE", id)
	assert.ErrorIs(t, err, ErrTournamentNotStarted)

	_, err = h.svc.SubmitScore(ctx, "UALICE", id, "UALICE", 50)
	assert.ErrorIs(t, err, ErrTournamentNotActive)

	h.clock.Set(tournament.StartTime)
	started, err := h.svc.StartTournament(ctx, "UANYONE", id)
	require.NoError(t, err)
	assert.Equal(t, string(tournamentdomain.StatusActive), started.Status)
	require.NotNil(t, started.ActualStart)

	_, err = h.svc.StartTournament(ctx, "UANYONE", id)
	assert.ErrorIs(t, err, ErrInvalidTournamentState)

	_, err = h.svc.SubmitScore(ctx, "UBOB", id, "UALICE", 50)
	assert.ErrorIs(t, err, ErrUnauthorizedScoreSubmitter)
	_, err = h.svc.SubmitScore(ctx, "UALICE", id, "UALICE", 101)
	assert.ErrorIs(t, err, ErrScoreExceedsMaximum)
	_, err = h.svc.SubmitScore(ctx, organizer, id, "UDAVE", 10)
	assert.ErrorIs(t, err, ErrNotRegistered)

	_, err = h.svc.SubmitScore(ctx, "UALICE", id, "UALICE", 60)
	require.NoError(t, err)
	_, err = h.svc.SubmitScore(ctx, "UALICE", id, "UALICE", 70)
	assert.ErrorIs(t, err, ErrScoreAlreadySubmitted)
	_, err = h.svc.SubmitScore(ctx, organizer, id, "UBOB", 100)
	require.NoError(t, err)

	_, err = h.svc.CompleteTournament(ctx, organizer, id)
	assert.ErrorIs(t, err, ErrTournamentNotEnded)

	_, err = h.svc.SubmitScore(ctx, "UCAROL", id, "UCAROL", 60)
	require.NoError(t, err)

	standings, err := h.svc.CompleteTournament(ctx, "UANYONE", id)
	require.NoError(t, err)
	assert.True(t, standings.Final)
	require.Len(t, standings.Entries, 3)
	assert.Equal(t, []string{"UBOB", "UALICE", "UCAROL"}, participants(standings), "ties go to the earlier registration")

	regs, err := h.svc.ListRegistrations(ctx, id)
	require.NoError(t, err)
	for _, reg := range regs {
		require.NotNil(t, reg.FinalRank, reg.Participant)
	}

	_, err = h.svc.ReleasePrizePool(ctx, "UALICE", id, "")
	assert.ErrorIs(t, err, ErrUnauthorizedOrganizer)

	released, err := h.svc.ReleasePrizePool(ctx, organizer, id, "")
	require.NoError(t, err)
	assert.True(t, released.PrizeReleased)
	assert.Equal(t, uint64(300), h.balance(t, organizer))
	assert.Zero(t, h.balance(t, tournament.Vault))

	_, err = h.svc.ReleasePrizePool(ctx, organizer, id, "")
	assert.ErrorIs(t, err, ErrPrizeAlreadyReleased)
	assert.Equal(t, uint64(300), h.balance(t, organizer))

	_, err = h.svc.CancelTournament(ctx, organizer, id)
	assert.ErrorIs(t, err, ErrCannotCancel)
}

func participants(s *Standings) []string {
	out := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		out[i] = e.Participant
	}
	return out
}

func TestCompleteAfterWindow(t *testing.T) {
	h := newHarness(t, nil, Config{MinParticipants: 2})
	ctx := context.Background()
	tournament := h.create(t, params(4, 0), "UALICE", "UBOB")
	id := tournament.ID

	h.clock.Set(tournament.StartTime)
	_, err := h.svc.StartTournament(ctx, authority, id)
	require.NoError(t, err)
	_, err = h.svc.SubmitScore(ctx, "UBOB", id, "UBOB", 30)
	require.NoError(t, err)

	h.clock.Advance(30 * time.Minute)
	_, err = h.svc.SubmitScore(ctx, "UALICE", id, "UALICE", 90)
	assert.ErrorIs(t, err, ErrTournamentEnded)

	standings, err := h.svc.CompleteTournament(ctx, organizer, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"UBOB", "UALICE"}, participants(standings))
	assert.Zero(t, standings.Entries[1].Score)
}

func TestStartTournamentInsufficientParticipants(t *testing.T) {
	h := newHarness(t, nil, Config{MinParticipants: 2})
	tournament := h.create(t, params(4, 10), "UALICE")

	h.clock.Set(tournament.StartTime.Add(time.Minute))
	_, err := h.svc.StartTournament(context.Background(), organizer, tournament.ID)
	assert.ErrorIs(t, err, ErrInsufficientParticipants)
}

func TestCancelAndRefund(t *testing.T) {
	h := newHarness(t, nil, Config{})
	ctx := context.Background()
	tournament := h.create(t, params(4, 100), "UALICE", "UBOB")
	id := tournament.ID

	_, err := h.svc.ClaimRefund(ctx, "UALICE", id)
	assert.ErrorIs(t, err, ErrTournamentNotCancelled)

	_, err = h.svc.CancelTournament(ctx, "UALICE", id)
	assert.ErrorIs(t, err, ErrUnauthorizedCancel)

	cancelled, err := h.svc.CancelTournament(ctx, authority, id)
	require.NoError(t, err)
	assert.Equal(t, string(tournamentdomain.StatusCancelled), cancelled.Status)

	_, err = h.svc.CancelTournament(ctx, organizer, id)
	assert.ErrorIs(t, err, ErrCannotCancel)

	reg, err := h.svc.ClaimRefund(ctx, "UALICE", id)
	require.NoError(t, err)
	assert.True(t, reg.Refunded)
	assert.Equal(t, uint64(100), h.balance(t, "UALICE"))

	_, err = h.svc.ClaimRefund(ctx, "UALICE", id)
	assert.ErrorIs(t, err, ErrAlreadyRefunded)
	assert.Equal(t, uint64(100), h.balance(t, "UALICE"), "refund must be paid once")

	_, err = h.svc.ClaimRefund(ctx, "UCAROL", id)
	assert.ErrorIs(t, err, ErrNotRegistered)

	got, err := h.svc.GetTournament(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), got.PrizePool)
	assert.Equal(t, uint64(100), h.balance(t, got.Vault))
}

func TestRegisterInfrastructureError(t *testing.T) {
	h := newHarness(t, nil, Config{})
	tournament := h.create(t, params(4, 0))

	h.repo.UpdateTournamentFunc = func(context.Context, bun.IDB, *tournamentdb.Tournament) error {
		return errors.New("connection reset")
	}
	h.repo.trace = []string{}

	_, err := h.svc.RegisterForTournament(context.Background(), "UALICE", tournament.ID)
	require.Error(t, err)
	_, isDomain := ledgererr.As(err)
	assert.False(t, isDomain, "infrastructure errors must not be reported as domain failures")
	assert.Contains(t, err.Error(), "RegisterForTournament")
	assert.Equal(t, []string{"GetTournament", "CreateRegistration", "UpdateTournament"}, h.repo.Trace())
}

func TestListTournaments(t *testing.T) {
	h := newHarness(t, nil, Config{})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		h.create(t, params(4, 0))
	}
	_, err := h.svc.CancelTournament(ctx, organizer, 2)
	require.NoError(t, err)

	open, err := h.svc.ListTournaments(ctx, string(tournamentdomain.StatusRegistration), 0)
	require.NoError(t, err)
	ids := make([]string, len(open))
	for i, tt := range open {
		ids[i] = fmt.Sprint(tt.ID)
	}
	assert.Equal(t, []string{"3", "1"}, ids)

	_, err = h.svc.ListTournaments(ctx, "finished", 0)
	assert.ErrorIs(t, err, ErrInvalidTournamentState)
}
