package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"testing"
	"time"

	ledgerservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/ledger/application"
	"github.com/Black-And-White-Club/trivia-ledger/app/modules/ledger/infrastructure/repositories/ledgerdbtest"
	questionbankservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/application"
	"github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/infrastructure/repositories/questionbankdbtest"
	rewardservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/application"
	"github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/infrastructure/repositories/rewarddbtest"
	tournamentservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/application"
	"github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/application/parsers"
	tournamentdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/infrastructure/repositories/tournamentdbtest"
	"github.com/Black-And-White-Club/trivia-ledger/internal/signing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func memoryServices(signer string) *services {
	ledgerRepo := ledgerdbtest.NewMemoryRepository()
	return &services{
		signer:       signer,
		ledger:       ledgerservice.NewLedgerService(ledgerRepo, nil, nil, nil, nil, signer),
		questionBank: questionbankservice.NewQuestionBankService(questionbankdbtest.NewMemoryRepository(), nil, nil, nil, nil, nil, questionbankservice.Config{}),
		tournaments:  tournamentservice.NewTournamentService(tournamentdbtest.NewMemoryRepository(), ledgerRepo, nil, nil, nil, nil, nil, nil, tournamentservice.Config{Asset: "TRIV"}),
		rewards:      rewardservice.NewRewardService(rewarddbtest.NewMemoryRepository(), ledgerRepo, nil, nil, nil, nil, nil, rewardservice.Config{NativeAsset: "TRIV"}),
	}
}

func TestInitPrograms(t *testing.T) {
	ctx := context.Background()
	svc := memoryServices("UADMIN")

	var out bytes.Buffer
	require.NoError(t, initPrograms(ctx, svc, "UTREASURY", &out))
	assert.Contains(t, out.String(), "questionbank: initialized with authority UADMIN")
	assert.Contains(t, out.String(), "reward: initialized")

	state, err := svc.rewards.GetState(ctx)
	require.NoError(t, err)
	assert.Equal(t, "UADMIN", state.Authority)
	assert.Equal(t, "UTREASURY", state.Treasury)

	out.Reset()
	require.NoError(t, initPrograms(ctx, svc, "UTREASURY", &out))
	assert.Contains(t, out.String(), "tournament: already initialized")
}

type fakeScorer struct {
	reject map[string]error
	calls  []string
}

func (f *fakeScorer) SubmitScore(_ context.Context, _ string, _ uint64, participant string, _ uint32) (*tournamentdb.Registration, error) {
	f.calls = append(f.calls, participant)
	if err := f.reject[participant]; err != nil {
		return nil, err
	}
	return &tournamentdb.Registration{Participant: participant}, nil
}

var _ ScoreSubmitter = (*fakeScorer)(nil)

func TestImportScores(t *testing.T) {
	sheet := &parsers.ScoreSheet{Rows: []parsers.ScoreRow{
		{Participant: "UALICE", Score: 80, Line: 2},
		{Participant: "UBOB", Score: 60, Line: 3},
		{Participant: "UCAROL", Score: 70, Line: 4},
	}}

	tests := []struct {
		name      string
		reject    map[string]error
		submitted int
		errPart   string
	}{
		{name: "all rows accepted", submitted: 3},
		{
			name:      "rejected row does not stop the import",
			reject:    map[string]error{"UBOB": errors.New("ScoreAlreadySubmitted")},
			submitted: 2,
			errPart:   "line 3 (UBOB): ScoreAlreadySubmitted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := &fakeScorer{reject: tt.reject}
			var out bytes.Buffer
			n, err := importScores(context.Background(), scorer, "UORG", 7, sheet, &out)

			assert.Equal(t, tt.submitted, n)
			assert.Equal(t, []string{"UALICE", "UBOB", "UCAROL"}, scorer.calls)
			if tt.errPart == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errPart)
			}
		})
	}
}

func TestChartKey(t *testing.T) {
	tests := []struct {
		name string
		t    tournamentdb.Tournament
		want string
	}{
		{"slugged name", tournamentdb.Tournament{ID: 12, Name: "Spring Finals!"}, "12-spring-finals.png"},
		{"no usable characters", tournamentdb.Tournament{ID: 3, Name: "!!!"}, "3.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chartKey(&tt.t))
		})
	}
}

func newCreateContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("create", flag.ContinueOnError)
	for _, f := range tournamentCommand().Subcommands[0].Flags {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestBuildCreateParams(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("defaults", func(t *testing.T) {
		c := newCreateContext(t, "--name", "Friday Trivia", "--start", "2026-03-02T19:00:00Z")
		params, err := buildCreateParams(c, now)
		require.NoError(t, err)
		assert.Equal(t, "Friday Trivia", params.Name)
		assert.Equal(t, time.Date(2026, 3, 2, 19, 0, 0, 0, time.UTC), params.StartTime)
		assert.Equal(t, time.Hour, params.Duration)
		assert.Equal(t, uint8(10), params.QuestionCount)
		assert.Equal(t, uint32(100), params.MaxParticipants)
		assert.Nil(t, params.Difficulty)
	})

	t.Run("difficulty set", func(t *testing.T) {
		c := newCreateContext(t, "--name", "x", "--start", "2026-03-02T19:00:00Z", "--difficulty", "3")
		params, err := buildCreateParams(c, now)
		require.NoError(t, err)
		require.NotNil(t, params.Difficulty)
		assert.Equal(t, uint8(3), *params.Difficulty)
	})

	t.Run("start in the past", func(t *testing.T) {
		c := newCreateContext(t, "--name", "x", "--start", "2026-02-01T19:00:00Z")
		_, err := buildCreateParams(c, now)
		assert.Error(t, err)
	})

	t.Run("too many questions", func(t *testing.T) {
		c := newCreateContext(t, "--name", "x", "--start", "2026-03-02T19:00:00Z", "--questions", "300")
		_, err := buildCreateParams(c, now)
		assert.Error(t, err)
	})
}

func TestSignerFromContext(t *testing.T) {
	kp, pub, err := signing.NewSigner()
	require.NoError(t, err)
	seed, err := kp.Seed()
	require.NoError(t, err)

	set := flag.NewFlagSet("admin", flag.ContinueOnError)
	set.String("seed", "", "")
	require.NoError(t, set.Parse([]string{"--seed", string(seed)}))

	got, err := signerFromContext(cli.NewContext(cli.NewApp(), set, nil))
	require.NoError(t, err)
	assert.Equal(t, pub, got)

	empty := flag.NewFlagSet("admin", flag.ContinueOnError)
	empty.String("seed", "", "")
	_, err = signerFromContext(cli.NewContext(cli.NewApp(), empty, nil))
	assert.Error(t, err)
}
