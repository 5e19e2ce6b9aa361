package tournamenthandlers

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/Black-And-White-Club/trivia-ledger/app/events"
	tournamentservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/application"
	tournamentdomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/domain"
	tournamentdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/trivia-ledger/internal/handlerwrapper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func newHandlers(svc tournamentservice.Service) Handlers {
	return NewTournamentHandlers(svc, slog.Default(), noop.NewTracerProvider().Tracer("test"))
}

func TestHandleScoreSubmitRequest(t *testing.T) {
	tests := []struct {
		name         string
		setupService func(*FakeTournamentService)
		wantTopic    string
		wantErr      bool
	}{
		{
			name:         "recorded",
			setupService: func(*FakeTournamentService) {},
		},
		{
			name: "domain failure becomes failed event",
			setupService: func(f *FakeTournamentService) {
				f.SubmitScoreFunc = func(context.Context, string, uint64, string, uint32) (*tournamentdb.Registration, error) {
					return nil, tournamentservice.ErrScoreExceedsMaximum
				}
			},
			wantTopic: events.TournamentFailedV1,
		},
		{
			name: "infrastructure error is returned",
			setupService: func(f *FakeTournamentService) {
				f.SubmitScoreFunc = func(context.Context, string, uint64, string, uint32) (*tournamentdb.Registration, error) {
					return nil, errors.New("serialization failure")
				}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewFakeTournamentService()
			tt.setupService(svc)
			h := newHandlers(svc)

			ctx := handlerwrapper.WithSigner(context.Background(), "UORGANIZER")
			results, err := h.HandleScoreSubmitRequest(ctx, &events.ScoreSubmitRequestedPayloadV1{
				TournamentID: 1,
				Participant:  "UALICE",
				Score:        80,
			})

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantTopic == "" {
				assert.Empty(t, results)
			} else {
				require.Len(t, results, 1)
				assert.Equal(t, tt.wantTopic, results[0].Topic)
				failed, ok := results[0].Payload.(*events.FailedPayloadV1)
				require.True(t, ok)
				assert.Equal(t, "ScoreExceedsMaximum", failed.Name)
				assert.Equal(t, "SubmitScore", failed.Operation)
			}
			assert.Equal(t, []string{"SubmitScore"}, svc.Trace())
		})
	}
}

func TestHandleCompleteRequest(t *testing.T) {
	svc := NewFakeTournamentService()
	var gotSigner string
	svc.CompleteTournamentFunc = func(_ context.Context, signer string, id uint64) (*tournamentservice.Standings, error) {
		gotSigner = signer
		return &tournamentservice.Standings{
			TournamentID: id,
			Final:        true,
			Entries: []tournamentdomain.Standing{
				{Rank: 1, Participant: "UALICE", Score: 80},
				{Rank: 2, Participant: "UBOB", Score: 60},
			},
		}, nil
	}
	svc.GetTournamentFunc = func(_ context.Context, id uint64) (*tournamentdb.Tournament, error) {
		return &tournamentdb.Tournament{ID: id, PrizePool: 200}, nil
	}

	ctx := handlerwrapper.WithSigner(context.Background(), "UORGANIZER")
	results, err := newHandlers(svc).HandleCompleteRequest(ctx, &events.TournamentCompleteRequestedPayloadV1{TournamentID: 4})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, events.TournamentCompletedV1, results[0].Topic)
	assert.Equal(t, "UORGANIZER", gotSigner)

	payload, ok := results[0].Payload.(*events.TournamentCompletedPayloadV1)
	require.True(t, ok)
	assert.Equal(t, &events.TournamentCompletedPayloadV1{
		TournamentID: 4,
		PrizePool:    200,
		Standings: []events.StandingV1{
			{Rank: 1, Participant: "UALICE", Score: 80},
			{Rank: 2, Participant: "UBOB", Score: 60},
		},
	}, payload)
	assert.Equal(t, []string{"CompleteTournament", "GetTournament"}, svc.Trace())
}

func TestHandleCompleteRequestNotEnded(t *testing.T) {
	svc := NewFakeTournamentService()
	svc.CompleteTournamentFunc = func(context.Context, string, uint64) (*tournamentservice.Standings, error) {
		return nil, tournamentservice.ErrTournamentNotEnded
	}

	results, err := newHandlers(svc).HandleCompleteRequest(context.Background(), &events.TournamentCompleteRequestedPayloadV1{TournamentID: 4})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, events.TournamentFailedV1, results[0].Topic)
	assert.Equal(t, []string{"CompleteTournament"}, svc.Trace())
}
