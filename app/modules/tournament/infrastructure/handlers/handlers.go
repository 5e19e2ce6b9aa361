package tournamenthandlers

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/trivia-ledger/app/events"
	tournamentservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/application"
	"github.com/Black-And-White-Club/trivia-ledger/internal/handlerwrapper"
	"github.com/Black-And-White-Club/trivia-ledger/internal/observability/attr"
	"go.opentelemetry.io/otel/trace"
)

// TournamentHandlers implements the Handlers interface.
type TournamentHandlers struct {
	service tournamentservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewTournamentHandlers creates a new TournamentHandlers instance.
func NewTournamentHandlers(
	service tournamentservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &TournamentHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// HandleScoreSubmitRequest records a signed score. Success emits nothing.
func (h *TournamentHandlers) HandleScoreSubmitRequest(ctx context.Context, payload *events.ScoreSubmitRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleScoreSubmitRequest")
	defer span.End()

	signer, _ := handlerwrapper.SignerFromContext(ctx)
	reg, err := h.service.SubmitScore(ctx, signer, payload.TournamentID, payload.Participant, payload.Score)
	if err != nil {
		return h.failed("SubmitScore", err)
	}

	h.logger.InfoContext(ctx, "Score submitted",
		attr.ExtractCorrelationID(ctx),
		attr.Uint64("tournament_id", reg.TournamentID),
		attr.String("participant", reg.Participant),
		attr.Signer(signer),
	)
	return nil, nil
}

// HandleCompleteRequest completes a tournament and publishes its final standings.
func (h *TournamentHandlers) HandleCompleteRequest(ctx context.Context, payload *events.TournamentCompleteRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleCompleteRequest")
	defer span.End()

	signer, _ := handlerwrapper.SignerFromContext(ctx)
	standings, err := h.service.CompleteTournament(ctx, signer, payload.TournamentID)
	if err != nil {
		return h.failed("CompleteTournament", err)
	}
	completed, err := CompletedPayload(ctx, h.service, standings)
	if err != nil {
		return nil, err
	}
	return []handlerwrapper.Result{{
		Topic:   events.TournamentCompletedV1,
		Payload: completed,
	}}, nil
}

func (h *TournamentHandlers) failed(operation string, err error) ([]handlerwrapper.Result, error) {
	if result, ok := events.Failed(events.TournamentFailedV1, operation, err); ok {
		return []handlerwrapper.Result{result}, nil
	}
	return nil, err
}

// CompletedPayload builds the completed event, reading the prize pool from the tournament.
func CompletedPayload(ctx context.Context, service tournamentservice.Service, standings *tournamentservice.Standings) (*events.TournamentCompletedPayloadV1, error) {
	t, err := service.GetTournament(ctx, standings.TournamentID)
	if err != nil {
		return nil, err
	}
	out := &events.TournamentCompletedPayloadV1{
		TournamentID: standings.TournamentID,
		PrizePool:    t.PrizePool,
		Standings:    make([]events.StandingV1, len(standings.Entries)),
	}
	for i, s := range standings.Entries {
		out.Standings[i] = events.StandingV1{Rank: s.Rank, Participant: s.Participant, Score: s.Score}
	}
	return out, nil
}
