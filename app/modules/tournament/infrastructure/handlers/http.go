package tournamenthandlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/trivia-ledger/app/events"
	tournamentservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/application"
	"github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/application/schedule"
	tournamentdomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/domain"
	"github.com/Black-And-White-Club/trivia-ledger/internal/clock"
	"github.com/Black-And-White-Club/trivia-ledger/internal/httpapi"
	"github.com/go-chi/chi/v5"
)

// HTTPHandlers serves the tournament routes.
type HTTPHandlers struct {
	service   tournamentservice.Service
	publisher events.Publisher
	schedule  *schedule.Parser
	clock     clock.Clock
	logger    *slog.Logger
}

// NewHTTPHandlers creates the tournament HTTP handlers. publisher may be nil.
func NewHTTPHandlers(service tournamentservice.Service, publisher events.Publisher, clk clock.Clock, logger *slog.Logger) *HTTPHandlers {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &HTTPHandlers{
		service:   service,
		publisher: publisher,
		schedule:  schedule.NewParser(),
		clock:     clk,
		logger:    logger,
	}
}

// CreateTournamentRequest is the body of POST /tournaments. StartTime accepts RFC 3339 or
// phrases like "tomorrow at 7pm", read in Timezone.
type CreateTournamentRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	EntryFee        uint64 `json:"entry_fee"`
	MaxParticipants uint32 `json:"max_participants"`
	StartTime       string `json:"start_time"`
	Timezone        string `json:"timezone,omitempty"`
	DurationSeconds int64  `json:"duration_seconds"`
	QuestionCount   uint8  `json:"question_count"`
	Category        string `json:"category,omitempty"`
	Difficulty      *uint8 `json:"difficulty,omitempty"`
}

// ScoreRequest is the body of POST /tournaments/{id}/scores.
type ScoreRequest struct {
	Participant string `json:"participant"`
	Score       uint32 `json:"score"`
}

// ReleaseRequest is the body of POST /tournaments/{id}/release.
type ReleaseRequest struct {
	Destination string `json:"destination,omitempty"`
}

// PublicRoutes registers the read-only routes.
func (h *HTTPHandlers) PublicRoutes(r chi.Router) {
	r.Get("/tournaments", h.HandleList)
	r.Get("/tournaments/{id}", h.HandleGet)
	r.Get("/tournaments/{id}/registrations", h.HandleListRegistrations)
	r.Get("/tournaments/{id}/standings", h.HandleStandings)
	r.Get("/tournaments/{id}/standings.png", h.HandleStandingsChart)
}

// SignedRoutes registers the instruction routes.
func (h *HTTPHandlers) SignedRoutes(r chi.Router) {
	r.Post("/tournaments/initialize", h.HandleInitialize)
	r.Post("/tournaments", h.HandleCreate)
	r.Post("/tournaments/{id}/register", h.HandleRegister)
	r.Post("/tournaments/{id}/start", h.HandleStart)
	r.Post("/tournaments/{id}/scores", h.HandleSubmitScore)
	r.Post("/tournaments/{id}/complete", h.HandleComplete)
	r.Post("/tournaments/{id}/cancel", h.HandleCancel)
	r.Post("/tournaments/{id}/refund", h.HandleRefund)
	r.Post("/tournaments/{id}/release", h.HandleRelease)
}

// ToParams resolves the start time and duration of a create request.
func (h *HTTPHandlers) ToParams(req CreateTournamentRequest) (tournamentdomain.CreateParams, error) {
	start, err := h.schedule.ParseStart(req.StartTime, req.Timezone, h.clock.Now())
	if err != nil {
		return tournamentdomain.CreateParams{}, err
	}
	return tournamentdomain.CreateParams{
		Name:            req.Name,
		Description:     req.Description,
		EntryFee:        req.EntryFee,
		MaxParticipants: req.MaxParticipants,
		StartTime:       start,
		Duration:        time.Duration(req.DurationSeconds) * time.Second,
		QuestionCount:   req.QuestionCount,
		Category:        req.Category,
		Difficulty:      req.Difficulty,
	}, nil
}

func (h *HTTPHandlers) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, err := httpapi.QueryInt(r, "limit", 0)
	if err != nil {
		httpapi.BadRequest(w, err.Error())
		return
	}
	list, err := h.service.ListTournaments(r.Context(), r.URL.Query().Get("state"), limit)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, list)
}

func (h *HTTPHandlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	t, err := h.service.GetTournament(r.Context(), id)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, t)
}

func (h *HTTPHandlers) HandleListRegistrations(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	regs, err := h.service.ListRegistrations(r.Context(), id)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, regs)
}

func (h *HTTPHandlers) HandleStandings(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	standings, err := h.service.GetStandings(r.Context(), id)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, standings)
}

// HandleStandingsChart renders the standings as a PNG.
func (h *HTTPHandlers) HandleStandingsChart(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	t, err := h.service.GetTournament(r.Context(), id)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	standings, err := h.service.GetStandings(r.Context(), id)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	png, err := tournamentservice.RenderStandingsChart(standings, tournamentdomain.MaxScore(t.QuestionCount), tournamentservice.DefaultPalette)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *HTTPHandlers) HandleInitialize(w http.ResponseWriter, r *http.Request) {
	signer, ok := httpapi.Signer(w, r)
	if !ok {
		return
	}
	state, err := h.service.Initialize(r.Context(), signer)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, state)
}

func (h *HTTPHandlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	signer, ok := httpapi.Signer(w, r)
	if !ok {
		return
	}
	var req CreateTournamentRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.BadRequest(w, err.Error())
		return
	}
	params, err := h.ToParams(req)
	if err != nil {
		httpapi.BadRequest(w, err.Error())
		return
	}
	t, err := h.service.CreateTournament(r.Context(), signer, params)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, t)
}

func (h *HTTPHandlers) HandleRegister(w http.ResponseWriter, r *http.Request) {
	signer, id, ok := signedID(w, r)
	if !ok {
		return
	}
	reg, err := h.service.RegisterForTournament(r.Context(), signer, id)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, reg)
}

func (h *HTTPHandlers) HandleStart(w http.ResponseWriter, r *http.Request) {
	signer, id, ok := signedID(w, r)
	if !ok {
		return
	}
	t, err := h.service.StartTournament(r.Context(), signer, id)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, t)
}

func (h *HTTPHandlers) HandleSubmitScore(w http.ResponseWriter, r *http.Request) {
	signer, id, ok := signedID(w, r)
	if !ok {
		return
	}
	var req ScoreRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.BadRequest(w, err.Error())
		return
	}
	if req.Participant == "" {
		req.Participant = signer
	}
	reg, err := h.service.SubmitScore(r.Context(), signer, id, req.Participant, req.Score)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, reg)
}

func (h *HTTPHandlers) HandleComplete(w http.ResponseWriter, r *http.Request) {
	signer, id, ok := signedID(w, r)
	if !ok {
		return
	}
	standings, err := h.service.CompleteTournament(r.Context(), signer, id)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	if h.publisher != nil {
		payload, err := CompletedPayload(r.Context(), h.service, standings)
		if err == nil {
			err = events.Publish(h.publisher, events.TournamentCompletedV1, payload)
		}
		if err != nil {
			h.logger.Warn("Failed to publish event", slog.String("topic", events.TournamentCompletedV1), slog.String("error", err.Error()))
		}
	}
	httpapi.WriteJSON(w, http.StatusOK, standings)
}

func (h *HTTPHandlers) HandleCancel(w http.ResponseWriter, r *http.Request) {
	signer, id, ok := signedID(w, r)
	if !ok {
		return
	}
	t, err := h.service.CancelTournament(r.Context(), signer, id)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, t)
}

func (h *HTTPHandlers) HandleRefund(w http.ResponseWriter, r *http.Request) {
	signer, id, ok := signedID(w, r)
	if !ok {
		return
	}
	reg, err := h.service.ClaimRefund(r.Context(), signer, id)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, reg)
}

func (h *HTTPHandlers) HandleRelease(w http.ResponseWriter, r *http.Request) {
	signer, id, ok := signedID(w, r)
	if !ok {
		return
	}
	var req ReleaseRequest
	if r.ContentLength != 0 {
		if err := httpapi.DecodeJSON(r, &req); err != nil {
			httpapi.BadRequest(w, err.Error())
			return
		}
	}
	t, err := h.service.ReleasePrizePool(r.Context(), signer, id, req.Destination)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, t)
}

func pathID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.BadRequest(w, fmt.Sprintf("invalid tournament id: %v", err))
		return 0, false
	}
	return id, true
}

func signedID(w http.ResponseWriter, r *http.Request) (string, uint64, bool) {
	signer, ok := httpapi.Signer(w, r)
	if !ok {
		return "", 0, false
	}
	id, ok := pathID(w, r)
	return signer, id, ok
}
