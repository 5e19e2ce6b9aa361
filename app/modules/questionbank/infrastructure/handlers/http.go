package questionbankhandlers

import (
	"log/slog"
	"net/http"

	"github.com/Black-And-White-Club/trivia-ledger/app/events"
	questionbankservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/application"
	questionbankdomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/domain"
	"github.com/Black-And-White-Club/trivia-ledger/internal/httpapi"
	"github.com/go-chi/chi/v5"
)

// HTTPHandlers serves the question bank routes. Instructions that succeed also publish the
// same events the message handlers emit.
type HTTPHandlers struct {
	service   questionbankservice.Service
	publisher events.Publisher
	logger    *slog.Logger
}

// NewHTTPHandlers creates the question bank HTTP handlers. publisher may be nil.
func NewHTTPHandlers(service questionbankservice.Service, publisher events.Publisher, logger *slog.Logger) *HTTPHandlers {
	return &HTTPHandlers{service: service, publisher: publisher, logger: logger}
}

// CuratorRequest is the body of POST /questionbank/curators.
type CuratorRequest struct {
	Curator string `json:"curator"`
}

// VoteRequest is the body of POST /questionbank/questions/{id}/votes.
type VoteRequest struct {
	Approve bool `json:"approve"`
}

// PublicRoutes registers the read-only routes.
func (h *HTTPHandlers) PublicRoutes(r chi.Router) {
	r.Get("/questionbank/state", h.HandleGetState)
	r.Get("/questionbank/questions", h.HandleListApproved)
	r.Get("/questionbank/questions/{id}", h.HandleGetQuestion)
	r.Get("/questionbank/reputation/{owner}", h.HandleGetReputation)
}

// SignedRoutes registers the instruction routes.
func (h *HTTPHandlers) SignedRoutes(r chi.Router) {
	r.Post("/questionbank/initialize", h.HandleInitialize)
	r.Post("/questionbank/curators", h.HandleAddCurator)
	r.Delete("/questionbank/curators/{address}", h.HandleRemoveCurator)
	r.Post("/questionbank/questions", h.HandleSubmitQuestion)
	r.Post("/questionbank/questions/{id}/votes", h.HandleVote)
}

func (h *HTTPHandlers) publish(topic string, payload any) {
	if h.publisher == nil {
		return
	}
	if err := events.Publish(h.publisher, topic, payload); err != nil {
		h.logger.Warn("Failed to publish event", slog.String("topic", topic), slog.String("error", err.Error()))
	}
}

func (h *HTTPHandlers) HandleGetState(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.GetState(r.Context())
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, state)
}

func (h *HTTPHandlers) HandleGetQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.BadRequest(w, err.Error())
		return
	}
	q, err := h.service.GetQuestion(r.Context(), id)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, q)
}

func (h *HTTPHandlers) HandleListApproved(w http.ResponseWriter, r *http.Request) {
	difficulty, err := httpapi.QueryInt(r, "difficulty", 0)
	if err != nil || difficulty < 0 || difficulty > 255 {
		httpapi.BadRequest(w, "difficulty must be between 1 and 3")
		return
	}
	limit, err := httpapi.QueryInt(r, "limit", 0)
	if err != nil {
		httpapi.BadRequest(w, err.Error())
		return
	}
	questions, err := h.service.ListApprovedQuestions(r.Context(), r.URL.Query().Get("category"), uint8(difficulty), limit)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, questions)
}

func (h *HTTPHandlers) HandleGetReputation(w http.ResponseWriter, r *http.Request) {
	rep, err := h.service.GetReputation(r.Context(), chi.URLParam(r, "owner"))
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, rep)
}

// HandleInitialize makes the signer the question bank authority.
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

func (h *HTTPHandlers) HandleAddCurator(w http.ResponseWriter, r *http.Request) {
	signer, ok := httpapi.Signer(w, r)
	if !ok {
		return
	}
	var req CuratorRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.BadRequest(w, err.Error())
		return
	}
	state, err := h.service.AddCurator(r.Context(), signer, req.Curator)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, state)
}

func (h *HTTPHandlers) HandleRemoveCurator(w http.ResponseWriter, r *http.Request) {
	signer, ok := httpapi.Signer(w, r)
	if !ok {
		return
	}
	state, err := h.service.RemoveCurator(r.Context(), signer, chi.URLParam(r, "address"))
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, state)
}

func (h *HTTPHandlers) HandleSubmitQuestion(w http.ResponseWriter, r *http.Request) {
	signer, ok := httpapi.Signer(w, r)
	if !ok {
		return
	}
	var input questionbankdomain.QuestionInput
	if err := httpapi.DecodeJSON(r, &input); err != nil {
		httpapi.BadRequest(w, err.Error())
		return
	}
	q, err := h.service.SubmitQuestion(r.Context(), signer, input)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	h.publish(events.QuestionSubmittedV1, SubmittedPayload(q))
	httpapi.WriteJSON(w, http.StatusCreated, q)
}

func (h *HTTPHandlers) HandleVote(w http.ResponseWriter, r *http.Request) {
	signer, ok := httpapi.Signer(w, r)
	if !ok {
		return
	}
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.BadRequest(w, err.Error())
		return
	}
	var req VoteRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.BadRequest(w, err.Error())
		return
	}
	res, err := h.service.VoteOnQuestion(r.Context(), signer, id, req.Approve)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	if res.Finalized {
		h.publish(events.QuestionFinalizedV1, FinalizedPayload(res.Question))
	}
	httpapi.WriteJSON(w, http.StatusOK, res)
}
