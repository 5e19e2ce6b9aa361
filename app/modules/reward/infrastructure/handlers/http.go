package rewardhandlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/trivia-ledger/app/events"
	rewardservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/application"
	rewarddomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/domain"
	"github.com/Black-And-White-Club/trivia-ledger/internal/httpapi"
	"github.com/go-chi/chi/v5"
)

// HTTPHandlers serves the reward routes.
type HTTPHandlers struct {
	service   rewardservice.Service
	publisher events.Publisher
	logger    *slog.Logger
}

// NewHTTPHandlers creates the reward HTTP handlers. publisher may be nil.
func NewHTTPHandlers(service rewardservice.Service, publisher events.Publisher, logger *slog.Logger) *HTTPHandlers {
	return &HTTPHandlers{service: service, publisher: publisher, logger: logger}
}

// InitializeRequest is the body of POST /rewards/initialize.
type InitializeRequest struct {
	Treasury string `json:"treasury,omitempty"`
}

// CreatePoolRequest is the body of POST /rewards/pools. A missing platform fee takes the
// configured default.
type CreatePoolRequest struct {
	Name           string              `json:"name"`
	Target         uint64              `json:"target"`
	Kind           string              `json:"kind"`
	TokenID        string              `json:"token_id,omitempty"`
	Criteria       string              `json:"criteria"`
	StartTime      time.Time           `json:"start_time"`
	EndTime        time.Time           `json:"end_time"`
	PlatformFeeBps *uint16             `json:"platform_fee_bps,omitempty"`
	Tiers          []rewarddomain.Tier `json:"tiers,omitempty"`
}

// FundRequest is the body of POST /rewards/pools/{id}/fund.
type FundRequest struct {
	Amount uint64 `json:"amount"`
}

// DistributeRequest is the body of POST /rewards/pools/{id}/distribute.
type DistributeRequest struct {
	Rankings []rewarddomain.Ranking `json:"rankings"`
}

// CriteriaRequest is the body of POST /rewards/pools/{id}/criteria.
type CriteriaRequest struct {
	Criteria string              `json:"criteria"`
	Tiers    []rewarddomain.Tier `json:"tiers,omitempty"`
}

// ClaimableResponse is the body of GET /rewards/pools/{id}/claimable/{claimant}.
type ClaimableResponse struct {
	PoolID   uint64 `json:"pool_id"`
	Claimant string `json:"claimant"`
	Amount   uint64 `json:"amount"`
}

// PublicRoutes registers the read-only routes.
func (h *HTTPHandlers) PublicRoutes(r chi.Router) {
	r.Get("/rewards/state", h.HandleState)
	r.Get("/rewards/pools/{id}", h.HandleGetPool)
	r.Get("/rewards/pools/{id}/distribution", h.HandleGetDistribution)
	r.Get("/rewards/pools/{id}/claims", h.HandleListClaims)
	r.Get("/rewards/pools/{id}/claims/{claimant}", h.HandleGetClaim)
	r.Get("/rewards/pools/{id}/claimable/{claimant}", h.HandleClaimable)
}

// SignedRoutes registers the instruction routes.
func (h *HTTPHandlers) SignedRoutes(r chi.Router) {
	r.Post("/rewards/initialize", h.HandleInitialize)
	r.Post("/rewards/pools", h.HandleCreatePool)
	r.Post("/rewards/pools/{id}/fund", h.HandleFund)
	r.Post("/rewards/pools/{id}/distribute", h.HandleDistribute)
	r.Post("/rewards/pools/{id}/claim", h.HandleClaim)
	r.Post("/rewards/pools/{id}/criteria", h.HandleCriteria)
	r.Post("/rewards/pools/{id}/close", h.HandleClose)
}

func (h *HTTPHandlers) HandleState(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.GetState(r.Context())
	h.reply(w, http.StatusOK, state, err)
}

func (h *HTTPHandlers) HandleGetPool(w http.ResponseWriter, r *http.Request) {
	id, ok := poolID(w, r)
	if !ok {
		return
	}
	pool, err := h.service.GetPool(r.Context(), id)
	h.reply(w, http.StatusOK, pool, err)
}

func (h *HTTPHandlers) HandleGetDistribution(w http.ResponseWriter, r *http.Request) {
	id, ok := poolID(w, r)
	if !ok {
		return
	}
	dist, err := h.service.GetDistribution(r.Context(), id)
	h.reply(w, http.StatusOK, dist, err)
}

func (h *HTTPHandlers) HandleListClaims(w http.ResponseWriter, r *http.Request) {
	id, ok := poolID(w, r)
	if !ok {
		return
	}
	claims, err := h.service.ListClaims(r.Context(), id)
	h.reply(w, http.StatusOK, claims, err)
}

func (h *HTTPHandlers) HandleGetClaim(w http.ResponseWriter, r *http.Request) {
	id, ok := poolID(w, r)
	if !ok {
		return
	}
	claim, err := h.service.GetClaim(r.Context(), id, chi.URLParam(r, "claimant"))
	h.reply(w, http.StatusOK, claim, err)
}

func (h *HTTPHandlers) HandleClaimable(w http.ResponseWriter, r *http.Request) {
	id, ok := poolID(w, r)
	if !ok {
		return
	}
	claimant := chi.URLParam(r, "claimant")
	amount, err := h.service.GetClaimableAmount(r.Context(), id, claimant)
	h.reply(w, http.StatusOK, ClaimableResponse{PoolID: id, Claimant: claimant, Amount: amount}, err)
}

func (h *HTTPHandlers) HandleInitialize(w http.ResponseWriter, r *http.Request) {
	signer, ok := httpapi.Signer(w, r)
	if !ok {
		return
	}
	var req InitializeRequest
	if r.ContentLength != 0 {
		if err := httpapi.DecodeJSON(r, &req); err != nil {
			httpapi.BadRequest(w, err.Error())
			return
		}
	}
	state, err := h.service.Initialize(r.Context(), signer, req.Treasury)
	h.reply(w, http.StatusCreated, state, err)
}

func (h *HTTPHandlers) HandleCreatePool(w http.ResponseWriter, r *http.Request) {
	signer, ok := httpapi.Signer(w, r)
	if !ok {
		return
	}
	var req CreatePoolRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.BadRequest(w, err.Error())
		return
	}
	pool, err := h.service.CreateRewardPool(r.Context(), signer, rewarddomain.CreateParams{
		Name:           req.Name,
		Target:         req.Target,
		Kind:           rewarddomain.Kind(req.Kind),
		TokenID:        req.TokenID,
		Criteria:       rewarddomain.Criteria(req.Criteria),
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		PlatformFeeBps: req.PlatformFeeBps,
		Tiers:          req.Tiers,
	})
	h.reply(w, http.StatusCreated, pool, err)
}

func (h *HTTPHandlers) HandleFund(w http.ResponseWriter, r *http.Request) {
	signer, id, ok := signedPoolID(w, r)
	if !ok {
		return
	}
	var req FundRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.BadRequest(w, err.Error())
		return
	}
	pool, err := h.service.FundRewardPool(r.Context(), signer, id, req.Amount)
	h.reply(w, http.StatusOK, pool, err)
}

func (h *HTTPHandlers) HandleDistribute(w http.ResponseWriter, r *http.Request) {
	signer, id, ok := signedPoolID(w, r)
	if !ok {
		return
	}
	var req DistributeRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.BadRequest(w, err.Error())
		return
	}
	alloc, err := h.service.DistributeRewards(r.Context(), signer, id, req.Rankings)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	h.publish(events.RewardDistributedV1, DistributedPayload(id, alloc))
	httpapi.WriteJSON(w, http.StatusOK, alloc)
}

func (h *HTTPHandlers) HandleClaim(w http.ResponseWriter, r *http.Request) {
	signer, id, ok := signedPoolID(w, r)
	if !ok {
		return
	}
	claim, err := h.service.ClaimReward(r.Context(), signer, id)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	h.publish(events.RewardClaimedV1, &events.RewardClaimedPayloadV1{
		PoolID:   claim.PoolID,
		Claimant: claim.Claimant,
		Amount:   claim.Amount,
	})
	httpapi.WriteJSON(w, http.StatusOK, claim)
}

func (h *HTTPHandlers) HandleCriteria(w http.ResponseWriter, r *http.Request) {
	signer, id, ok := signedPoolID(w, r)
	if !ok {
		return
	}
	var req CriteriaRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.BadRequest(w, err.Error())
		return
	}
	pool, err := h.service.UpdateDistributionCriteria(r.Context(), signer, id, rewarddomain.Criteria(req.Criteria), req.Tiers)
	h.reply(w, http.StatusOK, pool, err)
}

func (h *HTTPHandlers) HandleClose(w http.ResponseWriter, r *http.Request) {
	signer, id, ok := signedPoolID(w, r)
	if !ok {
		return
	}
	pool, err := h.service.CloseRewardPool(r.Context(), signer, id)
	h.reply(w, http.StatusOK, pool, err)
}

func (h *HTTPHandlers) reply(w http.ResponseWriter, status int, v any, err error) {
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, status, v)
}

func (h *HTTPHandlers) publish(topic string, payload any) {
	if h.publisher == nil {
		return
	}
	if err := events.Publish(h.publisher, topic, payload); err != nil {
		h.logger.Warn("Failed to publish event", slog.String("topic", topic), slog.String("error", err.Error()))
	}
}

func poolID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := httpapi.PathID(r, "id")
	if err != nil {
		httpapi.BadRequest(w, fmt.Sprintf("invalid pool id: %v", err))
		return 0, false
	}
	return id, true
}

func signedPoolID(w http.ResponseWriter, r *http.Request) (string, uint64, bool) {
	signer, ok := httpapi.Signer(w, r)
	if !ok {
		return "", 0, false
	}
	id, ok := poolID(w, r)
	return signer, id, ok
}
