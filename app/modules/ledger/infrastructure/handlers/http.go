package ledgerhandlers

import (
	"log/slog"
	"net/http"

	ledgerservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/ledger/application"
	"github.com/Black-And-White-Club/trivia-ledger/internal/httpapi"
	"github.com/go-chi/chi/v5"
)

// HTTPHandlers serves the ledger routes.
type HTTPHandlers struct {
	service     ledgerservice.Service
	logger      *slog.Logger
	nativeAsset string
}

// NewHTTPHandlers creates the ledger HTTP handlers. nativeAsset is used when a request
// names no asset.
func NewHTTPHandlers(service ledgerservice.Service, logger *slog.Logger, nativeAsset string) *HTTPHandlers {
	return &HTTPHandlers{service: service, logger: logger, nativeAsset: nativeAsset}
}

// MintRequest is the body of POST /ledger/mint.
type MintRequest struct {
	Holder string `json:"holder"`
	Asset  string `json:"asset"`
	Amount uint64 `json:"amount"`
}

// PublicRoutes registers the read-only routes.
func (h *HTTPHandlers) PublicRoutes(r chi.Router) {
	r.Get("/ledger/balances/{holder}", h.HandleGetBalance)
	r.Get("/ledger/transfers/{holder}", h.HandleListTransfers)
}

// SignedRoutes registers the routes that need an authenticated signer.
func (h *HTTPHandlers) SignedRoutes(r chi.Router) {
	r.Post("/ledger/mint", h.HandleMint)
}

func (h *HTTPHandlers) asset(raw string) string {
	if raw == "" {
		return h.nativeAsset
	}
	return raw
}

// HandleGetBalance returns one balance.
func (h *HTTPHandlers) HandleGetBalance(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetBalance(r.Context(), chi.URLParam(r, "holder"), h.asset(r.URL.Query().Get("asset")))
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, view)
}

// HandleListTransfers returns the newest journal entries for a holder.
func (h *HTTPHandlers) HandleListTransfers(w http.ResponseWriter, r *http.Request) {
	limit, err := httpapi.QueryInt(r, "limit", 0)
	if err != nil {
		httpapi.BadRequest(w, err.Error())
		return
	}
	transfers, err := h.service.ListTransfers(r.Context(), chi.URLParam(r, "holder"), limit)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, transfers)
}

// HandleMint credits a holder on behalf of the mint authority.
func (h *HTTPHandlers) HandleMint(w http.ResponseWriter, r *http.Request) {
	signer, ok := httpapi.Signer(w, r)
	if !ok {
		return
	}
	var req MintRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.BadRequest(w, err.Error())
		return
	}
	view, err := h.service.Mint(r.Context(), signer, req.Holder, h.asset(req.Asset), req.Amount)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, view)
}
