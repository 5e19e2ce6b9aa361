// Package httpapi holds the JSON plumbing shared by the module HTTP handlers.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Black-And-White-Club/trivia-ledger/internal/handlerwrapper"
	"github.com/Black-And-White-Club/trivia-ledger/internal/ledgererr"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds instruction bodies; the largest (a tiered pool) is a few KiB.
const maxBodyBytes = 64 << 10

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code    uint32 `json:"code,omitempty"`
	Name    string `json:"name"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Warn("Failed to encode response", slog.String("error", err.Error()))
	}
}

// WriteError maps a domain error onto an HTTP status. Anything that is not a
// *ledgererr.Error is an internal error and its text is not exposed.
func WriteError(w http.ResponseWriter, logger *slog.Logger, err error) {
	lerr, ok := ledgererr.As(err)
	if !ok {
		logger.Error("Request failed", slog.String("error", err.Error()))
		WriteJSON(w, http.StatusInternalServerError, ErrorBody{Name: "Internal", Message: http.StatusText(http.StatusInternalServerError)})
		return
	}
	WriteJSON(w, StatusFor(lerr.Kind), ErrorBody{
		Code:    lerr.Code,
		Name:    lerr.Name,
		Kind:    string(lerr.Kind),
		Message: lerr.Message,
	})
}

// StatusFor returns the HTTP status for an error kind.
func StatusFor(kind ledgererr.Kind) int {
	switch kind {
	case ledgererr.Authorization:
		return http.StatusForbidden
	case ledgererr.NotFound:
		return http.StatusNotFound
	case ledgererr.Duplication, ledgererr.State:
		return http.StatusConflict
	case ledgererr.Capacity:
		return http.StatusUnprocessableEntity
	case ledgererr.Validation, ledgererr.Arithmetic:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// BadRequest writes a 400 with a plain validation message.
func BadRequest(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusBadRequest, ErrorBody{Name: "BadRequest", Message: msg})
}

// DecodeJSON decodes a bounded request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// Signer returns the authenticated signer placed in the request context by the bearer
// middleware.
func Signer(w http.ResponseWriter, r *http.Request) (string, bool) {
	signer, ok := handlerwrapper.SignerFromContext(r.Context())
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, ErrorBody{Name: "Unauthorized", Message: "missing signer"})
	}
	return signer, ok
}

// ErrBadID is returned for path ids that are not unsigned integers.
var ErrBadID = errors.New("id must be an unsigned integer")

// PathID parses the named chi URL parameter as a uint64.
func PathID(r *http.Request, name string) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, ErrBadID
	}
	return id, nil
}

// QueryInt parses an optional integer query parameter, returning def when absent.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}
