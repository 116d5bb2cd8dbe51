package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/pinvault/internal/application"
	"github.com/ericfisherdev/pinvault/internal/domain/model"
	"github.com/ericfisherdev/pinvault/internal/domain/port/driven"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	vault  *application.VaultService
	assist *application.AssistService
	logger *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(vault *application.VaultService, assist *application.AssistService, logger *slog.Logger) *Handler {
	return &Handler{
		vault:  vault,
		assist: assist,
		logger: logger,
	}
}

// RegisterAPIRoutes registers the /api/v1 routes on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/records", h.ListRecords)
	mux.HandleFunc("POST /api/v1/records", h.RegisterRecord)
	mux.HandleFunc("PUT /api/v1/records/{id}", h.UpdateRecord)
	mux.HandleFunc("DELETE /api/v1/records/{id}/edit", h.CancelEdit)
	mux.HandleFunc("GET /api/v1/gate", h.GetPendingAction)
	mux.HandleFunc("POST /api/v1/gate", h.RequestAction)
	mux.HandleFunc("POST /api/v1/gate/confirm", h.ConfirmAction)
	mux.HandleFunc("DELETE /api/v1/gate", h.CancelAction)
	mux.HandleFunc("POST /api/v1/search/expand", h.ExpandSearch)
	mux.HandleFunc("POST /api/v1/password/analyze", h.AnalyzePassword)
	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// NewServeMux creates an http.Handler with only the API routes registered and
// the standard middleware applied.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, h)
	return ApplyMiddleware(mux, logger)
}

// ListRecords returns the records matching the q query parameter, in site-name
// order. An absent or empty q returns every record.
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	hits, err := h.vault.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("failed to list records", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]RecordSummaryResponse, 0, len(hits))
	for _, hit := range hits {
		resp = append(resp, toSummaryResponse(hit))
	}

	writeJSON(w, http.StatusOK, resp)
}

// RegisterRecord creates a record.
func (h *Handler) RegisterRecord(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.vault.Register(r.Context(), req.toInput())
	if err != nil {
		h.writeServiceError(w, "register record", err)
		return
	}

	writeJSON(w, http.StatusCreated, toRecordResponse(rec))
}

// UpdateRecord submits an edit for a record that was unlocked through a
// confirmed edit action.
func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseRecordID(w, r)
	if !ok {
		return
	}

	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ID = id

	rec, err := h.vault.SubmitEdit(r.Context(), req.toInput())
	if err != nil {
		h.writeServiceError(w, "update record", err)
		return
	}

	writeJSON(w, http.StatusOK, toRecordResponse(rec))
}

// CancelEdit drops the edit unlock.
func (h *Handler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	if _, ok := parseRecordID(w, r); !ok {
		return
	}

	h.vault.CancelEdit()
	w.WriteHeader(http.StatusNoContent)
}

// GetPendingAction returns the action waiting for the PIN.
func (h *Handler) GetPendingAction(w http.ResponseWriter, _ *http.Request) {
	action, ok := h.vault.PendingAction()
	if !ok {
		writeError(w, http.StatusNotFound, "no pending action")
		return
	}

	writeJSON(w, http.StatusOK, toPendingActionResponse(action))
}

// RequestAction parks a guarded action on the gate.
func (h *Handler) RequestAction(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	action, err := h.vault.RequestAction(r.Context(), model.GuardedOp(req.Action), req.RecordID)
	if err != nil {
		h.writeServiceError(w, "request action", err)
		return
	}

	writeJSON(w, http.StatusAccepted, toPendingActionResponse(action))
}

// ConfirmAction releases the gate with the PIN and returns what the action produced.
func (h *Handler) ConfirmAction(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.vault.ConfirmAction(r.Context(), req.PIN)
	if err != nil {
		h.writeServiceError(w, "confirm action", err)
		return
	}

	writeJSON(w, http.StatusOK, toActionResultResponse(result))
}

// CancelAction clears the gate.
func (h *Handler) CancelAction(w http.ResponseWriter, _ *http.Request) {
	h.vault.CancelAction()
	w.WriteHeader(http.StatusNoContent)
}

// ExpandSearch rewrites a search term through the assistant. Assistant
// failures are reported in the message with a 200 status.
func (h *Handler) ExpandSearch(w http.ResponseWriter, r *http.Request) {
	var req ExpandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exp := h.assist.ExpandQuery(r.Context(), req.Term)

	writeJSON(w, http.StatusOK, ExpandResponse{
		Term:     exp.Term,
		Expanded: exp.Expanded,
		Message:  exp.Message,
	})
}

// AnalyzePassword scores a password through the assistant.
func (h *Handler) AnalyzePassword(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	writeJSON(w, http.StatusOK, toAnalyzeResponse(h.assist.AnalyzePassword(r.Context(), req.Password)))
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// parseRecordID reads the {id} path value, writing a 400 when it is not a
// positive integer.
func parseRecordID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid record id")
		return 0, false
	}
	return id, true
}

// writeServiceError maps application and port errors to HTTP statuses.
// Anything unrecognised is logged and reported as a 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	var vErr *application.ValidationError

	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, application.ErrUnknownAction):
		writeError(w, http.StatusBadRequest, "unknown action")
	case errors.Is(err, application.ErrInvalidPIN):
		writeError(w, http.StatusUnauthorized, application.PINErrorMessage)
	case errors.Is(err, driven.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, "record not found")
	case errors.Is(err, application.ErrNoPendingAction):
		writeError(w, http.StatusConflict, "no pending action")
	case errors.Is(err, driven.ErrRecordExists):
		writeError(w, http.StatusConflict, "record already exists")
	case errors.Is(err, application.ErrEditLocked):
		writeError(w, http.StatusLocked, "record is not unlocked for editing")
	default:
		h.logger.Error("failed to "+op, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
