// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ericfisherdev/pinvault/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/pinvault/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/pinvault/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/pinvault/internal/application"
	"github.com/ericfisherdev/pinvault/internal/domain/model"
	"github.com/ericfisherdev/pinvault/internal/domain/port/driven"
)

const pageTitle = "PinVault"

// Status messages shown by the GUI in addition to the assistant's own.
const (
	MsgEditLocked     = "Unlock the password with your PIN before editing."
	MsgRecordNotFound = "That password no longer exists."
	MsgUnknownAction  = "Unknown action."
)

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	vault     *application.VaultService
	assist    *application.AssistService
	aiEnabled bool
	logger    *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. aiEnabled only
// changes the hint on the smart search button.
func NewHandler(vault *application.VaultService, assist *application.AssistService, aiEnabled bool, logger *slog.Logger) *Handler {
	return &Handler{
		vault:     vault,
		assist:    assist,
		aiEnabled: aiEnabled,
		logger:    logger,
	}
}

// Dashboard renders the record list for the q query parameter. A pending
// action or an edit in progress reopens its dialog.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data, ok := h.page(w, r, r.URL.Query().Get("q"))
	if !ok {
		return
	}

	if pending, ok := h.vault.PendingAction(); ok {
		data.Pending = toPendingViewModel(pending)
	} else if rec, err := h.vault.EditTarget(r.Context()); err != nil {
		h.logger.Error("failed to load edit target", "error", err)
	} else if rec != nil {
		data.Form = editRecordForm(*rec)
	}

	h.render(w, r, http.StatusOK, data)
}

// NewRecordForm renders the dashboard with an empty register form.
func (h *Handler) NewRecordForm(w http.ResponseWriter, r *http.Request) {
	data, ok := h.page(w, r, "")
	if !ok {
		return
	}
	data.Form = newRecordForm()
	h.render(w, r, http.StatusOK, data)
}

// SmartSearch rewrites the search term through the assistant and renders the
// list for the new term.
func (h *Handler) SmartSearch(w http.ResponseWriter, r *http.Request) {
	exp := h.assist.ExpandQuery(r.Context(), r.FormValue("q"))

	data, ok := h.page(w, r, exp.Term)
	if !ok {
		return
	}

	kind := vm.StatusError
	if exp.Expanded {
		kind = vm.StatusInfo
	}
	data.Status = vm.StatusViewModel{Message: exp.Message, Kind: kind}

	h.render(w, r, http.StatusOK, data)
}

// RegisterRecord stores a new record from the register form.
func (h *Handler) RegisterRecord(w http.ResponseWriter, r *http.Request) {
	input := recordInputFromForm(r)
	input.ID = 0

	_, err := h.vault.Register(r.Context(), input)
	if err != nil {
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			h.renderFormError(w, r, formFromInput(input, false), vErr)
			return
		}
		h.logger.Error("failed to register record", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RequestAction parks a guarded action and shows the PIN dialog.
func (h *Handler) RequestAction(w http.ResponseWriter, r *http.Request) {
	query := r.FormValue("q")

	id, err := strconv.ParseInt(r.FormValue("record_id"), 10, 64)
	if err != nil {
		h.renderStatus(w, r, http.StatusBadRequest, query, MsgRecordNotFound)
		return
	}

	pending, err := h.vault.RequestAction(r.Context(), model.GuardedOp(r.FormValue("action")), id)
	switch {
	case errors.Is(err, application.ErrUnknownAction):
		h.renderStatus(w, r, http.StatusBadRequest, query, MsgUnknownAction)
		return
	case errors.Is(err, driven.ErrRecordNotFound):
		h.renderStatus(w, r, http.StatusNotFound, query, MsgRecordNotFound)
		return
	case err != nil:
		h.logger.Error("failed to request action", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	data, ok := h.page(w, r, query)
	if !ok {
		return
	}
	data.Pending = toPendingViewModel(pending)
	h.render(w, r, http.StatusOK, data)
}

// ConfirmAction checks the PIN and shows whatever the released action produced.
func (h *Handler) ConfirmAction(w http.ResponseWriter, r *http.Request) {
	query := r.FormValue("q")

	result, err := h.vault.ConfirmAction(r.Context(), r.FormValue("pin"))
	switch {
	case errors.Is(err, application.ErrInvalidPIN):
		data, ok := h.page(w, r, query)
		if !ok {
			return
		}
		if pending, ok := h.vault.PendingAction(); ok {
			data.Pending = toPendingViewModel(pending)
			data.Pending.Error = application.PINErrorMessage
		}
		h.render(w, r, http.StatusUnauthorized, data)
		return
	case errors.Is(err, application.ErrNoPendingAction):
		http.Redirect(w, r, dashboardURL(query), http.StatusSeeOther)
		return
	case errors.Is(err, driven.ErrRecordNotFound):
		h.renderStatus(w, r, http.StatusNotFound, query, MsgRecordNotFound)
		return
	case err != nil:
		h.logger.Error("failed to confirm action", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	data, ok := h.page(w, r, query)
	if !ok {
		return
	}

	switch result.Action.Kind {
	case model.GuardedOpEdit:
		data.Form = editRecordForm(result.Record)
	case model.GuardedOpDelete:
		data.Status = vm.StatusViewModel{Message: fmt.Sprintf("Deleted %s.", result.Record.SiteName), Kind: vm.StatusInfo}
	case model.GuardedOpViewDetails:
		data.Details = toRecordDetailViewModel(result.Record)
	case model.GuardedOpViewHistory:
		data.History = toHistoryViewModel(result.Record, result.Revisions)
	}

	h.render(w, r, http.StatusOK, data)
}

// CancelAction closes the PIN dialog without running the action.
func (h *Handler) CancelAction(w http.ResponseWriter, r *http.Request) {
	h.vault.CancelAction()
	http.Redirect(w, r, dashboardURL(r.FormValue("q")), http.StatusSeeOther)
}

// SubmitEdit saves the edit form for the unlocked record.
func (h *Handler) SubmitEdit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.renderStatus(w, r, http.StatusBadRequest, "", MsgRecordNotFound)
		return
	}

	input := recordInputFromForm(r)
	input.ID = id

	_, err = h.vault.SubmitEdit(r.Context(), input)
	var vErr *application.ValidationError
	switch {
	case err == nil:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.As(err, &vErr):
		h.renderFormError(w, r, formFromInput(input, true), vErr)
	case errors.Is(err, application.ErrEditLocked):
		h.renderStatus(w, r, http.StatusLocked, "", MsgEditLocked)
	case errors.Is(err, driven.ErrRecordNotFound):
		h.renderStatus(w, r, http.StatusNotFound, "", MsgRecordNotFound)
	default:
		h.logger.Error("failed to update record", "id", id, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// CancelEdit drops the edit unlock and closes the form.
func (h *Handler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	h.vault.CancelEdit()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// AnalyzePassword scores the password typed into the form and re-renders the
// form with the result, keeping every field.
func (h *Handler) AnalyzePassword(w http.ResponseWriter, r *http.Request) {
	input := recordInputFromForm(r)
	report := h.assist.AnalyzePassword(r.Context(), input.Password)

	data, ok := h.page(w, r, "")
	if !ok {
		return
	}
	data.Form = formFromInput(input, r.FormValue("mode") == "edit")
	data.Form.Analysis = report.Message

	h.render(w, r, http.StatusOK, data)
}

// page loads the filtered record list into a fresh view model. On failure it
// writes a 500 and returns false.
func (h *Handler) page(w http.ResponseWriter, r *http.Request, query string) (vm.DashboardViewModel, bool) {
	hits, err := h.vault.List(r.Context(), query)
	if err != nil {
		h.logger.Error("failed to list records", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return vm.DashboardViewModel{}, false
	}

	return vm.DashboardViewModel{
		CSRFToken: csrfToken(w, r),
		Query:     query,
		Rows:      toRecordRows(hits),
		AIEnabled: h.aiEnabled,
	}, true
}

// render writes the full page. The page is buffered so a render error can
// still produce a clean 500.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data vm.DashboardViewModel) {
	var buf bytes.Buffer
	layout := templates.Layout(pageTitle, pages.Dashboard(data))
	if err := layout.Render(r.Context(), &buf); err != nil {
		h.logger.Error("failed to render dashboard", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) renderStatus(w http.ResponseWriter, r *http.Request, status int, query, message string) {
	data, ok := h.page(w, r, query)
	if !ok {
		return
	}
	data.Status = vm.StatusViewModel{Message: message, Kind: vm.StatusError}
	h.render(w, r, status, data)
}

func (h *Handler) renderFormError(w http.ResponseWriter, r *http.Request, form *vm.RecordFormViewModel, vErr *application.ValidationError) {
	data, ok := h.page(w, r, "")
	if !ok {
		return
	}
	form.Error = fieldLabel(vErr.Field) + " is required."
	data.Form = form
	h.render(w, r, http.StatusUnprocessableEntity, data)
}

// recordInputFromForm reads the record form fields. A missing or malformed id
// yields zero.
func recordInputFromForm(r *http.Request) model.RecordInput {
	id, _ := strconv.ParseInt(r.FormValue("id"), 10, 64)
	return model.RecordInput{
		ID:       id,
		SiteName: strings.TrimSpace(r.FormValue("site_name")),
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
		URL:      strings.TrimSpace(r.FormValue("url")),
		Memo:     r.FormValue("memo"),
		Keyword:  r.FormValue("keyword"),
	}
}

// dashboardURL returns the dashboard path, filtered by query when set.
func dashboardURL(query string) string {
	if query == "" {
		return "/"
	}
	return "/?" + url.Values{"q": {query}}.Encode()
}

func fieldLabel(field string) string {
	switch field {
	case "site_name":
		return "Site name"
	case "username":
		return "Username"
	case "password":
		return "Password"
	default:
		return field
	}
}
