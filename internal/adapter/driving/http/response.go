package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/pinvault/internal/application"
	"github.com/ericfisherdev/pinvault/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// SnapshotResponse is the JSON representation of a password/memo pair.
type SnapshotResponse struct {
	Password string `json:"password"`
	Memo     string `json:"memo"`
}

// HistoryEntryResponse is the JSON representation of one history transition.
type HistoryEntryResponse struct {
	OldState  SnapshotResponse `json:"old_state"`
	NewState  SnapshotResponse `json:"new_state"`
	UpdatedAt string           `json:"updated_at"`
}

// RecordResponse is the full JSON representation of a credential record. It
// is only returned for a record the caller created or unlocked.
type RecordResponse struct {
	ID        int64                  `json:"id"`
	SiteName  string                 `json:"site_name"`
	Username  string                 `json:"username"`
	Password  string                 `json:"password"`
	URL       string                 `json:"url"`
	Memo      string                 `json:"memo"`
	Keyword   string                 `json:"keyword"`
	CreatedAt string                 `json:"created_at"`
	History   []HistoryEntryResponse `json:"history"`
}

// RecordSummaryResponse is a search hit. It omits the password, the memo and
// the history, which stay behind the gate.
type RecordSummaryResponse struct {
	ID        int64  `json:"id"`
	SiteName  string `json:"site_name"`
	Username  string `json:"username"`
	URL       string `json:"url"`
	Keyword   string `json:"keyword"`
	CreatedAt string `json:"created_at"`
	MatchedOn string `json:"matched_on"`
}

// RecordRequest is the JSON body for the register and edit endpoints.
type RecordRequest struct {
	ID       int64  `json:"id,omitempty"`
	SiteName string `json:"site_name"`
	Username string `json:"username"`
	Password string `json:"password"`
	URL      string `json:"url"`
	Memo     string `json:"memo"`
	Keyword  string `json:"keyword"`
}

// PendingActionResponse is the JSON representation of the gate slot.
type PendingActionResponse struct {
	Action      string `json:"action"`
	RecordID    int64  `json:"record_id"`
	Title       string `json:"title"`
	RequestedAt string `json:"requested_at"`
}

// ActionRequest is the JSON body for requesting a guarded action.
type ActionRequest struct {
	Action   string `json:"action"`
	RecordID int64  `json:"record_id"`
}

// ConfirmRequest is the JSON body for releasing the gate.
type ConfirmRequest struct {
	PIN string `json:"pin"`
}

// ActionResultResponse is the outcome of a released action. Revisions is
// only present for view_history, where it may be an empty list.
type ActionResultResponse struct {
	Action    string                  `json:"action"`
	Record    RecordResponse          `json:"record"`
	Revisions *[]HistoryEntryResponse `json:"revisions,omitempty"`
}

// ExpandRequest is the JSON body for the smart search endpoint.
type ExpandRequest struct {
	Term string `json:"term"`
}

// ExpandResponse is the JSON representation of a query expansion.
type ExpandResponse struct {
	Term     string `json:"term"`
	Expanded bool   `json:"expanded"`
	Message  string `json:"message"`
}

// AnalyzeRequest is the JSON body for the password analysis endpoint.
type AnalyzeRequest struct {
	Password string `json:"password"`
}

// AnalyzeResponse is the JSON representation of a password report.
type AnalyzeResponse struct {
	Score       *int     `json:"score,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Message     string   `json:"message"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func (r RecordRequest) toInput() model.RecordInput {
	return model.RecordInput{
		ID:       r.ID,
		SiteName: r.SiteName,
		Username: r.Username,
		Password: r.Password,
		URL:      r.URL,
		Memo:     r.Memo,
		Keyword:  r.Keyword,
	}
}

func toSnapshotResponse(s model.Snapshot) SnapshotResponse {
	return SnapshotResponse{Password: s.Password, Memo: s.Memo}
}

// toHistoryResponse converts history entries, always returning a non-nil slice.
func toHistoryResponse(entries []model.HistoryEntry) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryEntryResponse{
			OldState:  toSnapshotResponse(e.OldState),
			NewState:  toSnapshotResponse(e.NewState),
			UpdatedAt: formatTime(e.UpdatedAt),
		})
	}
	return out
}

// toRecordResponse converts a domain record to its full JSON representation.
func toRecordResponse(rec model.CredentialRecord) RecordResponse {
	return RecordResponse{
		ID:        rec.ID,
		SiteName:  rec.SiteName,
		Username:  rec.Username,
		Password:  rec.Password,
		URL:       rec.URL,
		Memo:      rec.Memo,
		Keyword:   rec.Keyword,
		CreatedAt: formatTime(rec.CreatedAt),
		History:   toHistoryResponse(rec.History),
	}
}

// toSummaryResponse converts a search hit to its JSON representation.
func toSummaryResponse(hit application.SearchHit) RecordSummaryResponse {
	return RecordSummaryResponse{
		ID:        hit.Record.ID,
		SiteName:  hit.Record.SiteName,
		Username:  hit.Record.Username,
		URL:       hit.Record.URL,
		Keyword:   hit.Record.Keyword,
		CreatedAt: formatTime(hit.Record.CreatedAt),
		MatchedOn: hit.Tier.String(),
	}
}

func toPendingActionResponse(a model.PendingAction) PendingActionResponse {
	return PendingActionResponse{
		Action:      string(a.Kind),
		RecordID:    a.RecordID,
		Title:       a.Title,
		RequestedAt: formatTime(a.RequestedAt),
	}
}

func toActionResultResponse(res application.ActionResult) ActionResultResponse {
	resp := ActionResultResponse{
		Action: string(res.Action.Kind),
		Record: toRecordResponse(res.Record),
	}
	if res.Action.Kind == model.GuardedOpViewHistory {
		revisions := toHistoryResponse(res.Revisions)
		resp.Revisions = &revisions
	}
	return resp
}

func toAnalyzeResponse(report application.PasswordReport) AnalyzeResponse {
	resp := AnalyzeResponse{Message: report.Message}
	if report.Analysis != nil {
		score := report.Analysis.Score
		resp.Score = &score
		resp.Suggestions = report.Analysis.Suggestions
	}
	return resp
}
