package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// Web routes serve HTML at / and /app/* paths.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Static assets (embedded via go:embed).
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	// Page routes.
	mux.HandleFunc("GET /{$}", h.Dashboard)
	mux.HandleFunc("GET /app/records/new", h.NewRecordForm)

	// Form posts, all CSRF-checked.
	mux.HandleFunc("POST /app/search/smart", requireCSRF(h.SmartSearch))
	mux.HandleFunc("POST /app/records", requireCSRF(h.RegisterRecord))
	mux.HandleFunc("POST /app/records/{id}", requireCSRF(h.SubmitEdit))
	mux.HandleFunc("POST /app/records/{id}/cancel", requireCSRF(h.CancelEdit))
	mux.HandleFunc("POST /app/gate", requireCSRF(h.RequestAction))
	mux.HandleFunc("POST /app/gate/confirm", requireCSRF(h.ConfirmAction))
	mux.HandleFunc("POST /app/gate/cancel", requireCSRF(h.CancelAction))
	mux.HandleFunc("POST /app/password/analyze", requireCSRF(h.AnalyzePassword))
}
