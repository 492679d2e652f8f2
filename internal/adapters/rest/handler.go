package rest

import (
	"net/http"

	"github.com/ewilliams-labs/setlist/internal/core/services"
)

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc    *services.Orchestrator // Dependency on the Core Service
	router *http.ServeMux         // Standard library router
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(svc *services.Orchestrator) *Handler {
	h := &Handler{
		svc:    svc,
		router: http.NewServeMux(),
	}

	h.routes()

	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	h.router.HandleFunc("GET /health", h.HealthCheck)
	// Curation without side effects
	h.router.HandleFunc("POST /curate", h.Curate)
	// Playlists
	h.router.HandleFunc("POST /playlists", h.CreatePlaylist)
	h.router.HandleFunc("GET /playlists/{id}", h.GetPlaylist)
	h.router.HandleFunc("GET /playlists/{id}/analysis", h.GetPlaylistAnalysis)
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "setlist is live"})
}
