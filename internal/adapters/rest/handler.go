// Package rest exposes the event intake over HTTP. The host platform's
// transport and signature checks happen upstream; this surface receives
// already-decoded events.
package rest

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/earshot-labs/earshot/internal/core/services"
)

// Handler manages the HTTP interface for the skill core.
type Handler struct {
	player *services.Player
	router *http.ServeMux
	logger *log.Logger
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(player *services.Player, logger *log.Logger) *Handler {
	h := &Handler{
		player: player,
		router: http.NewServeMux(),
		logger: logger,
	}
	h.routes()
	return h
}

// ServeHTTP satisfies http.Handler, wrapping the router with request logging.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.withRequestLog(h.router).ServeHTTP(w, r)
}

func (h *Handler) routes() {
	h.router.HandleFunc("GET /health", h.HealthCheck)
	h.router.HandleFunc("POST /v1/users/{userID}/events", h.HandleEvent)
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func isJSONContentType(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return ct == "" || strings.HasPrefix(ct, "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
