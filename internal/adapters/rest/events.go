package rest

import (
	"encoding/json"
	"net/http"

	"github.com/earshot-labs/earshot/internal/core/domain"
)

type eventRequest struct {
	Kind             string            `json:"kind"`
	Parameters       map[string]string `json:"parameters"`
	ReportedToken    string            `json:"reportedToken"`
	ReportedOffsetMs int64             `json:"reportedOffsetMs"`
}

// HandleEvent handles POST /v1/users/{userID}/events: one decoded intent or
// playback lifecycle event, answered with speech and the next playback
// command.
func (h *Handler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	userID := r.PathValue("userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user id is required")
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Kind == "" {
		writeError(w, http.StatusBadRequest, "kind is required")
		return
	}

	ev := domain.Event{
		Kind:             domain.EventKind(req.Kind),
		Parameters:       req.Parameters,
		ReportedToken:    req.ReportedToken,
		ReportedOffsetMs: req.ReportedOffsetMs,
	}

	resp, err := h.player.Handle(r.Context(), userID, ev)
	if err != nil {
		// Store failures abort the turn; the apology payload still goes out
		// so the platform has something to speak.
		h.logger.Error("turn aborted", "user", userID, "kind", req.Kind, "err", err)
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
