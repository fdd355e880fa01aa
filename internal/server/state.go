package server

import (
	"encoding/json"
	"net/http"

	"github.com/quickroll/initiative/internal/combat"
)

// handlePushState accepts the controller's full session state. The
// payload is validated whole before anything is applied; a malformed
// push mutates nothing.
func (s *Server) handlePushState(w http.ResponseWriter, r *http.Request) {
	publicID, err := s.accounts.ActivePublicID(authID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	var st combat.State
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := st.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.registry.Publish(publicID, &st)
	w.WriteHeader(http.StatusNoContent)
}

// handleGetState returns the controller's active session state, used on
// page refresh to rehydrate the screen.
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	publicID, err := s.accounts.ActivePublicID(authID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.registry.Read(publicID))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
