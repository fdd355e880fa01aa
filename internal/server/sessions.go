package server

import (
	"encoding/json"
	"net/http"
)

type sessionActionRequest struct {
	Action string `json:"action"`
	ID     string `json:"id"`
	Name   string `json:"name"`
}

// handleListSessions returns the caller's game sessions and which one
// is active.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, activeID, err := s.accounts.ListSessions(authID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions":            sessions,
		"activeGameSessionId": activeID,
	})
}

// handleSessionAction dispatches session management actions:
// create, rename, delete, switch.
func (s *Server) handleSessionAction(w http.ResponseWriter, r *http.Request) {
	var req sessionActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	id := authID(r)
	switch req.Action {
	case "create":
		info, err := s.accounts.CreateSession(id, req.Name)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, info)

	case "rename":
		if req.ID == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}
		if err := s.accounts.RenameSession(id, req.ID, req.Name); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)

	case "delete":
		if req.ID == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}
		if err := s.accounts.DeleteSession(id, req.ID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)

	case "switch":
		if req.ID == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}
		publicID, err := s.accounts.SwitchSession(id, req.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"sessionId": publicID})

	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}
