package server

import (
	"encoding/json"
	"net/http"

	"github.com/quickroll/initiative/internal/combat"
)

// handleAppendHistory records a finished or checkpointed combat. The
// write goes through the persistence bridge, so a storage hiccup never
// fails the request.
func (s *Server) handleAppendHistory(w http.ResponseWriter, r *http.Request) {
	publicID, err := s.accounts.ActivePublicID(authID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	var rec combat.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := rec.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.bridge.FlushRecord(publicID, &rec)
	w.WriteHeader(http.StatusNoContent)
}

// handleGetHistory lists the active session's combat records, newest
// first.
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	publicID, err := s.accounts.ActivePublicID(authID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	records, err := s.accounts.Records(publicID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// handleDeleteHistory deletes one record by ?id=, or clears the whole
// history when no id is given.
func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	publicID, err := s.accounts.ActivePublicID(authID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	if id := r.URL.Query().Get("id"); id != "" {
		err = s.accounts.DeleteRecord(publicID, id)
	} else {
		err = s.accounts.ClearRecords(publicID)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
