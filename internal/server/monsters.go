package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/quickroll/initiative/internal/catalog"
)

// handleListMonsters returns the caller's custom monsters.
func (s *Server) handleListMonsters(w http.ResponseWriter, r *http.Request) {
	monsters := s.accounts.CustomMonsters(authID(r))
	if monsters == nil {
		monsters = []*catalog.CustomMonster{}
	}
	writeJSON(w, http.StatusOK, monsters)
}

// handleListTemplates returns every template the caller can spawn from,
// custom monsters shadowing built-ins.
func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Templates(authID(r)))
}

func (s *Server) handleAddMonster(w http.ResponseWriter, r *http.Request) {
	t, ok := decodeTemplate(w, r)
	if !ok {
		return
	}
	m, err := s.accounts.AddMonster(authID(r), t)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleUpdateMonster(w http.ResponseWriter, r *http.Request) {
	t, ok := decodeTemplate(w, r)
	if !ok {
		return
	}
	if err := s.accounts.UpdateMonster(authID(r), mux.Vars(r)["id"], t); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteMonster(w http.ResponseWriter, r *http.Request) {
	if err := s.accounts.DeleteMonster(authID(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeTemplate(w http.ResponseWriter, r *http.Request) (catalog.Template, bool) {
	var t catalog.Template
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return t, false
	}
	if err := t.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return t, false
	}
	return t, true
}
