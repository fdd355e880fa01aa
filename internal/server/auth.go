package server

import (
	"encoding/json"
	"net/http"
	"strings"
)

const cookieMaxAge = 60 * 60 * 24 * 365

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		http.Error(w, "email and password are required", http.StatusBadRequest)
		return
	}

	sessionID, err := s.accounts.Create(req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	setAuthCookie(w, sessionID, cookieMaxAge)
	writeJSON(w, http.StatusCreated, map[string]string{"sessionId": sessionID})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	dm, err := s.accounts.Login(strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	setAuthCookie(w, dm.SessionID, cookieMaxAge)
	writeJSON(w, http.StatusOK, map[string]string{"sessionId": dm.SessionID})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	setAuthCookie(w, "", -1)
	w.WriteHeader(http.StatusNoContent)
}
