package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/quickroll/initiative/internal/account"
)

// handleStream serves a session's live updates as server-sent events:
// the current snapshot immediately, then every subsequent update, with
// a comment-line ping between to keep proxies from closing the stream.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	publicID, ok := s.viewerSession(w, r)
	if !ok {
		return
	}

	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch, err := s.registry.Subscribe(publicID)
	if err != nil {
		writeError(w, err)
		return
	}
	defer s.registry.Unsubscribe(publicID, ch)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	// Tell nginx / Caddy not to buffer the stream.
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case frame, open := <-ch.Frames():
			if !open {
				return
			}
			var writeErr error
			if frame.Ping {
				_, writeErr = fmt.Fprint(w, ": ping\n\n")
			} else {
				_, writeErr = fmt.Fprintf(w, "data: %s\n\n", frame.Data)
			}
			if writeErr != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// handleJoin lets a prospective viewer check a session id before
// navigating to the display page.
func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	publicID, ok := s.viewerSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"sessionId": publicID})
}

// viewerSession validates the session id in the path and checks that a
// session with that id exists. Reads never create sessions implicitly.
func (s *Server) viewerSession(w http.ResponseWriter, r *http.Request) (string, bool) {
	publicID := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["sessionId"]))
	if !account.IsValidSessionID(publicID) {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return "", false
	}
	if _, ok := s.accounts.ByGameSessionID(publicID); !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return "", false
	}
	return publicID, true
}
