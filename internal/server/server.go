// Package server exposes the tracker's HTTP boundary: controller state
// pushes, snapshot reads, live viewer streams (SSE and websocket),
// combat history, game-session management, and account endpoints.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/quickroll/initiative/internal/account"
	"github.com/quickroll/initiative/internal/catalog"
	"github.com/quickroll/initiative/internal/session"
)

const shutdownTimeout = 5 * time.Second

// maxBodyBytes bounds request bodies. Avatar uploads ride inside the
// state payload, so this is generous but finite.
const maxBodyBytes = 16 << 20

type Server struct {
	addr     string
	registry *session.Registry
	bridge   *session.Bridge
	accounts *account.Store
	catalog  *catalog.Provider
	router   *mux.Router
}

func New(addr string, registry *session.Registry, bridge *session.Bridge, accounts *account.Store, cat *catalog.Provider) *Server {
	s := &Server{
		addr:     addr,
		registry: registry,
		bridge:   bridge,
		accounts: accounts,
		catalog:  cat,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	// Controller endpoints, keyed off the auth cookie.
	r.HandleFunc("/api/state", s.auth(s.handlePushState)).Methods(http.MethodPost)
	r.HandleFunc("/api/state", s.auth(s.handleGetState)).Methods(http.MethodGet)

	r.HandleFunc("/api/history", s.auth(s.handleAppendHistory)).Methods(http.MethodPost)
	r.HandleFunc("/api/history", s.auth(s.handleGetHistory)).Methods(http.MethodGet)
	r.HandleFunc("/api/history", s.auth(s.handleDeleteHistory)).Methods(http.MethodDelete)

	r.HandleFunc("/api/sessions", s.auth(s.handleListSessions)).Methods(http.MethodGet)
	r.HandleFunc("/api/sessions", s.auth(s.handleSessionAction)).Methods(http.MethodPost)

	r.HandleFunc("/api/monsters", s.auth(s.handleListMonsters)).Methods(http.MethodGet)
	r.HandleFunc("/api/monsters", s.auth(s.handleAddMonster)).Methods(http.MethodPost)
	r.HandleFunc("/api/monsters/{id}", s.auth(s.handleUpdateMonster)).Methods(http.MethodPut)
	r.HandleFunc("/api/monsters/{id}", s.auth(s.handleDeleteMonster)).Methods(http.MethodDelete)
	r.HandleFunc("/api/templates", s.auth(s.handleListTemplates)).Methods(http.MethodGet)

	// Viewer endpoints, keyed by public session id.
	r.HandleFunc("/api/stream/{sessionId}", s.handleStream).Methods(http.MethodGet)
	r.HandleFunc("/api/ws/{sessionId}", s.handleWebsocket).Methods(http.MethodGet)
	r.HandleFunc("/join/{sessionId}", s.handleJoin).Methods(http.MethodGet)

	// Account endpoints.
	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)

	return r
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP until the context is cancelled, then drains
// in-flight requests. Implements the service worker contract.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: http.MaxBytesHandler(s.router, maxBodyBytes),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	slog.InfoContext(ctx, "http server listening", "addr", s.addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
