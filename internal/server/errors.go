package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/quickroll/initiative/internal/account"
)

// writeError maps domain errors onto HTTP statuses. Storage and other
// unexpected failures become a 500 and are logged; they never reach the
// live-update path.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, account.ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, account.ErrLastSession),
		errors.Is(err, account.ErrEmailTaken),
		errors.Is(err, account.ErrNoActiveSession):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, account.ErrNotFound),
		errors.Is(err, account.ErrSessionNotFound),
		errors.Is(err, account.ErrMonsterNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		slog.Error("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
