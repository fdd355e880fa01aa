package account

import "errors"

var (
	ErrNotFound           = errors.New("account not found")
	ErrEmailTaken         = errors.New("an account with that email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("game session not found")
	ErrMonsterNotFound    = errors.New("custom monster not found")
	ErrNoActiveSession    = errors.New("no active game session")

	// ErrLastSession rejects deleting the only remaining game session;
	// an account must always have one.
	ErrLastSession = errors.New("cannot delete the last session")
)
