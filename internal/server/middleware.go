package server

import (
	"context"
	"net/http"
)

// authCookie carries the DM's opaque auth session id.
const authCookie = "dm_auth"

type contextKey string

const authIDKey contextKey = "authID"

// auth rejects requests without an auth cookie and stores the caller's
// auth session id in the request context. The id is opaque here;
// resolution to an account happens in the handlers that need it.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(authCookie)
		if err != nil || cookie.Value == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), authIDKey, cookie.Value)
		next(w, r.WithContext(ctx))
	}
}

// authID returns the auth session id stored by the auth middleware.
func authID(r *http.Request) string {
	id, _ := r.Context().Value(authIDKey).(string)
	return id
}

// setAuthCookie issues or clears the auth cookie.
func setAuthCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
