package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type ctxKey int

const (
	ctxKeyGame ctxKey = iota
	ctxKeyAdmin
)

// gameMiddleware resolves the {id} URL parameter to a live game.
func gameMiddleware(games *Games) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gm, err := games.Get(chi.URLParam(r, "id"))
			if err != nil {
				writeGameError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyGame, gm)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func adminAuthMiddleware(creds AdminCredentials) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, password, ok := r.BasicAuth()
			if !ok || !creds.verify(user, password) {
				w.Header().Set("WWW-Authenticate", `Basic realm="geoguess admin", charset="UTF-8"`)
				writeError(w, http.StatusUnauthorized, "admin authentication required")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyAdmin, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func gameFrom(r *http.Request) *Game {
	return r.Context().Value(ctxKeyGame).(*Game)
}

func adminFrom(r *http.Request) string {
	return r.Context().Value(ctxKeyAdmin).(string)
}
