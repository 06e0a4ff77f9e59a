package server

import (
	"context"
	"net/http"
)

type ctxKey int

const ctxKeyAdmin ctxKey = iota

// adminAuthMiddleware guards the authority-only routes. Non-authority
// callers racing to trigger a transition land here and are rejected
// before any procedure runs.
func adminAuthMiddleware(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := adminFromRequest(r, store)
			if err != nil {
				writeError(w, http.StatusForbidden, "authority privilege required")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyAdmin, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func adminFrom(r *http.Request) adminSession {
	return r.Context().Value(ctxKeyAdmin).(adminSession)
}
