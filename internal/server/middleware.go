package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
)

type ctxKey int

const ctxKeyAdmin ctxKey = iota

// adminAuthMiddleware answers 401 for missing or expired sessions. A failing
// session store is logged and answered with 500.
func adminAuthMiddleware(logger *slog.Logger, sessions SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(adminCookieName)
			if err != nil || cookie.Value == "" {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			sess, err := sessions.Get(r.Context(), cookie.Value)
			if errors.Is(err, errNoAdminSession) {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if err != nil {
				writeDomainError(w, r, logger, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyAdmin, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func adminFrom(r *http.Request) AdminSession {
	return r.Context().Value(ctxKeyAdmin).(AdminSession)
}
