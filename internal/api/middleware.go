package api

import (
	"context"
	"net/http"
	"strings"

	"allswell/internal/auth"
)

type contextKey string

const identityKey contextKey = "identity"

// AuthMiddleware resolves the Bearer session token to an identity and rejects
// requests without one.
func AuthMiddleware(mgr *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeJSON(w, http.StatusUnauthorized, errorBody("authentication required"))
				return
			}
			identity, err := mgr.CurrentUser(token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody("invalid session"))
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, *identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// EventSource cannot set headers; allow the token as a query parameter
	// for the SSE endpoint.
	return r.URL.Query().Get("token")
}

func identityFrom(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(auth.Identity)
	return identity, ok
}
