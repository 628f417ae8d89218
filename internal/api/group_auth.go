package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/group-mailer/internal/config"
	"github.com/ignite/group-mailer/internal/pkg/httputil"
)

// groupContextKey is the context key for the validated group name.
type groupContextKey struct{}

// GroupFromContext returns the capability-validated group name. Handlers
// must read the group from here, never from unvalidated request fields.
func GroupFromContext(ctx context.Context) (string, bool) {
	group, ok := ctx.Value(groupContextKey{}).(string)
	return group, ok
}

// withGroup returns a request whose context carries the group name.
func withGroup(r *http.Request, group string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), groupContextKey{}, group))
}

// RequireGroup gates group-scoped routes behind a capability token. Each
// bearer token maps to exactly one group; the token's group must match the
// {group} path parameter, and the validated name is injected into the
// request context before the handler runs. With auth disabled the path
// group passes straight through (local development only).
func RequireGroup(auth config.AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pathGroup := chi.URLParam(r, "group")
			if pathGroup == "" {
				httputil.BadRequest(w, "missing group")
				return
			}

			if !auth.Enabled {
				next.ServeHTTP(w, withGroup(r, pathGroup))
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			group, ok := auth.Tokens[token]
			if !ok {
				httputil.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if group != pathGroup {
				httputil.Error(w, http.StatusForbidden, "forbidden")
				return
			}

			next.ServeHTTP(w, withGroup(r, group))
		})
	}
}
