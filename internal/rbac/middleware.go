package rbac

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labtrack/labtrack/internal/shared"
)

// Resolver resolves permissions for an identity handle.
type Resolver interface {
	Resolve(ctx context.Context, handle string) (Resolution, error)
}

// Middleware wires the server-side access gate into HTTP handlers. The
// client permission snapshot is never consulted here; every guarded request
// re-resolves against the store.
type Middleware struct {
	Service Resolver
	Logger  *slog.Logger
}

// Require ensures the current identity holds the named permission. Requests
// without an identity get 401, resolved identities without the permission
// get 403.
func (m Middleware) Require(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := shared.IdentityFromContext(r.Context())
			if id == nil {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			res, err := m.Service.Resolve(r.Context(), id.Handle)
			if err != nil {
				// A token for a user the store has never seen grants nothing.
				if errors.Is(err, ErrNotFound) {
					http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
					return
				}
				if m.Logger != nil {
					m.Logger.Error("rbac require", slog.String("permission", permission), slog.Any("error", err))
				}
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if Check(permission, GateState{Resolution: res}) != Allow {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
