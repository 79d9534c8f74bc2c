package identity

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/labtrack/labtrack/internal/platform/httpx"
	"github.com/labtrack/labtrack/internal/rbac"
	"github.com/labtrack/labtrack/internal/shared"
)

// SnapshotStore persists resolved permission snapshots per handle.
type SnapshotStore interface {
	Save(ctx context.Context, key string, res rbac.Resolution) error
	Clear(ctx context.Context, key string) error
}

// Handler serves the session-facing auth endpoints: the authoritative
// role/permission resolution for the current identity, and sign-out, which
// drops the persisted snapshot so no stale permissions survive the session.
type Handler struct {
	logger    *slog.Logger
	resolver  rbac.Resolver
	snapshots SnapshotStore
	webhook   *Webhook
}

// NewHandler builds a Handler instance. webhook may be nil when the
// lifecycle feed is not configured.
func NewHandler(logger *slog.Logger, resolver rbac.Resolver, snapshots SnapshotStore, webhook *Webhook) *Handler {
	return &Handler{logger: logger, resolver: resolver, snapshots: snapshots, webhook: webhook}
}

// MountRoutes registers auth routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/me", h.me)
	r.Post("/signout", h.signOut)
	if h.webhook != nil {
		r.Post("/webhook", h.webhook.ServeHTTP)
	}
}

// me returns the authoritative resolution for the current identity and
// refreshes the persisted snapshot as a side effect. Clients may paint from
// their cached snapshot first, but this response always supersedes it.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	id := shared.IdentityFromContext(r.Context())
	if id == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no session")
		return
	}
	res, err := h.resolver.Resolve(r.Context(), id.Handle)
	if err != nil {
		if errors.Is(err, rbac.ErrNotFound) {
			// Known to the provider, not yet to us: webhook lag. The client
			// treats this as "no session".
			httpx.Problem(w, http.StatusNotFound, "Not Found", "user not provisioned")
			return
		}
		h.logger.Error("resolve identity", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if h.snapshots != nil {
		if err := h.snapshots.Save(r.Context(), id.Handle, res); err != nil {
			h.logger.Warn("persist snapshot", slog.Any("error", err))
		}
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	id := shared.IdentityFromContext(r.Context())
	if id != nil && h.snapshots != nil {
		if err := h.snapshots.Clear(r.Context(), id.Handle); err != nil {
			h.logger.Warn("clear snapshot", slog.Any("error", err))
		}
	}
	httpx.NoContent(w)
}
