package clients

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/labtrack/labtrack/internal/platform/httpx"
	"github.com/labtrack/labtrack/internal/rbac"
	"github.com/labtrack/labtrack/internal/shared"
)

// Handler manages client registry endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, validator: validator.New()}
}

// MountRoutes registers client routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermVerClientes))
		r.Get("/", h.listClients)
		r.Get("/{clientID}", h.getClient)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermRegistrarCliente))
		r.Post("/", h.createClient)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermEditarCliente))
		r.Put("/{clientID}", h.updateClient)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermEliminarCliente))
		r.Delete("/{clientID}", h.deleteClient)
	})
}

type createClientRequest struct {
	FullName string  `json:"fullName" validate:"required,max=200"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone" validate:"omitempty,max=40"`
}

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	listed, err := h.service.ListClients(r.Context())
	if err != nil {
		h.logger.Error("list clients", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if listed == nil {
		listed = []Client{}
	}
	httpx.JSON(w, http.StatusOK, listed)
}

func (h *Handler) getClient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	client, err := h.service.GetClient(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	client, err := h.service.CreateClient(r.Context(), req.FullName, req.Email, req.Phone)
	if err != nil {
		h.logger.Error("create client", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var upd Update
	if err := httpx.DecodeJSON(r, &upd); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	client, err := h.service.UpdateClient(r.Context(), id, upd)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteClient(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "clientID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "path parameter clientID is not a valid id")
		return uuid.Nil, false
	}
	return id, true
}
