package analyses

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

type Handler struct {
	logger   *slog.Logger
	service  *Service
	rbac     rbac.Middleware
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, mw rbac.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		rbac:     mw,
		validate: validator.New(),
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermVerAnalisis))
		r.Get("/", h.list)
		r.Get("/types", h.types)
		r.Get("/{analysisID}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermAgregarAnalisis))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermEditarAnalisis))
		r.Put("/{analysisID}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermEliminarAnalisis))
		r.Delete("/{analysisID}", h.remove)
	})
}

type createAnalysisRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
	Type        string  `json:"type" validate:"required"`
	Fields      []Field `json:"fields"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListAnalyses(r.Context())
	if err != nil {
		h.fail(w, "list analyses", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) types(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, Types())
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "analysisID")
	if !ok {
		return
	}
	a, err := h.service.GetAnalysis(r.Context(), id)
	if err != nil {
		h.fail(w, "get analysis", err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createAnalysisRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	a, err := h.service.CreateAnalysis(r.Context(), Analysis{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Fields:      req.Fields,
	})
	if err != nil {
		h.fail(w, "create analysis", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, a)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "analysisID")
	if !ok {
		return
	}
	var upd Update
	if err := httpx.DecodeJSON(r, &upd); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	a, err := h.service.UpdateAnalysis(r.Context(), id, upd)
	if err != nil {
		h.fail(w, "update analysis", err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "analysisID")
	if !ok {
		return
	}
	if err := h.service.DeleteAnalysis(r.Context(), id); err != nil {
		h.fail(w, "delete analysis", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid identifier", "path parameter "+param+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op+" failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}
