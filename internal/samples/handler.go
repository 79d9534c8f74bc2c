package samples

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

// Exporter renders a sample's result sheet as a PDF document.
type Exporter interface {
	ExportSample(w http.ResponseWriter, r *http.Request, view View)
}

type Handler struct {
	logger   *slog.Logger
	service  *Service
	exporter Exporter
	rbac     rbac.Middleware
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, exporter Exporter, mw rbac.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		exporter: exporter,
		rbac:     mw,
		validate: validator.New(),
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermVerMuestras))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermVerDetallesMuestra))
		r.Get("/{sampleID}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermRegistrarMuestra))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermEditarMuestra))
		r.Put("/{sampleID}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermEliminarMuestra))
		r.Delete("/{sampleID}", h.remove)
	})
	if h.exporter != nil {
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.Require(shared.PermExportarMuestraPDF))
			r.Get("/{sampleID}/pdf", h.exportPDF)
		})
	}
}

type registerSampleRequest struct {
	ClientID     uuid.UUID `json:"clientId" validate:"required"`
	StatusID     uuid.UUID `json:"statusId" validate:"required"`
	AnalysisName string    `json:"analysisName" validate:"required"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("clientId"); raw != "" {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "invalid identifier", "query parameter clientId must be a UUID")
			return
		}
		list, err := h.service.ListSamplesByClient(r.Context(), clientID)
		if err != nil {
			h.fail(w, "list samples by client", err)
			return
		}
		httpx.JSON(w, http.StatusOK, list)
		return
	}
	list, err := h.service.ListSamples(r.Context())
	if err != nil {
		h.fail(w, "list samples", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "sampleID")
	if !ok {
		return
	}
	view, err := h.service.GetSample(r.Context(), id)
	if err != nil {
		h.fail(w, "get sample", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req registerSampleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	view, err := h.service.RegisterSample(r.Context(), h.actor(r), req.ClientID, req.StatusID, req.AnalysisName)
	if err != nil {
		h.fail(w, "register sample", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, view)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "sampleID")
	if !ok {
		return
	}
	var upd Update
	if err := httpx.DecodeJSON(r, &upd); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	view, err := h.service.UpdateSample(r.Context(), h.actor(r), id, upd)
	if err != nil {
		h.fail(w, "update sample", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "sampleID")
	if !ok {
		return
	}
	if err := h.service.DeleteSample(r.Context(), h.actor(r), id); err != nil {
		h.fail(w, "delete sample", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) exportPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "sampleID")
	if !ok {
		return
	}
	view, err := h.service.GetSample(r.Context(), id)
	if err != nil {
		h.fail(w, "export sample", err)
		return
	}
	h.exporter.ExportSample(w, r, *view)
}

func (h *Handler) actor(r *http.Request) string {
	if id := shared.IdentityFromContext(r.Context()); id != nil {
		return id.Handle
	}
	return ""
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
