package notes

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
		r.Use(h.rbac.Require(shared.PermVerNotas))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermVerNotasMuestras))
		r.Get("/sample/{sampleID}", h.listBySample)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermAgregarNotas))
		r.Post("/", h.create)
		r.Put("/{noteID}/completed", h.setCompleted)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermEliminarNotas))
		r.Delete("/{noteID}", h.remove)
	})
}

type createNoteRequest struct {
	SampleID uuid.UUID `json:"sampleId" validate:"required"`
	Content  string    `json:"content" validate:"required"`
}

type setCompletedRequest struct {
	Completed bool `json:"completed"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListNotes(r.Context())
	if err != nil {
		h.fail(w, "list notes", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) listBySample(w http.ResponseWriter, r *http.Request) {
	sampleID, ok := h.pathID(w, r, "sampleID")
	if !ok {
		return
	}
	list, err := h.service.ListNotesBySample(r.Context(), sampleID)
	if err != nil {
		h.fail(w, "list sample notes", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	n, err := h.service.CreateNote(r.Context(), req.SampleID, req.Content)
	if err != nil {
		h.fail(w, "create note", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, n)
}

func (h *Handler) setCompleted(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "noteID")
	if !ok {
		return
	}
	var req setCompletedRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	n, err := h.service.SetCompleted(r.Context(), id, req.Completed)
	if err != nil {
		h.fail(w, "set note completion", err)
		return
	}
	httpx.JSON(w, http.StatusOK, n)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "noteID")
	if !ok {
		return
	}
	if err := h.service.DeleteNote(r.Context(), id); err != nil {
		h.fail(w, "delete note", err)
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
