package app

import (
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/labtrack/labtrack/internal/analyses"
	"github.com/labtrack/labtrack/internal/clients"
	"github.com/labtrack/labtrack/internal/dashboard"
	"github.com/labtrack/labtrack/internal/identity"
	"github.com/labtrack/labtrack/internal/notes"
	"github.com/labtrack/labtrack/internal/observability"
	"github.com/labtrack/labtrack/internal/rbac"
	"github.com/labtrack/labtrack/internal/samples"
	"github.com/labtrack/labtrack/internal/statuses"
	"github.com/labtrack/labtrack/internal/users"
	"github.com/labtrack/labtrack/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger   *slog.Logger
	Config   *Config
	Verifier *identity.Verifier

	AuthHandler      *identity.Handler
	AccessHandler    *rbac.Handler
	UsersHandler     *users.Handler
	ClientsHandler   *clients.Handler
	StatusesHandler  *statuses.Handler
	AnalysesHandler  *analyses.Handler
	SamplesHandler   *samples.Handler
	NotesHandler     *notes.Handler
	DashboardHandler *dashboard.Handler
	JobsHandler      *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with LabTrack defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:   params.Logger,
		Config:   params.Config,
		Verifier: params.Verifier,
		Metrics:  params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/access", params.AccessHandler.MountRoutes)
	if params.UsersHandler != nil {
		r.Route("/users", params.UsersHandler.MountRoutes)
	}
	if params.ClientsHandler != nil {
		r.Route("/clients", params.ClientsHandler.MountRoutes)
	}
	if params.StatusesHandler != nil {
		r.Route("/statuses", params.StatusesHandler.MountRoutes)
	}
	if params.AnalysesHandler != nil {
		r.Route("/analyses", params.AnalysesHandler.MountRoutes)
	}
	if params.SamplesHandler != nil {
		r.Route("/samples", params.SamplesHandler.MountRoutes)
	}
	if params.NotesHandler != nil {
		r.Route("/notes", params.NotesHandler.MountRoutes)
	}
	if params.DashboardHandler != nil {
		r.Route("/dashboard", params.DashboardHandler.MountRoutes)
	}
	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
