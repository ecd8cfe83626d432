package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/adapters/metrics"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/application"
)

// ReadinessCheck reports whether backing stores are reachable.
type ReadinessCheck func(ctx context.Context) error

type Handler struct {
	service *application.Service
	ready   ReadinessCheck
}

func NewHandler(service *application.Service, ready ReadinessCheck) *Handler {
	return &Handler{service: service, ready: ready}
}

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/login", handler.login)

		r.Group(func(r chi.Router) {
			r.Use(handler.authMiddleware)

			r.Post("/auth/logout", handler.logout)
			r.Get("/auth/session", handler.session)
			r.Put("/auth/password", handler.updatePassword)

			r.Get("/catalog", handler.catalog)

			r.Get("/projects", handler.listProjects)
			r.Post("/projects", handler.createProject)
			r.Get("/projects/summaries", handler.projectSummaries)
			r.Patch("/projects/{project_id}", handler.updateProject)
			r.Delete("/projects/{project_id}", handler.deleteProject)
			r.Get("/projects/{project_id}/draft", handler.prepareDraft)

			r.Get("/reports", handler.listReports)
			r.Post("/reports", handler.saveReport)
			r.Get("/reports/{report_id}", handler.getReport)
			r.Post("/reports/{report_id}/signatures/{slot}", handler.signReport)
			r.Post("/reports/{report_id}/complete", handler.completeReport)
			r.Post("/reports/{report_id}/items/{item_id}/photos", handler.attachPhoto)
			r.Delete("/reports/{report_id}/items/{item_id}/photos/{photo_id}", handler.removePhoto)

			r.Get("/pending-actions", handler.pendingActions)

			r.Route("/admin/users", func(r chi.Router) {
				r.Get("/", handler.listUsers)
				r.Post("/", handler.createUser)
				r.Delete("/", handler.deleteUser)
				r.Patch("/{user_id}", handler.updateUser)
			})
		})
	})

	return r
}
