package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/studyforge/studyforge-api/internal/api"
	apiMiddleware "github.com/studyforge/studyforge-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	studyHandler := api.NewStudyHandler(app.studyService)
	userHandler := api.NewUserHandler(app.userService)
	pingHandler := api.NewPingHandler(app.generator)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/users", userHandler.SignUp)
		r.Get("/ai-ping", pingHandler.Ping)
		r.Get("/study-requests/{id}", studyHandler.GetRequest)
		r.Get("/study-materials/{id}", studyHandler.GetMaterial)

		// Endpoints that need a caller identity
		r.Group(func(r chi.Router) {
			r.Use(apiMiddleware.RequireUserID)
			r.Post("/study-requests", studyHandler.CreateRequest)
			r.Post("/study-materials", studyHandler.CreateMaterial)
			r.Get("/dashboard-items", studyHandler.ListDashboardItems)
			r.Post("/dashboard-items", studyHandler.AddDashboardItem)
			r.Get("/users/me", userHandler.GetMe)
			r.Get("/users/me/ledger", userHandler.GetLedger)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
