package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/challenge-tracker/internal/dashboard"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		// Observer feeds
		r.Get("/state", s.handleState)
		r.Get("/events", s.handleEvents)
		r.Get("/ws", s.handleWebSocket)

		r.Post("/register", s.handleRegister)

		// Participant tasks
		r.Route("/player/{id}", func(r chi.Router) {
			r.Get("/task1", s.handleTask1)
			r.Get("/task2", s.handleTask2)
			r.Post("/task3", s.handleTask3)
			r.Post("/task4", s.handleTask4)
			r.Get("/task5/key", s.handleTask5Key)
			r.Post("/task5", s.handleTask5)
			r.Post("/task6", s.handleTask6)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(s.adminAuthMiddleware)

			r.Post("/task", s.handleSetTask)
			r.Post("/reset", s.handleReset)
			r.Delete("/player/{id}", s.handleRemovePlayer)
			r.Get("/audit", s.handleListAudit)
		})

		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusNotFound, "not found")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		})
	})

	// Dashboard assets, with unknown paths falling back to index.html
	r.Handle("/*", dashboard.Handler(s.dashDir))

	return r
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}

// handleState returns the same snapshot the live feeds push.
func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Snapshot())
}
