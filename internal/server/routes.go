package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/playbookTV/leadscan-sub000/internal/handlers/api"
)

// Handlers groups the route handlers.
type Handlers struct {
	Poll   *api.PollHandler
	Health *api.HealthHandler
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(h Handlers) {
	s.App.Get("/healthz", h.Health.Check)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	apiGroup := s.App.Group("/api")
	apiGroup.Post("/poll/run", h.Poll.RunPoll)
	apiGroup.Get("/poll/stats", h.Poll.Stats)
	apiGroup.Get("/poll/runs", h.Poll.Runs)
	apiGroup.Get("/leads", h.Poll.Leads)
}
