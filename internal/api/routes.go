package api

import (
	"github.com/pibble/pibble/internal/api/handlers"
)

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)

	api := s.echo.Group("/api/v1")
	if s.svc.Limiter != nil {
		api.Use(s.svc.Limiter.Middleware())
	}

	api.GET("/status", s.getStatus)

	protected := api.Group("", s.auth.Token())

	users := protected.Group("/users/:userId", s.auth.SameUser("userId"))
	users.GET("/lists/:category", s.getList)
	users.GET("/lists/:category/current", s.getCurrentList)

	protected.POST("/enrich", s.enrichEntries)
	protected.GET("/media/:type/:id", s.getMedia)

	if s.svc.Hub != nil {
		protected.GET("/ws", s.svc.Hub.HandleWebSocket, s.auth.SameUser("userId"))
	}

	if s.svc.Scheduler != nil {
		schedulerHandler := handlers.NewSchedulerHandler(s.svc.Scheduler)
		schedulerHandler.RegisterRoutes(protected.Group("/system/tasks"))
	}
}
