package router

import (
	"github.com/deppfellow/gocrud/internal/handler"
	"github.com/deppfellow/gocrud/internal/server"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes mounts the endpoints outside /api: health, docs,
// their static assets and prometheus metrics.
func registerSystemRoutes(r *echo.Echo, s *server.Server, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)

	r.Static("/static", "static")
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)

	if s.Metrics != nil {
		r.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))
	}
}
