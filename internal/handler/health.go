package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/deppfellow/gocrud/internal/middleware"
	"github.com/deppfellow/gocrud/internal/server"
	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 5 * time.Second

type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{Handler: NewHandler(s)}
}

type HealthCheck struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]HealthCheck `json:"checks"`
}

// CheckHealth pings the database and redis. A database failure answers 503;
// a redis failure only degrades the status, since login falls back to the
// database and queued mail is retried.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	logger := middleware.GetLogger(c).With().Str("operation", "health_check").Logger()

	res := HealthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks:      map[string]HealthCheck{},
	}

	db := h.probe(c.Request().Context(), "database", h.server.DB.Ping)
	res.Checks["database"] = db

	if h.server.Redis != nil {
		redis := h.probe(c.Request().Context(), "redis", func(ctx context.Context) error {
			return h.server.Redis.Ping(ctx).Err()
		})
		res.Checks["redis"] = redis
		if redis.Status != "healthy" {
			res.Status = "degraded"
		}
	}

	status := http.StatusOK
	if db.Status != "healthy" {
		res.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	logger.Info().
		Str("status", res.Status).
		Dur("total_duration", time.Since(start)).
		Msg("health check finished")

	return c.JSON(status, res)
}

func (h *HealthHandler) probe(parent context.Context, name string, ping func(context.Context) error) HealthCheck {
	ctx, cancel := context.WithTimeout(parent, healthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := ping(ctx)
	check := HealthCheck{Status: "healthy", ResponseTime: time.Since(start).String()}
	if err == nil {
		return check
	}

	check.Status = "unhealthy"
	check.Error = err.Error()

	h.server.Logger.Error().Err(err).Str("check", name).Msg("health check failed")
	if app := h.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("HealthCheckError", map[string]any{
			"check_type":       name,
			"response_time_ms": time.Since(start).Milliseconds(),
			"error_message":    err.Error(),
		})
	}
	return check
}
