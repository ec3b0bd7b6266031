package handler

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/deppfellow/pages-api/internal/middleware"
	"github.com/deppfellow/pages-api/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const defaultHealthCheckTimeout = 5 * time.Second

// HealthHandler serves /status for load balancers and uptime monitors.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

type checkResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type healthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]checkResult `json:"checks"`
}

// CheckHealth runs the configured dependency checks.
//
// The database is required: when it fails the endpoint answers 503. Redis
// is optional (the rate limiter falls back to memory), so a failing Redis is
// reported but keeps the 200.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := healthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks:      map[string]checkResult{},
	}
	isHealthy := true

	if h.enabled("database") {
		result := h.runCheck(c.Request().Context(), &logger, "database", h.server.DB.Ping)
		response.Checks["database"] = result
		isHealthy = result.Status == "healthy"
	}

	if h.enabled("redis") && h.server.Redis != nil {
		response.Checks["redis"] = h.runCheck(c.Request().Context(), &logger, "redis", func(ctx context.Context) error {
			return h.server.Redis.Ping(ctx).Err()
		})
	}

	if !isHealthy {
		response.Status = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		h.recordHealthEvent(map[string]interface{}{
			"check_type":        "overall",
			"operation":         "health_check",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}

func (h *HealthHandler) enabled(check string) bool {
	obs := h.server.Config.Observability
	if obs == nil {
		return true
	}
	if !obs.HealthChecks.Enabled {
		return false
	}
	return len(obs.HealthChecks.Checks) == 0 || slices.Contains(obs.HealthChecks.Checks, check)
}

func (h *HealthHandler) timeout() time.Duration {
	if obs := h.server.Config.Observability; obs != nil && obs.HealthChecks.Timeout > 0 {
		return obs.HealthChecks.Timeout
	}
	return defaultHealthCheckTimeout
}

func (h *HealthHandler) runCheck(
	parent context.Context,
	logger *zerolog.Logger,
	name string,
	check func(ctx context.Context) error,
) checkResult {
	ctx, cancel := context.WithTimeout(parent, h.timeout())
	defer cancel()

	checkStart := time.Now()
	err := check(ctx)
	elapsed := time.Since(checkStart)

	if err != nil {
		logger.Error().
			Err(err).
			Str("check", name).
			Dur("response_time", elapsed).
			Msg("health check failed")

		h.recordHealthEvent(map[string]interface{}{
			"check_type":       name,
			"operation":        "health_check",
			"error_type":       name + "_unhealthy",
			"response_time_ms": elapsed.Milliseconds(),
			"error_message":    err.Error(),
		})

		return checkResult{
			Status:       "unhealthy",
			ResponseTime: elapsed.String(),
			Error:        err.Error(),
		}
	}

	return checkResult{
		Status:       "healthy",
		ResponseTime: elapsed.String(),
	}
}

func (h *HealthHandler) recordHealthEvent(attrs map[string]interface{}) {
	if h.server.LoggerService != nil && h.server.LoggerService.GetApplication() != nil {
		h.server.LoggerService.GetApplication().RecordCustomEvent("HealthCheckError", attrs)
	}
}
