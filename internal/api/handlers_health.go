// handlers_health.go - Health check handler
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandlerImpl implements the HealthHandler interface.
type HealthHandlerImpl struct {
	version   string
	startedAt time.Time
}

// NewHealthHandler creates a new health handler instance.
func NewHealthHandler(version string) HealthHandler {
	return &HealthHandlerImpl{version: version, startedAt: time.Now()}
}

// HandleHealth reports service liveness.
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":        "ok",
		"version":       h.version,
		"uptimeSeconds": int64(time.Since(h.startedAt).Seconds()),
	})
}
