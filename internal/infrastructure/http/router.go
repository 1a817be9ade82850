package http

import (
	"github.com/labstack/echo/v4"

	"github.com/ghorer-khabar/mealclub/internal/infrastructure/http/handlers"
)

// RegisterProbes mounts the liveness and readiness probes on e. deps are
// pinged by the readiness probe, keyed by the name reported in its body.
func RegisterProbes(e *echo.Echo, deps map[string]handlers.Pinger) {
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
}
