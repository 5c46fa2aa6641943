package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is a dependency the health check pings.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and lists the API surface.
type HealthHandler struct {
	database Pinger
	optional map[string]Pinger
	started  time.Time
	env      string
}

// NewHealthHandler creates a health handler. A failing database makes the
// service unhealthy; failing optional dependencies only mark it degraded.
func NewHealthHandler(database Pinger, optional map[string]Pinger, env string) *HealthHandler {
	return &HealthHandler{database: database, optional: optional, started: time.Now(), env: env}
}

// HealthResponse is the data of the health endpoint.
type HealthResponse struct {
	Status       string            `json:"status"`
	Environment  string            `json:"environment"`
	Uptime       string            `json:"uptime"`
	Timestamp    time.Time         `json:"timestamp"`
	Dependencies map[string]string `json:"dependencies"`
}

// Health godoc
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} Envelope{data=HealthResponse}
// @Failure 503 {object} Envelope{data=HealthResponse}
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:       "ok",
		Environment:  h.env,
		Uptime:       time.Since(h.started).Round(time.Second).String(),
		Timestamp:    time.Now().UTC(),
		Dependencies: map[string]string{"database": "up"},
	}

	if err := h.database.Ping(ctx); err != nil {
		resp.Status = "unavailable"
		resp.Dependencies["database"] = "down"
		return c.JSON(http.StatusServiceUnavailable, Envelope{Success: false, Message: "Database unavailable", Data: resp})
	}
	for name, p := range h.optional {
		if err := p.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Dependencies[name] = "down"
			continue
		}
		resp.Dependencies[name] = "up"
	}
	return respond(c, http.StatusOK, "Craftopia API is running", resp)
}

// Endpoints godoc
// @Summary List API endpoints
// @Tags system
// @Produce json
// @Success 200 {object} Envelope
// @Router / [get]
func (h *HealthHandler) Endpoints(c echo.Context) error {
	return respond(c, http.StatusOK, "Craftopia API", map[string]interface{}{
		"version": "1.0.0",
		"endpoints": map[string]string{
			"auth":       "/api/auth",
			"users":      "/api/users",
			"categories": "/api/categories",
			"decors":     "/api/decors",
			"health":     "/health",
			"docs":       "/swagger/index.html",
			"metrics":    "/metrics",
		},
	})
}
