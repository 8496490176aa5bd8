package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthHandler reports process and store health.
type HealthHandler struct {
	client *mongo.Client
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(client *mongo.Client) *HealthHandler {
	return &HealthHandler{client: client}
}

// RegisterHealthRoutes registers the health endpoint.
func (h *HealthHandler) RegisterHealthRoutes(g *echo.Group) {
	g.GET("/health", h.Health)
}

// Health pings the store and reports status.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	database := "ok"
	code := http.StatusOK
	if h.client == nil || h.client.Ping(ctx, nil) != nil {
		status = "degraded"
		database = "unreachable"
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]string{"status": status, "database": database})
}
