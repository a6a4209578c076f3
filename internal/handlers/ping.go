// Package handlers contains the HTTP status endpoints.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// PingHandler answers liveness probes.
type PingHandler struct{}

// NewPingHandler creates a PingHandler.
func NewPingHandler() *PingHandler {
	return &PingHandler{}
}

// Register mounts the handler routes.
func (h *PingHandler) Register(e *echo.Echo) {
	e.GET("/ping", h.ping)
}

func (h *PingHandler) ping(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "pong"})
}
