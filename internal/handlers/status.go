package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gemrelay/gemrelay/internal/models"
	"github.com/gemrelay/gemrelay/internal/version"
)

// SessionCounter reports how many sessions are live.
type SessionCounter interface {
	Count() int
}

// StatusHandler reports process status: version, active sessions, and the
// model catalog.
type StatusHandler struct {
	sessions SessionCounter
	catalog  *models.Catalog
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(sessions SessionCounter, catalog *models.Catalog) *StatusHandler {
	return &StatusHandler{sessions: sessions, catalog: catalog}
}

// Register mounts the handler routes.
func (h *StatusHandler) Register(e *echo.Echo) {
	e.GET("/status", h.status)
}

type statusResponse struct {
	Version        string   `json:"version"`
	ActiveSessions int      `json:"active_sessions"`
	DefaultModel   string   `json:"default_model"`
	Models         []string `json:"models"`
}

func (h *StatusHandler) status(c echo.Context) error {
	resp := statusResponse{
		Version:        version.Version,
		ActiveSessions: h.sessions.Count(),
		DefaultModel:   h.catalog.Default(),
	}
	for _, entry := range h.catalog.List() {
		resp.Models = append(resp.Models, entry.ID)
	}
	return c.JSON(http.StatusOK, resp)
}
