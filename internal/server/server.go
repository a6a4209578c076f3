// Package server hosts the HTTP status endpoints.
package server

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/gemrelay/gemrelay/internal/handlers"
)

// Server is the thin HTTP surface next to the bot: liveness and status only.
type Server struct {
	echo *echo.Echo
	addr string
}

// NewServer builds the echo server and mounts the handlers.
func NewServer(addr string, pingHandler *handlers.PingHandler, statusHandler *handlers.StatusHandler) *Server {
	if addr == "" {
		addr = ":8080"
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	if pingHandler != nil {
		pingHandler.Register(e)
	}
	if statusHandler != nil {
		statusHandler.Register(e)
	}

	return &Server{
		echo: e,
		addr: addr,
	}
}

// Start serves until Shutdown.
func (s *Server) Start() error {
	return s.echo.Start(s.addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
