// Package httpapi exposes the tracker to UI collaborators over HTTP.
package httpapi

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"compliance-tracker/internal/repository"
	"compliance-tracker/internal/service"
)

// Server is the HTTP surface over the deadline core.
type Server struct {
	echo        *echo.Echo
	deadlineSvc *service.DeadlineService
	profileRepo *repository.ProfileRepository
}

// NewServer wires routes against the given services.
func NewServer(deadlineSvc *service.DeadlineService, profileRepo *repository.ProfileRepository) *Server {
	s := &Server{
		deadlineSvc: deadlineSvc,
		profileRepo: profileRepo,
	}
	s.setupEcho()
	return s
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			req := c.Request()
			log.Printf("[http] %s %s status=%d duration=%s",
				req.Method, req.RequestURI, c.Response().Status, time.Since(start))
			return err
		}
	})

	e.GET("/health", s.handleHealth)

	api := e.Group("/api/v1")
	api.POST("/session", s.handleSession)
	api.POST("/assist", s.handleAssist)

	api.GET("/deadlines", s.handleList)
	api.POST("/deadlines", s.handleCreate)
	api.GET("/deadlines/calendar", s.handleCalendar)
	api.GET("/deadlines/:id", s.handleGet)
	api.PUT("/deadlines/:id", s.handleUpdate)
	api.DELETE("/deadlines/:id", s.handleDelete)
	api.POST("/deadlines/:id/toggle", s.handleToggle)

	s.echo = e
}

// Start begins serving on addr and blocks until Shutdown.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() *echo.Echo {
	return s.echo
}
