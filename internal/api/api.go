// Package api exposes the backlog services over HTTP with echo.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/thenoetrevino/projecthub/internal/services/backlog"
	"github.com/thenoetrevino/projecthub/internal/services/project"
	"github.com/thenoetrevino/projecthub/internal/services/sprint"
)

// Deps are the collaborators the HTTP surface dispatches to.
type Deps struct {
	Backlog  backlog.Service
	Sprints  sprint.Service
	Projects project.Service
	Authn    Authenticator
	Authz    backlog.Authorizer

	// Health is called by /healthz; nil always reports healthy.
	Health func(ctx context.Context) error

	// Hub streams change events; nil disables the events route.
	Hub *Hub

	Logger *slog.Logger
}

// New builds the echo instance with every route registered.
func New(d Deps) *echo.Echo {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(d.Logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
	}))

	Register(e, d)
	return e
}

// Register wires the routes onto e.
func Register(e *echo.Echo, d Deps) {
	h := &handlers{d: d}

	e.GET("/healthz", h.healthz)

	g := e.Group("/api", requireCaller(d.Authn))

	g.GET("/projects", h.listProjects)
	g.POST("/projects", h.createProject)
	g.GET("/projects/:projectID/members", h.listMembers)
	g.POST("/projects/:projectID/members", h.addMember)
	g.GET("/projects/:projectID/sprints", h.listSprints)
	g.POST("/projects/:projectID/sprints", h.createSprint)
	g.GET("/projects/:projectID/summary", h.activeWorkSummary)
	g.GET("/projects/:projectID/backlogs", h.listItems)
	g.POST("/projects/:projectID/backlogs", h.createItem)
	if d.Hub != nil {
		g.GET("/projects/:projectID/events", h.streamEvents)
	}

	g.GET("/sprints/:sprintID", h.getSprint)
	g.PATCH("/sprints/:sprintID", h.editSprint)
	g.POST("/sprints/:sprintID/start", h.startSprint)
	g.POST("/sprints/:sprintID/complete", h.completeSprint)
	g.GET("/sprints/:sprintID/summary", h.sprintSummary)

	g.GET("/backlogs/:itemID", h.getItem)
	g.PATCH("/backlogs/:itemID", h.updateItem)
	g.PUT("/backlogs/:itemID/reorder", h.reorderItem)
	g.DELETE("/backlogs/:itemID", h.deleteItem)
	g.GET("/backlogs/:itemID/activity", h.listActivity)
}

// Run serves e on addr until ctx is cancelled, then shuts down gracefully
// within shutdownTimeout.
func Run(ctx context.Context, e *echo.Echo, addr string, shutdownTimeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("http server shutting down")
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
