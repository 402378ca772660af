// Package api is the HTTP presentation layer in front of the simulation
// engine.
//
// The engine knows nothing of HTTP: this package constructs a Scenario
// from user input, invokes the engine's single run operation, serializes
// the immutable RunResult, and maps the engine's typed failures onto
// status/message pairs. Persistence of completed runs is optional and
// lives entirely on this side of the engine boundary.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcrsim/worldsim/internal/sim"
	"github.com/gcrsim/worldsim/internal/store"
)

// Server wires the engine and optional run store into a gin router.
type Server struct {
	engine *sim.Engine
	store  *store.Store // nil when persistence is not configured
	router *gin.Engine
}

// NewServer builds the HTTP layer. st may be nil, which disables the
// stored-run endpoints' persistence side.
func NewServer(engine *sim.Engine, st *store.Store) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	s := &Server{engine: engine, store: st, router: router}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "model_version": engine.ModelVersion()})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/run", s.handleRun)
		v1.GET("/dashboard", s.handleDashboard)
		v1.GET("/runs", s.handleListRuns)
		v1.GET("/runs/:id", s.handleGetRun)
	}

	return s
}

// Handler returns the router as an http.Handler. Callers own the
// http.Server around it; the CLI serve command wraps it for graceful
// shutdown, and tests drive it through httptest.
func (s *Server) Handler() http.Handler { return s.router }
