// Package api provides the HTTP shell over the judge evaluation pipeline:
// submission ingest, judge/assignment CRUD, job-materializer trigger,
// evaluation listing, and job-status diagnostics.
package api

import (
	"context"
	"net"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/judgequeue/judgequeue/pkg/database"
	"github.com/judgequeue/judgequeue/pkg/enqueue"
	"github.com/judgequeue/judgequeue/pkg/ingest"
	"github.com/judgequeue/judgequeue/pkg/queue"
	"github.com/judgequeue/judgequeue/pkg/status"
	"github.com/judgequeue/judgequeue/pkg/store"
)

// Server is the HTTP API server.
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server

	dbClient     *database.Client
	store        *store.Store
	ingester     *ingest.Ingester
	materializer *enqueue.Materializer
	reporter     *status.Reporter
	workerPool   *queue.Pool // nil in API-only deployments (role "api"), which run no worker pool

	evaluationsPageLimit int
}

// NewServer wires up the Echo router and registers every route.
func NewServer(dbClient *database.Client, st *store.Store, ingester *ingest.Ingester, materializer *enqueue.Materializer, reporter *status.Reporter, pool *queue.Pool, corsOrigins []string, evaluationsPageLimit int) *Server {
	e := echo.New()

	s := &Server{
		echo:                 e,
		dbClient:             dbClient,
		store:                st,
		ingester:             ingester,
		materializer:         materializer,
		reporter:             reporter,
		workerPool:           pool,
		evaluationsPageLimit: evaluationsPageLimit,
	}

	if len(corsOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: corsOrigins}))
	}
	e.Use(middleware.BodyLimit(2 * 1024 * 1024))

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthHandler)

	s.echo.POST("/submissions", s.uploadSubmissionsHandler)

	s.echo.GET("/judges", s.listJudgesHandler)
	s.echo.POST("/judges", s.createJudgeHandler)
	s.echo.GET("/judges/:id", s.getJudgeHandler)
	s.echo.PUT("/judges/:id", s.updateJudgeHandler)
	s.echo.DELETE("/judges/:id", s.deleteJudgeHandler)

	s.echo.GET("/queue/questions", s.listQuestionsHandler)
	s.echo.GET("/queue/assignments", s.listAssignmentsHandler)
	s.echo.POST("/queue/assignments", s.saveAssignmentsHandler)
	s.echo.POST("/queue/run", s.runQueueHandler)

	s.echo.GET("/evaluations", s.listEvaluationsHandler)

	s.echo.GET("/diagnostics/job_status", s.jobStatusHandler)
	s.echo.GET("/diagnostics/live_job_status", s.liveJobStatusHandler)
	s.echo.GET("/diagnostics/summary", s.summaryHandler)
}

// Start starts the HTTP server on addr (blocking).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.echo}
	return s.httpServer.ListenAndServe()
}

// StartWithListener starts the HTTP server on a pre-created listener, such
// as one bound to a random OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.echo}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) healthHandler(c *echo.Context) error {
	reqCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	dbHealth, err := database.Health(reqCtx, s.dbClient.DB())
	resp := &HealthResponse{Status: "healthy", Database: dbHealth}
	if err != nil {
		resp.Status = "unhealthy"
		if s.workerPool != nil {
			resp.WorkerPool = s.workerPool.Health()
		}
		return c.JSON(http.StatusServiceUnavailable, resp)
	}

	if s.workerPool != nil {
		resp.WorkerPool = s.workerPool.Health()
	}
	return c.JSON(http.StatusOK, resp)
}
