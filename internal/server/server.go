package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/limaJavier/courseplan/internal/logger"
	"github.com/limaJavier/courseplan/pkg/catalog"
	"github.com/limaJavier/courseplan/pkg/planner"
)

const requestIDKey = "request_id"

// StudentLoader provides stored student states for requests that name a student instead of listing completed courses
type StudentLoader interface {
	LoadStudent(ctx context.Context, id string) (catalog.StudentState, error)
}

type Server struct {
	catalogs *catalog.Store
	students StudentLoader // Optional
	options  planner.Options
	router   *gin.Engine
}

func New(catalogs *catalog.Store, students StudentLoader, options planner.Options) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		catalogs: catalogs,
		students: students,
		options:  options,
		router:   gin.New(),
	}
	server.router.Use(gin.Recovery(), requestID(), requestLogger())

	server.router.GET("/health", server.health)
	api := server.router.Group("/api")
	{
		api.GET("/catalog", server.listCatalog)
		api.POST("/plan", server.plan)
	}
	return server
}

func (server *Server) Handler() http.Handler {
	return server.router
}

// Run serves until ctx is done, then shuts down gracefully
func (server *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("serving")
		errs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdown); err != nil {
			return err
		}
		if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func requestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		ctx.Set(requestIDKey, id)
		ctx.Header("X-Request-ID", id)
		ctx.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		logger.Debug().
			Str(requestIDKey, ctx.GetString(requestIDKey)).
			Str("method", ctx.Request.Method).
			Str("path", ctx.FullPath()).
			Int("status", ctx.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}
