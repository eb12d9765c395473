// Package ingest serves the small HTTP API third party tools use to add tasks
// to a user's planner with a bearer API key.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tableflip.dev/newday/pkg/remote"
)

// DefaultOrigins are the browser origins allowed to call the API.
var DefaultOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

// Options configure a Server.
type Options struct {
	// Origins allowed by CORS. Requests without an Origin header are always
	// served.
	Origins []string
	Logger  *slog.Logger
	// Now is the clock; time.Now when nil.
	Now func() time.Time
}

// Server is the ingestion API. Handlers write straight to the remote store;
// connected clients pick the new documents up through their subscriptions.
type Server struct {
	store   remote.Store
	router  *gin.Engine
	origins map[string]struct{}
	log     *slog.Logger
	now     func() time.Time
}

// NewServer builds the router.
func NewServer(store remote.Store, opts Options) *Server {
	s := &Server{
		store:   store,
		router:  gin.New(),
		origins: make(map[string]struct{}),
		log:     opts.Logger,
		now:     opts.Now,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	origins := opts.Origins
	if origins == nil {
		origins = DefaultOrigins
	}
	for _, o := range origins {
		s.origins[o] = struct{}{}
	}

	s.router.Use(gin.Recovery(), s.logRequests())

	// Method checks live in the handlers so unsupported methods get the JSON
	// 405 body instead of gin's plain 404.
	s.router.Any("/addTask", s.cors(http.MethodPost), s.handleAddTask)
	s.router.Any("/listDays", s.cors(http.MethodGet), s.handleListDays)
	return s
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("ingest: listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// cors answers preflight requests and rejects methods other than allowed.
func (s *Server) cors(allowed string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := s.origins[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			}
		}
		c.Header("Access-Control-Allow-Methods", allowed+", OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		switch c.Request.Method {
		case http.MethodOptions:
			c.AbortWithStatus(http.StatusNoContent)
		case allowed:
			c.Next()
		default:
			c.AbortWithStatusJSON(http.StatusMethodNotAllowed, response{Message: "Method not allowed"})
		}
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("ingest: request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
