// Package web serves the to-do store over HTTP(S).
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"nztodo/internal/logging"
	"nztodo/internal/store"
)

// ShutdownTimeout bounds how long in-flight requests may run after the
// server is asked to stop.
const ShutdownTimeout = 5 * time.Second

// Server is the HTTP front end of a Store.
type Server struct {
	store  *store.Store
	logger *log.Logger
	router *gin.Engine
}

// NewServer creates a server for st. A nil logger discards request logs.
func NewServer(st *store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}

	router := gin.New()
	router.RedirectTrailingSlash = false
	router.Use(gin.Recovery(), logging.Middleware(logger))

	s := &Server{
		store:  st,
		logger: logger,
		router: router,
	}

	s.get("/lists", s.handleListLists)
	router.POST("/lists", s.handleCreateList)
	s.get("/list/:list_id", s.handleGetList)
	s.get("/list/:list_id/task/:task_id", s.handleGetTask)
	router.POST("/list/:list_id/tasks", s.handleCreateTask)
	router.POST("/list/:list_id/task/:task_id/complete", s.handleCompleteTask)

	router.NoRoute(s.handleNoRoute)

	return s
}

// get registers h for GET and HEAD.
func (s *Server) get(path string, h gin.HandlerFunc) {
	s.router.GET(path, h)
	s.router.HEAD(path, h)
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr and serves until ctx is cancelled. TLS is used when
// certFile and keyFile are both set.
func (s *Server) Run(ctx context.Context, addr, certFile, keyFile string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln, certFile, keyFile)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully. It closes ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener, certFile, keyFile string) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	tls := certFile != "" && keyFile != ""
	scheme := "http"
	if tls {
		scheme = "https"
	}
	s.logger.Info("listening", "addr", ln.Addr().String(), "scheme", scheme)

	errCh := make(chan error, 1)
	go func() {
		if tls {
			errCh <- srv.ServeTLS(ln, certFile, keyFile)
		} else {
			errCh <- srv.Serve(ln)
		}
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
