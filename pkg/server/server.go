// Package server serves the tab panel over HTTP.
//
// Every browser gets its own session (cookie) and with it its own view and
// canvas. The panel page links each tab to /tabs/{index}; the chart tab shows
// /chart.png, which is the view's latest snapshot. /export downloads all tabs
// as one document.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/tabpanel/pkg/session"
)

// CookieName is the session cookie.
const CookieName = "tabpanel_session"

// DefaultSnapshotWait bounds how long /chart.png waits for a first snapshot.
const DefaultSnapshotWait = 5 * time.Second

// Server is the HTTP panel.
type Server struct {
	store        session.Store
	logger       *log.Logger
	router       *chi.Mux
	title        string
	snapshotWait time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithTitle sets the page title.
func WithTitle(title string) Option {
	return func(s *Server) { s.title = title }
}

// WithSnapshotWait bounds how long /chart.png waits for the chart.
func WithSnapshotWait(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.snapshotWait = d
		}
	}
}

// New creates a server over store. A nil logger uses log.Default().
func New(store session.Store, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		store:        store,
		logger:       logger,
		title:        "Tab Panel",
		snapshotWait: DefaultSnapshotWait,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.withSession)

		r.Get("/", s.handleIndex)
		r.Get("/tabs/{index}", s.handleSelect)
		r.Get("/chart.png", s.handleChart)
		r.Get("/export", s.handleExport)
		r.Post("/export", s.handleExport)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("panel listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("panel shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"id", middleware.GetReqID(r.Context()))
	})
}
