package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const (
	readHeaderTimeout      = 5 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

type Server struct {
	log             *logrus.Entry
	app             App
	server          *http.Server
	version         string
	shutdownTimeout time.Duration
}

func New(log *logrus.Logger, app App, address, version string) *Server {
	s := Server{
		log:             log.WithField("component", "rest"),
		app:             app,
		version:         version,
		shutdownTimeout: defaultShutdownTimeout,
	}
	s.server = &http.Server{
		Addr:              address,
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return &s
}

func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	if d > 0 {
		s.shutdownTimeout = d
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequest)
	r.Use(s.measure)
	r.Use(middleware.Recoverer)

	r.Get("/version", s.versionHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/events", func(r chi.Router) {
		r.Get("/", s.listEventsHandler)
		r.Post("/", s.createEventHandler)
		r.Get("/{eventId}", s.getEventHandler)
		r.Post("/join/{eventId}", s.joinEventHandler)
		r.Post("/confirm/{eventId}", s.confirmEventHandler)
		r.Post("/cancel/{eventId}", s.cancelEventHandler)
		r.Get("/user/{userId}", s.userEventsHandler)
		r.Get("/user/{userId}/calendar.ics", s.userCalendarHandler)
	})
	return r
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
