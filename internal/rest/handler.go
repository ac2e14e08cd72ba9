package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pershin-daniil/EventRegistry/pkg/calendar"
	"github.com/pershin-daniil/EventRegistry/pkg/models"
)

const (
	maxBodySize  = 1 << 20
	userIDHeader = "X-User-ID"
)

type App interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	CreateEvent(ctx context.Context, req models.EventRequest) (models.Event, error)
	GetEvent(ctx context.Context, id string) (models.Event, error)
	JoinEvent(ctx context.Context, id, userID string) (models.Event, error)
	ListEventsForUser(ctx context.Context, userID string) ([]models.Event, error)
	ConfirmEvent(ctx context.Context, id string) (models.Event, error)
	CancelEvent(ctx context.Context, id string) (models.Event, error)
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) versionHandler(w http.ResponseWriter, _ *http.Request) {
	_, err := fmt.Fprintf(w, "%s\n", s.version)
	if err != nil {
		s.log.Warnf("err during writing to connection: %v", err)
	}
}

func (s *Server) listEventsHandler(w http.ResponseWriter, r *http.Request) {
	events, err := s.app.ListEvents(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, http.StatusOK, eventsResponse(events))
}

func (s *Server) createEventHandler(w http.ResponseWriter, r *http.Request) {
	var req models.EventRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeResponse(w, http.StatusBadRequest, err)
		return
	}
	if req.OwnerID == "" {
		req.OwnerID = r.Header.Get(userIDHeader)
	}
	event, err := s.app.CreateEvent(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, http.StatusCreated, event)
}

func (s *Server) getEventHandler(w http.ResponseWriter, r *http.Request) {
	event, err := s.app.GetEvent(r.Context(), chi.URLParam(r, "eventId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, http.StatusOK, event)
}

func (s *Server) joinEventHandler(w http.ResponseWriter, r *http.Request) {
	var req models.JoinRequest
	if err := s.decode(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		s.writeResponse(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		req.UserID = r.Header.Get(userIDHeader)
	}
	event, err := s.app.JoinEvent(r.Context(), chi.URLParam(r, "eventId"), req.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, http.StatusOK, event)
}

func (s *Server) userEventsHandler(w http.ResponseWriter, r *http.Request) {
	events, err := s.app.ListEventsForUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, http.StatusOK, eventsResponse(events))
}

func (s *Server) userCalendarHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	events, err := s.app.ListEventsForUser(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err = io.WriteString(w, calendar.Render("Events of "+userID, events)); err != nil {
		s.log.Warnf("err during writing calendar: %v", err)
	}
}

func (s *Server) confirmEventHandler(w http.ResponseWriter, r *http.Request) {
	event, err := s.app.ConfirmEvent(r.Context(), chi.URLParam(r, "eventId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, http.StatusOK, event)
}

func (s *Server) cancelEventHandler(w http.ResponseWriter, r *http.Request) {
	event, err := s.app.CancelEvent(r.Context(), chi.URLParam(r, "eventId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, http.StatusOK, event)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return err
		}
		return fmt.Errorf("err decoding request body: %w", err)
	}
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		s.writeResponse(w, http.StatusBadRequest, err)
	case errors.Is(err, models.ErrNotFound):
		s.writeResponse(w, http.StatusNotFound, err)
	case errors.Is(err, models.ErrInvalidState):
		s.writeResponse(w, http.StatusConflict, err)
	default:
		s.log.Warnf("err during handling request: %v", err)
		s.writeResponse(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) writeResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if x, ok := data.(error); ok {
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: x.Error()}); err != nil {
			s.log.Warnf("err during encoding error: %v", err)
		}
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warnf("err during encoding response: %v", err)
	}
}

func eventsResponse(events []models.Event) models.EventsResponse {
	if events == nil {
		events = []models.Event{}
	}
	return models.EventsResponse{Events: events}
}
