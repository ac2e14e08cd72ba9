package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pershin-daniil/EventRegistry/pkg/metrics"
	"github.com/pershin-daniil/EventRegistry/pkg/models"
)

const driver = "memory"

// Store keeps events in process memory in insertion order.
type Store struct {
	mu     sync.RWMutex
	order  []string
	events map[string]models.Event
}

func New() *Store {
	return &Store{
		events: make(map[string]models.Event),
	}
}

func (s *Store) GetEvent(_ context.Context, id string) (event models.Event, err error) {
	defer metrics.ObserveStore(driver, "GetEvent", time.Now(), &err)
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return models.Event{}, models.ErrNotFound
	}
	return e.Clone(), nil
}

func (s *Store) PutEvent(_ context.Context, event models.Event) (err error) {
	defer metrics.ObserveStore(driver, "PutEvent", time.Now(), &err)
	if event.ID == "" {
		return fmt.Errorf("event id is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[event.ID]; !ok {
		s.order = append(s.order, event.ID)
	}
	s.events[event.ID] = event.Clone()
	return nil
}

func (s *Store) ListEvents(_ context.Context) (events []models.Event, err error) {
	defer metrics.ObserveStore(driver, "ListEvents", time.Now(), &err)
	return s.filter(func(models.Event) bool { return true }), nil
}

func (s *Store) ListEventsByUser(_ context.Context, userID string) (events []models.Event, err error) {
	defer metrics.ObserveStore(driver, "ListEventsByUser", time.Now(), &err)
	return s.filter(func(e models.Event) bool { return e.Involves(userID) }), nil
}

func (s *Store) filter(keep func(models.Event) bool) []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]models.Event, 0, len(s.order))
	for _, id := range s.order {
		if e := s.events[id]; keep(e) {
			result = append(result, e.Clone())
		}
	}
	return result
}
