package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pershin-daniil/EventRegistry/pkg/metrics"
	"github.com/pershin-daniil/EventRegistry/pkg/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	driver   = "redis"
	prefix   = "eventregistry:"
	orderKey = prefix + "events"
	seqKey   = prefix + "seq"
)

// Store keeps every event as a JSON value. Insertion order lives in a sorted set,
// and each user has a set with the ids of events they own or joined.
type Store struct {
	log    *logrus.Entry
	client *redis.Client
}

func New(log *logrus.Logger, client *redis.Client) *Store {
	return &Store{
		log:    log.WithField("component", "redisstore"),
		client: client,
	}
}

func (s *Store) GetEvent(ctx context.Context, id string) (event models.Event, err error) {
	defer metrics.ObserveStore(driver, "GetEvent", time.Now(), &err)
	data, err := s.client.Get(ctx, eventKey(id)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return models.Event{}, models.ErrNotFound
	case err != nil:
		return models.Event{}, fmt.Errorf("err getting event %s: %w", id, err)
	}
	if err = json.Unmarshal(data, &event); err != nil {
		return models.Event{}, fmt.Errorf("err decoding event %s: %w", id, err)
	}
	return normalize(event), nil
}

func (s *Store) PutEvent(ctx context.Context, event models.Event) (err error) {
	defer metrics.ObserveStore(driver, "PutEvent", time.Now(), &err)
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("err encoding event %s: %w", event.ID, err)
	}
	seq, err := s.client.Incr(ctx, seqKey).Result()
	if err != nil {
		return fmt.Errorf("err allocating sequence: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, eventKey(event.ID), data, 0)
	pipe.ZAddNX(ctx, orderKey, redis.Z{Score: float64(seq), Member: event.ID})
	if event.OwnerID != "" {
		pipe.SAdd(ctx, userKey(event.OwnerID), event.ID)
	}
	for _, userID := range event.Participants {
		pipe.SAdd(ctx, userKey(userID), event.ID)
	}
	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("err saving event %s: %w", event.ID, err)
	}
	return nil
}

func (s *Store) ListEvents(ctx context.Context) (events []models.Event, err error) {
	defer metrics.ObserveStore(driver, "ListEvents", time.Now(), &err)
	ids, err := s.client.ZRange(ctx, orderKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("err getting event ids: %w", err)
	}
	return s.load(ctx, ids)
}

func (s *Store) ListEventsByUser(ctx context.Context, userID string) (events []models.Event, err error) {
	defer metrics.ObserveStore(driver, "ListEventsByUser", time.Now(), &err)
	members, err := s.client.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("err getting events of user %s: %w", userID, err)
	}
	if len(members) == 0 {
		return []models.Event{}, nil
	}
	own := make(map[string]struct{}, len(members))
	for _, id := range members {
		own[id] = struct{}{}
	}
	ids, err := s.client.ZRange(ctx, orderKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("err getting event ids: %w", err)
	}
	filtered := ids[:0]
	for _, id := range ids {
		if _, ok := own[id]; ok {
			filtered = append(filtered, id)
		}
	}
	return s.load(ctx, filtered)
}

func (s *Store) load(ctx context.Context, ids []string) ([]models.Event, error) {
	events := make([]models.Event, 0, len(ids))
	if len(ids) == 0 {
		return events, nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, eventKey(id))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("err loading events: %w", err)
	}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			s.log.Warnf("event %s is indexed but missing", ids[i])
			continue
		}
		var event models.Event
		if err = json.Unmarshal([]byte(raw), &event); err != nil {
			return nil, fmt.Errorf("err decoding event %s: %w", ids[i], err)
		}
		events = append(events, normalize(event))
	}
	return events, nil
}

func normalize(event models.Event) models.Event {
	if event.Participants == nil {
		event.Participants = []string{}
	}
	return event
}

func eventKey(id string) string {
	return prefix + "event:" + id
}

func userKey(userID string) string {
	return prefix + "user:" + userID
}
