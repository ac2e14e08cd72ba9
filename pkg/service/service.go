package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pershin-daniil/EventRegistry/pkg/metrics"
	"github.com/pershin-daniil/EventRegistry/pkg/models"
	"github.com/sirupsen/logrus"
)

type Notifier interface {
	Notify(ctx context.Context, message string, userID string) error
}

type Store interface {
	GetEvent(ctx context.Context, id string) (models.Event, error)
	PutEvent(ctx context.Context, event models.Event) error
	ListEvents(ctx context.Context) ([]models.Event, error)
	ListEventsByUser(ctx context.Context, userID string) ([]models.Event, error)
}

type Registry struct {
	log      *logrus.Entry
	store    Store
	notifier Notifier
	validate *validator.Validate
	locks    *keyedMutex
	now      func() time.Time
}

func NewRegistry(log *logrus.Logger, store Store, notifier Notifier) *Registry {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	r := Registry{
		log:      log.WithField("component", "service"),
		store:    store,
		notifier: notifier,
		validate: v,
		locks:    newKeyedMutex(),
		now:      utcNow,
	}
	return &r
}

func utcNow() time.Time {
	return time.Now().UTC()
}

func (r *Registry) ListEvents(ctx context.Context) ([]models.Event, error) {
	events, err := r.store.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("err getting events from store: %w", err)
	}
	return events, nil
}

func (r *Registry) CreateEvent(ctx context.Context, req models.EventRequest) (models.Event, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.OwnerID = strings.TrimSpace(req.OwnerID)
	if err := r.validate.Struct(req); err != nil {
		return models.Event{}, fmt.Errorf("%w: %s", models.ErrValidation, validationMessage(err))
	}
	if req.StartsAt != nil && req.EndsAt != nil && req.EndsAt.Before(*req.StartsAt) {
		return models.Event{}, fmt.Errorf("%w: endsAt must not be before startsAt", models.ErrValidation)
	}
	now := r.now()
	event := models.Event{
		ID:           uuid.NewString(),
		OwnerID:      req.OwnerID,
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		Metadata:     req.Metadata,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		Status:       models.StatusOpen,
		Participants: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.store.PutEvent(ctx, event); err != nil {
		return models.Event{}, fmt.Errorf("err creating event: %w", err)
	}
	metrics.RegistryActions.WithLabelValues("create").Inc()
	r.log.Debugf("event %s created by %q", event.ID, event.OwnerID)
	r.notify(ctx, fmt.Sprintf("event %q created", event.Title), event.OwnerID)
	return event, nil
}

func (r *Registry) GetEvent(ctx context.Context, id string) (models.Event, error) {
	event, err := r.store.GetEvent(ctx, id)
	if err != nil {
		return models.Event{}, fmt.Errorf("err getting event (id %s) from store: %w", id, err)
	}
	return event, nil
}

func (r *Registry) JoinEvent(ctx context.Context, id, userID string) (models.Event, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.Event{}, fmt.Errorf("%w: userId is required", models.ErrValidation)
	}
	event, changed, err := r.update(ctx, id, "join", func(event *models.Event) (bool, error) {
		if event.Status != models.StatusOpen {
			return false, fmt.Errorf("%w: event %s is %s", models.ErrInvalidState, id, event.Status)
		}
		if event.HasParticipant(userID) {
			return false, nil
		}
		event.Participants = append(event.Participants, userID)
		return true, nil
	})
	if changed {
		r.notify(ctx, fmt.Sprintf("user %s joined event %q", userID, event.Title), event.OwnerID)
	}
	return event, err
}

func (r *Registry) ListEventsForUser(ctx context.Context, userID string) ([]models.Event, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", models.ErrValidation)
	}
	events, err := r.store.ListEventsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("err getting events of user %s from store: %w", userID, err)
	}
	return events, nil
}

// ConfirmEvent closes an open event for joins. Confirming twice is a no-op.
func (r *Registry) ConfirmEvent(ctx context.Context, id string) (models.Event, error) {
	event, changed, err := r.update(ctx, id, "confirm", func(event *models.Event) (bool, error) {
		switch event.Status {
		case models.StatusConfirmed:
			return false, nil
		case models.StatusCancelled:
			return false, fmt.Errorf("%w: event %s is %s", models.ErrInvalidState, id, event.Status)
		}
		event.Status = models.StatusConfirmed
		return true, nil
	})
	if changed {
		r.notifyAll(ctx, fmt.Sprintf("event %q confirmed", event.Title), event)
	}
	return event, err
}

// CancelEvent is the mirror of ConfirmEvent: only open events can be cancelled.
func (r *Registry) CancelEvent(ctx context.Context, id string) (models.Event, error) {
	event, changed, err := r.update(ctx, id, "cancel", func(event *models.Event) (bool, error) {
		switch event.Status {
		case models.StatusCancelled:
			return false, nil
		case models.StatusConfirmed:
			return false, fmt.Errorf("%w: event %s is %s", models.ErrInvalidState, id, event.Status)
		}
		event.Status = models.StatusCancelled
		return true, nil
	})
	if changed {
		r.notifyAll(ctx, fmt.Sprintf("event %q cancelled", event.Title), event)
	}
	return event, err
}

// update runs mutate under the event lock and stores the event when mutate reports a change.
func (r *Registry) update(ctx context.Context, id, action string, mutate func(event *models.Event) (bool, error)) (models.Event, bool, error) {
	unlock := r.locks.Lock(id)
	defer unlock()

	event, err := r.store.GetEvent(ctx, id)
	if err != nil {
		return models.Event{}, false, fmt.Errorf("err getting event (id %s) from store: %w", id, err)
	}
	changed, err := mutate(&event)
	if err != nil {
		return models.Event{}, false, err
	}
	if !changed {
		return event, false, nil
	}
	event.UpdatedAt = r.now()
	if err = r.store.PutEvent(ctx, event); err != nil {
		return models.Event{}, false, fmt.Errorf("err saving event (id %s): %w", id, err)
	}
	metrics.RegistryActions.WithLabelValues(action).Inc()
	r.log.Debugf("event %s: %s", id, action)
	return event, true, nil
}

func (r *Registry) notify(ctx context.Context, message, userID string) {
	if userID == "" {
		return
	}
	if err := r.notifier.Notify(ctx, message, userID); err != nil {
		r.log.Errorf("err notifying user %s: %v", userID, err)
	}
}

func (r *Registry) notifyAll(ctx context.Context, message string, event models.Event) {
	r.notify(ctx, message, event.OwnerID)
	for _, p := range event.Participants {
		if p != event.OwnerID {
			r.notify(ctx, message, p)
		}
	}
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s is too long (max %s)", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}
