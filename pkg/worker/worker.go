package worker

import (
	"context"
	"fmt"

	"github.com/pershin-daniil/EventRegistry/pkg/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type Registry interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
}

type Notifier interface {
	Notify(ctx context.Context, message string, userID string) error
}

// Worker periodically sends every owner of an open event a digest with its participant count.
type Worker struct {
	log      *logrus.Entry
	registry Registry
	notifier Notifier
	schedule string
}

func New(log *logrus.Logger, registry Registry, notifier Notifier, schedule string) *Worker {
	return &Worker{
		log:      log.WithField("component", "worker"),
		registry: registry,
		notifier: notifier,
		schedule: schedule,
	}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(w.schedule, func() {
		if err := w.SendDigest(ctx); err != nil {
			w.log.Warnf("err during digest: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("worker schedule %q: %w", w.schedule, err)
	}
	w.log.Infof("digest scheduled at %q", w.schedule)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func (w *Worker) SendDigest(ctx context.Context) error {
	events, err := w.registry.ListEvents(ctx)
	if err != nil {
		return fmt.Errorf("worker send digest failed: %w", err)
	}
	var sent, failed int
	for _, event := range events {
		if event.Status != models.StatusOpen || event.OwnerID == "" {
			continue
		}
		msg := fmt.Sprintf("event %q has %d participant(s)", event.Title, len(event.Participants))
		if err := w.notifier.Notify(ctx, msg, event.OwnerID); err != nil {
			w.log.Warnf("err notifying %s about event %s: %v", event.OwnerID, event.ID, err)
			failed++
			continue
		}
		sent++
	}
	w.log.Debugf("digest sent for %d event(s)", sent)
	if failed > 0 {
		return fmt.Errorf("worker send digest: %d of %d notification(s) failed", failed, sent+failed)
	}
	return nil
}
