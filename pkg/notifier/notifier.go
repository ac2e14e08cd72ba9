package notifier

import (
	"context"

	"github.com/sirupsen/logrus"
)

type Notifier interface {
	Notify(ctx context.Context, message string, userID string) error
}

// Logger only writes notifications to the log.
type Logger struct {
	log *logrus.Entry
}

func New(log *logrus.Logger) *Logger {
	return &Logger{
		log: log.WithField("component", "notifier"),
	}
}

func (n *Logger) Notify(_ context.Context, message string, userID string) error {
	n.log.Infof("notifying user %s: %s", userID, message)
	return nil
}

// Multi fans a notification out to several notifiers and returns the first error.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, message string, userID string) error {
	var first error
	for _, n := range m {
		if err := n.Notify(ctx, message, userID); err != nil && first == nil {
			first = err
		}
	}
	return first
}
