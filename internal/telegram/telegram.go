package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/pershin-daniil/EventRegistry/pkg/models"
	"github.com/sirupsen/logrus"
	tele "gopkg.in/telebot.v3"
)

const requestTimeout = 5 * time.Second

type App interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	JoinEvent(ctx context.Context, id, userID string) (models.Event, error)
	ListEventsForUser(ctx context.Context, userID string) ([]models.Event, error)
}

type Telegram struct {
	log *logrus.Entry
	bot *tele.Bot
	app App
}

// Notifier forwards registry notifications to a single chat.
type Notifier struct {
	log  *logrus.Entry
	bot  *tele.Bot
	chat tele.ChatID
}

func NewNotifier(log *logrus.Logger, bot *tele.Bot, chatID int64) *Notifier {
	return &Notifier{
		log:  log.WithField("component", "notifier"),
		bot:  bot,
		chat: tele.ChatID(chatID),
	}
}

func New(log *logrus.Logger, bot *tele.Bot, app App) *Telegram {
	t := Telegram{
		log: log.WithField("component", "telegram"),
		bot: bot,
		app: app,
	}
	t.initButtons()
	t.initHandlers()
	return &t
}

func NewBot(token string) (*tele.Bot, error) {
	config := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(config)
	if err != nil {
		return nil, fmt.Errorf("new bot failed: %w", err)
	}
	return b, nil
}

func (n *Notifier) Notify(_ context.Context, msg string, userID string) error {
	if _, err := n.bot.Send(n.chat, fmt.Sprintf("%s: %s", userID, msg)); err != nil {
		return fmt.Errorf("tg send message failed: %w", err)
	}
	n.log.Debugf("notification for %s sent to chat %d", userID, n.chat)
	return nil
}

func (t *Telegram) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		t.bot.Stop()
	}()
	t.log.Infof("Starting telegram bot as %v", t.bot.Me.Username)
	t.bot.Start()
}
