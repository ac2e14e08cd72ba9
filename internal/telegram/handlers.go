package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pershin-daniil/EventRegistry/pkg/models"
	tele "gopkg.in/telebot.v3"
)

const (
	cmdStart  = "/start"
	cmdEvents = "/events"
	cmdJoin   = "/join"
	cmdMy     = "/my"
)

const helpText = `Event registry bot.
/events - open events
/join <event id> - join an event
/my - events you own or joined`

func (t *Telegram) initHandlers() {
	t.bot.Handle(cmdStart, t.startHandler)
	t.bot.Handle(cmdEvents, t.eventsHandler)
	t.bot.Handle(&openEventsBtn, t.eventsHandler)
	t.bot.Handle(cmdJoin, t.joinHandler)
	t.bot.Handle(cmdMy, t.myEventsHandler)
	t.bot.Handle(&myEventsBtn, t.myEventsHandler)
}

func (t *Telegram) startHandler(c tele.Context) error {
	return c.Send(helpText, menu)
}

func (t *Telegram) eventsHandler(c tele.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	events, err := t.app.ListEvents(ctx)
	if err != nil {
		t.log.Warnf("err during listing events: %v", err)
		return c.Send("Could not load events, try later")
	}
	open := make([]models.Event, 0, len(events))
	for _, e := range events {
		if e.Status == models.StatusOpen {
			open = append(open, e)
		}
	}
	return c.Send(formatEvents(open))
}

func (t *Telegram) joinHandler(c tele.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Send("Usage: /join <event id>")
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	event, err := t.app.JoinEvent(ctx, args[0], userID(c.Sender()))
	if err != nil {
		return c.Send(err.Error())
	}
	return c.Send(fmt.Sprintf("You joined %q (%d participant(s))", event.Title, len(event.Participants)))
}

func (t *Telegram) myEventsHandler(c tele.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	events, err := t.app.ListEventsForUser(ctx, userID(c.Sender()))
	if err != nil {
		t.log.Warnf("err during listing user events: %v", err)
		return c.Send("Could not load events, try later")
	}
	return c.Send(formatEvents(events))
}

// userID maps a telegram account onto a registry user id.
func userID(u *tele.User) string {
	if u == nil {
		return ""
	}
	return "tg:" + strconv.FormatInt(u.ID, 10)
}

func formatEvents(events []models.Event) string {
	if len(events) == 0 {
		return "No events"
	}
	var b strings.Builder
	for i, e := range events {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s [%s] %s, %d participant(s)", e.ID, e.Status, e.Title, len(e.Participants))
		if e.StartsAt != nil {
			fmt.Fprintf(&b, ", starts %s", e.StartsAt.Format("2006-01-02 15:04 MST"))
		}
	}
	return b.String()
}
