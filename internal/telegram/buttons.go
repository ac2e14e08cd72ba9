package telegram

import tele "gopkg.in/telebot.v3"

func (t *Telegram) initButtons() {
	menu.Inline(
		menu.Row(openEventsBtn),
		menu.Row(myEventsBtn))
}

var (
	menu          = &tele.ReplyMarkup{}
	openEventsBtn = menu.Data("Open events", "events")
	myEventsBtn   = menu.Data("My events", "my")
)
