package telegram

import (
	"testing"
	"time"

	"github.com/pershin-daniil/EventRegistry/pkg/models"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

func TestFormatEvents(t *testing.T) {
	require.Equal(t, "No events", formatEvents(nil))

	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	out := formatEvents([]models.Event{
		{ID: "a", Title: "Run", Status: models.StatusOpen, Participants: []string{"u1"}, StartsAt: &start},
		{ID: "b", Title: "Swim", Status: models.StatusConfirmed},
	})
	require.Equal(t, "a [open] Run, 1 participant(s), starts 2024-05-01 10:00 UTC\nb [confirmed] Swim, 0 participant(s)", out)
}

func TestUserID(t *testing.T) {
	require.Equal(t, "tg:42", userID(&tele.User{ID: 42}))
	require.Empty(t, userID(nil))
}
