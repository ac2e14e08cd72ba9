package calendar

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/pershin-daniil/EventRegistry/pkg/models"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	events := []models.Event{
		{ID: "a", Title: "Run", Location: "Park", StartsAt: &start, EndsAt: &end, Status: models.StatusConfirmed, CreatedAt: start, UpdatedAt: start},
		{ID: "b", Title: "No start", Status: models.StatusOpen, CreatedAt: start, UpdatedAt: start},
		{ID: "c", Title: "Swim", StartsAt: &start, Status: models.StatusCancelled, CreatedAt: start, UpdatedAt: start},
	}

	cal, err := ical.ParseCalendar(strings.NewReader(Render("Events of u1", events)))
	require.NoError(t, err)
	parsed := cal.Events()
	require.Len(t, parsed, 2)

	require.Equal(t, "a", parsed[0].Id())
	require.Equal(t, "Run", parsed[0].GetProperty(ical.ComponentPropertySummary).Value)
	require.Equal(t, "Park", parsed[0].GetProperty(ical.ComponentPropertyLocation).Value)
	require.Equal(t, string(ical.ObjectStatusConfirmed), parsed[0].GetProperty(ical.ComponentPropertyStatus).Value)
	gotEnd, err := parsed[0].GetEndAt()
	require.NoError(t, err)
	require.True(t, end.Equal(gotEnd))

	require.Equal(t, "c", parsed[1].Id())
	require.Equal(t, string(ical.ObjectStatusCancelled), parsed[1].GetProperty(ical.ComponentPropertyStatus).Value)
	gotEnd, err = parsed[1].GetEndAt()
	require.NoError(t, err)
	require.True(t, start.Add(defaultDuration).Equal(gotEnd))
}

func TestRenderEmpty(t *testing.T) {
	out := Render("empty", nil)
	require.Contains(t, out, "BEGIN:VCALENDAR")
	require.NotContains(t, out, "BEGIN:VEVENT")
}
