// Package calendar renders events as iCalendar documents.
package calendar

import (
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/pershin-daniil/EventRegistry/pkg/models"
)

const productID = "-//EventRegistry//EN"

// defaultDuration is used for events that have a start but no end.
const defaultDuration = time.Hour

// Render returns an iCalendar document for events. Events without a start time are skipped.
func Render(name string, events []models.Event) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(name)
	for _, e := range events {
		if e.StartsAt == nil {
			continue
		}
		ve := cal.AddEvent(e.ID)
		ve.SetCreatedTime(e.CreatedAt)
		ve.SetDtStampTime(e.UpdatedAt)
		ve.SetModifiedAt(e.UpdatedAt)
		ve.SetStartAt(*e.StartsAt)
		if e.EndsAt != nil {
			ve.SetEndAt(*e.EndsAt)
		} else {
			ve.SetEndAt(e.StartsAt.Add(defaultDuration))
		}
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.Location != "" {
			ve.SetLocation(e.Location)
		}
		ve.SetStatus(status(e.Status))
	}
	return cal.Serialize()
}

func status(s models.Status) ical.ObjectStatus {
	switch s {
	case models.StatusConfirmed:
		return ical.ObjectStatusConfirmed
	case models.StatusCancelled:
		return ical.ObjectStatusCancelled
	default:
		return ical.ObjectStatusTentative
	}
}
