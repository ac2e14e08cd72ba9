package models

import "time"

type Status string

const (
	StatusOpen      Status = `open`
	StatusConfirmed Status = `confirmed`
	StatusCancelled Status = `cancelled`
)

type EventRequest struct {
	OwnerID     string            `json:"ownerId" validate:"max=128"`
	Title       string            `json:"title" validate:"required,max=200"`
	Description string            `json:"description" validate:"max=2000"`
	Location    string            `json:"location" validate:"max=200"`
	Metadata    map[string]string `json:"metadata" validate:"max=50,dive,keys,max=64,endkeys,max=500"`
	StartsAt    *time.Time        `json:"startsAt"`
	EndsAt      *time.Time        `json:"endsAt"`
}

type Event struct {
	ID           string            `json:"id" db:"id"`
	OwnerID      string            `json:"ownerId" db:"owner_id"`
	Title        string            `json:"title" db:"title"`
	Description  string            `json:"description,omitempty" db:"description"`
	Location     string            `json:"location,omitempty" db:"location"`
	Metadata     map[string]string `json:"metadata,omitempty" db:"-"`
	StartsAt     *time.Time        `json:"startsAt,omitempty" db:"starts_at"`
	EndsAt       *time.Time        `json:"endsAt,omitempty" db:"ends_at"`
	Status       Status            `json:"status" db:"status"`
	Participants []string          `json:"participants" db:"-"`
	CreatedAt    time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time         `json:"updatedAt" db:"updated_at"`
}

// HasParticipant reports whether userID already joined the event.
func (e Event) HasParticipant(userID string) bool {
	for _, p := range e.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Involves reports whether userID owns or joined the event.
func (e Event) Involves(userID string) bool {
	return e.OwnerID == userID || e.HasParticipant(userID)
}

// Clone returns a copy that shares no slices or maps with e.
func (e Event) Clone() Event {
	c := e
	c.Participants = append(make([]string, 0, len(e.Participants)), e.Participants...)
	if e.Metadata != nil {
		c.Metadata = make(map[string]string, len(e.Metadata))
		for k, v := range e.Metadata {
			c.Metadata[k] = v
		}
	}
	if e.StartsAt != nil {
		t := *e.StartsAt
		c.StartsAt = &t
	}
	if e.EndsAt != nil {
		t := *e.EndsAt
		c.EndsAt = &t
	}
	return c
}

type JoinRequest struct {
	UserID string `json:"userId"`
}

type EventsResponse struct {
	Events []Event `json:"events"`
}
