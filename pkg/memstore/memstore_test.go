package memstore

import (
	"context"
	"testing"

	"github.com/pershin-daniil/EventRegistry/pkg/models"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.GetEvent(ctx, "a")
	require.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, s.PutEvent(ctx, models.Event{ID: "a", OwnerID: "u1", Title: "A", Participants: []string{}}))
	require.NoError(t, s.PutEvent(ctx, models.Event{ID: "b", OwnerID: "u2", Title: "B", Participants: []string{"u1"}}))
	require.NoError(t, s.PutEvent(ctx, models.Event{ID: "c", OwnerID: "u2", Title: "C", Participants: []string{}}))
	// replacing keeps the original position
	require.NoError(t, s.PutEvent(ctx, models.Event{ID: "a", OwnerID: "u1", Title: "A2", Participants: []string{"u3"}}))

	events, err := s.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, "A2", events[0].Title)
	require.Equal(t, "b", events[1].ID)
	require.Equal(t, "c", events[2].ID)

	events, err = s.ListEventsByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "a", events[0].ID)
	require.Equal(t, "b", events[1].ID)

	events, err = s.ListEventsByUser(ctx, "u3")
	require.NoError(t, err)
	require.Len(t, events, 1)

	events, err = s.ListEventsByUser(ctx, "nobody")
	require.NoError(t, err)
	require.NotNil(t, events)
	require.Empty(t, events)

	require.Error(t, s.PutEvent(ctx, models.Event{}))
}

func TestStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	participants := []string{"u1"}
	require.NoError(t, s.PutEvent(ctx, models.Event{ID: "a", Participants: participants, Metadata: map[string]string{"k": "v"}}))
	participants[0] = "changed"

	event, err := s.GetEvent(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, []string{"u1"}, event.Participants)

	event.Participants = append(event.Participants, "u2")
	event.Metadata["k"] = "changed"

	again, err := s.GetEvent(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, []string{"u1"}, again.Participants)
	require.Equal(t, "v", again.Metadata["k"])
}
