package models

import (
	"testing"
	"time"

	"github.com/azmhq/mentor_platform/apperrors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEvent(date time.Time) *Event {
	return &Event{
		ID:           uuid.New(),
		Title:        "Startup Pitch Workshop",
		Description:  "Perfect your pitch.",
		Category:     "workshop",
		Format:       "offline",
		Date:         date,
		StartTime:    "10:00",
		EndTime:      "14:00",
		OrganizerID:  uuid.New(),
		MaxAttendees: 30,
		Price:        75,
		Status:       EventPublished,
		IsPublic:     true,
		IsActive:     true,
	}
}

func TestRegistrationOpen(t *testing.T) {
	now := time.Now()

	open := newTestEvent(now.Add(72 * time.Hour))
	require.NoError(t, open.RegistrationOpen(now))

	draft := newTestEvent(now.Add(72 * time.Hour))
	draft.Status = EventDraft
	assert.ErrorIs(t, draft.RegistrationOpen(now), apperrors.ErrInvalidState)

	cancelled := newTestEvent(now.Add(72 * time.Hour))
	cancelled.Status = EventCancelled
	assert.ErrorIs(t, cancelled.RegistrationOpen(now), apperrors.ErrInvalidState)

	inactive := newTestEvent(now.Add(72 * time.Hour))
	inactive.IsActive = false
	assert.ErrorIs(t, inactive.RegistrationOpen(now), apperrors.ErrInvalidState)

	past := newTestEvent(now.Add(-time.Hour))
	assert.ErrorIs(t, past.RegistrationOpen(now), apperrors.ErrTooLate)
}

func TestHasCapacity(t *testing.T) {
	e := newTestEvent(time.Now().Add(72 * time.Hour))
	e.MaxAttendees = 2

	assert.True(t, e.HasCapacity(0))
	assert.True(t, e.HasCapacity(1))
	assert.False(t, e.HasCapacity(2))
	assert.False(t, e.HasCapacity(3))
}
