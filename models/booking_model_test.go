package models

import (
	"testing"
	"time"

	"github.com/azmhq/mentor_platform/apperrors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBooking(scheduled time.Time) *Booking {
	return &Booking{
		ID:            uuid.New(),
		StudentID:     uuid.New(),
		MentorID:      uuid.New(),
		SessionType:   "video",
		Title:         "System design review",
		ScheduledDate: scheduled,
		Duration:      60,
		Timezone:      "UTC",
		HourlyRate:    100,
		TotalAmount:   100,
		PaymentStatus: "pending",
		Status:        BookingScheduled,
	}
}

func TestTotalAmountFor(t *testing.T) {
	assert.Equal(t, 150.0, TotalAmountFor(100, 90))
	assert.Equal(t, 50.0, TotalAmountFor(100, 30))
	assert.Equal(t, 100.0, TotalAmountFor(100, 60))
	assert.InDelta(t, 56.25, TotalAmountFor(75, 45), 0.001)
}

func TestIsValidDuration(t *testing.T) {
	for _, d := range []int{30, 45, 60, 90, 120} {
		assert.True(t, IsValidDuration(d), "duration %d", d)
	}
	assert.False(t, IsValidDuration(15))
	assert.False(t, IsValidDuration(75))
	assert.False(t, IsValidDuration(0))
}

func TestConfirm(t *testing.T) {
	now := time.Now()
	b := newTestBooking(now.Add(48 * time.Hour))

	err := b.Confirm(b.StudentID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Equal(t, BookingScheduled, b.Status)

	require.NoError(t, b.Confirm(b.MentorID))
	assert.Equal(t, BookingConfirmed, b.Status)
}

func TestConfirmTerminal(t *testing.T) {
	b := newTestBooking(time.Now().Add(48 * time.Hour))
	b.Status = BookingCancelled

	err := b.Confirm(b.MentorID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	assert.Equal(t, BookingCancelled, b.Status)
}

func TestCancelWindow(t *testing.T) {
	now := time.Now()

	tooClose := newTestBooking(now.Add(10 * time.Hour))
	err := tooClose.Cancel(tooClose.StudentID, "conflict", now)
	assert.ErrorIs(t, err, apperrors.ErrTooLate)
	assert.Equal(t, BookingScheduled, tooClose.Status)

	farEnough := newTestBooking(now.Add(30 * time.Hour))
	require.NoError(t, farEnough.Cancel(farEnough.StudentID, "conflict", now))
	assert.Equal(t, BookingCancelled, farEnough.Status)
	require.NotNil(t, farEnough.Cancellation.CancelledBy)
	assert.Equal(t, farEnough.StudentID, *farEnough.Cancellation.CancelledBy)
	require.NotNil(t, farEnough.Cancellation.Reason)
	assert.Equal(t, "conflict", *farEnough.Cancellation.Reason)
	assert.NotNil(t, farEnough.Cancellation.CancelledAt)
}

func TestCancelByOutsider(t *testing.T) {
	now := time.Now()
	b := newTestBooking(now.Add(48 * time.Hour))

	err := b.Cancel(uuid.New(), "nope", now)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Equal(t, BookingScheduled, b.Status)
}

func TestCancelRefundOnlyWhenPaid(t *testing.T) {
	now := time.Now()

	unpaid := newTestBooking(now.Add(48 * time.Hour))
	require.NoError(t, unpaid.Cancel(unpaid.MentorID, "sick", now))
	assert.Nil(t, unpaid.Cancellation.RefundAmount)
	assert.Nil(t, unpaid.Cancellation.RefundStatus)

	paid := newTestBooking(now.Add(48 * time.Hour))
	paid.PaymentStatus = "completed"
	paid.TotalAmount = 150
	require.NoError(t, paid.Cancel(paid.StudentID, "conflict", now))
	require.NotNil(t, paid.Cancellation.RefundAmount)
	assert.Equal(t, 150.0, *paid.Cancellation.RefundAmount)
	require.NotNil(t, paid.Cancellation.RefundStatus)
	assert.Equal(t, "pending", *paid.Cancellation.RefundStatus)
}

func TestCancelTerminalStates(t *testing.T) {
	now := time.Now()
	for _, status := range []string{BookingCompleted, BookingCancelled, BookingNoShow} {
		b := newTestBooking(now.Add(48 * time.Hour))
		b.Status = status
		err := b.Cancel(b.StudentID, "too late", now)
		assert.ErrorIs(t, err, apperrors.ErrInvalidState, "status %s", status)
		assert.Equal(t, status, b.Status)
	}
}

func TestReschedule(t *testing.T) {
	now := time.Now()
	original := now.Add(48 * time.Hour)
	b := newTestBooking(original)
	b.Status = BookingConfirmed
	b.Reminder24hSent = true
	b.Reminder1hSent = true

	newDate := now.Add(72 * time.Hour)
	require.NoError(t, b.Reschedule(b.StudentID, newDate, "travel", now))

	assert.Equal(t, newDate, b.ScheduledDate)
	require.NotNil(t, b.Rescheduling.OriginalDate)
	assert.Equal(t, original, *b.Rescheduling.OriginalDate)
	require.NotNil(t, b.Rescheduling.RescheduledBy)
	assert.Equal(t, b.StudentID, *b.Rescheduling.RescheduledBy)
	assert.Equal(t, BookingConfirmed, b.Status)
	assert.False(t, b.Reminder24hSent)
	assert.False(t, b.Reminder1hSent)
	assert.False(t, b.Reminder15mSent)
}

func TestRescheduleWindow(t *testing.T) {
	now := time.Now()
	b := newTestBooking(now.Add(10 * time.Hour))

	err := b.Reschedule(b.MentorID, now.Add(72*time.Hour), "conflict", now)
	assert.ErrorIs(t, err, apperrors.ErrTooLate)
	assert.Nil(t, b.Rescheduling.OriginalDate)
}

func TestStartSessionWindow(t *testing.T) {
	scheduled := time.Now()
	cases := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{"20 minutes early", scheduled.Add(-20 * time.Minute), apperrors.ErrTooEarly},
		{"15 minutes early", scheduled.Add(-15 * time.Minute), nil},
		{"on time", scheduled, nil},
		{"15 minutes late", scheduled.Add(15 * time.Minute), nil},
		{"20 minutes late", scheduled.Add(20 * time.Minute), apperrors.ErrTooLate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newTestBooking(scheduled)
			b.Status = BookingConfirmed
			err := b.StartSession(b.MentorID, tc.now)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, BookingConfirmed, b.Status)
			} else {
				require.NoError(t, err)
				assert.Equal(t, BookingInProgress, b.Status)
			}
		})
	}
}

func TestEndSessionRequiresInProgress(t *testing.T) {
	b := newTestBooking(time.Now())
	b.Status = BookingConfirmed

	err := b.EndSession(b.MentorID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	b.Status = BookingInProgress
	require.NoError(t, b.EndSession(b.MentorID))
	assert.Equal(t, BookingCompleted, b.Status)
}

func TestAddFeedback(t *testing.T) {
	now := time.Now()
	b := newTestBooking(now.Add(-2 * time.Hour))
	b.Status = BookingCompleted

	rating := 5
	review := "Super helpful"
	role, err := b.AddFeedback(b.StudentID, Feedback{Rating: &rating, Review: &review}, now)
	require.NoError(t, err)
	assert.Equal(t, "student", role)
	require.NotNil(t, b.StudentFeedback.Rating)
	assert.Equal(t, 5, *b.StudentFeedback.Rating)
	assert.NotNil(t, b.StudentFeedback.SubmittedAt)
	assert.Nil(t, b.MentorFeedback.Rating)

	role, err = b.AddFeedback(b.MentorID, Feedback{Rating: &rating}, now)
	require.NoError(t, err)
	assert.Equal(t, "mentor", role)
	require.NotNil(t, b.MentorFeedback.Rating)
}

func TestAddFeedbackGuards(t *testing.T) {
	now := time.Now()

	b := newTestBooking(now.Add(-2 * time.Hour))
	b.Status = BookingConfirmed
	rating := 4
	_, err := b.AddFeedback(b.StudentID, Feedback{Rating: &rating}, now)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	b.Status = BookingCompleted
	bad := 6
	_, err = b.AddFeedback(b.StudentID, Feedback{Rating: &bad}, now)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = b.AddFeedback(uuid.New(), Feedback{Rating: &rating}, now)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestCounterpartOf(t *testing.T) {
	b := newTestBooking(time.Now())
	assert.Equal(t, b.MentorID, b.CounterpartOf(b.StudentID))
	assert.Equal(t, b.StudentID, b.CounterpartOf(b.MentorID))
}

func TestEndTime(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	b := newTestBooking(start)
	b.Duration = 90
	assert.Equal(t, start.Add(90*time.Minute), b.EndTime())
}
