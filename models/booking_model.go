package models

import (
	"fmt"
	"time"

	"github.com/azmhq/mentor_platform/apperrors"
	"github.com/google/uuid"
)

// Booking statuses. completed, cancelled and no_show are terminal.
const (
	BookingScheduled   = "scheduled"
	BookingConfirmed   = "confirmed"
	BookingInProgress  = "in_progress"
	BookingCompleted   = "completed"
	BookingCancelled   = "cancelled"
	BookingNoShow      = "no_show"
	BookingRescheduled = "rescheduled"
)

const (
	// CancellationWindow is how far ahead of the scheduled start a booking
	// can still be cancelled or rescheduled.
	CancellationWindow = 24 * time.Hour
	// StartWindow bounds how far from the scheduled start a session may be
	// started, in either direction.
	StartWindow = 15 * time.Minute
)

type Feedback struct {
	Rating       *int       `json:"rating,omitempty"`
	Review       *string    `gorm:"type:text" json:"review,omitempty"`
	Satisfaction *int       `json:"satisfaction,omitempty"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
}

type Cancellation struct {
	CancelledBy  *uuid.UUID `gorm:"type:uuid" json:"cancelled_by,omitempty"`
	Reason       *string    `gorm:"type:text" json:"reason,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	RefundAmount *float64   `gorm:"type:numeric(10,2)" json:"refund_amount,omitempty"`
	RefundStatus *string    `gorm:"size:20" json:"refund_status,omitempty"`
}

type Rescheduling struct {
	OriginalDate  *time.Time `json:"original_date,omitempty"`
	RescheduledBy *uuid.UUID `gorm:"type:uuid" json:"rescheduled_by,omitempty"`
	Reason        *string    `gorm:"type:text" json:"reason,omitempty"`
	RescheduledAt *time.Time `json:"rescheduled_at,omitempty"`
}

type Booking struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	StudentID uuid.UUID `gorm:"not null;index:idx_bookings_student_date" json:"student_id"`
	MentorID  uuid.UUID `gorm:"not null;index:idx_bookings_mentor_date" json:"mentor_id"`

	SessionType string `gorm:"size:50;not null" json:"session_type"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"size:1000" json:"description"`

	ScheduledDate time.Time `gorm:"not null;index:idx_bookings_student_date;index:idx_bookings_mentor_date" json:"scheduled_date"`
	Duration      int       `gorm:"not null;default:60" json:"duration"`
	Timezone      string    `gorm:"size:64;not null" json:"timezone"`

	HourlyRate  float64 `gorm:"type:numeric(10,2);not null" json:"hourly_rate"`
	TotalAmount float64 `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	Currency    string  `gorm:"size:3;default:'USD'" json:"currency"`

	PaymentStatus string  `gorm:"size:20;default:'pending'" json:"payment_status"`
	PaymentMethod *string `gorm:"size:20" json:"payment_method,omitempty"`

	Status string `gorm:"size:20;not null;default:'scheduled';index" json:"status"`

	MeetingURL *string `gorm:"size:255" json:"meeting_url,omitempty"`
	MeetingID  *string `gorm:"size:32" json:"meeting_id,omitempty"`

	SessionNotes *string `gorm:"size:5000" json:"session_notes,omitempty"`

	StudentFeedback Feedback `gorm:"embedded;embeddedPrefix:student_feedback_" json:"student_feedback"`
	MentorFeedback  Feedback `gorm:"embedded;embeddedPrefix:mentor_feedback_" json:"mentor_feedback"`

	Cancellation Cancellation `gorm:"embedded;embeddedPrefix:cancellation_" json:"cancellation"`
	Rescheduling Rescheduling `gorm:"embedded;embeddedPrefix:rescheduling_" json:"rescheduling"`

	Reminder24hSent bool `gorm:"default:false" json:"-"`
	Reminder1hSent  bool `gorm:"default:false" json:"-"`
	Reminder15mSent bool `gorm:"default:false" json:"-"`

	Student User `gorm:"foreignkey:StudentID" json:"student,omitempty"`
	Mentor  User `gorm:"foreignkey:MentorID" json:"mentor,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidDurations are the session lengths the platform sells, in minutes.
var ValidDurations = []int{30, 45, 60, 90, 120}

func IsValidDuration(minutes int) bool {
	for _, d := range ValidDurations {
		if d == minutes {
			return true
		}
	}
	return false
}

// TotalAmountFor prices a session: hourly rate prorated over the duration.
func TotalAmountFor(hourlyRate float64, durationMinutes int) float64 {
	return hourlyRate * float64(durationMinutes) / 60
}

func (b *Booking) IsParticipant(userID uuid.UUID) bool {
	return b.StudentID == userID || b.MentorID == userID
}

// CounterpartOf returns the other participant relative to userID.
func (b *Booking) CounterpartOf(userID uuid.UUID) uuid.UUID {
	if b.StudentID == userID {
		return b.MentorID
	}
	return b.StudentID
}

func (b *Booking) IsTerminal() bool {
	return b.Status == BookingCompleted || b.Status == BookingCancelled || b.Status == BookingNoShow
}

func (b *Booking) EndTime() time.Time {
	return b.ScheduledDate.Add(time.Duration(b.Duration) * time.Minute)
}

// Confirm moves a booking to confirmed. Only the mentor may confirm, and it
// assigns the meeting coordinates on first confirmation.
func (b *Booking) Confirm(actingUser uuid.UUID) error {
	if actingUser != b.MentorID {
		return fmt.Errorf("%w: only the mentor can confirm a booking", apperrors.ErrForbidden)
	}
	if b.IsTerminal() || b.Status == BookingInProgress {
		return fmt.Errorf("%w: booking is %s", apperrors.ErrInvalidState, b.Status)
	}
	b.Status = BookingConfirmed
	return nil
}

// Cancel records a cancellation by either participant. Bookings can only be
// cancelled while the 24-hour window is still open, and cancellation is a
// status change, never a removal. When payment already completed, a pending
// refund for the full amount is recorded for the payment collaborator.
func (b *Booking) Cancel(actingUser uuid.UUID, reason string, now time.Time) error {
	if !b.IsParticipant(actingUser) {
		return fmt.Errorf("%w: not a participant on this booking", apperrors.ErrForbidden)
	}
	if b.IsTerminal() {
		return fmt.Errorf("%w: booking is already %s", apperrors.ErrInvalidState, b.Status)
	}
	if b.ScheduledDate.Sub(now) < CancellationWindow {
		return fmt.Errorf("%w: bookings can only be cancelled at least 24 hours before the scheduled time", apperrors.ErrTooLate)
	}

	b.Status = BookingCancelled
	actor := actingUser
	b.Cancellation.CancelledBy = &actor
	b.Cancellation.Reason = &reason
	cancelledAt := now
	b.Cancellation.CancelledAt = &cancelledAt

	if b.PaymentStatus == "completed" {
		amount := b.TotalAmount
		status := "pending"
		b.Cancellation.RefundAmount = &amount
		b.Cancellation.RefundStatus = &status
	}
	return nil
}

// Reschedule preserves the current date in the rescheduling record and moves
// the booking to newDate. The 24-hour guard applies against the current
// scheduled date. Status is left untouched; the mentor re-confirms separately.
func (b *Booking) Reschedule(actingUser uuid.UUID, newDate time.Time, reason string, now time.Time) error {
	if !b.IsParticipant(actingUser) {
		return fmt.Errorf("%w: not a participant on this booking", apperrors.ErrForbidden)
	}
	if b.IsTerminal() {
		return fmt.Errorf("%w: booking is already %s", apperrors.ErrInvalidState, b.Status)
	}
	if b.ScheduledDate.Sub(now) < CancellationWindow {
		return fmt.Errorf("%w: bookings can only be rescheduled at least 24 hours before the scheduled time", apperrors.ErrTooLate)
	}

	original := b.ScheduledDate
	actor := actingUser
	rescheduledAt := now
	b.Rescheduling = Rescheduling{
		OriginalDate:  &original,
		RescheduledBy: &actor,
		Reason:        &reason,
		RescheduledAt: &rescheduledAt,
	}
	b.ScheduledDate = newDate
	b.Reminder24hSent = false
	b.Reminder1hSent = false
	b.Reminder15mSent = false
	return nil
}

// StartSession moves a booking to in_progress. Either participant may start,
// but only within 15 minutes of the scheduled time on either side.
func (b *Booking) StartSession(actingUser uuid.UUID, now time.Time) error {
	if !b.IsParticipant(actingUser) {
		return fmt.Errorf("%w: not a participant on this booking", apperrors.ErrForbidden)
	}
	if b.IsTerminal() {
		return fmt.Errorf("%w: booking is %s", apperrors.ErrInvalidState, b.Status)
	}
	diff := now.Sub(b.ScheduledDate)
	if diff < -StartWindow {
		return fmt.Errorf("%w: session can only be started within 15 minutes of the scheduled time", apperrors.ErrTooEarly)
	}
	if diff > StartWindow {
		return fmt.Errorf("%w: session can only be started within 15 minutes of the scheduled time", apperrors.ErrTooLate)
	}
	b.Status = BookingInProgress
	return nil
}

// EndSession completes an in-progress session.
func (b *Booking) EndSession(actingUser uuid.UUID) error {
	if !b.IsParticipant(actingUser) {
		return fmt.Errorf("%w: not a participant on this booking", apperrors.ErrForbidden)
	}
	if b.Status != BookingInProgress {
		return fmt.Errorf("%w: session is not in progress", apperrors.ErrInvalidState)
	}
	b.Status = BookingCompleted
	return nil
}

// FeedbackRoleOf tells which feedback sub-record actingUser writes to.
func (b *Booking) FeedbackRoleOf(actingUser uuid.UUID) (string, error) {
	switch actingUser {
	case b.StudentID:
		return "student", nil
	case b.MentorID:
		return "mentor", nil
	default:
		return "", fmt.Errorf("%w: not a participant on this booking", apperrors.ErrForbidden)
	}
}

// AddFeedback attaches post-session feedback from one participant. Feedback
// is only accepted on completed bookings.
func (b *Booking) AddFeedback(actingUser uuid.UUID, fb Feedback, now time.Time) (string, error) {
	role, err := b.FeedbackRoleOf(actingUser)
	if err != nil {
		return "", err
	}
	if b.Status != BookingCompleted {
		return "", fmt.Errorf("%w: feedback can only be added to completed sessions", apperrors.ErrInvalidState)
	}
	if fb.Rating != nil && (*fb.Rating < 1 || *fb.Rating > 5) {
		return "", fmt.Errorf("%w: rating must be between 1 and 5", apperrors.ErrValidation)
	}
	submitted := now
	fb.SubmittedAt = &submitted
	if role == "student" {
		b.StudentFeedback = fb
	} else {
		b.MentorFeedback = fb
	}
	return role, nil
}
