package models

import (
	"fmt"
	"time"

	"github.com/azmhq/mentor_platform/apperrors"
	"github.com/google/uuid"
)

// Event statuses. Drafts are invisible to the public listing; cancelled and
// completed events no longer accept registrations.
const (
	EventDraft     = "draft"
	EventPublished = "published"
	EventCancelled = "cancelled"
	EventCompleted = "completed"
)

// Registration statuses.
const (
	RegistrationActive    = "registered"
	RegistrationCheckedIn = "checked_in"
	RegistrationCancelled = "cancelled"
)

// EventCategories the platform hosts.
var EventCategories = []string{"workshop", "networking", "padel", "webinar", "conference", "mentorship"}

type Event struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Category    string    `gorm:"size:20;not null;index" json:"category"`
	Format      string    `gorm:"size:10;not null;default:'offline'" json:"format"`

	Date      time.Time `gorm:"not null;index" json:"date"`
	StartTime string    `gorm:"size:5;not null" json:"start_time"`
	EndTime   string    `gorm:"size:5;not null" json:"end_time"`

	Venue   string `gorm:"size:255" json:"venue"`
	Address string `gorm:"size:255" json:"address"`
	City    string `gorm:"size:100" json:"city"`
	Country string `gorm:"size:100" json:"country"`

	MeetingURL *string `gorm:"size:512" json:"meeting_url,omitempty"`

	OrganizerID  uuid.UUID `gorm:"not null" json:"organizer_id"`
	MaxAttendees int       `gorm:"not null" json:"max_attendees"`

	Price    float64 `gorm:"type:numeric(10,2);default:0" json:"price"`
	Currency string  `gorm:"size:3;default:'USD'" json:"currency"`

	ImageURL *string `gorm:"size:512" json:"image_url,omitempty"`

	IsPublic   bool `gorm:"default:true" json:"is_public"`
	IsActive   bool `gorm:"default:true" json:"is_active"`
	IsFeatured bool `gorm:"default:false" json:"is_featured"`

	Status string `gorm:"size:20;not null;default:'draft';index" json:"status"`

	Organizer User `gorm:"foreignkey:OrganizerID" json:"organizer,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type EventRegistration struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	EventID uuid.UUID `gorm:"not null;uniqueIndex:idx_event_registrations_event_user" json:"event_id"`
	UserID  uuid.UUID `gorm:"not null;uniqueIndex:idx_event_registrations_event_user" json:"user_id"`

	Status       string    `gorm:"size:20;not null;default:'registered'" json:"status"`
	RegisteredAt time.Time `json:"registered_at"`

	Event Event `gorm:"foreignkey:EventID" json:"event,omitempty"`
	User  User  `gorm:"foreignkey:UserID" json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// RegistrationOpen tells whether the event currently accepts registrations.
func (e *Event) RegistrationOpen(now time.Time) error {
	if e.Status != EventPublished || !e.IsActive {
		return fmt.Errorf("%w: event registration is closed", apperrors.ErrInvalidState)
	}
	if !e.Date.After(now) {
		return fmt.Errorf("%w: event has already taken place", apperrors.ErrTooLate)
	}
	return nil
}

// HasCapacity checks the attendee cap against the active registration count.
func (e *Event) HasCapacity(activeRegistrations int64) bool {
	return activeRegistrations < int64(e.MaxAttendees)
}
