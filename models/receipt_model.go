package models

import (
	"time"

	"github.com/google/uuid"
)

// Receipt records the PDF generated for a completed session.
type Receipt struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BookingID  uuid.UUID `gorm:"not null;unique" json:"booking_id"`
	StudentID  uuid.UUID `gorm:"not null;index" json:"student_id"`
	MentorID   uuid.UUID `gorm:"not null" json:"mentor_id"`
	Amount     float64   `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency   string    `gorm:"size:3" json:"currency"`
	ReceiptURL string    `gorm:"size:512;not null" json:"receipt_url"`
	IssuedAt   time.Time `json:"issued_at"`

	CreatedAt time.Time `json:"-"`
}
