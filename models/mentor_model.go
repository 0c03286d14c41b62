package models

import (
	"time"

	"github.com/google/uuid"
)

// MentorProfile carries the marketplace-facing mentor data, keyed by the
// owning user. RatingAverage/RatingCount form the running aggregate updated
// when students submit session feedback.
type MentorProfile struct {
	UserID     uuid.UUID `gorm:"primary_key" json:"user_id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	Company    string    `gorm:"size:255" json:"company"`
	Expertise  string    `gorm:"size:50;not null" json:"expertise"`
	Experience int       `gorm:"not null" json:"experience"`
	HourlyRate float64   `gorm:"type:numeric(10,2);not null" json:"hourly_rate"`
	Bio        string    `gorm:"type:text" json:"bio"`

	RatingAverage float64 `gorm:"type:numeric(3,1);default:0" json:"rating_average"`
	RatingCount   int     `gorm:"default:0" json:"rating_count"`

	TotalSessions int     `gorm:"default:0" json:"total_sessions"`
	TotalEarnings float64 `gorm:"type:numeric(12,2);default:0.00" json:"-"`

	IsApproved bool `gorm:"default:false" json:"is_approved"`
	IsFeatured bool `gorm:"default:false" json:"is_featured"`

	User User `gorm:"foreignkey:UserID" json:"user"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
