package jobs

import (
	"log"
	"time"

	"github.com/azmhq/mentor_platform/database"
	"github.com/azmhq/mentor_platform/models"
)

// CheckForNoShows sweeps bookings that were never started: still scheduled
// or confirmed, with an end time at least five minutes in the past.
func CheckForNoShows() {
	log.Println("Running job: CheckForNoShows...")

	cutoff := time.Now().Add(-5 * time.Minute)

	var missed []models.Booking
	err := database.DB.
		Where("status IN ? AND scheduled_date + (duration || ' minutes')::interval < ?",
			[]string{models.BookingScheduled, models.BookingConfirmed}, cutoff).
		Find(&missed).Error
	if err != nil {
		log.Printf("Error checking for no-shows: %v", err)
		return
	}

	if len(missed) == 0 {
		return
	}

	for _, booking := range missed {
		booking.Status = models.BookingNoShow
		if err := database.DB.Save(&booking).Error; err != nil {
			log.Printf("Error marking booking %s as no-show: %v", booking.ID, err)
		}
	}

	log.Printf("Marked %d booking(s) as no-show.", len(missed))
}
