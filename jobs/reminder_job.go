package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/azmhq/mentor_platform/database"
	"github.com/azmhq/mentor_platform/models"
	"github.com/azmhq/mentor_platform/notifications"
	"github.com/azmhq/mentor_platform/websocket"
)

type reminderWindow struct {
	lead     time.Duration
	sentFlag string
	label    string
}

// Three reminder tiers, each tracked by its own sent flag on the booking so
// a sweep never emails twice.
var reminderWindows = []reminderWindow{
	{24 * time.Hour, "reminder24h_sent", "24 hours"},
	{time.Hour, "reminder1h_sent", "1 hour"},
	{15 * time.Minute, "reminder15m_sent", "15 minutes"},
}

func SendSessionReminders() {
	log.Println("Running job: SendSessionReminders...")

	now := time.Now()
	for _, w := range reminderWindows {
		var upcoming []models.Booking
		err := database.DB.
			Preload("Student").
			Preload("Mentor").
			Where("status = ? AND "+w.sentFlag+" = ? AND scheduled_date BETWEEN ? AND ?",
				models.BookingConfirmed, false, now, now.Add(w.lead)).
			Find(&upcoming).Error
		if err != nil {
			log.Printf("Error checking for upcoming sessions: %v", err)
			continue
		}

		for _, booking := range upcoming {
			sendReminder(booking, w.label)
			if err := database.DB.Model(&models.Booking{}).
				Where("id = ?", booking.ID).
				Update(w.sentFlag, true).Error; err != nil {
				log.Printf("Error flagging reminder for booking %s: %v", booking.ID, err)
			}
		}
	}
}

func sendReminder(booking models.Booking, lead string) {
	log.Printf("Sending %s reminder for booking ID: %s", lead, booking.ID)

	meetingURL := ""
	if booking.MeetingURL != nil {
		meetingURL = *booking.MeetingURL
	}

	subject := fmt.Sprintf("Reminder: Your Session Starts in %s!", lead)
	body := fmt.Sprintf(
		"<h1>Session Reminder</h1><p>Hi there,</p><p>This is a friendly reminder that your mentoring session is scheduled to start in %s at %s.</p><p><b>Meeting Link:</b> <a href='%s'>Join Session</a></p>",
		lead,
		booking.ScheduledDate.Format(time.Kitchen),
		meetingURL,
	)

	go notifications.SendEmail(booking.Student.FullName(), booking.Student.Email, subject, body)
	go notifications.SendEmail(booking.Mentor.FullName(), booking.Mentor.Email, subject, body)

	websocket.MainHub.Notify(booking.StudentID, "session-reminder", booking)
	websocket.MainHub.Notify(booking.MentorID, "session-reminder", booking)
}
