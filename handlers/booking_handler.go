package handlers

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/azmhq/mentor_platform/apperrors"
	"github.com/azmhq/mentor_platform/database"
	"github.com/azmhq/mentor_platform/models"
	"github.com/azmhq/mentor_platform/notifications"
	"github.com/azmhq/mentor_platform/services"
	"github.com/azmhq/mentor_platform/utils"
	"github.com/azmhq/mentor_platform/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func currentUserID(c *fiber.Ctx) uuid.UUID {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	return userID
}

func currentUserRole(c *fiber.Ctx) string {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	role, _ := claims["role"].(string)
	return role
}

// ruleError maps the model rule-method error kinds onto HTTP responses.
func ruleError(c *fiber.Ctx, err error) error {
	return c.Status(apperrors.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
}

type CreateBookingRequest struct {
	MentorID      string  `json:"mentor_id" validate:"required,uuid"`
	SessionType   string  `json:"session_type" validate:"required,oneof=career_advice skill_development portfolio_review interview_prep business_strategy leadership technical_mentoring other"`
	Title         string  `json:"title" validate:"required,max=255"`
	Description   string  `json:"description" validate:"max=1000"`
	ScheduledDate string  `json:"scheduled_date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Duration      int     `json:"duration" validate:"required,oneof=30 45 60 90 120"`
	Timezone      string  `json:"timezone" validate:"required"`
	HourlyRate    float64 `json:"hourly_rate" validate:"required,gt=0"`
}

func CreateBooking(c *fiber.Ctx) error {
	studentID := currentUserID(c)

	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	mentorID, _ := uuid.Parse(req.MentorID)
	scheduledDate, _ := time.Parse(time.RFC3339, req.ScheduledDate)

	if scheduledDate.Before(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Scheduled date cannot be in the past"})
	}

	var mentor models.User
	if err := database.DB.
		Where("id = ? AND is_mentor = ? AND is_active = ?", mentorID, true, true).
		First(&mentor).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Mentor not found"})
	}

	booking := models.Booking{
		StudentID:     studentID,
		MentorID:      mentorID,
		SessionType:   req.SessionType,
		Title:         req.Title,
		Description:   req.Description,
		ScheduledDate: scheduledDate,
		Duration:      req.Duration,
		Timezone:      req.Timezone,
		HourlyRate:    req.HourlyRate,
		TotalAmount:   models.TotalAmountFor(req.HourlyRate, req.Duration),
		Status:        models.BookingScheduled,
	}

	if err := database.DB.Create(&booking).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create booking"})
	}

	database.DB.Preload("Student").Preload("Mentor").First(&booking, "id = ?", booking.ID)

	websocket.MainHub.Notify(mentorID, "new-booking", booking)
	go notifications.SendEmail(mentor.FullName(), mentor.Email, "You Have a New Booking Request!",
		"<h1>New Booking</h1><p>A student has requested a mentoring session with you. Log in to confirm it.</p>")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Booking created successfully",
		"booking": booking,
	})
}

func GetMyBookings(c *fiber.Ctx) error {
	userID := currentUserID(c)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if page < 1 {
		page = 1
	}

	query := database.DB.
		Preload("Student").
		Preload("Mentor").
		Where("student_id = ? OR mentor_id = ?", userID, userID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var totalCount int64
	query.Model(&models.Booking{}).Count(&totalCount)

	var bookings []models.Booking
	query.
		Order("scheduled_date desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&bookings)

	return c.JSON(fiber.Map{
		"bookings":    bookings,
		"total_count": totalCount,
		"page":        page,
	})
}

func GetUpcomingSessions(c *fiber.Ctx) error {
	userID := currentUserID(c)
	limit, _ := strconv.Atoi(c.Query("limit", "10"))

	var bookings []models.Booking
	database.DB.
		Preload("Student").
		Preload("Mentor").
		Where("(student_id = ? OR mentor_id = ?) AND scheduled_date >= ? AND status IN ?",
			userID, userID, time.Now(), []string{models.BookingScheduled, models.BookingConfirmed}).
		Order("scheduled_date asc").
		Limit(limit).
		Find(&bookings)

	return c.JSON(bookings)
}

func GetBooking(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var booking models.Booking
	if err := database.DB.
		Preload("Student").
		Preload("Mentor").
		First(&booking, "id = ?", c.Params("bookingId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}

	if !booking.IsParticipant(userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Unauthorized to view this booking"})
	}

	return c.JSON(booking)
}

func ConfirmBooking(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var booking models.Booking
	if err := database.DB.Preload("Student").Preload("Mentor").First(&booking, "id = ?", c.Params("bookingId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}

	if err := booking.Confirm(userID); err != nil {
		return ruleError(c, err)
	}

	if booking.MeetingURL == nil {
		meetingURL := utils.GenerateMeetingURL(booking.ID)
		meetingID := utils.GenerateMeetingID(booking.ID)
		booking.MeetingURL = &meetingURL
		booking.MeetingID = &meetingID
	}

	if err := database.DB.Save(&booking).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to confirm booking"})
	}

	websocket.MainHub.Notify(booking.StudentID, "booking-updated", booking)
	sendSystemMessage(booking.MentorID, booking.StudentID, "booking_confirmed",
		fmt.Sprintf("Session \"%s\" was confirmed for %s.", booking.Title, booking.ScheduledDate.Format(time.RFC1123)))
	go notifications.SendEmail(booking.Student.FullName(), booking.Student.Email, "Your Booking is Confirmed!",
		"<h1>Booking Confirmed</h1><p>Your mentor has confirmed the session. See your dashboard for the meeting link.</p>")

	return c.JSON(fiber.Map{"message": "Booking confirmed successfully", "booking": booking})
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func CancelBooking(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req CancelBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var booking models.Booking
	if err := database.DB.Preload("Student").Preload("Mentor").First(&booking, "id = ?", c.Params("bookingId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}

	if err := booking.Cancel(userID, req.Reason, time.Now()); err != nil {
		return ruleError(c, err)
	}

	if err := database.DB.Save(&booking).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to cancel booking"})
	}

	counterpart := booking.CounterpartOf(userID)
	websocket.MainHub.Notify(counterpart, "booking-cancelled", booking)
	sendSystemMessage(userID, counterpart, "booking_cancelled",
		fmt.Sprintf("Session \"%s\" was cancelled: %s", booking.Title, req.Reason))

	other := booking.Mentor
	if counterpart == booking.StudentID {
		other = booking.Student
	}
	go notifications.SendEmail(other.FullName(), other.Email, "A Booking Was Cancelled",
		"<h1>Booking Cancelled</h1><p>One of your sessions has been cancelled. Check your dashboard for details.</p>")

	return c.JSON(fiber.Map{"message": "Booking cancelled successfully", "booking": booking})
}

type RescheduleBookingRequest struct {
	NewDate string `json:"new_date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Reason  string `json:"reason"`
}

func RescheduleBooking(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req RescheduleBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	newDate, _ := time.Parse(time.RFC3339, req.NewDate)
	if newDate.Before(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Proposed reschedule time cannot be in the past"})
	}

	var booking models.Booking
	if err := database.DB.Preload("Student").Preload("Mentor").First(&booking, "id = ?", c.Params("bookingId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}

	if err := booking.Reschedule(userID, newDate, req.Reason, time.Now()); err != nil {
		return ruleError(c, err)
	}

	if err := database.DB.Save(&booking).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reschedule booking"})
	}

	websocket.MainHub.Notify(booking.CounterpartOf(userID), "booking-rescheduled", booking)
	sendSystemMessage(userID, booking.CounterpartOf(userID), "booking_rescheduled",
		fmt.Sprintf("Session \"%s\" was moved to %s.", booking.Title, booking.ScheduledDate.Format(time.RFC1123)))

	return c.JSON(fiber.Map{"message": "Booking rescheduled successfully", "booking": booking})
}

func StartSession(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var booking models.Booking
	if err := database.DB.First(&booking, "id = ?", c.Params("bookingId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}

	if err := booking.StartSession(userID, time.Now()); err != nil {
		return ruleError(c, err)
	}

	if booking.MeetingURL == nil {
		meetingURL := utils.GenerateMeetingURL(booking.ID)
		meetingID := utils.GenerateMeetingID(booking.ID)
		booking.MeetingURL = &meetingURL
		booking.MeetingID = &meetingID
	}

	if err := database.DB.Save(&booking).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to start session"})
	}

	websocket.MainHub.Notify(booking.CounterpartOf(userID), "session-started", booking)

	return c.JSON(fiber.Map{
		"message":     "Session started successfully",
		"meeting_url": booking.MeetingURL,
		"meeting_id":  booking.MeetingID,
	})
}

func EndSession(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var booking models.Booking
	if err := database.DB.Preload("Student").Preload("Mentor").First(&booking, "id = ?", c.Params("bookingId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}

	if err := booking.EndSession(userID); err != nil {
		return ruleError(c, err)
	}

	if err := database.DB.Save(&booking).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to end session"})
	}

	creditMentorForSession(booking)

	go services.GenerateSessionReceipt(booking)

	websocket.MainHub.Notify(booking.CounterpartOf(userID), "session-ended", booking)

	return c.JSON(fiber.Map{"message": "Session ended successfully"})
}

// creditMentorForSession adds a completed session to the mentor's totals in
// one statement so concurrent completions cannot clobber each other. A
// missing profile row is logged, not surfaced.
func creditMentorForSession(booking models.Booking) {
	res := database.DB.Model(&models.MentorProfile{}).
		Where("user_id = ?", booking.MentorID).
		Updates(map[string]interface{}{
			"total_sessions": gorm.Expr("total_sessions + 1"),
			"total_earnings": gorm.Expr("total_earnings + ?", booking.TotalAmount),
		})
	if res.Error != nil || res.RowsAffected == 0 {
		log.Printf("🔥 Failed to credit mentor %s for booking %s: %v", booking.MentorID, booking.ID, res.Error)
	}
}

// applyStudentRating folds one student rating into the mentor's running
// aggregate, rounded to one decimal, as a single UPDATE against the profile
// row.
func applyStudentRating(mentorID uuid.UUID, rating int) {
	res := database.DB.Model(&models.MentorProfile{}).
		Where("user_id = ?", mentorID).
		Updates(map[string]interface{}{
			"rating_average": gorm.Expr("round((rating_average * rating_count + ?) / (rating_count + 1.0), 1)", rating),
			"rating_count":   gorm.Expr("rating_count + 1"),
		})
	if res.Error != nil || res.RowsAffected == 0 {
		log.Printf("🔥 Failed to update rating for mentor %s: %v", mentorID, res.Error)
	}
}

type FeedbackRequest struct {
	Rating       *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Review       *string `json:"review,omitempty"`
	Satisfaction *int    `json:"satisfaction,omitempty" validate:"omitempty,min=1,max=10"`
}

func SubmitFeedback(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var booking models.Booking
	if err := database.DB.First(&booking, "id = ?", c.Params("bookingId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}

	fb := models.Feedback{
		Rating:       req.Rating,
		Review:       req.Review,
		Satisfaction: req.Satisfaction,
	}
	role, err := booking.AddFeedback(userID, fb, time.Now())
	if err != nil {
		return ruleError(c, err)
	}

	if err := database.DB.Save(&booking).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save feedback"})
	}

	// Student ratings feed the mentor's running average. If the update
	// fails the feedback stays saved and the miss is only logged.
	if role == "student" && req.Rating != nil {
		applyStudentRating(booking.MentorID, *req.Rating)
	}

	websocket.MainHub.Notify(booking.CounterpartOf(userID), "feedback-submitted", fiber.Map{
		"booking_id": booking.ID,
		"role":       role,
	})

	return c.JSON(fiber.Map{
		"message": "Feedback added successfully",
		"feedback": fiber.Map{
			"student": booking.StudentFeedback,
			"mentor":  booking.MentorFeedback,
		},
	})
}
