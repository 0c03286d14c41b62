package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/azmhq/mentor_platform/database"
	"github.com/azmhq/mentor_platform/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// The dashboards are built from explicit query helpers instead of a pipeline
// DSL: every figure is one grouped or summed statement.

func sumCompletedRevenue(since time.Time) float64 {
	var total float64
	database.DB.Model(&models.Booking{}).
		Where("payment_status = ? AND created_at >= ?", "completed", since).
		Select("COALESCE(SUM(total_amount), 0)").
		Row().Scan(&total)
	return total
}

func countBookingsByStatus(since time.Time) map[string]int64 {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	database.DB.Model(&models.Booking{}).
		Select("status, count(*) as count").
		Where("created_at >= ?", since).
		Group("status").
		Scan(&rows)

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts
}

type TopMentor struct {
	MentorID      uuid.UUID `json:"mentor_id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	TotalEarnings float64   `json:"total_earnings"`
	SessionCount  int64     `json:"session_count"`
}

func topMentorsByEarnings(limit int) []TopMentor {
	var top []TopMentor
	database.DB.Model(&models.Booking{}).
		Select("bookings.mentor_id, users.first_name, users.last_name, SUM(bookings.total_amount) as total_earnings, count(*) as session_count").
		Joins("JOIN users ON users.id = bookings.mentor_id").
		Where("bookings.payment_status = ?", "completed").
		Group("bookings.mentor_id, users.first_name, users.last_name").
		Order("total_earnings desc").
		Limit(limit).
		Scan(&top)
	return top
}

func periodStart(c *fiber.Ctx) time.Time {
	period := c.Query("period", "30d")
	days, err := strconv.Atoi(strings.TrimSuffix(period, "d"))
	if err != nil || days <= 0 {
		days = 30
	}
	return time.Now().AddDate(0, 0, -days)
}

func GetPlatformOverview(c *fiber.Ctx) error {
	since := periodStart(c)

	var totalUsers, totalMentors, newUsers int64
	database.DB.Model(&models.User{}).Count(&totalUsers)
	database.DB.Model(&models.User{}).Where("is_mentor = ?", true).Count(&totalMentors)
	database.DB.Model(&models.User{}).Where("created_at >= ?", since).Count(&newUsers)

	var totalBookings, completedBookings int64
	database.DB.Model(&models.Booking{}).Count(&totalBookings)
	database.DB.Model(&models.Booking{}).Where("status = ?", models.BookingCompleted).Count(&completedBookings)

	var totalMessages, periodMessages int64
	database.DB.Model(&models.Message{}).Count(&totalMessages)
	database.DB.Model(&models.Message{}).Where("created_at >= ?", since).Count(&periodMessages)

	return c.JSON(fiber.Map{
		"overview": fiber.Map{
			"total_users":        totalUsers,
			"total_mentors":      totalMentors,
			"new_users":          newUsers,
			"total_bookings":     totalBookings,
			"completed_bookings": completedBookings,
			"total_revenue":      sumCompletedRevenue(time.Time{}),
			"period_revenue":     sumCompletedRevenue(since),
			"total_messages":     totalMessages,
			"period_messages":    periodMessages,
		},
		"booking_stats": countBookingsByStatus(since),
		"top_mentors":   topMentorsByEarnings(10),
	})
}

// GetUserStats reports session counts and hours for one user; admins can
// read anyone, users only themselves.
func GetUserStats(c *fiber.Ctx) error {
	callerID := currentUserID(c)

	targetID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	role := currentUserRole(c)
	if role != "admin" && callerID != targetID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Unauthorized to view these analytics"})
	}

	var totalSessions, completedSessions, upcomingSessions int64
	database.DB.Model(&models.Booking{}).
		Where("student_id = ? OR mentor_id = ?", targetID, targetID).
		Count(&totalSessions)
	database.DB.Model(&models.Booking{}).
		Where("(student_id = ? OR mentor_id = ?) AND status = ?", targetID, targetID, models.BookingCompleted).
		Count(&completedSessions)
	database.DB.Model(&models.Booking{}).
		Where("(student_id = ? OR mentor_id = ?) AND status = ? AND scheduled_date > ?",
			targetID, targetID, models.BookingConfirmed, time.Now()).
		Count(&upcomingSessions)

	var totalMinutes int64
	database.DB.Model(&models.Booking{}).
		Where("(student_id = ? OR mentor_id = ?) AND status = ?", targetID, targetID, models.BookingCompleted).
		Select("COALESCE(SUM(duration), 0)").
		Row().Scan(&totalMinutes)

	var averageRating float64
	database.DB.Model(&models.Booking{}).
		Where("mentor_id = ? AND student_feedback_rating IS NOT NULL", targetID).
		Select("COALESCE(AVG(student_feedback_rating), 0)").
		Row().Scan(&averageRating)

	return c.JSON(fiber.Map{
		"total_sessions":     totalSessions,
		"completed_sessions": completedSessions,
		"upcoming_sessions":  upcomingSessions,
		"total_hours":        float64(totalMinutes) / 60,
		"average_rating":     averageRating,
	})
}
