package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/azmhq/mentor_platform/apperrors"
	"github.com/azmhq/mentor_platform/database"
	"github.com/azmhq/mentor_platform/models"
	"github.com/azmhq/mentor_platform/notifications"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateEventRequest struct {
	Title        string  `json:"title" validate:"required,max=255"`
	Description  string  `json:"description" validate:"required"`
	Category     string  `json:"category" validate:"required,oneof=workshop networking padel webinar conference mentorship"`
	Format       string  `json:"format" validate:"omitempty,oneof=online offline hybrid"`
	Date         string  `json:"date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	StartTime    string  `json:"start_time" validate:"required,datetime=15:04"`
	EndTime      string  `json:"end_time" validate:"required,datetime=15:04"`
	Venue        string  `json:"venue"`
	Address      string  `json:"address"`
	City         string  `json:"city"`
	Country      string  `json:"country"`
	MeetingURL   *string `json:"meeting_url,omitempty" validate:"omitempty,url"`
	MaxAttendees int     `json:"max_attendees" validate:"required,min=1"`
	Price        float64 `json:"price" validate:"min=0"`
	Currency     string  `json:"currency" validate:"omitempty,len=3"`
	Status       string  `json:"status" validate:"omitempty,oneof=draft published"`
	IsPublic     *bool   `json:"is_public,omitempty"`
}

func CreateEvent(c *fiber.Ctx) error {
	organizerID := currentUserID(c)

	var req CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	date, _ := time.Parse(time.RFC3339, req.Date)

	event := models.Event{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Format:       req.Format,
		Date:         date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Venue:        req.Venue,
		Address:      req.Address,
		City:         req.City,
		Country:      req.Country,
		MeetingURL:   req.MeetingURL,
		OrganizerID:  organizerID,
		MaxAttendees: req.MaxAttendees,
		Price:        req.Price,
		Status:       models.EventDraft,
		IsPublic:     true,
		IsActive:     true,
	}
	if event.Format == "" {
		event.Format = "offline"
	}
	if req.Currency != "" {
		event.Currency = req.Currency
	}
	if req.Status != "" {
		event.Status = req.Status
	}
	if req.IsPublic != nil {
		event.IsPublic = *req.IsPublic
	}

	if err := database.DB.Create(&event).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create event"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Event created successfully",
		"event":   event,
	})
}

func GetEvents(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if page < 1 {
		page = 1
	}

	query := database.DB.
		Preload("Organizer").
		Where("status = ? AND is_public = ? AND is_active = ?", models.EventPublished, true, true)

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if format := c.Query("format"); format != "" {
		query = query.Where("format = ?", format)
	}
	if c.Query("upcoming") == "true" {
		query = query.Where("date > ?", time.Now())
	}

	var total int64
	query.Model(&models.Event{}).Count(&total)

	var events []models.Event
	query.
		Order("is_featured desc, date asc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&events)

	return c.JSON(fiber.Map{
		"events":      events,
		"total_count": total,
		"page":        page,
	})
}

func GetEvent(c *fiber.Ctx) error {
	var event models.Event
	if err := database.DB.
		Preload("Organizer").
		First(&event, "id = ? AND status = ? AND is_public = ?",
			c.Params("eventId"), models.EventPublished, true).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Event not found"})
	}

	var registered int64
	database.DB.Model(&models.EventRegistration{}).
		Where("event_id = ? AND status = ?", event.ID, models.RegistrationActive).
		Count(&registered)

	return c.JSON(fiber.Map{
		"event":            event,
		"registered_count": registered,
		"spots_left":       int64(event.MaxAttendees) - registered,
	})
}

type UpdateEventRequest struct {
	Title        *string  `json:"title,omitempty" validate:"omitempty,max=255"`
	Description  *string  `json:"description,omitempty"`
	Date         *string  `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	StartTime    *string  `json:"start_time,omitempty" validate:"omitempty,datetime=15:04"`
	EndTime      *string  `json:"end_time,omitempty" validate:"omitempty,datetime=15:04"`
	Venue        *string  `json:"venue,omitempty"`
	MeetingURL   *string  `json:"meeting_url,omitempty" validate:"omitempty,url"`
	MaxAttendees *int     `json:"max_attendees,omitempty" validate:"omitempty,min=1"`
	Price        *float64 `json:"price,omitempty" validate:"omitempty,min=0"`
	Status       *string  `json:"status,omitempty" validate:"omitempty,oneof=draft published cancelled completed"`
	IsFeatured   *bool    `json:"is_featured,omitempty"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

func UpdateEvent(c *fiber.Ctx) error {
	var req UpdateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var event models.Event
	if err := database.DB.First(&event, "id = ?", c.Params("eventId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Event not found"})
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Date != nil {
		date, _ := time.Parse(time.RFC3339, *req.Date)
		event.Date = date
	}
	if req.StartTime != nil {
		event.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		event.EndTime = *req.EndTime
	}
	if req.Venue != nil {
		event.Venue = *req.Venue
	}
	if req.MeetingURL != nil {
		event.MeetingURL = req.MeetingURL
	}
	if req.MaxAttendees != nil {
		event.MaxAttendees = *req.MaxAttendees
	}
	if req.Price != nil {
		event.Price = *req.Price
	}
	if req.Status != nil {
		event.Status = *req.Status
	}
	if req.IsFeatured != nil {
		event.IsFeatured = *req.IsFeatured
	}
	if req.IsActive != nil {
		event.IsActive = *req.IsActive
	}

	if err := database.DB.Save(&event).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update event"})
	}

	return c.JSON(fiber.Map{"message": "Event updated successfully", "event": event})
}

func DeleteEvent(c *fiber.Ctx) error {
	var event models.Event
	if err := database.DB.First(&event, "id = ?", c.Params("eventId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Event not found"})
	}

	if err := database.DB.Delete(&event).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete event"})
	}
	database.DB.Where("event_id = ?", event.ID).Delete(&models.EventRegistration{})

	return c.JSON(fiber.Map{"message": "Event deleted successfully"})
}

// RegisterForEvent claims one of the event's spots. A previously cancelled
// registration is revived instead of duplicated.
func RegisterForEvent(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var event models.Event
	if err := database.DB.First(&event, "id = ?", c.Params("eventId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Event not found"})
	}

	if err := event.RegistrationOpen(time.Now()); err != nil {
		return ruleError(c, err)
	}

	var existing models.EventRegistration
	err := database.DB.Where("event_id = ? AND user_id = ?", event.ID, userID).First(&existing).Error
	if err == nil && existing.Status != models.RegistrationCancelled {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "You are already registered for this event"})
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	var registered int64
	database.DB.Model(&models.EventRegistration{}).
		Where("event_id = ? AND status = ?", event.ID, models.RegistrationActive).
		Count(&registered)
	if !event.HasCapacity(registered) {
		return ruleError(c, fmt.Errorf("%w: event is full", apperrors.ErrInvalidState))
	}

	now := time.Now()
	if existing.ID != uuid.Nil {
		existing.Status = models.RegistrationActive
		existing.RegisteredAt = now
		if err := database.DB.Save(&existing).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to register for event"})
		}
	} else {
		registration := models.EventRegistration{
			EventID:      event.ID,
			UserID:       userID,
			Status:       models.RegistrationActive,
			RegisteredAt: now,
		}
		if err := database.DB.Create(&registration).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "You are already registered for this event"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to register for event"})
		}
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err == nil {
		go notifications.SendEmail(user.FullName(), user.Email, "You're Registered!",
			fmt.Sprintf("<h1>See You There</h1><p>You are registered for <b>%s</b> on %s at %s.</p>",
				event.Title, event.Date.Format("January 2, 2006"), event.StartTime))
	}

	return c.JSON(fiber.Map{
		"message": "Successfully registered for event",
		"event": fiber.Map{
			"id":         event.ID,
			"title":      event.Title,
			"date":       event.Date,
			"start_time": event.StartTime,
			"venue":      event.Venue,
		},
	})
}

func CancelEventRegistration(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var registration models.EventRegistration
	if err := database.DB.
		Where("event_id = ? AND user_id = ?", c.Params("eventId"), userID).
		First(&registration).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Registration not found"})
	}

	registration.Status = models.RegistrationCancelled
	if err := database.DB.Save(&registration).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to cancel registration"})
	}

	return c.JSON(fiber.Map{"message": "Registration cancelled successfully"})
}

func GetMyEventRegistrations(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var registrations []models.EventRegistration
	database.DB.
		Preload("Event").
		Where("user_id = ? AND status <> ?", userID, models.RegistrationCancelled).
		Order("registered_at desc").
		Find(&registrations)

	return c.JSON(fiber.Map{
		"registrations": registrations,
		"total_count":   len(registrations),
	})
}

func countEventsByCategory() map[string]int64 {
	type row struct {
		Category string
		Count    int64
	}
	var rows []row
	database.DB.Model(&models.Event{}).
		Select("category, count(*) as count").
		Group("category").
		Scan(&rows)

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Category] = r.Count
	}
	return counts
}

func sumEventRevenue() float64 {
	var total float64
	database.DB.Model(&models.EventRegistration{}).
		Joins("JOIN events ON events.id = event_registrations.event_id").
		Where("event_registrations.status <> ?", models.RegistrationCancelled).
		Select("COALESCE(SUM(events.price), 0)").
		Row().Scan(&total)
	return total
}

func GetEventAnalytics(c *fiber.Ctx) error {
	var totalEvents, upcomingEvents, pastEvents, totalRegistrations int64
	database.DB.Model(&models.Event{}).Count(&totalEvents)
	database.DB.Model(&models.Event{}).Where("date > ?", time.Now()).Count(&upcomingEvents)
	database.DB.Model(&models.Event{}).Where("date <= ?", time.Now()).Count(&pastEvents)
	database.DB.Model(&models.EventRegistration{}).
		Where("status <> ?", models.RegistrationCancelled).
		Count(&totalRegistrations)

	return c.JSON(fiber.Map{
		"total_events":        totalEvents,
		"events_by_category":  countEventsByCategory(),
		"total_registrations": totalRegistrations,
		"total_revenue":       sumEventRevenue(),
		"upcoming_events":     upcomingEvents,
		"past_events":         pastEvents,
	})
}
