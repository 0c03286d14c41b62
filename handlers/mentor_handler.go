package handlers

import (
	"errors"
	"strconv"

	"github.com/azmhq/mentor_platform/database"
	"github.com/azmhq/mentor_platform/models"
	"github.com/azmhq/mentor_platform/notifications"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type MentorApplicationRequest struct {
	Title      string  `json:"title" validate:"required"`
	Company    string  `json:"company" validate:"required"`
	Expertise  string  `json:"expertise" validate:"required,oneof=tech business design marketing finance entrepreneurship leadership"`
	Experience int     `json:"experience" validate:"required,min=1"`
	HourlyRate float64 `json:"hourly_rate" validate:"required,gt=0"`
	Bio        string  `json:"bio" validate:"required,max=500"`
}

func ApplyToBeAMentor(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req MentorApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var existing models.MentorProfile
	err := database.DB.Where("user_id = ?", userID).First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "You have already submitted an application."})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	application := models.MentorProfile{
		UserID:     userID,
		Title:      req.Title,
		Company:    req.Company,
		Expertise:  req.Expertise,
		Experience: req.Experience,
		HourlyRate: req.HourlyRate,
		Bio:        req.Bio,
	}

	if err := database.DB.Create(&application).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create application"})
	}

	return c.Status(fiber.StatusCreated).JSON(application)
}

// ApproveMentor flips an application to approved and flags the user as a
// mentor so bookings against them start resolving.
func ApproveMentor(c *fiber.Ctx) error {
	mentorID := c.Params("userId")

	var profile models.MentorProfile
	if err := database.DB.Preload("User").First(&profile, "user_id = ?", mentorID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Mentor application not found"})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.MentorProfile{}).Where("user_id = ?", mentorID).Update("is_approved", true).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", mentorID).Updates(map[string]interface{}{
			"is_mentor": true,
			"role":      "mentor",
		}).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to approve mentor"})
	}

	go notifications.SendEmail(profile.User.FullName(), profile.User.Email, "Your Mentor Application Was Approved!",
		"<h1>Welcome Aboard</h1><p>Your mentor profile is now live. Students can start booking sessions with you.</p>")

	return c.JSON(fiber.Map{"message": "Mentor approved successfully"})
}

func GetMentors(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}

	query := database.DB.
		Preload("User").
		Joins("JOIN users ON users.id = mentor_profiles.user_id").
		Where("mentor_profiles.is_approved = ? AND users.is_active = ?", true, true)

	if expertise := c.Query("expertise"); expertise != "" {
		query = query.Where("mentor_profiles.expertise = ?", expertise)
	}
	if minRating := c.Query("min_rating"); minRating != "" {
		query = query.Where("mentor_profiles.rating_average >= ?", minRating)
	}
	if maxPrice := c.Query("max_price"); maxPrice != "" {
		query = query.Where("mentor_profiles.hourly_rate <= ?", maxPrice)
	}

	var total int64
	query.Model(&models.MentorProfile{}).Count(&total)

	var mentors []models.MentorProfile
	query.
		Order("mentor_profiles.is_featured desc, mentor_profiles.rating_average desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&mentors)

	return c.JSON(fiber.Map{
		"mentors":     mentors,
		"total_count": total,
		"page":        page,
	})
}

func GetMentor(c *fiber.Ctx) error {
	var profile models.MentorProfile
	if err := database.DB.
		Preload("User").
		First(&profile, "user_id = ? AND is_approved = ?", c.Params("userId"), true).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Mentor not found"})
	}

	return c.JSON(profile)
}
