package routes

import (
	"github.com/azmhq/mentor_platform/handlers"
	"github.com/azmhq/mentor_platform/middleware"
	"github.com/gofiber/fiber/v2"
)

func MentorRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/mentors", handlers.GetMentors)
	api.Get("/mentors/:userId", handlers.GetMentor)

	api.Post("/mentors/apply", middleware.Protected(), handlers.ApplyToBeAMentor)

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())
	admin.Put("/mentors/:userId/approve", handlers.ApproveMentor)
}
