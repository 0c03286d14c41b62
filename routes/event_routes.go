package routes

import (
	"github.com/azmhq/mentor_platform/handlers"
	"github.com/azmhq/mentor_platform/middleware"
	"github.com/gofiber/fiber/v2"
)

func EventRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/events", handlers.GetEvents)
	api.Get("/events/:eventId", handlers.GetEvent)

	registration := api.Group("/events", middleware.Protected())
	registration.Get("/registrations/me", handlers.GetMyEventRegistrations)
	registration.Post("/:eventId/register", handlers.RegisterForEvent)
	registration.Delete("/:eventId/register", handlers.CancelEventRegistration)

	admin := api.Group("/admin/events", middleware.Protected(), middleware.AdminRequired())
	admin.Post("", handlers.CreateEvent)
	admin.Put("/:eventId", handlers.UpdateEvent)
	admin.Delete("/:eventId", handlers.DeleteEvent)
	admin.Get("/analytics", handlers.GetEventAnalytics)
}
