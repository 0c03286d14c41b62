package routes

import (
	"github.com/azmhq/mentor_platform/handlers"
	"github.com/azmhq/mentor_platform/middleware"
	"github.com/gofiber/fiber/v2"
)

func AnalyticsRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	analytics := api.Group("/analytics", middleware.Protected())
	analytics.Get("/platform-overview", middleware.AdminRequired(), handlers.GetPlatformOverview)
	analytics.Get("/user/:userId", handlers.GetUserStats)
}
