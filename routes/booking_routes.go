package routes

import (
	"github.com/azmhq/mentor_platform/handlers"
	"github.com/azmhq/mentor_platform/middleware"
	"github.com/gofiber/fiber/v2"
)

func BookingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	booking := api.Group("/bookings", middleware.Protected())
	booking.Post("", handlers.CreateBooking)
	booking.Get("", handlers.GetMyBookings)
	booking.Get("/upcoming", handlers.GetUpcomingSessions)
	booking.Get("/:bookingId", handlers.GetBooking)
	booking.Put("/:bookingId/confirm", handlers.ConfirmBooking)
	booking.Put("/:bookingId/cancel", handlers.CancelBooking)
	booking.Put("/:bookingId/reschedule", handlers.RescheduleBooking)
	booking.Put("/:bookingId/start-session", handlers.StartSession)
	booking.Put("/:bookingId/end-session", handlers.EndSession)
	booking.Post("/:bookingId/feedback", handlers.SubmitFeedback)
}
