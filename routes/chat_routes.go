package routes

import (
	"github.com/azmhq/mentor_platform/handlers"
	"github.com/azmhq/mentor_platform/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func ChatRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	chat := api.Group("/chat", middleware.Protected())
	chat.Post("/send", handlers.SendMessage)
	chat.Get("/conversations", handlers.GetRecentConversations)
	chat.Get("/conversation/:userId", handlers.GetConversation)
	chat.Get("/unread-count", handlers.GetUnreadCount)
	chat.Get("/search", handlers.SearchMessages)
	chat.Post("/mark-as-read", handlers.MarkConversationAsRead)
	chat.Put("/messages/:messageId/delivered", handlers.MarkMessageDelivered)
	chat.Put("/messages/:messageId/read", handlers.MarkMessageRead)
	chat.Put("/messages/:messageId", handlers.EditMessage)
	chat.Delete("/messages/:messageId", handlers.DeleteMessage)
	chat.Post("/messages/:messageId/react", handlers.ReactToMessage)
	chat.Delete("/messages/:messageId/react", handlers.RemoveReaction)

	api.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws", websocket.New(handlers.ServeWs))
}
