package handlers

import (
	"errors"
	"fmt"
	"log"

	configs "github.com/azmhq/mentor_platform/configs"
	"github.com/azmhq/mentor_platform/database"
	"github.com/azmhq/mentor_platform/models"
	"github.com/azmhq/mentor_platform/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// ServeWs authenticates a websocket client with a first-frame JWT, registers
// its connection for best-effort notifications, and accepts inbound chat
// messages over the same connection.
func ServeWs(c *websocketcontrib.Conn) {
	type AuthMessage struct {
		Type  string `json:"type"`
		Token string `json:"token"`
	}
	var authMsg AuthMessage
	if err := c.ReadJSON(&authMsg); err != nil || authMsg.Type != "auth" {
		log.Printf("WebSocket auth failed: invalid or missing auth message, error: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid or missing auth message"})
		c.Close()
		return
	}

	claims, err := parseToken(authMsg.Token)
	if err != nil {
		log.Printf("WebSocket auth failed: invalid token, error: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid token"})
		c.Close()
		return
	}

	userID, err := uuid.Parse(claims["user_id"].(string))
	if err != nil {
		log.Printf("WebSocket auth failed: invalid user_id: %v", claims["user_id"])
		_ = c.WriteJSON(fiber.Map{"error": "Invalid user ID"})
		c.Close()
		return
	}

	websocket.MainHub.Register(userID, c)
	defer func() {
		websocket.MainHub.Remove(userID, c)
		c.Close()
	}()

	type InboundMessage struct {
		ReceiverID string `json:"receiver_id"`
		Content    string `json:"content"`
	}
	for {
		var msg InboundMessage
		if err := c.ReadJSON(&msg); err != nil {
			if websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseAbnormalClosure) {
				log.Printf("WebSocket closed for client %s: %v", userID, err)
			} else {
				log.Printf("WebSocket read error for client %s: %v", userID, err)
			}
			break
		}

		receiverID, err := uuid.Parse(msg.ReceiverID)
		if err != nil || msg.Content == "" {
			_ = c.WriteJSON(fiber.Map{"error": "receiver_id and content are required"})
			continue
		}

		var receiver models.User
		if err := database.DB.First(&receiver, "id = ?", receiverID).Error; err != nil || !receiver.IsActive {
			_ = c.WriteJSON(fiber.Map{"error": "Receiver unavailable"})
			continue
		}

		dbMessage := models.Message{
			SenderID:    userID,
			ReceiverID:  receiverID,
			Content:     msg.Content,
			MessageType: "text",
			Status:      models.MessageSent,
		}
		if err := database.DB.Create(&dbMessage).Error; err != nil {
			log.Printf("Failed to save message for client %s: %v", userID, err)
			_ = c.WriteJSON(fiber.Map{"error": "Failed to save message"})
			continue
		}

		websocket.MainHub.Notify(receiverID, "new-message", dbMessage)
		websocket.MainHub.Notify(receiverID, "unread-count-update", fiber.Map{"unread_count": unreadCountFor(receiverID)})
		_ = c.WriteJSON(websocket.Event{Event: "message-sent", Payload: dbMessage})
	}
}

func parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(configs.Config("JWT_SECRET")), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
