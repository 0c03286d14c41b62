package handlers

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/azmhq/mentor_platform/apperrors"
	"github.com/azmhq/mentor_platform/database"
	"github.com/azmhq/mentor_platform/models"
	"github.com/azmhq/mentor_platform/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

type AttachmentRequest struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	URL          string `json:"url" validate:"required,url"`
	Size         int64  `json:"size"`
	ContentType  string `json:"content_type"`
}

type SendMessageRequest struct {
	ReceiverID  string              `json:"receiver_id" validate:"required,uuid"`
	Content     string              `json:"content" validate:"required,max=5000"`
	MessageType string              `json:"message_type" validate:"omitempty,oneof=text image file video audio system"`
	RepliedToID *string             `json:"replied_to_id,omitempty" validate:"omitempty,uuid"`
	Attachments []AttachmentRequest `json:"attachments,omitempty" validate:"dive"`
}

func SendMessage(c *fiber.Ctx) error {
	senderID := currentUserID(c)

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	receiverID, _ := uuid.Parse(req.ReceiverID)

	var receiver models.User
	if err := database.DB.First(&receiver, "id = ?", receiverID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Receiver not found"})
	}
	if !receiver.IsActive {
		return ruleError(c, fmt.Errorf("%w: cannot send message to a deactivated user", apperrors.ErrInvalidState))
	}

	messageType := req.MessageType
	if messageType == "" {
		messageType = "text"
	}

	message := models.Message{
		SenderID:    senderID,
		ReceiverID:  receiverID,
		Content:     req.Content,
		MessageType: messageType,
		Status:      models.MessageSent,
	}
	if req.RepliedToID != nil {
		repliedTo, _ := uuid.Parse(*req.RepliedToID)
		message.RepliedToID = &repliedTo
		message.IsReply = true
	}
	for _, a := range req.Attachments {
		message.Attachments = append(message.Attachments, models.Attachment{
			Filename:     a.Filename,
			OriginalName: a.OriginalName,
			URL:          a.URL,
			Size:         a.Size,
			ContentType:  a.ContentType,
			UploadedAt:   time.Now(),
		})
	}

	if err := database.DB.Create(&message).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to send message"})
	}

	database.DB.Preload("Sender").Preload("Receiver").Preload("Attachments").First(&message, "id = ?", message.ID)

	websocket.MainHub.Notify(receiverID, "new-message", message)
	websocket.MainHub.Notify(receiverID, "unread-count-update", fiber.Map{"unread_count": unreadCountFor(receiverID)})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Message sent successfully",
		"data":    message,
	})
}

// GetConversation returns the non-deleted messages between the caller and
// another user, newest first from storage and reversed for display. Opening
// a conversation marks everything incoming as read.
func GetConversation(c *fiber.Ctx) error {
	userID := currentUserID(c)
	otherID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	var otherUser models.User
	if err := database.DB.First(&otherUser, "id = ?", otherID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	// Mark before loading so the returned statuses reflect the read.
	markConversationRead(otherID, userID)

	var messages []models.Message
	database.DB.
		Preload("Sender").
		Preload("Receiver").
		Preload("Attachments").
		Preload("Reactions").
		Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND is_deleted = ?",
			userID, otherID, otherID, userID, false).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&messages)

	// Oldest first for display.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return c.JSON(fiber.Map{
		"messages":   messages,
		"other_user": otherUser,
		"limit":      limit,
		"offset":     offset,
	})
}

type ConversationSummary struct {
	OtherUser   models.User    `json:"other_user"`
	LastMessage models.Message `json:"last_message"`
	UnreadCount int64          `json:"unread_count"`
}

// GetRecentConversations groups the caller's messages by counterpart,
// keeping the latest message per counterpart and the count of incoming
// messages still in sent status.
func GetRecentConversations(c *fiber.Ctx) error {
	userID := currentUserID(c)
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	var lastMessages []models.Message
	database.DB.Raw(`
		SELECT DISTINCT ON (other_id) * FROM (
			SELECT *, CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END AS other_id
			FROM messages
			WHERE (sender_id = ? OR receiver_id = ?) AND is_deleted = false
		) m
		ORDER BY other_id, created_at DESC`,
		userID, userID, userID,
	).Scan(&lastMessages)

	type unreadRow struct {
		SenderID uuid.UUID
		Count    int64
	}
	var unreadRows []unreadRow
	database.DB.Model(&models.Message{}).
		Select("sender_id, count(*) as count").
		Where("receiver_id = ? AND status = ? AND is_deleted = ?", userID, models.MessageSent, false).
		Group("sender_id").
		Scan(&unreadRows)
	unreadBySender := make(map[uuid.UUID]int64, len(unreadRows))
	for _, r := range unreadRows {
		unreadBySender[r.SenderID] = r.Count
	}

	conversations := make([]ConversationSummary, 0, len(lastMessages))
	for _, msg := range lastMessages {
		otherID := msg.CounterpartOf(userID)
		var other models.User
		if err := database.DB.First(&other, "id = ?", otherID).Error; err != nil {
			continue
		}
		conversations = append(conversations, ConversationSummary{
			OtherUser:   other,
			LastMessage: msg,
			UnreadCount: unreadBySender[otherID],
		})
	}

	// Most recently active first.
	for i := 0; i < len(conversations); i++ {
		for j := i + 1; j < len(conversations); j++ {
			if conversations[j].LastMessage.CreatedAt.After(conversations[i].LastMessage.CreatedAt) {
				conversations[i], conversations[j] = conversations[j], conversations[i]
			}
		}
	}
	if len(conversations) > limit {
		conversations = conversations[:limit]
	}

	return c.JSON(fiber.Map{"conversations": conversations, "limit": limit})
}

func MarkMessageDelivered(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var message models.Message
	if err := database.DB.First(&message, "id = ?", c.Params("messageId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Message not found"})
	}

	if message.MarkDelivered(userID, time.Now()) {
		if err := database.DB.Save(&message).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update message"})
		}
	}

	return c.JSON(fiber.Map{"message": "OK", "status": message.Status})
}

func MarkMessageRead(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var message models.Message
	if err := database.DB.First(&message, "id = ?", c.Params("messageId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Message not found"})
	}

	if message.MarkRead(userID, time.Now()) {
		if err := database.DB.Save(&message).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update message"})
		}
	}

	return c.JSON(fiber.Map{"message": "OK", "status": message.Status})
}

type MarkAsReadRequest struct {
	SenderID string `json:"sender_id" validate:"required,uuid"`
}

// MarkConversationAsRead is the bulk variant used when opening a
// conversation: every sent/delivered message from one counterpart becomes
// read in a single statement.
func MarkConversationAsRead(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req MarkAsReadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	senderID, _ := uuid.Parse(req.SenderID)

	modified := markConversationRead(senderID, userID)

	return c.JSON(fiber.Map{"message": "Messages marked as read", "modified_count": modified})
}

func markConversationRead(senderID, receiverID uuid.UUID) int64 {
	res := database.DB.Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND status IN ?",
			senderID, receiverID, []string{models.MessageSent, models.MessageDelivered}).
		Updates(map[string]interface{}{
			"status":  models.MessageRead,
			"read_at": time.Now(),
		})
	return res.RowsAffected
}

type EditMessageRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

func EditMessage(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req EditMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var message models.Message
	if err := database.DB.First(&message, "id = ?", c.Params("messageId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Message not found"})
	}

	if err := message.Edit(userID, req.Content, time.Now()); err != nil {
		return ruleError(c, err)
	}

	if err := database.DB.Save(&message).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to edit message"})
	}

	websocket.MainHub.Notify(message.ReceiverID, "message-edited", message)

	return c.JSON(fiber.Map{"message": "Message edited successfully", "data": message})
}

func DeleteMessage(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var message models.Message
	if err := database.DB.First(&message, "id = ?", c.Params("messageId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Message not found"})
	}

	if err := message.Delete(userID, time.Now()); err != nil {
		return ruleError(c, err)
	}

	if err := database.DB.Save(&message).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete message"})
	}

	websocket.MainHub.Notify(message.ReceiverID, "message-deleted", fiber.Map{"message_id": message.ID})

	return c.JSON(fiber.Map{"message": "Message deleted successfully"})
}

type ReactionRequest struct {
	Emoji string `json:"emoji" validate:"required,max=16"`
}

func ReactToMessage(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req ReactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var message models.Message
	if err := database.DB.Preload("Reactions").First(&message, "id = ?", c.Params("messageId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Message not found"})
	}

	if err := message.React(userID, req.Emoji, time.Now()); err != nil {
		return ruleError(c, err)
	}

	// One row per (message, user), latest emoji wins.
	reaction := models.Reaction{
		MessageID: message.ID,
		UserID:    userID,
		Emoji:     req.Emoji,
		ReactedAt: time.Now(),
	}
	if err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"emoji", "reacted_at"}),
	}).Create(&reaction).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to add reaction"})
	}

	websocket.MainHub.Notify(message.CounterpartOf(userID), "reaction-added", fiber.Map{
		"message_id": message.ID,
		"reactions":  message.Reactions,
	})

	return c.JSON(fiber.Map{"message": "Reaction added successfully", "reactions": message.Reactions})
}

func RemoveReaction(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var message models.Message
	if err := database.DB.Preload("Reactions").First(&message, "id = ?", c.Params("messageId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Message not found"})
	}

	message.RemoveReaction(userID)
	database.DB.Where("message_id = ? AND user_id = ?", message.ID, userID).Delete(&models.Reaction{})

	websocket.MainHub.Notify(message.CounterpartOf(userID), "reaction-removed", fiber.Map{
		"message_id": message.ID,
		"reactions":  message.Reactions,
	})

	return c.JSON(fiber.Map{"message": "Reaction removed successfully", "reactions": message.Reactions})
}

// sendSystemMessage drops a system-typed message into the pair's
// conversation for booking milestones. Failures are logged, never surfaced.
func sendSystemMessage(senderID, receiverID uuid.UUID, systemType, content string) {
	kind := systemType
	message := models.Message{
		SenderID:          senderID,
		ReceiverID:        receiverID,
		Content:           content,
		MessageType:       "system",
		Status:            models.MessageSent,
		SystemMessageType: &kind,
	}
	if err := database.DB.Create(&message).Error; err != nil {
		log.Printf("Failed to record system message (%s): %v", systemType, err)
		return
	}
	websocket.MainHub.Notify(receiverID, "new-message", message)
}

func GetUnreadCount(c *fiber.Ctx) error {
	userID := currentUserID(c)
	return c.JSON(fiber.Map{"unread_count": unreadCountFor(userID)})
}

func unreadCountFor(userID uuid.UUID) int64 {
	var count int64
	database.DB.Model(&models.Message{}).
		Where("receiver_id = ? AND status IN ? AND is_deleted = ?",
			userID, []string{models.MessageSent, models.MessageDelivered}, false).
		Count(&count)
	return count
}

func SearchMessages(c *fiber.Ctx) error {
	userID := currentUserID(c)

	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Search query is required"})
	}
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	db := database.DB.
		Preload("Sender").
		Preload("Receiver").
		Where("content ILIKE ? AND is_deleted = ?", "%"+query+"%", false)

	if other := c.Query("user_id"); other != "" {
		db = db.Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, other, other, userID)
	} else {
		db = db.Where("sender_id = ? OR receiver_id = ?", userID, userID)
	}

	var messages []models.Message
	db.Order("created_at desc").Limit(limit).Find(&messages)

	return c.JSON(fiber.Map{"messages": messages, "query": query})
}
