package models

import (
	"fmt"
	"time"

	"github.com/azmhq/mentor_platform/apperrors"
	"github.com/google/uuid"
)

// Message statuses advance forward only: sent -> delivered -> read.
const (
	MessageSent      = "sent"
	MessageDelivered = "delivered"
	MessageRead      = "read"
)

// DeletedPlaceholder replaces the content of soft-deleted messages. The
// original content is not recoverable through the API.
const DeletedPlaceholder = "This message has been deleted"

// EditWindow is how long after sending a message may still be edited.
const EditWindow = 24 * time.Hour

type Attachment struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	MessageID    uuid.UUID `gorm:"not null;index" json:"-"`
	Filename     string    `gorm:"size:255" json:"filename"`
	OriginalName string    `gorm:"size:255" json:"original_name"`
	URL          string    `gorm:"size:512" json:"url"`
	Size         int64     `json:"size"`
	ContentType  string    `gorm:"size:100" json:"content_type"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

type Reaction struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	MessageID uuid.UUID `gorm:"not null;uniqueIndex:idx_reactions_message_user" json:"-"`
	UserID    uuid.UUID `gorm:"not null;uniqueIndex:idx_reactions_message_user" json:"user_id"`
	Emoji     string    `gorm:"size:16;not null" json:"emoji"`
	ReactedAt time.Time `json:"reacted_at"`
}

type Message struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SenderID   uuid.UUID `gorm:"not null;index:idx_messages_pair" json:"sender_id"`
	ReceiverID uuid.UUID `gorm:"not null;index:idx_messages_pair;index:idx_messages_receiver_status" json:"receiver_id"`

	Content     string `gorm:"size:5000;not null" json:"content"`
	MessageType string `gorm:"size:10;not null;default:'text'" json:"message_type"`

	Status      string     `gorm:"size:10;not null;default:'sent';index:idx_messages_receiver_status" json:"status"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	ReadAt      *time.Time `json:"read_at,omitempty"`

	IsReply     bool       `gorm:"default:false" json:"is_reply"`
	RepliedToID *uuid.UUID `gorm:"type:uuid" json:"replied_to_id,omitempty"`

	IsEdited        bool       `gorm:"default:false" json:"is_edited"`
	EditedAt        *time.Time `json:"edited_at,omitempty"`
	OriginalContent *string    `gorm:"size:5000" json:"-"`

	IsDeleted bool       `gorm:"default:false;index" json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	DeletedBy *uuid.UUID `gorm:"type:uuid" json:"deleted_by,omitempty"`

	SystemMessageType *string `gorm:"size:32" json:"system_message_type,omitempty"`

	Attachments []Attachment `gorm:"foreignkey:MessageID" json:"attachments,omitempty"`
	Reactions   []Reaction   `gorm:"foreignkey:MessageID" json:"reactions,omitempty"`
	Mentions    []*User      `gorm:"many2many:message_mentions;" json:"mentions,omitempty"`

	Sender   User `gorm:"foreignkey:SenderID" json:"sender,omitempty"`
	Receiver User `gorm:"foreignkey:ReceiverID" json:"receiver,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageTypes the platform accepts on send.
var MessageTypes = []string{"text", "image", "file", "video", "audio", "system"}

func (m *Message) IsParticipant(userID uuid.UUID) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

func (m *Message) CounterpartOf(userID uuid.UUID) uuid.UUID {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// MarkDelivered advances sent -> delivered. Only the receiver advances a
// message, and a message past sent is left alone.
func (m *Message) MarkDelivered(actingUser uuid.UUID, now time.Time) bool {
	if actingUser != m.ReceiverID || m.Status != MessageSent {
		return false
	}
	m.Status = MessageDelivered
	deliveredAt := now
	m.DeliveredAt = &deliveredAt
	return true
}

// MarkRead advances any unread message to read. A sent message may skip
// delivered entirely; calling twice is a no-op.
func (m *Message) MarkRead(actingUser uuid.UUID, now time.Time) bool {
	if actingUser != m.ReceiverID || m.Status == MessageRead {
		return false
	}
	m.Status = MessageRead
	readAt := now
	m.ReadAt = &readAt
	return true
}

// Edit replaces the content, keeping the immediately prior content in
// OriginalContent. Only the sender may edit, and only within 24 hours.
func (m *Message) Edit(actingUser uuid.UUID, newContent string, now time.Time) error {
	if actingUser != m.SenderID {
		return fmt.Errorf("%w: only the sender can edit this message", apperrors.ErrForbidden)
	}
	if m.IsDeleted {
		return fmt.Errorf("%w: message has been deleted", apperrors.ErrInvalidState)
	}
	if now.Sub(m.CreatedAt) > EditWindow {
		return fmt.Errorf("%w: message is too old to edit", apperrors.ErrTooLate)
	}
	prior := m.Content
	m.OriginalContent = &prior
	m.Content = newContent
	m.IsEdited = true
	editedAt := now
	m.EditedAt = &editedAt
	return nil
}

// Delete soft-deletes: the content is replaced with a placeholder and the
// row stays addressable by id.
func (m *Message) Delete(actingUser uuid.UUID, now time.Time) error {
	if actingUser != m.SenderID {
		return fmt.Errorf("%w: only the sender can delete this message", apperrors.ErrForbidden)
	}
	m.IsDeleted = true
	deletedAt := now
	m.DeletedAt = &deletedAt
	actor := actingUser
	m.DeletedBy = &actor
	m.Content = DeletedPlaceholder
	return nil
}

// React records one reaction per user, last write wins.
func (m *Message) React(actingUser uuid.UUID, emoji string, now time.Time) error {
	if !m.IsParticipant(actingUser) {
		return fmt.Errorf("%w: you can only react to messages in your conversations", apperrors.ErrForbidden)
	}
	m.RemoveReaction(actingUser)
	m.Reactions = append(m.Reactions, Reaction{
		MessageID: m.ID,
		UserID:    actingUser,
		Emoji:     emoji,
		ReactedAt: now,
	})
	return nil
}

// RemoveReaction drops actingUser's reaction if present.
func (m *Message) RemoveReaction(actingUser uuid.UUID) {
	kept := m.Reactions[:0]
	for _, r := range m.Reactions {
		if r.UserID != actingUser {
			kept = append(kept, r)
		}
	}
	m.Reactions = kept
}
