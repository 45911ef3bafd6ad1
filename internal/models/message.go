package models

import "time"

// Message is a notification shown in a member's inbox.
type Message struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Title       string    `db:"title" json:"title"`
	Content     string    `db:"content" json:"content"`
	MessageType string    `db:"message_type" json:"message_type"`
	IconType    string    `db:"icon_type" json:"icon_type"`
	IsRead      bool      `db:"is_read" json:"is_read"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Inbox is a member's messages, newest first.
type Inbox struct {
	Messages    []Message `json:"messages"`
	UnreadCount int       `json:"unread_count"`
	TotalCount  int       `json:"total_count"`
}

// SendMessageRequest is the admin payload for a direct message.
type SendMessageRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	Title       string `json:"title" validate:"required,max=200"`
	Content     string `json:"content" validate:"required"`
	MessageType string `json:"message_type" validate:"required,max=50"`
	IconType    string `json:"icon_type" validate:"required,max=50"`
}
