package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/PrincipieCyupe/tyi/internal/models"
	appErrors "github.com/PrincipieCyupe/tyi/pkg/errors"
)

type messageRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Message, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	Create(ctx context.Context, message *models.Message) error
	MarkRead(ctx context.Context, userID, messageID string) (bool, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, messageID string) (bool, error)
}

// MessageService manages member inboxes. Members only ever touch their own messages.
type MessageService struct {
	repo      messageRepository
	users     userReader
	audit     auditRecorder
	clock     Clock
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMessageService constructs MessageService.
func NewMessageService(repo messageRepository, users userReader, audit auditRecorder, clock Clock, validate *validator.Validate, logger *zap.Logger) *MessageService {
	if clock == nil {
		clock = SystemClock{}
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageService{repo: repo, users: users, audit: audit, clock: clock, validator: validate, logger: logger}
}

// Inbox lists the member's messages with unread and total counts.
func (s *MessageService) Inbox(ctx context.Context, userID string) (*models.Inbox, error) {
	messages, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list messages")
	}
	if messages == nil {
		messages = []models.Message{}
	}
	unread := 0
	for _, message := range messages {
		if !message.IsRead {
			unread++
		}
	}
	return &models.Inbox{Messages: messages, UnreadCount: unread, TotalCount: len(messages)}, nil
}

// UnreadCount returns the number of unread messages.
func (s *MessageService) UnreadCount(ctx context.Context, userID string) (int, error) {
	total, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, appErrors.Persistence(err, "failed to count unread messages")
	}
	return total, nil
}

// MarkRead marks one message read. Messages of other members are reported as not found.
func (s *MessageService) MarkRead(ctx context.Context, userID, messageID string) error {
	ok, err := s.repo.MarkRead(ctx, userID, messageID)
	if err != nil {
		return appErrors.Persistence(err, "failed to update message")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "message not found")
	}
	return nil
}

// MarkAllRead marks every message of the member read and returns how many changed.
func (s *MessageService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	updated, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, appErrors.Persistence(err, "failed to update messages")
	}
	return updated, nil
}

// Delete removes one of the member's messages.
func (s *MessageService) Delete(ctx context.Context, userID, messageID string) error {
	ok, err := s.repo.Delete(ctx, userID, messageID)
	if err != nil {
		return appErrors.Persistence(err, "failed to delete message")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "message not found")
	}
	return nil
}

// Send delivers a direct admin message to a member.
func (s *MessageService) Send(ctx context.Context, admin *models.AdminPrincipal, req models.SendMessageRequest) (*models.Message, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid message payload")
	}
	if _, err := s.users.FindByID(ctx, req.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Persistence(err, "failed to load user")
	}
	message := &models.Message{
		UserID:      req.UserID,
		Title:       req.Title,
		Content:     req.Content,
		MessageType: req.MessageType,
		IconType:    req.IconType,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, appErrors.Persistence(err, "failed to send message")
	}
	recordAudit(ctx, s.audit, s.logger, admin, models.AuditActionMessageSend, "message", message.ID, map[string]string{"user_id": req.UserID, "title": req.Title})
	return message, nil
}
