package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/PrincipieCyupe/tyi/internal/models"
	appErrors "github.com/PrincipieCyupe/tyi/pkg/errors"
	"github.com/PrincipieCyupe/tyi/pkg/mailer"
)

const notProvided = "Not provided"

// ContactService forwards public contact form submissions to the team inbox.
type ContactService struct {
	sender    mailer.Mailer
	inbox     string
	validator *validator.Validate
	logger    *zap.Logger
}

// NewContactService constructs ContactService.
func NewContactService(sender mailer.Mailer, inbox string, validate *validator.Validate, logger *zap.Logger) *ContactService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{sender: sender, inbox: inbox, validator: validate, logger: logger}
}

// Submit emails the submission with a reply-to of the sender.
func (s *ContactService) Submit(ctx context.Context, req models.ContactRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "please fill in all required fields")
	}
	if s.inbox == "" {
		return appErrors.Clone(appErrors.ErrServiceUnavailable, "contact inbox is not configured")
	}
	body, err := mailer.RenderContact(mailer.ContactData{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     orNotProvided(req.Phone),
		Company:   orNotProvided(req.Company),
		Message:   req.Message,
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render contact email")
	}
	msg := mailer.Message{
		To:      s.inbox,
		Subject: fmt.Sprintf("New Contact Form Submission from %s %s", req.FirstName, req.LastName),
		HTML:    body,
		ReplyTo: req.Email,
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Warn("contact email failed", zap.String("from", req.Email), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrMailDelivery.Code, appErrors.ErrMailDelivery.Status, "failed to send message, please try again later")
	}
	return nil
}

func orNotProvided(value string) string {
	if strings.TrimSpace(value) == "" {
		return notProvided
	}
	return value
}
