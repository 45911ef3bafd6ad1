package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/PrincipieCyupe/tyi/internal/models"
	appErrors "github.com/PrincipieCyupe/tyi/pkg/errors"
	"github.com/PrincipieCyupe/tyi/pkg/mailer"
	"github.com/PrincipieCyupe/tyi/pkg/security"
)

// MinResetPasswordLength is the shortest password accepted by the reset form.
const MinResetPasswordLength = 4

type resetUserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByResetToken(ctx context.Context, token string) (*models.User, error)
	SetResetToken(ctx context.Context, id, token string, expiry time.Time) error
	ConsumeResetToken(ctx context.Context, id, token, passwordHash string, updatedAt time.Time) (bool, error)
}

type passwordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// ResetConfig tunes the reset flow.
type ResetConfig struct {
	TokenTTL   time.Duration
	AppBaseURL string
}

// PasswordResetService issues single-use, time-limited reset tokens and consumes them.
//
// A user is in one of three states: no active reset (token and expiry both null), pending
// (token stored, now before expiry) or expired (token stored, now at or after expiry).
// A new request always overwrites the stored pair.
type PasswordResetService struct {
	users     resetUserStore
	hasher    passwordHasher
	mailer    mailer.Mailer
	audit     auditRecorder
	metrics   *MetricsService
	clock     Clock
	validator *validator.Validate
	logger    *zap.Logger
	config    ResetConfig
	newToken  func(n int) (string, error)
}

// NewPasswordResetService constructs PasswordResetService.
func NewPasswordResetService(users resetUserStore, hasher passwordHasher, sender mailer.Mailer, audit auditRecorder, metrics *MetricsService, clock Clock, validate *validator.Validate, logger *zap.Logger, config ResetConfig) *PasswordResetService {
	if clock == nil {
		clock = SystemClock{}
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.TokenTTL <= 0 {
		config.TokenTTL = time.Hour
	}
	return &PasswordResetService{
		users:     users,
		hasher:    hasher,
		mailer:    sender,
		audit:     audit,
		metrics:   metrics,
		clock:     clock,
		validator: validate,
		logger:    logger,
		config:    config,
		newToken:  security.NewOpaqueToken,
	}
}

// RequestReset mints and mails a reset token. An unknown email is indistinguishable from
// success for the caller; a delivery failure is reported as MAIL_DELIVERY_FAILED.
func (s *PasswordResetService) RequestReset(ctx context.Context, req models.ForgotPasswordRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "a valid email address is required")
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordResetRequest(ResetOutcomeUnknownEmail)
			s.logger.Info("password reset requested for unknown email")
			return nil
		}
		return appErrors.Persistence(err, "failed to look up user")
	}

	token, err := s.newToken(security.ResetTokenBytes)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate reset token")
	}
	expiry := s.clock.Now().UTC().Add(s.config.TokenTTL)
	if err := s.users.SetResetToken(ctx, user.ID, token, expiry); err != nil {
		return appErrors.Persistence(err, "failed to store reset token")
	}

	body, err := mailer.RenderReset(mailer.ResetData{
		FirstName: user.FirstName,
		Link:      s.resetLink(token),
		ExpiresIn: describeTTL(s.config.TokenTTL),
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render reset email")
	}
	if err := s.mailer.Send(ctx, mailer.Message{
		To:      user.Email,
		Subject: "Password Reset Request - Tegura Youth Initiative",
		HTML:    body,
	}); err != nil {
		s.metrics.RecordResetRequest(ResetOutcomeMailFailed)
		s.logger.Warn("failed to send reset email", zap.String("user_id", user.ID), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrMailDelivery.Code, appErrors.ErrMailDelivery.Status, appErrors.ErrMailDelivery.Message)
	}

	s.metrics.RecordResetRequest(ResetOutcomeSent)
	s.logger.Info("password reset email sent", zap.String("user_id", user.ID), zap.Time("expires_at", expiry))
	return nil
}

// ValidateReset checks a token without consuming it.
func (s *PasswordResetService) ValidateReset(ctx context.Context, token string) error {
	_, err := s.pendingUser(ctx, token)
	return err
}

// ConsumeReset sets a new password for the holder of token and clears the token pair.
func (s *PasswordResetService) ConsumeReset(ctx context.Context, token string, req models.ResetPasswordRequest) error {
	if len(req.Password) < MinResetPasswordLength {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("password must be at least %d characters long", MinResetPasswordLength))
	}
	if req.Password != req.ConfirmPassword {
		return appErrors.Clone(appErrors.ErrValidation, "passwords do not match")
	}

	user, err := s.pendingUser(ctx, token)
	if err != nil {
		return err
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	consumed, err := s.users.ConsumeResetToken(ctx, user.ID, token, digest, s.clock.Now().UTC())
	if err != nil {
		return appErrors.Persistence(err, "failed to reset password")
	}
	if !consumed {
		// The token changed or expired after it was read.
		s.metrics.RecordResetConsume(ResetOutcomeInvalid)
		return appErrors.Clone(appErrors.ErrInvalidToken, "")
	}

	s.metrics.RecordResetConsume(ResetOutcomeConsumed)
	if s.audit != nil {
		userID := user.ID
		if err := s.audit.Create(ctx, &models.AuditLog{
			UserID:     &userID,
			Action:     models.AuditActionPasswordReset,
			Resource:   "auth",
			ResourceID: &userID,
			NewValues:  []byte(`{"status":"reset"}`),
		}); err != nil {
			s.logger.Warn("failed to record password reset audit log", zap.Error(err))
		}
	}
	s.logger.Info("password reset completed", zap.String("user_id", user.ID))
	return nil
}

func (s *PasswordResetService) pendingUser(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		s.metrics.RecordResetConsume(ResetOutcomeInvalid)
		return nil, appErrors.Clone(appErrors.ErrInvalidToken, "")
	}
	user, err := s.users.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordResetConsume(ResetOutcomeInvalid)
			return nil, appErrors.Clone(appErrors.ErrInvalidToken, "")
		}
		return nil, appErrors.Persistence(err, "failed to look up reset token")
	}
	if user.ResetTokenExpiry == nil {
		s.metrics.RecordResetConsume(ResetOutcomeInvalid)
		return nil, appErrors.Clone(appErrors.ErrInvalidToken, "")
	}
	// The token is only valid strictly before its expiry instant.
	if !s.clock.Now().UTC().Before(user.ResetTokenExpiry.UTC()) {
		s.metrics.RecordResetConsume(ResetOutcomeExpired)
		return nil, appErrors.Clone(appErrors.ErrTokenExpired, "")
	}
	return user, nil
}

func (s *PasswordResetService) resetLink(token string) string {
	return strings.TrimRight(s.config.AppBaseURL, "/") + "/reset-password/" + token
}

func describeTTL(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	case d >= time.Minute:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	default:
		return d.String()
	}
}
