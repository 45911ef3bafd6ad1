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
	"github.com/PrincipieCyupe/tyi/internal/repository"
	appErrors "github.com/PrincipieCyupe/tyi/pkg/errors"
)

// Completion percentages tracked per review stage.
const (
	completionSubmitted   = 25
	completionUnderReview = 50
	completionReviewed    = 100
	requiredDocuments     = 4
)

type applicationRepository interface {
	ListOpportunities(ctx context.Context, onlyOpen bool, limit int) ([]models.Opportunity, error)
	FindOpportunity(ctx context.Context, id string) (*models.Opportunity, error)
	CreateOpportunity(ctx context.Context, item *models.Opportunity) error
	UpdateCoverImage(ctx context.Context, id, coverImage string) error
	DeleteOpportunity(ctx context.Context, id string) error
	HasApplied(ctx context.Context, userID, opportunityID string) (bool, error)
	Create(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, id string) (*models.Application, error)
	ListByUser(ctx context.Context, userID string) ([]models.Application, error)
	ListAll(ctx context.Context) ([]models.Application, error)
	UpdateReview(ctx context.Context, app *models.Application) error
}

type messageWriter interface {
	Create(ctx context.Context, message *models.Message) error
}

// OpportunityBoard is the member view of open opportunities and own applications.
type OpportunityBoard struct {
	Opportunities []models.Opportunity `json:"opportunities"`
	Applications  []models.Application `json:"applications"`
}

// ApplicationService manages competition opportunities and member applications.
type ApplicationService struct {
	repo      applicationRepository
	messages  messageWriter
	audit     auditRecorder
	clock     Clock
	validator *validator.Validate
	logger    *zap.Logger
}

// NewApplicationService constructs ApplicationService.
func NewApplicationService(repo applicationRepository, messages messageWriter, audit auditRecorder, clock Clock, validate *validator.Validate, logger *zap.Logger) *ApplicationService {
	if clock == nil {
		clock = SystemClock{}
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{repo: repo, messages: messages, audit: audit, clock: clock, validator: validate, logger: logger}
}

// Board lists open opportunities with the member's applications.
func (s *ApplicationService) Board(ctx context.Context, userID string) (*OpportunityBoard, error) {
	opportunities, err := s.repo.ListOpportunities(ctx, true, 0)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list opportunities")
	}
	applications, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list applications")
	}
	return &OpportunityBoard{Opportunities: opportunities, Applications: applications}, nil
}

// ListOpportunities returns every opportunity for the admin console.
func (s *ApplicationService) ListOpportunities(ctx context.Context, admin *models.AdminPrincipal) ([]models.Opportunity, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	items, err := s.repo.ListOpportunities(ctx, false, 0)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list opportunities")
	}
	return items, nil
}

// GetOpportunity returns a single opportunity.
func (s *ApplicationService) GetOpportunity(ctx context.Context, id string) (*models.Opportunity, error) {
	return s.loadOpportunity(ctx, id)
}

// CreateOpportunity publishes a new open opportunity.
func (s *ApplicationService) CreateOpportunity(ctx context.Context, admin *models.AdminPrincipal, req models.CreateOpportunityRequest) (*models.Opportunity, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid opportunity payload")
	}
	deadline, err := time.ParseInLocation("2006-01-02", req.Deadline, time.UTC)
	if err != nil {
		return nil, appErrors.Validation(err, "deadline must be formatted as YYYY-MM-DD")
	}

	cover := strings.TrimSpace(req.CoverImage)
	if cover == "" {
		cover = models.DefaultCoverImage
	}
	item := &models.Opportunity{
		Title:        req.Title,
		Description:  req.Description,
		Requirements: req.Requirements,
		Deadline:     deadline,
		PrizeAmount:  req.PrizeAmount,
		CoverImage:   cover,
		Status:       models.OpportunityOpen,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.repo.CreateOpportunity(ctx, item); err != nil {
		return nil, appErrors.Persistence(err, "failed to create opportunity")
	}
	recordAudit(ctx, s.audit, s.logger, admin, models.AuditActionOpportunityCreate, "opportunity", item.ID, req)
	return item, nil
}

// SetCoverImage replaces an opportunity's cover URL; an empty URL restores the default.
func (s *ApplicationService) SetCoverImage(ctx context.Context, admin *models.AdminPrincipal, id, coverImage string) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	coverImage = strings.TrimSpace(coverImage)
	if coverImage == "" {
		coverImage = models.DefaultCoverImage
	}
	if err := s.validator.Var(coverImage, "max=500"); err != nil {
		return appErrors.Validation(err, "cover image URL is too long")
	}
	if err := s.repo.UpdateCoverImage(ctx, id, coverImage); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "opportunity not found")
		}
		return appErrors.Persistence(err, "failed to update opportunity")
	}
	return nil
}

// DeleteOpportunity removes an opportunity and all of its applications.
func (s *ApplicationService) DeleteOpportunity(ctx context.Context, admin *models.AdminPrincipal, id string) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	if err := s.repo.DeleteOpportunity(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "opportunity not found")
		}
		return appErrors.Persistence(err, "failed to delete opportunity")
	}
	recordAudit(ctx, s.audit, s.logger, admin, models.AuditActionOpportunityDelete, "opportunity", id, nil)
	return nil
}

// Apply submits the member's application to an opportunity.
func (s *ApplicationService) Apply(ctx context.Context, userID, opportunityID string, req models.ApplyRequest) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid application payload")
	}
	opportunity, err := s.loadOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if opportunity.Status != models.OpportunityOpen {
		return nil, appErrors.Clone(appErrors.ErrValidation, "this opportunity is closed")
	}

	applied, err := s.repo.HasApplied(ctx, userID, opportunity.ID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to check application")
	}
	if applied {
		return nil, appErrors.Clone(appErrors.ErrAlreadyApplied, "")
	}

	now := s.clock.Now()
	oppID := opportunity.ID
	app := &models.Application{
		UserID:                 userID,
		OpportunityID:          &oppID,
		CompetitionName:        opportunity.Title,
		BusinessName:           optionalString(req.BusinessName),
		BusinessIdea:           optionalString(req.BusinessIdea),
		Status:                 models.ApplicationSubmitted,
		CompletionPercentage:   completionSubmitted,
		TotalDocumentsRequired: requiredDocuments,
		CreatedAt:              now,
		SubmittedAt:            &now,
	}
	if err := s.repo.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrAlreadyApplied, "")
		}
		return nil, appErrors.Persistence(err, "failed to submit application")
	}
	s.logger.Info("application submitted", zap.String("user_id", userID), zap.String("opportunity_id", oppID))
	return app, nil
}

// ListForUser returns the member's applications.
func (s *ApplicationService) ListForUser(ctx context.Context, userID string) ([]models.Application, error) {
	apps, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list applications")
	}
	return apps, nil
}

// ListAll returns every application for review.
func (s *ApplicationService) ListAll(ctx context.Context, admin *models.AdminPrincipal) ([]models.Application, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	apps, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list applications")
	}
	return apps, nil
}

// UpdateStatus records a review decision and notifies the applicant.
func (s *ApplicationService) UpdateStatus(ctx context.Context, admin *models.AdminPrincipal, appID string, req models.UpdateApplicationRequest) (*models.Application, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid application status")
	}

	app, err := s.repo.FindByID(ctx, appID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Persistence(err, "failed to load application")
	}

	app.Status = req.Status
	if notes := optionalString(req.AdminNotes); notes != nil {
		app.AdminNotes = notes
	}
	switch req.Status {
	case models.ApplicationApproved, models.ApplicationRejected:
		now := s.clock.Now()
		app.ReviewedAt = &now
		app.CompletionPercentage = completionReviewed
	case models.ApplicationUnderReview:
		app.CompletionPercentage = completionUnderReview
	}
	if err := s.repo.UpdateReview(ctx, app); err != nil {
		return nil, appErrors.Persistence(err, "failed to update application")
	}

	notice := applicationNotice(app)
	if err := s.messages.Create(ctx, notice); err != nil {
		s.logger.Warn("failed to notify applicant", zap.String("application_id", app.ID), zap.Error(err))
	}

	recordAudit(ctx, s.audit, s.logger, admin, models.AuditActionApplicationReview, "application", app.ID,
		map[string]string{"status": string(app.Status)})
	return app, nil
}

func (s *ApplicationService) loadOpportunity(ctx context.Context, id string) (*models.Opportunity, error) {
	item, err := s.repo.FindOpportunity(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "opportunity not found")
		}
		return nil, appErrors.Persistence(err, "failed to load opportunity")
	}
	return item, nil
}

func applicationNotice(app *models.Application) *models.Message {
	msg := &models.Message{
		UserID:      app.UserID,
		Title:       "Application Status Update",
		Content:     fmt.Sprintf("Your application for %q has been %s.", app.CompetitionName, strings.ReplaceAll(string(app.Status), "_", " ")),
		MessageType: "red",
		IconType:    "application",
	}
	switch app.Status {
	case models.ApplicationUnderReview:
		msg.MessageType = "blue"
	case models.ApplicationApproved:
		msg.MessageType = "green"
	}
	return msg
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
