package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/PrincipieCyupe/tyi/internal/models"
	appErrors "github.com/PrincipieCyupe/tyi/pkg/errors"
)

// Content kinds accepted by ContentService.Delete.
const (
	ContentEvent    = "event"
	ContentBlog     = "blog"
	ContentActivity = "activity"
)

const feedSize = 3

type contentRepository interface {
	UpcomingEvents(ctx context.Context, from time.Time, limit int) ([]models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	CreateEvent(ctx context.Context, event *models.Event) error
	PublishedPosts(ctx context.Context, limit int) ([]models.BlogPost, error)
	ListPosts(ctx context.Context) ([]models.BlogPost, error)
	CreatePost(ctx context.Context, post *models.BlogPost) error
	ActiveActivities(ctx context.Context, limit int) ([]models.ActivityUpdate, error)
	ListActivities(ctx context.Context) ([]models.ActivityUpdate, error)
	CreateActivity(ctx context.Context, item *models.ActivityUpdate) error
	Delete(ctx context.Context, kind, id string) error
}

// Feed is the content block of the member home page.
type Feed struct {
	Events     []models.Event          `json:"events"`
	BlogPosts  []models.BlogPost       `json:"blog_posts"`
	Activities []models.ActivityUpdate `json:"activities"`
}

// ContentService manages the events, blog posts and activity updates shown to members.
type ContentService struct {
	repo      contentRepository
	audit     auditRecorder
	clock     Clock
	validator *validator.Validate
	logger    *zap.Logger
}

// NewContentService constructs ContentService.
func NewContentService(repo contentRepository, audit auditRecorder, clock Clock, validate *validator.Validate, logger *zap.Logger) *ContentService {
	if clock == nil {
		clock = SystemClock{}
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentService{repo: repo, audit: audit, clock: clock, validator: validate, logger: logger}
}

// Feed returns the next events, latest posts and recent activity. Events before today are excluded.
func (s *ContentService) Feed(ctx context.Context) (*Feed, error) {
	now := s.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	events, err := s.repo.UpcomingEvents(ctx, today, feedSize)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list events")
	}
	posts, err := s.repo.PublishedPosts(ctx, feedSize)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list blog posts")
	}
	activities, err := s.repo.ActiveActivities(ctx, feedSize)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list activity updates")
	}
	return &Feed{Events: events, BlogPosts: posts, Activities: activities}, nil
}

// All returns every content item for the admin console.
func (s *ContentService) All(ctx context.Context, admin *models.AdminPrincipal) (*Feed, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	events, err := s.repo.ListEvents(ctx)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list events")
	}
	posts, err := s.repo.ListPosts(ctx)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list blog posts")
	}
	activities, err := s.repo.ListActivities(ctx)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list activity updates")
	}
	return &Feed{Events: events, BlogPosts: posts, Activities: activities}, nil
}

// CreateEvent adds a calendar event.
func (s *ContentService) CreateEvent(ctx context.Context, admin *models.AdminPrincipal, req models.CreateEventRequest) (*models.Event, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid event payload")
	}
	date, err := time.ParseInLocation("2006-01-02", req.EventDate, time.UTC)
	if err != nil {
		return nil, appErrors.Validation(err, "event_date must be formatted as YYYY-MM-DD")
	}
	eventType := req.EventType
	if eventType == "" {
		eventType = "general"
	}
	event := &models.Event{
		Title:       req.Title,
		Description: req.Description,
		EventDate:   date,
		StartTime:   optionalString(req.StartTime),
		EndTime:     optionalString(req.EndTime),
		EventType:   eventType,
		IsActive:    true,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return nil, appErrors.Persistence(err, "failed to create event")
	}
	recordAudit(ctx, s.audit, s.logger, admin, models.AuditActionContentCreate, ContentEvent, event.ID, nil)
	return event, nil
}

// CreatePost publishes a blog post.
func (s *ContentService) CreatePost(ctx context.Context, admin *models.AdminPrincipal, req models.CreateBlogPostRequest) (*models.BlogPost, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid blog post payload")
	}
	published, err := time.ParseInLocation("2006-01-02", req.PublishDate, time.UTC)
	if err != nil {
		return nil, appErrors.Validation(err, "publish_date must be formatted as YYYY-MM-DD")
	}
	cover := strings.TrimSpace(req.CoverImage)
	if cover == "" {
		cover = models.DefaultBlogCover
	}
	post := &models.BlogPost{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		YoutubeURL:  req.YoutubeURL,
		CoverImage:  cover,
		PublishDate: published,
		IsPublished: true,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, appErrors.Persistence(err, "failed to create blog post")
	}
	recordAudit(ctx, s.audit, s.logger, admin, models.AuditActionContentCreate, ContentBlog, post.ID, nil)
	return post, nil
}

// CreateActivity adds an activity update.
func (s *ContentService) CreateActivity(ctx context.Context, admin *models.AdminPrincipal, req models.CreateActivityRequest) (*models.ActivityUpdate, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid activity payload")
	}
	item := &models.ActivityUpdate{
		Title:       req.Title,
		Description: req.Description,
		UpdateType:  defaultString(req.UpdateType, "general"),
		IconColor:   defaultString(req.IconColor, "blue"),
		IsActive:    true,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.CreateActivity(ctx, item); err != nil {
		return nil, appErrors.Persistence(err, "failed to create activity update")
	}
	recordAudit(ctx, s.audit, s.logger, admin, models.AuditActionContentCreate, ContentActivity, item.ID, nil)
	return item, nil
}

// Delete removes a content item of the given kind.
func (s *ContentService) Delete(ctx context.Context, admin *models.AdminPrincipal, kind, id string) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	switch kind {
	case ContentEvent, ContentBlog, ContentActivity:
	default:
		return appErrors.Clone(appErrors.ErrValidation, "unknown content type")
	}
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, kind+" not found")
		}
		return appErrors.Persistence(err, "failed to delete "+kind)
	}
	recordAudit(ctx, s.audit, s.logger, admin, models.AuditActionContentDelete, kind, id, nil)
	return nil
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
