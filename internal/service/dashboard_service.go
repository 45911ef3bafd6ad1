package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/PrincipieCyupe/tyi/internal/models"
	appErrors "github.com/PrincipieCyupe/tyi/pkg/errors"
)

const (
	homeOpportunityLimit = 2
	adminUserPageSize    = 100
	adminAuditLimit      = 20
)

type enrollmentLister interface {
	ListByUser(ctx context.Context, userID string) ([]models.EnrollmentDetail, error)
}

type applicationLister interface {
	ListOpportunities(ctx context.Context, onlyOpen bool, limit int) ([]models.Opportunity, error)
	ListByUser(ctx context.Context, userID string) ([]models.Application, error)
}

type unreadCounter interface {
	CountUnread(ctx context.Context, userID string) (int, error)
}

type standingReader interface {
	FindByUser(ctx context.Context, userID string) (*models.LeaderboardEntry, error)
	Count(ctx context.Context) (int, error)
}

type feedProvider interface {
	Feed(ctx context.Context) (*Feed, error)
	All(ctx context.Context, admin *models.AdminPrincipal) (*Feed, error)
}

type memberDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
}

type courseLister interface {
	List(ctx context.Context) ([]models.Course, error)
}

type auditLister interface {
	ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error)
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Enrollments  enrollmentLister
	Applications applicationLister
	Messages     unreadCounter
	Leaderboard  standingReader
	Content      feedProvider
	Users        memberDirectory
	Courses      courseLister
	Audit        auditLister
	Logger       *zap.Logger
}

// DashboardService composes the member home, profile and admin landing payloads.
type DashboardService struct {
	enrollments  enrollmentLister
	applications applicationLister
	messages     unreadCounter
	leaderboard  standingReader
	content      feedProvider
	users        memberDirectory
	courses      courseLister
	audit        auditLister
	logger       *zap.Logger
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		enrollments:  params.Enrollments,
		applications: params.Applications,
		messages:     params.Messages,
		leaderboard:  params.Leaderboard,
		content:      params.Content,
		users:        params.Users,
		courses:      params.Courses,
		audit:        params.Audit,
		logger:       logger,
	}
}

// Home returns the member dashboard.
func (s *DashboardService) Home(ctx context.Context, userID string) (*models.HomeSummary, error) {
	enrollments, err := s.enrollments.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list enrollments")
	}
	if enrollments == nil {
		enrollments = []models.EnrollmentDetail{}
	}
	summary := &models.HomeSummary{
		TotalCourses:    len(enrollments),
		OverallProgress: OverallProgress(enrollments),
		Enrollments:     enrollments,
	}
	for _, e := range enrollments {
		if e.Status == models.EnrollmentCompleted {
			summary.CompletedCourses++
		}
	}

	applications, err := s.applications.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list applications")
	}
	if len(applications) > 0 {
		summary.Application = &applications[0]
	}

	if summary.Leaderboard, err = s.standing(ctx, userID); err != nil {
		return nil, err
	}
	if summary.UnreadMessages, err = s.messages.CountUnread(ctx, userID); err != nil {
		return nil, appErrors.Persistence(err, "failed to count unread messages")
	}
	if summary.Opportunities, err = s.applications.ListOpportunities(ctx, true, homeOpportunityLimit); err != nil {
		return nil, appErrors.Persistence(err, "failed to list opportunities")
	}

	feed, err := s.content.Feed(ctx)
	if err != nil {
		return nil, err
	}
	summary.Events = feed.Events
	summary.BlogPosts = feed.BlogPosts
	summary.Activities = feed.Activities
	return summary, nil
}

// Profile returns the member statistics card.
func (s *DashboardService) Profile(ctx context.Context, userID string) (*models.ProfileSummary, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Persistence(err, "failed to load user")
	}
	enrollments, err := s.enrollments.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list enrollments")
	}
	applications, err := s.applications.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list applications")
	}
	entry, err := s.standing(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &models.ProfileSummary{
		User:              userInfo(user),
		TotalCourses:      len(enrollments),
		ApplicationsCount: len(applications),
		OverallProgress:   OverallProgress(enrollments),
	}
	for _, e := range enrollments {
		if e.Status == models.EnrollmentCompleted {
			profile.CompletedCourses++
		}
	}
	if entry != nil && entry.Rank != nil {
		profile.Rank = *entry.Rank
	}
	return profile, nil
}

// AdminOverview returns the back-office landing data.
func (s *DashboardService) AdminOverview(ctx context.Context, admin *models.AdminPrincipal) (*models.AdminOverview, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list courses")
	}
	users, total, err := s.users.List(ctx, models.UserFilter{Page: 1, PageSize: adminUserPageSize})
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list users")
	}
	opportunities, err := s.applications.ListOpportunities(ctx, false, 0)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list opportunities")
	}
	participants, err := s.leaderboard.Count(ctx)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to count leaderboard")
	}
	feed, err := s.content.All(ctx, admin)
	if err != nil {
		return nil, err
	}
	var recent []models.AuditLog
	if s.audit != nil {
		if recent, err = s.audit.ListRecent(ctx, adminAuditLimit); err != nil {
			s.logger.Warn("failed to load recent audit entries", zap.Error(err))
			recent = nil
		}
	}
	return &models.AdminOverview{
		Courses:       courses,
		Users:         users,
		UserCount:     total,
		Opportunities: opportunities,
		Participants:  participants,
		Events:        feed.Events,
		BlogPosts:     feed.BlogPosts,
		Activities:    feed.Activities,
		RecentAudit:   recent,
	}, nil
}

func (s *DashboardService) standing(ctx context.Context, userID string) (*models.LeaderboardEntry, error) {
	entry, err := s.leaderboard.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Persistence(err, "failed to load leaderboard entry")
	}
	return entry, nil
}
