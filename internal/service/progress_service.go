package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/PrincipieCyupe/tyi/internal/models"
	"github.com/PrincipieCyupe/tyi/internal/repository"
	appErrors "github.com/PrincipieCyupe/tyi/pkg/errors"
)

type catalogStore interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ListModules(ctx context.Context, courseID string) ([]models.CourseModule, error)
	CountModules(ctx context.Context, courseID string) (int, error)
	FindModuleByID(ctx context.Context, id string) (*models.CourseModule, error)
	DeleteCascade(ctx context.Context, courseID string) error
	DeleteModuleCascade(ctx context.Context, moduleID string) error
}

type enrollmentStore interface {
	FindByUserAndCourse(ctx context.Context, userID, courseID string) (*models.Enrollment, error)
	ListByUser(ctx context.Context, userID string) ([]models.EnrollmentDetail, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error)
	CreateWithProgress(ctx context.Context, enrollment *models.Enrollment, modules []models.CourseModule) error
	UpdateAggregates(ctx context.Context, enrollment *models.Enrollment) error
	CountCompletedModules(ctx context.Context, userID, courseID string) (int, error)
}

type moduleProgressStore interface {
	FindByUserAndModule(ctx context.Context, userID, moduleID string) (*models.ModuleProgress, error)
	FindByID(ctx context.Context, id string) (*models.ModuleProgress, error)
	ListForCourse(ctx context.Context, userID, courseID string) ([]models.ModuleProgress, error)
	Update(ctx context.Context, progress *models.ModuleProgress) error
	UpdateWithAggregates(ctx context.Context, progress *models.ModuleProgress, courseID string, derive func(enrollment *models.Enrollment, completed, total int)) (*models.Enrollment, error)
}

type userReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// ProgressService owns enrollments and per-module progress and keeps enrollment aggregates
// consistent with module rows. applyAggregates is the only place that derives
// completed_modules, progress_percentage and enrollment status.
type ProgressService struct {
	courses     catalogStore
	enrollments enrollmentStore
	progress    moduleProgressStore
	users       userReader
	audit       auditRecorder
	metrics     *MetricsService
	clock       Clock
	logger      *zap.Logger
}

// NewProgressService constructs ProgressService.
func NewProgressService(courses catalogStore, enrollments enrollmentStore, progress moduleProgressStore, users userReader, audit auditRecorder, metrics *MetricsService, clock Clock, logger *zap.Logger) *ProgressService {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressService{
		courses:     courses,
		enrollments: enrollments,
		progress:    progress,
		users:       users,
		audit:       audit,
		metrics:     metrics,
		clock:       clock,
		logger:      logger,
	}
}

// Enroll creates the enrollment and seeds a not_started progress row for every module.
func (s *ProgressService) Enroll(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if _, err := s.enrollments.FindByUserAndCourse(ctx, userID, course.ID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrAlreadyEnrolled, "you are already enrolled in this course")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Persistence(err, "failed to check enrollment")
	}

	modules, err := s.courses.ListModules(ctx, course.ID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to load course modules")
	}

	enrollment := &models.Enrollment{
		UserID:        userID,
		CourseID:      course.ID,
		CurrentModule: 1,
		Status:        models.EnrollmentInProgress,
		EnrolledAt:    s.clock.Now(),
	}
	if err := s.enrollments.CreateWithProgress(ctx, enrollment, modules); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrAlreadyEnrolled, "you are already enrolled in this course")
		}
		return nil, appErrors.Persistence(err, "failed to create enrollment")
	}

	s.metrics.RecordEnrollment()
	s.logger.Info("user enrolled",
		zap.String("user_id", userID),
		zap.String("course_id", course.ID),
		zap.Int("modules", len(modules)),
	)
	return enrollment, nil
}

// AdvanceModule marks a module in_progress the first time the member opens it.
func (s *ProgressService) AdvanceModule(ctx context.Context, userID, moduleID string) (*models.ModuleView, error) {
	module, err := s.loadModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	course, err := s.loadCourse(ctx, module.CourseID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEnrollment(ctx, userID, module.CourseID); err != nil {
		return nil, err
	}

	progress, err := s.progress.FindByUserAndModule(ctx, userID, module.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "module progress not found")
		}
		return nil, appErrors.Persistence(err, "failed to load module progress")
	}

	if progress.Status == models.ModuleNotStarted {
		now := s.clock.Now()
		progress.Status = models.ModuleInProgress
		progress.StartedAt = &now
		if err := s.progress.Update(ctx, progress); err != nil {
			return nil, appErrors.Persistence(err, "failed to start module")
		}
		s.metrics.RecordModuleStatus(progress.Status)
	}

	return &models.ModuleView{Course: *course, Module: *module, Progress: *progress}, nil
}

// SetModuleStatus applies an administrative status override and recomputes the enrollment.
func (s *ProgressService) SetModuleStatus(ctx context.Context, admin *models.AdminPrincipal, progressID string, status models.ModuleStatus) (*models.ModuleProgress, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be one of not_started, in_progress, completed")
	}

	progress, err := s.progress.FindByID(ctx, progressID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "module progress not found")
		}
		return nil, appErrors.Persistence(err, "failed to load module progress")
	}
	module, err := s.loadModule(ctx, progress.ModuleID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	progress.Status = status
	switch status {
	case models.ModuleInProgress:
		if progress.StartedAt == nil {
			progress.StartedAt = &now
		}
	case models.ModuleCompleted:
		// Re-stamped on every transition into completed.
		progress.CompletedAt = &now
	}
	if _, err := s.progress.UpdateWithAggregates(ctx, progress, module.CourseID, s.applyAggregates); err != nil {
		return nil, appErrors.Persistence(err, "failed to update module progress")
	}
	s.metrics.RecordModuleStatus(status)

	recordAudit(ctx, s.audit, s.logger, admin, models.AuditActionProgressOverride, "module_progress", progress.ID,
		map[string]string{"status": string(status), "user_id": progress.UserID})
	return progress, nil
}

// RecomputeEnrollmentProgress derives the enrollment aggregates from its module rows.
// It returns nil without error when the pair has no enrollment.
func (s *ProgressService) RecomputeEnrollmentProgress(ctx context.Context, courseID, userID string) (*models.Enrollment, error) {
	enrollment, err := s.enrollments.FindByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Persistence(err, "failed to load enrollment")
	}

	total, err := s.courses.CountModules(ctx, courseID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to count course modules")
	}
	completed, err := s.enrollments.CountCompletedModules(ctx, userID, courseID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to count completed modules")
	}

	s.applyAggregates(enrollment, completed, total)
	if err := s.enrollments.UpdateAggregates(ctx, enrollment); err != nil {
		return nil, appErrors.Persistence(err, "failed to update enrollment progress")
	}
	return enrollment, nil
}

// applyAggregates sets the derived enrollment fields from its module counts.
func (s *ProgressService) applyAggregates(enrollment *models.Enrollment, completed, total int) {
	enrollment.CompletedModules = completed
	enrollment.ProgressPercentage = ProgressPercentage(completed, total)
	if total > 0 && completed == total {
		now := s.clock.Now()
		enrollment.Status = models.EnrollmentCompleted
		enrollment.CompletedAt = &now
		return
	}
	// A demoted enrollment keeps the stamp of its last completion.
	enrollment.Status = models.EnrollmentInProgress
}

// DeleteCourse removes a course with its modules, enrollments and progress rows.
func (s *ProgressService) DeleteCourse(ctx context.Context, admin *models.AdminPrincipal, courseID string) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	if err := s.courses.DeleteCascade(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Persistence(err, "failed to delete course")
	}
	recordAudit(ctx, s.audit, s.logger, admin, models.AuditActionCourseDelete, "course", courseID, nil)
	return nil
}

// DeleteModule removes a module and its progress rows, then recomputes every enrollment of the course.
func (s *ProgressService) DeleteModule(ctx context.Context, admin *models.AdminPrincipal, moduleID string) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	module, err := s.loadModule(ctx, moduleID)
	if err != nil {
		return err
	}
	if err := s.courses.DeleteModuleCascade(ctx, module.ID); err != nil {
		return appErrors.Persistence(err, "failed to delete module")
	}

	enrollments, err := s.enrollments.ListByCourse(ctx, module.CourseID)
	if err != nil {
		return appErrors.Persistence(err, "failed to list course enrollments")
	}
	for _, enrollment := range enrollments {
		if _, err := s.RecomputeEnrollmentProgress(ctx, module.CourseID, enrollment.UserID); err != nil {
			return err
		}
	}

	recordAudit(ctx, s.audit, s.logger, admin, models.AuditActionModuleDelete, "course_module", module.ID,
		map[string]interface{}{"course_id": module.CourseID, "recomputed": len(enrollments)})
	return nil
}

// CourseDetail returns an enrolled member's view of a course.
func (s *ProgressService) CourseDetail(ctx context.Context, userID, courseID string) (*models.CourseProgress, error) {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	enrollment, err := s.enrollments.FindByUserAndCourse(ctx, userID, course.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotEnrolled, "")
		}
		return nil, appErrors.Persistence(err, "failed to load enrollment")
	}
	return s.courseProgress(ctx, *course, *enrollment)
}

// Education summarises a member's enrollments and the remaining catalog.
func (s *ProgressService) Education(ctx context.Context, userID string) (*models.EducationOverview, error) {
	enrollments, err := s.enrollments.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list enrollments")
	}
	catalog, err := s.courses.List(ctx)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list courses")
	}

	overview := &models.EducationOverview{
		InProgress:       []models.EnrollmentDetail{},
		Completed:        []models.EnrollmentDetail{},
		AvailableCourses: []models.Course{},
		TotalCourses:     len(enrollments),
		OverallProgress:  OverallProgress(enrollments),
	}
	enrolled := make(map[string]struct{}, len(enrollments))
	for _, e := range enrollments {
		enrolled[e.CourseID] = struct{}{}
		if e.Status == models.EnrollmentCompleted {
			overview.Completed = append(overview.Completed, e)
		} else {
			overview.InProgress = append(overview.InProgress, e)
		}
	}
	overview.CompletedCount = len(overview.Completed)
	overview.InProgressCount = len(overview.InProgress)
	for _, course := range catalog {
		if _, ok := enrolled[course.ID]; !ok {
			overview.AvailableCourses = append(overview.AvailableCourses, course)
		}
	}
	return overview, nil
}

// UserProgress returns the per-course module grid of a member for the admin console.
func (s *ProgressService) UserProgress(ctx context.Context, admin *models.AdminPrincipal, userID string) (*models.UserProgressReport, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Persistence(err, "failed to load user")
	}
	enrollments, err := s.enrollments.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list enrollments")
	}

	report := &models.UserProgressReport{User: *user, Progress: make([]models.CourseProgress, 0, len(enrollments))}
	for _, e := range enrollments {
		course, err := s.loadCourse(ctx, e.CourseID)
		if err != nil {
			return nil, err
		}
		item, err := s.courseProgress(ctx, *course, e.Enrollment)
		if err != nil {
			return nil, err
		}
		report.Progress = append(report.Progress, *item)
	}
	return report, nil
}

func (s *ProgressService) courseProgress(ctx context.Context, course models.Course, enrollment models.Enrollment) (*models.CourseProgress, error) {
	modules, err := s.courses.ListModules(ctx, course.ID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to load course modules")
	}
	rows, err := s.progress.ListForCourse(ctx, enrollment.UserID, course.ID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to load module progress")
	}
	byModule := make(map[string]models.ModuleProgress, len(rows))
	for _, row := range rows {
		byModule[row.ModuleID] = row
	}

	items := make([]models.ModuleWithProgress, 0, len(modules))
	for _, module := range modules {
		item := models.ModuleWithProgress{Module: module}
		if row, ok := byModule[module.ID]; ok {
			row := row
			item.Progress = &row
		}
		items = append(items, item)
	}
	return &models.CourseProgress{Course: course, Enrollment: enrollment, Modules: items}, nil
}

func (s *ProgressService) requireEnrollment(ctx context.Context, userID, courseID string) error {
	if _, err := s.enrollments.FindByUserAndCourse(ctx, userID, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotEnrolled, "")
		}
		return appErrors.Persistence(err, "failed to load enrollment")
	}
	return nil
}

func (s *ProgressService) loadCourse(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Persistence(err, "failed to load course")
	}
	return course, nil
}

func (s *ProgressService) loadModule(ctx context.Context, id string) (*models.CourseModule, error) {
	module, err := s.courses.FindModuleByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return nil, appErrors.Persistence(err, "failed to load module")
	}
	return module, nil
}

// ProgressPercentage is floor(100*completed/total), or 0 for an empty course.
func ProgressPercentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return completed * 100 / total
}

// OverallProgress averages enrollment percentages with floor division.
func OverallProgress(enrollments []models.EnrollmentDetail) int {
	if len(enrollments) == 0 {
		return 0
	}
	sum := 0
	for _, e := range enrollments {
		sum += e.ProgressPercentage
	}
	return sum / len(enrollments)
}
