package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/PrincipieCyupe/tyi/internal/models"
	"github.com/PrincipieCyupe/tyi/internal/repository"
	appErrors "github.com/PrincipieCyupe/tyi/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	ListModules(ctx context.Context, courseID string) ([]models.CourseModule, error)
	CreateModule(ctx context.Context, module *models.CourseModule) error
}

// CourseService manages the course catalog.
type CourseService struct {
	repo      courseRepository
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs CourseService.
func NewCourseService(repo courseRepository, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// List returns the catalog.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list courses")
	}
	return courses, nil
}

// Get returns a course with its modules.
func (s *CourseService) Get(ctx context.Context, id string) (*models.CourseWithModules, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Persistence(err, "failed to load course")
	}
	modules, err := s.repo.ListModules(ctx, course.ID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to load course modules")
	}
	return &models.CourseWithModules{Course: *course, Modules: modules}, nil
}

// Create adds a course to the catalog.
func (s *CourseService) Create(ctx context.Context, admin *models.AdminPrincipal, req models.CreateCourseRequest) (*models.Course, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid course payload")
	}

	course := &models.Course{
		Title:         req.Title,
		Description:   req.Description,
		DurationWeeks: req.DurationWeeks,
		Level:         req.Level,
		TotalModules:  req.TotalModules,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Persistence(err, "failed to create course")
	}
	recordAudit(ctx, s.audit, s.logger, admin, models.AuditActionCourseCreate, "course", course.ID, req)
	return course, nil
}

// AddModule appends a module to a course. Members enrolled earlier get no progress row for it.
func (s *CourseService) AddModule(ctx context.Context, admin *models.AdminPrincipal, courseID string, req models.CreateModuleRequest) (*models.CourseModule, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid module payload")
	}
	if _, err := s.repo.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Persistence(err, "failed to load course")
	}

	durationDays := req.DurationDays
	if durationDays == 0 {
		durationDays = 7
	}
	module := &models.CourseModule{
		CourseID:     courseID,
		ModuleNumber: req.ModuleNumber,
		Title:        req.Title,
		Description:  req.Description,
		Content:      req.Content,
		DurationDays: durationDays,
	}
	if err := s.repo.CreateModule(ctx, module); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "module number already exists for this course")
		}
		return nil, appErrors.Persistence(err, "failed to create module")
	}
	recordAudit(ctx, s.audit, s.logger, admin, models.AuditActionModuleCreate, "course_module", module.ID,
		map[string]interface{}{"course_id": courseID, "module_number": module.ModuleNumber})
	return module, nil
}
