package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/PrincipieCyupe/tyi/internal/models"
)

const (
	courseColumns = `id, title, description, duration_weeks, level, total_modules, created_at`
	moduleColumns = `id, course_id, module_number, title, description, content, duration_days, created_at`
)

// CourseRepository handles persistence of courses and their modules.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns every course, newest first.
func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses ORDER BY created_at DESC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// Count returns the size of the catalog.
func (r *CourseRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM courses`); err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return total, nil
}

// FindByID returns a course by its ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &course, nil
}

// Create persists a new course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	if course.CreatedAt.IsZero() {
		course.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO courses (id, title, description, duration_weeks, level, total_modules, created_at)
        VALUES (:id, :title, :description, :duration_weeks, :level, :total_modules, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// ListModules returns a course's modules ordered by module_number.
func (r *CourseRepository) ListModules(ctx context.Context, courseID string) ([]models.CourseModule, error) {
	query := `SELECT ` + moduleColumns + ` FROM course_modules WHERE course_id = $1 ORDER BY module_number ASC`
	var modules []models.CourseModule
	if err := r.db.SelectContext(ctx, &modules, query, courseID); err != nil {
		return nil, fmt.Errorf("list course modules: %w", err)
	}
	return modules, nil
}

// CountModules counts module rows of a course.
func (r *CourseRepository) CountModules(ctx context.Context, courseID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM course_modules WHERE course_id = $1`, courseID); err != nil {
		return 0, fmt.Errorf("count course modules: %w", err)
	}
	return total, nil
}

// FindModuleByID returns a single module.
func (r *CourseRepository) FindModuleByID(ctx context.Context, id string) (*models.CourseModule, error) {
	query := `SELECT ` + moduleColumns + ` FROM course_modules WHERE id = $1`
	var module models.CourseModule
	if err := r.db.GetContext(ctx, &module, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course module: %w", err)
	}
	return &module, nil
}

// CreateModule inserts a module. A reused module_number yields ErrDuplicate.
func (r *CourseRepository) CreateModule(ctx context.Context, module *models.CourseModule) error {
	if module.ID == "" {
		module.ID = uuid.NewString()
	}
	if module.CreatedAt.IsZero() {
		module.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO course_modules (id, course_id, module_number, title, description, content, duration_days, created_at)
        VALUES (:id, :course_id, :module_number, :title, :description, :content, :duration_days, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, module); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create course module: %w", err)
	}
	return nil
}

// DeleteCascade removes a course with its progress rows, enrollments and modules.
func (r *CourseRepository) DeleteCascade(ctx context.Context, courseID string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin course delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	steps := []struct {
		name  string
		query string
	}{
		{"module progress", `DELETE FROM user_module_progress WHERE module_id IN (SELECT id FROM course_modules WHERE course_id = $1)`},
		{"enrollments", `DELETE FROM user_courses WHERE course_id = $1`},
		{"modules", `DELETE FROM course_modules WHERE course_id = $1`},
	}
	for _, step := range steps {
		if _, err = tx.ExecContext(ctx, step.query, courseID); err != nil {
			return fmt.Errorf("delete course %s: %w", step.name, err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, courseID)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit course delete: %w", err)
	}
	return nil
}

// DeleteModuleCascade removes a module and its progress rows.
func (r *CourseRepository) DeleteModuleCascade(ctx context.Context, moduleID string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin module delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM user_module_progress WHERE module_id = $1`, moduleID); err != nil {
		return fmt.Errorf("delete module progress: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM course_modules WHERE id = $1`, moduleID); err != nil {
		return fmt.Errorf("delete module: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit module delete: %w", err)
	}
	return nil
}
