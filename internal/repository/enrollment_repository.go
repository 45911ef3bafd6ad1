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

const enrollmentColumns = `id, user_id, course_id, current_module, completed_modules, progress_percentage, status, enrolled_at, completed_at`

// EnrollmentRepository handles persistence of course enrollments (user_courses).
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindByUserAndCourse returns the enrollment for the pair.
func (r *EnrollmentRepository) FindByUserAndCourse(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM user_courses WHERE user_id = $1 AND course_id = $2`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, userID, courseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &enrollment, nil
}

// ListByUser returns a member's enrollments with course info, newest first.
func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT uc.id, uc.user_id, uc.course_id, uc.current_module, uc.completed_modules, uc.progress_percentage,
        uc.status, uc.enrolled_at, uc.completed_at,
        c.title AS course_title, c.level AS course_level, c.total_modules AS total_modules
        FROM user_courses uc
        JOIN courses c ON c.id = uc.course_id
        WHERE uc.user_id = $1
        ORDER BY uc.enrolled_at DESC`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, userID); err != nil {
		return nil, fmt.Errorf("list user enrollments: %w", err)
	}
	return enrollments, nil
}

// ListByCourse returns every enrollment of a course.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM user_courses WHERE course_id = $1`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, courseID); err != nil {
		return nil, fmt.Errorf("list course enrollments: %w", err)
	}
	return enrollments, nil
}

// CreateWithProgress inserts the enrollment and one not_started progress row per module
// in a single transaction. A concurrent duplicate enrollment yields ErrDuplicate.
func (r *EnrollmentRepository) CreateWithProgress(ctx context.Context, enrollment *models.Enrollment, modules []models.CourseModule) (err error) {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enrollment transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertEnrollment = `INSERT INTO user_courses (id, user_id, course_id, current_module, completed_modules, progress_percentage, status, enrolled_at, completed_at)
        VALUES (:id, :user_id, :course_id, :current_module, :completed_modules, :progress_percentage, :status, :enrolled_at, :completed_at)`
	if _, err = tx.NamedExecContext(ctx, insertEnrollment, enrollment); err != nil {
		if isUniqueViolation(err) {
			err = ErrDuplicate
			return err
		}
		return fmt.Errorf("insert enrollment: %w", err)
	}

	const insertProgress = `INSERT INTO user_module_progress (id, user_id, module_id, status) VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id, module_id) DO NOTHING`
	for _, module := range modules {
		if _, err = tx.ExecContext(ctx, insertProgress, uuid.NewString(), enrollment.UserID, module.ID, models.ModuleNotStarted); err != nil {
			return fmt.Errorf("insert module progress: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit enrollment: %w", err)
	}
	return nil
}

// UpdateAggregates writes the derived progress columns of an enrollment.
func (r *EnrollmentRepository) UpdateAggregates(ctx context.Context, enrollment *models.Enrollment) error {
	const query = `UPDATE user_courses SET completed_modules = :completed_modules, progress_percentage = :progress_percentage,
        status = :status, completed_at = :completed_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("update enrollment progress: %w", err)
	}
	return nil
}

// CountCompletedModules counts completed progress rows of a user for a course's modules.
func (r *EnrollmentRepository) CountCompletedModules(ctx context.Context, userID, courseID string) (int, error) {
	const query = `SELECT COUNT(*) FROM user_module_progress ump
        JOIN course_modules cm ON cm.id = ump.module_id
        WHERE ump.user_id = $1 AND cm.course_id = $2 AND ump.status = $3`
	var total int
	if err := r.db.GetContext(ctx, &total, query, userID, courseID, models.ModuleCompleted); err != nil {
		return 0, fmt.Errorf("count completed modules: %w", err)
	}
	return total, nil
}
