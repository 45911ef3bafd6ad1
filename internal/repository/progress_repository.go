package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/PrincipieCyupe/tyi/internal/models"
	"github.com/PrincipieCyupe/tyi/pkg/database"
)

const progressColumns = `id, user_id, module_id, status, started_at, completed_at`

// ProgressRepository handles per-module progress rows.
type ProgressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository constructs the repository.
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// FindByUserAndModule returns the progress row for the pair.
func (r *ProgressRepository) FindByUserAndModule(ctx context.Context, userID, moduleID string) (*models.ModuleProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM user_module_progress WHERE user_id = $1 AND module_id = $2`
	var progress models.ModuleProgress
	if err := r.db.GetContext(ctx, &progress, query, userID, moduleID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find module progress: %w", err)
	}
	return &progress, nil
}

// FindByID returns a progress row by its ID.
func (r *ProgressRepository) FindByID(ctx context.Context, id string) (*models.ModuleProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM user_module_progress WHERE id = $1`
	var progress models.ModuleProgress
	if err := r.db.GetContext(ctx, &progress, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find module progress: %w", err)
	}
	return &progress, nil
}

// ListForCourse returns a user's progress rows for a course's modules.
func (r *ProgressRepository) ListForCourse(ctx context.Context, userID, courseID string) ([]models.ModuleProgress, error) {
	const query = `SELECT ump.id, ump.user_id, ump.module_id, ump.status, ump.started_at, ump.completed_at
        FROM user_module_progress ump
        JOIN course_modules cm ON cm.id = ump.module_id
        WHERE ump.user_id = $1 AND cm.course_id = $2
        ORDER BY cm.module_number ASC`
	var rows []models.ModuleProgress
	if err := r.db.SelectContext(ctx, &rows, query, userID, courseID); err != nil {
		return nil, fmt.Errorf("list module progress: %w", err)
	}
	return rows, nil
}

// Update stores status and timestamps of a progress row.
func (r *ProgressRepository) Update(ctx context.Context, progress *models.ModuleProgress) error {
	const query = `UPDATE user_module_progress SET status = :status, started_at = :started_at, completed_at = :completed_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, progress); err != nil {
		return fmt.Errorf("update module progress: %w", err)
	}
	return nil
}

// UpdateWithAggregates stores the progress row and re-derives its enrollment in one
// transaction. The enrollment row is locked while derive applies the completed and total
// module counts to it. It returns a nil enrollment when the user is not enrolled in courseID.
func (r *ProgressRepository) UpdateWithAggregates(ctx context.Context, progress *models.ModuleProgress, courseID string, derive func(enrollment *models.Enrollment, completed, total int)) (*models.Enrollment, error) {
	var enrollment *models.Enrollment
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const updateProgress = `UPDATE user_module_progress SET status = :status, started_at = :started_at, completed_at = :completed_at WHERE id = :id`
		if _, err := tx.NamedExecContext(ctx, updateProgress, progress); err != nil {
			return fmt.Errorf("update module progress: %w", err)
		}

		lockEnrollment := `SELECT ` + enrollmentColumns + ` FROM user_courses WHERE user_id = $1 AND course_id = $2 FOR UPDATE`
		var row models.Enrollment
		if err := tx.GetContext(ctx, &row, lockEnrollment, progress.UserID, courseID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("lock enrollment: %w", err)
		}

		const countModules = `SELECT COUNT(*) FROM course_modules WHERE course_id = $1`
		var total int
		if err := tx.GetContext(ctx, &total, countModules, courseID); err != nil {
			return fmt.Errorf("count course modules: %w", err)
		}
		const countCompleted = `SELECT COUNT(*) FROM user_module_progress ump
        JOIN course_modules cm ON cm.id = ump.module_id
        WHERE ump.user_id = $1 AND cm.course_id = $2 AND ump.status = $3`
		var completed int
		if err := tx.GetContext(ctx, &completed, countCompleted, progress.UserID, courseID, models.ModuleCompleted); err != nil {
			return fmt.Errorf("count completed modules: %w", err)
		}

		derive(&row, completed, total)
		const updateEnrollment = `UPDATE user_courses SET completed_modules = :completed_modules, progress_percentage = :progress_percentage,
        status = :status, completed_at = :completed_at WHERE id = :id`
		if _, err := tx.NamedExecContext(ctx, updateEnrollment, &row); err != nil {
			return fmt.Errorf("update enrollment progress: %w", err)
		}
		enrollment = &row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}
