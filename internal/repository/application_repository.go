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
	opportunityColumns = `id, title, description, requirements, deadline, prize_amount, cover_image, status, created_at`
	applicationColumns = `id, user_id, opportunity_id, competition_name, business_name, business_idea, status, completion_percentage,
        documents_uploaded, total_documents_required, admin_notes, created_at, submitted_at, reviewed_at`
)

// ApplicationRepository persists opportunities and applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs the repository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// ListOpportunities returns opportunities ordered by deadline, optionally only open ones.
func (r *ApplicationRepository) ListOpportunities(ctx context.Context, onlyOpen bool, limit int) ([]models.Opportunity, error) {
	query := `SELECT ` + opportunityColumns + ` FROM application_opportunities`
	var args []interface{}
	if onlyOpen {
		query += ` WHERE status = $1`
		args = append(args, models.OpportunityOpen)
	}
	query += ` ORDER BY deadline ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	var items []models.Opportunity
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}
	return items, nil
}

// FindOpportunity returns an opportunity by its ID.
func (r *ApplicationRepository) FindOpportunity(ctx context.Context, id string) (*models.Opportunity, error) {
	query := `SELECT ` + opportunityColumns + ` FROM application_opportunities WHERE id = $1`
	var item models.Opportunity
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find opportunity: %w", err)
	}
	return &item, nil
}

// CreateOpportunity inserts a new opportunity.
func (r *ApplicationRepository) CreateOpportunity(ctx context.Context, item *models.Opportunity) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO application_opportunities (id, title, description, requirements, deadline, prize_amount, cover_image, status, created_at)
        VALUES (:id, :title, :description, :requirements, :deadline, :prize_amount, :cover_image, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create opportunity: %w", err)
	}
	return nil
}

// UpdateCoverImage replaces the cover image URL.
func (r *ApplicationRepository) UpdateCoverImage(ctx context.Context, id, coverImage string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE application_opportunities SET cover_image = $2 WHERE id = $1`, id, coverImage)
	if err != nil {
		return fmt.Errorf("update cover image: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteOpportunity removes an opportunity together with its applications.
func (r *ApplicationRepository) DeleteOpportunity(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin opportunity delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM applications WHERE opportunity_id = $1`, id); err != nil {
		return fmt.Errorf("delete opportunity applications: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM application_opportunities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete opportunity: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		err = sql.ErrNoRows
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit opportunity delete: %w", err)
	}
	return nil
}

// HasApplied reports whether the user already applied to an opportunity.
func (r *ApplicationRepository) HasApplied(ctx context.Context, userID, opportunityID string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM applications WHERE user_id = $1 AND opportunity_id = $2 LIMIT 1`, userID, opportunityID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check application: %w", err)
	}
	return true, nil
}

// Create inserts an application. A duplicate (user, opportunity) yields ErrDuplicate.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO applications (id, user_id, opportunity_id, competition_name, business_name, business_idea, status,
        completion_percentage, documents_uploaded, total_documents_required, admin_notes, created_at, submitted_at, reviewed_at)
        VALUES (:id, :user_id, :opportunity_id, :competition_name, :business_name, :business_idea, :status,
        :completion_percentage, :documents_uploaded, :total_documents_required, :admin_notes, :created_at, :submitted_at, :reviewed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// FindByID returns an application by its ID.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	return &app, nil
}

// ListByUser returns a member's applications, newest first.
func (r *ApplicationRepository) ListByUser(ctx context.Context, userID string) ([]models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE user_id = $1 ORDER BY created_at DESC`
	var apps []models.Application
	if err := r.db.SelectContext(ctx, &apps, query, userID); err != nil {
		return nil, fmt.Errorf("list user applications: %w", err)
	}
	return apps, nil
}

// ListAll returns every application, newest first.
func (r *ApplicationRepository) ListAll(ctx context.Context) ([]models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications ORDER BY created_at DESC`
	var apps []models.Application
	if err := r.db.SelectContext(ctx, &apps, query); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// UpdateReview stores the review outcome of an application.
func (r *ApplicationRepository) UpdateReview(ctx context.Context, app *models.Application) error {
	const query = `UPDATE applications SET status = :status, admin_notes = :admin_notes, completion_percentage = :completion_percentage,
        reviewed_at = :reviewed_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("update application review: %w", err)
	}
	return nil
}
