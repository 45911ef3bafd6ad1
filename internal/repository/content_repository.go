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

// ContentRepository persists the landing feed: events, blog posts and activity updates.
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository constructs the repository.
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// UpcomingEvents returns active events on or after from, soonest first.
func (r *ContentRepository) UpcomingEvents(ctx context.Context, from time.Time, limit int) ([]models.Event, error) {
	query := `SELECT id, title, description, event_date, start_time, end_time, event_type, is_active, created_at
        FROM events WHERE event_date >= $1 AND is_active = TRUE ORDER BY event_date ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, from); err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	return events, nil
}

// ListEvents returns every event, latest date first.
func (r *ContentRepository) ListEvents(ctx context.Context) ([]models.Event, error) {
	const query = `SELECT id, title, description, event_date, start_time, end_time, event_type, is_active, created_at FROM events ORDER BY event_date DESC`
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// CreateEvent inserts an event.
func (r *ContentRepository) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO events (id, title, description, event_date, start_time, end_time, event_type, is_active, created_at)
        VALUES (:id, :title, :description, :event_date, :start_time, :end_time, :event_type, :is_active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// PublishedPosts returns published blog posts, newest first.
func (r *ContentRepository) PublishedPosts(ctx context.Context, limit int) ([]models.BlogPost, error) {
	query := `SELECT id, title, author, description, youtube_url, cover_image, publish_date, is_published, created_at
        FROM blog_posts WHERE is_published = TRUE ORDER BY publish_date DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	var posts []models.BlogPost
	if err := r.db.SelectContext(ctx, &posts, query); err != nil {
		return nil, fmt.Errorf("list blog posts: %w", err)
	}
	return posts, nil
}

// ListPosts returns every blog post, newest first.
func (r *ContentRepository) ListPosts(ctx context.Context) ([]models.BlogPost, error) {
	const query = `SELECT id, title, author, description, youtube_url, cover_image, publish_date, is_published, created_at FROM blog_posts ORDER BY publish_date DESC`
	var posts []models.BlogPost
	if err := r.db.SelectContext(ctx, &posts, query); err != nil {
		return nil, fmt.Errorf("list blog posts: %w", err)
	}
	return posts, nil
}

// CreatePost inserts a blog post.
func (r *ContentRepository) CreatePost(ctx context.Context, post *models.BlogPost) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO blog_posts (id, title, author, description, youtube_url, cover_image, publish_date, is_published, created_at)
        VALUES (:id, :title, :author, :description, :youtube_url, :cover_image, :publish_date, :is_published, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, post); err != nil {
		return fmt.Errorf("create blog post: %w", err)
	}
	return nil
}

// ActiveActivities returns active activity updates, newest first.
func (r *ContentRepository) ActiveActivities(ctx context.Context, limit int) ([]models.ActivityUpdate, error) {
	query := `SELECT id, title, description, update_type, icon_color, is_active, created_at
        FROM activity_updates WHERE is_active = TRUE ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	var items []models.ActivityUpdate
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list activity updates: %w", err)
	}
	return items, nil
}

// ListActivities returns every activity update, newest first.
func (r *ContentRepository) ListActivities(ctx context.Context) ([]models.ActivityUpdate, error) {
	const query = `SELECT id, title, description, update_type, icon_color, is_active, created_at FROM activity_updates ORDER BY created_at DESC`
	var items []models.ActivityUpdate
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list activity updates: %w", err)
	}
	return items, nil
}

// CreateActivity inserts an activity update.
func (r *ContentRepository) CreateActivity(ctx context.Context, item *models.ActivityUpdate) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO activity_updates (id, title, description, update_type, icon_color, is_active, created_at)
        VALUES (:id, :title, :description, :update_type, :icon_color, :is_active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create activity update: %w", err)
	}
	return nil
}

var contentTables = map[string]string{
	"event":    "events",
	"blog":     "blog_posts",
	"activity": "activity_updates",
}

// Delete removes a content item of the given kind. Unknown IDs yield sql.ErrNoRows.
func (r *ContentRepository) Delete(ctx context.Context, kind, id string) error {
	table, ok := contentTables[kind]
	if !ok {
		return fmt.Errorf("unknown content kind %q", kind)
	}
	res, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
