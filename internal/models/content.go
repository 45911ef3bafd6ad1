package models

import "time"

// Event is a dated entry on the member calendar.
type Event struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	EventDate   time.Time `db:"event_date" json:"event_date"`
	StartTime   *string   `db:"start_time" json:"start_time,omitempty"`
	EndTime     *string   `db:"end_time" json:"end_time,omitempty"`
	EventType   string    `db:"event_type" json:"event_type"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// DefaultBlogCover is used when a blog post has no cover image URL.
const DefaultBlogCover = "5.jpg"

// BlogPost links a video story on the member home page.
type BlogPost struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Author      string    `db:"author" json:"author"`
	Description string    `db:"description" json:"description"`
	YoutubeURL  string    `db:"youtube_url" json:"youtube_url"`
	CoverImage  string    `db:"cover_image" json:"cover_image"`
	PublishDate time.Time `db:"publish_date" json:"publish_date"`
	IsPublished bool      `db:"is_published" json:"is_published"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ActivityUpdate is a short news item in the activity feed.
type ActivityUpdate struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	UpdateType  string    `db:"update_type" json:"update_type"`
	IconColor   string    `db:"icon_color" json:"icon_color"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CreateEventRequest is the admin payload for a calendar event.
type CreateEventRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	EventDate   string `json:"event_date" validate:"required,datetime=2006-01-02"`
	StartTime   string `json:"start_time" validate:"max=50"`
	EndTime     string `json:"end_time" validate:"max=50"`
	EventType   string `json:"event_type" validate:"omitempty,oneof=general deadline workshop"`
}

// CreateBlogPostRequest is the admin payload for a blog post.
type CreateBlogPostRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Author      string `json:"author" validate:"required,max=100"`
	Description string `json:"description" validate:"required"`
	YoutubeURL  string `json:"youtube_url" validate:"required,url,max=500"`
	CoverImage  string `json:"cover_image" validate:"omitempty,max=500"`
	PublishDate string `json:"publish_date" validate:"required,datetime=2006-01-02"`
}

// CreateActivityRequest is the admin payload for an activity update.
type CreateActivityRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	UpdateType  string `json:"update_type" validate:"omitempty,oneof=general success warning info"`
	IconColor   string `json:"icon_color" validate:"omitempty,oneof=blue green yellow purple red"`
}
