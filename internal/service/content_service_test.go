package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrincipieCyupe/tyi/internal/models"
	appErrors "github.com/PrincipieCyupe/tyi/pkg/errors"
)

type fakeContentRepo struct {
	events     []models.Event
	posts      []models.BlogPost
	activities []models.ActivityUpdate
	eventsFrom time.Time
	seq        int
}

func (f *fakeContentRepo) id() string {
	f.seq++
	return fmt.Sprintf("content-%d", f.seq)
}

func (f *fakeContentRepo) UpcomingEvents(ctx context.Context, from time.Time, limit int) ([]models.Event, error) {
	f.eventsFrom = from
	var out []models.Event
	for _, e := range f.events {
		if !e.EventDate.Before(from) && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeContentRepo) ListEvents(ctx context.Context) ([]models.Event, error) {
	return f.events, nil
}

func (f *fakeContentRepo) CreateEvent(ctx context.Context, event *models.Event) error {
	event.ID = f.id()
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeContentRepo) PublishedPosts(ctx context.Context, limit int) ([]models.BlogPost, error) {
	return f.posts, nil
}

func (f *fakeContentRepo) ListPosts(ctx context.Context) ([]models.BlogPost, error) {
	return f.posts, nil
}

func (f *fakeContentRepo) CreatePost(ctx context.Context, post *models.BlogPost) error {
	post.ID = f.id()
	f.posts = append(f.posts, *post)
	return nil
}

func (f *fakeContentRepo) ActiveActivities(ctx context.Context, limit int) ([]models.ActivityUpdate, error) {
	return f.activities, nil
}

func (f *fakeContentRepo) ListActivities(ctx context.Context) ([]models.ActivityUpdate, error) {
	return f.activities, nil
}

func (f *fakeContentRepo) CreateActivity(ctx context.Context, item *models.ActivityUpdate) error {
	item.ID = f.id()
	f.activities = append(f.activities, *item)
	return nil
}

func (f *fakeContentRepo) Delete(ctx context.Context, kind, id string) error {
	switch kind {
	case ContentEvent:
		for i, e := range f.events {
			if e.ID == id {
				f.events = append(f.events[:i], f.events[i+1:]...)
				return nil
			}
		}
	}
	return sql.ErrNoRows
}

func TestContentCreateDefaults(t *testing.T) {
	repo := &fakeContentRepo{}
	audit := &fakeAudit{}
	svc := NewContentService(repo, audit, newFixedClock(), nil, nil)

	event, err := svc.CreateEvent(context.Background(), testAdmin, models.CreateEventRequest{
		Title: "Pitch night", Description: "Bring your deck", EventDate: "2025-03-20", StartTime: "18:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "general", event.EventType)
	require.NotNil(t, event.StartTime)
	assert.Nil(t, event.EndTime)
	assert.True(t, event.IsActive)

	post, err := svc.CreatePost(context.Background(), testAdmin, models.CreateBlogPostRequest{
		Title: "Story", Author: "Team", Description: "A story", YoutubeURL: "https://youtube.com/watch?v=abc", PublishDate: "2025-03-01",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultBlogCover, post.CoverImage)

	activity, err := svc.CreateActivity(context.Background(), testAdmin, models.CreateActivityRequest{Title: "New cohort", Description: "Applications open"})
	require.NoError(t, err)
	assert.Equal(t, "general", activity.UpdateType)
	assert.Equal(t, "blue", activity.IconColor)

	assert.Len(t, audit.actions(), 3)
}

func TestContentValidation(t *testing.T) {
	svc := NewContentService(&fakeContentRepo{}, nil, newFixedClock(), nil, nil)

	_, err := svc.CreateEvent(context.Background(), nil, models.CreateEventRequest{})
	assertAppError(t, err, appErrors.ErrForbidden)

	_, err = svc.CreateEvent(context.Background(), testAdmin, models.CreateEventRequest{Title: "x", Description: "y", EventDate: "20-03-2025"})
	assertAppError(t, err, appErrors.ErrValidation)

	_, err = svc.CreatePost(context.Background(), testAdmin, models.CreateBlogPostRequest{Title: "x", Author: "y", Description: "z", YoutubeURL: "not a url", PublishDate: "2025-03-01"})
	assertAppError(t, err, appErrors.ErrValidation)

	_, err = svc.CreateActivity(context.Background(), testAdmin, models.CreateActivityRequest{Title: "x", Description: "y", IconColor: "pink"})
	assertAppError(t, err, appErrors.ErrValidation)
}

func TestContentFeedStartsToday(t *testing.T) {
	repo := &fakeContentRepo{events: []models.Event{
		{ID: "yesterday", EventDate: time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)},
		{ID: "today", EventDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
		{ID: "later", EventDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
	}}
	svc := NewContentService(repo, nil, newFixedClock(), nil, nil)

	feed, err := svc.Feed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), repo.eventsFrom)
	require.Len(t, feed.Events, 2)
	assert.Equal(t, "today", feed.Events[0].ID)
}

func TestContentDelete(t *testing.T) {
	repo := &fakeContentRepo{events: []models.Event{{ID: "event-1"}}}
	audit := &fakeAudit{}
	svc := NewContentService(repo, audit, newFixedClock(), nil, nil)

	require.NoError(t, svc.Delete(context.Background(), testAdmin, ContentEvent, "event-1"))
	assert.Empty(t, repo.events)
	assert.Equal(t, []string{models.AuditActionContentDelete}, audit.actions())

	assertAppError(t, svc.Delete(context.Background(), testAdmin, ContentEvent, "event-1"), appErrors.ErrNotFound)
	assertAppError(t, svc.Delete(context.Background(), testAdmin, "poll", "x"), appErrors.ErrValidation)
	assertAppError(t, svc.Delete(context.Background(), nil, ContentEvent, "x"), appErrors.ErrForbidden)
}
