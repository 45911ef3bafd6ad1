package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentDeleteTargetsKindTable(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM blog_posts WHERE id = $1")).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM events WHERE id = $1")).WithArgs("e9").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "blog", "p1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "event", "e9"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentDeleteUnknownKind(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	assert.Error(t, repo.Delete(context.Background(), "poll", "x"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpcomingEventsFiltersFromDate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)
	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM events WHERE").
		WithArgs(from).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow("e1", "Demo day"))

	events, err := repo.UpcomingEvents(context.Background(), from, 3)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Demo day", events[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}
