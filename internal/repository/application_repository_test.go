package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrincipieCyupe/tyi/internal/models"
)

func TestDeleteOpportunityRemovesApplicationsFirst(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM applications WHERE opportunity_id = $1")).WithArgs("op1").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM application_opportunities WHERE id = $1")).WithArgs("op1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteOpportunity(context.Background(), "op1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOpportunityMissingRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM applications").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM application_opportunities").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.DeleteOpportunity(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOpenOpportunitiesWithLimit(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM application_opportunities WHERE status = $1 ORDER BY deadline ASC LIMIT 2")).
		WithArgs(models.OpportunityOpen).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow("op1", "Pitch"))

	items, err := repo.ListOpportunities(context.Background(), true, 2)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Pitch", items[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateApplicationDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec("INSERT INTO applications").WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Application{UserID: "u1", OpportunityID: strPtr("op1")})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func strPtr(s string) *string { return &s }
