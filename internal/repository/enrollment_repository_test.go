package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrincipieCyupe/tyi/internal/models"
)

func TestCreateWithProgress(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO user_courses").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO user_module_progress").
		WithArgs(sqlmock.AnyArg(), "u1", "m1", models.ModuleNotStarted).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO user_module_progress").
		WithArgs(sqlmock.AnyArg(), "u1", "m2", models.ModuleNotStarted).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	enrollment := &models.Enrollment{UserID: "u1", CourseID: "c1", CurrentModule: 1, Status: models.EnrollmentInProgress}
	err := repo.CreateWithProgress(context.Background(), enrollment, []models.CourseModule{{ID: "m1"}, {ID: "m2"}})
	require.NoError(t, err)
	assert.NotEmpty(t, enrollment.ID)
	assert.False(t, enrollment.EnrolledAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithProgressDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO user_courses").WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.CreateWithProgress(context.Background(), &models.Enrollment{UserID: "u1", CourseID: "c1"}, []models.CourseModule{{ID: "m1"}})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithProgressRollsBackOnProgressFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO user_courses").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO user_module_progress").
		WithArgs(sqlmock.AnyArg(), "u1", "m1", models.ModuleNotStarted).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO user_module_progress").
		WithArgs(sqlmock.AnyArg(), "u1", "m2", models.ModuleNotStarted).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	enrollment := &models.Enrollment{UserID: "u1", CourseID: "c1", CurrentModule: 1, Status: models.EnrollmentInProgress}
	err := repo.CreateWithProgress(context.Background(), enrollment, []models.CourseModule{{ID: "m1"}, {ID: "m2"}, {ID: "m3"}})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "insert module progress")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountCompletedModules(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE ump.user_id = $1 AND cm.course_id = $2 AND ump.status = $3")).
		WithArgs("u1", "c1", models.ModuleCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	total, err := repo.CountCompletedModules(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
