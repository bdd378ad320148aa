package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/studiofit/class-booking-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func expectClassLock(mock sqlmock.Sqlmock, classID string, status models.ClassStatus, capacity int) {
	rows := sqlmock.NewRows([]string{"status", "max_capacity"}).AddRow(status, capacity)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, max_capacity FROM class_sessions WHERE id = $1 FOR UPDATE")).
		WithArgs(classID).
		WillReturnRows(rows)
}

func TestEnrollmentRepositoryCreateGuarded(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	expectClassLock(mock, "class-1", models.ClassStatusScheduled, 10)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM enrollments WHERE class_id = $1")).
		WithArgs("class-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectExec("INSERT INTO enrollments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	enrollment := &models.Enrollment{ClassID: "class-1", StudentID: "stu-1"}
	require.NoError(t, repo.CreateGuarded(context.Background(), enrollment))
	require.NotEmpty(t, enrollment.ID)
	require.Equal(t, models.EnrollmentStatusPending, enrollment.Status)
	require.False(t, enrollment.EnrolledAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateGuardedTerminalClass(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	expectClassLock(mock, "class-1", models.ClassStatusCancelled, 10)
	mock.ExpectRollback()

	err := repo.CreateGuarded(context.Background(), &models.Enrollment{ClassID: "class-1", StudentID: "stu-1"})
	require.ErrorIs(t, err, ErrClassNotOpen)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateGuardedFullClass(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	expectClassLock(mock, "class-1", models.ClassStatusScheduled, 3)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM enrollments WHERE class_id = $1")).
		WithArgs("class-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectRollback()

	err := repo.CreateGuarded(context.Background(), &models.Enrollment{ClassID: "class-1", StudentID: "stu-1"})
	require.ErrorIs(t, err, ErrClassFull)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateGuardedDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	expectClassLock(mock, "class-1", models.ClassStatusScheduled, 10)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM enrollments WHERE class_id = $1")).
		WithArgs("class-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec("INSERT INTO enrollments").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.CreateGuarded(context.Background(), &models.Enrollment{ClassID: "class-1", StudentID: "stu-1"})
	require.ErrorIs(t, err, ErrAlreadyEnrolled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDeleteGuarded(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	expectClassLock(mock, "class-1", models.ClassStatusScheduled, 10)
	rows := sqlmock.NewRows([]string{"id", "class_id", "student_id", "status", "enrolled_at", "reviewed_by", "reviewed_at", "denial_reason", "cancelled_at", "cancellation_reason", "experimental"}).
		AddRow("enr-1", "class-1", "stu-1", models.EnrollmentStatusPending, time.Now(), nil, nil, nil, nil, nil, false)
	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM enrollments WHERE class_id = $1 AND student_id = $2 RETURNING")).
		WithArgs("class-1", "stu-1").
		WillReturnRows(rows)
	mock.ExpectCommit()

	deleted, err := repo.DeleteGuarded(context.Background(), "class-1", "stu-1")
	require.NoError(t, err)
	require.Equal(t, "enr-1", deleted.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDeleteGuardedNotEnrolled(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	expectClassLock(mock, "class-1", models.ClassStatusScheduled, 10)
	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM enrollments WHERE class_id = $1 AND student_id = $2 RETURNING")).
		WithArgs("class-1", "stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.DeleteGuarded(context.Background(), "class-1", "stu-1")
	require.ErrorIs(t, err, ErrNotEnrolled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryReview(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET status = $2, reviewed_by = $3, reviewed_at = $4, denial_reason = $5")).
		WithArgs("enr-1", models.EnrollmentStatusApproved, "admin-1", sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.Review(context.Background(), "enr-1", models.EnrollmentStatusApproved, "admin-1", nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryReviewAlreadyDecided(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET status = $2, reviewed_by = $3, reviewed_at = $4, denial_reason = $5")).
		WithArgs("enr-1", models.EnrollmentStatusDenied, "admin-1", sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Review(context.Background(), "enr-1", models.EnrollmentStatusDenied, "admin-1", nil)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListApprovedByClass(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "class_id", "student_id", "status", "enrolled_at", "reviewed_by", "reviewed_at", "denial_reason", "cancelled_at", "cancellation_reason", "experimental", "student_name", "class_discipline", "class_scheduled_at"}).
		AddRow("enr-1", "class-1", "stu-1", models.EnrollmentStatusApproved, time.Now(), nil, nil, nil, nil, nil, false, "Ada Nilsen", models.DisciplineSwimming, time.Now())
	mock.ExpectQuery("SELECT (.+) FROM enrollments e").
		WithArgs("class-1", models.EnrollmentStatusApproved).
		WillReturnRows(rows)

	roster, err := repo.ListApprovedByClass(context.Background(), "class-1")
	require.NoError(t, err)
	require.Len(t, roster, 1)
	require.Equal(t, "Ada Nilsen", roster[0].StudentName)
	require.NoError(t, mock.ExpectationsWereMet())
}
