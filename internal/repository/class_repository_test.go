package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/studiofit/class-booking-api/internal/models"
)

func TestClassSessionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassSessionRepository(db)

	mock.ExpectExec("INSERT INTO class_sessions").
		WillReturnResult(sqlmock.NewResult(0, 1))

	session := &models.ClassSession{
		Discipline:      models.DisciplineTennis,
		SkillLevel:      models.SkillLevelBeginner,
		ScheduledAt:     time.Now().Add(48 * time.Hour),
		DurationMinutes: 60,
		Location:        "Court 2",
		MaxCapacity:     8,
		CreatedBy:       "admin-1",
	}
	require.NoError(t, repo.Create(context.Background(), session))
	require.NotEmpty(t, session.ID)
	require.Equal(t, models.ClassStatusScheduled, session.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassSessionRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassSessionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "discipline", "skill_level", "scheduled_at", "duration_minutes", "location", "max_capacity", "status", "cancellation_reason", "created_by", "created_at", "updated_at"}).
		AddRow("class-1", models.DisciplineSwimming, models.SkillLevelIntermediate, time.Now(), 60, "Pool A", 12, models.ClassStatusScheduled, nil, "admin-1", time.Now(), time.Now())
	mock.ExpectQuery("SELECT (.+) FROM class_sessions WHERE id =").
		WithArgs("class-1").
		WillReturnRows(rows)

	session, err := repo.FindByID(context.Background(), "class-1")
	require.NoError(t, err)
	require.Equal(t, models.DisciplineSwimming, session.Discipline)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassSessionRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassSessionRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM class_sessions WHERE id =").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassSessionRepositoryTransition(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassSessionRepository(db)

	reason := "instructor unavailable"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE class_sessions SET status = $2, cancellation_reason = $3, updated_at = $4")).
		WithArgs("class-1", models.ClassStatusCancelled, &reason, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.Transition(context.Background(), "class-1", models.ClassStatusCancelled, &reason)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassSessionRepositoryTransitionLosesRace(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassSessionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE class_sessions SET status = $2, cancellation_reason = $3, updated_at = $4")).
		WithArgs("class-1", models.ClassStatusCompleted, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Transition(context.Background(), "class-1", models.ClassStatusCompleted, nil)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassSessionRepositoryUpdateNotScheduled(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassSessionRepository(db)

	mock.ExpectExec("UPDATE class_sessions").
		WillReturnResult(sqlmock.NewResult(0, 0))

	session := &models.ClassSession{ID: "class-1", Discipline: models.DisciplineJudo, SkillLevel: models.SkillLevelAdvanced, MaxCapacity: 6}
	ok, err := repo.Update(context.Background(), session)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassSessionRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassSessionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "discipline", "skill_level", "scheduled_at", "duration_minutes", "location", "max_capacity", "status", "cancellation_reason", "created_by", "created_at", "updated_at", "enrollment_count", "spots_remaining"}).
		AddRow("class-1", models.DisciplineSwimming, models.SkillLevelBeginner, time.Now(), 60, "Pool A", 12, models.ClassStatusScheduled, nil, "admin-1", time.Now(), time.Now(), 5, 7)
	mock.ExpectQuery("SELECT cs.id, cs.discipline").
		WithArgs(models.ClassStatusScheduled).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM class_sessions")).
		WithArgs(models.ClassStatusScheduled).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	sessions, total, err := repo.List(context.Background(), models.ClassSessionFilter{Status: models.ClassStatusScheduled})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, sessions, 1)
	require.Equal(t, 5, sessions[0].EnrollmentCount)
	require.Equal(t, 7, sessions[0].SpotsRemaining)
	require.NoError(t, mock.ExpectationsWereMet())
}
