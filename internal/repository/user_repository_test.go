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

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "role", "active", "last_login", "created_at", "updated_at"})
}

func TestUserRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := userRows().AddRow("usr-1", "admin@studio.test", "hash", "Admin User", models.RoleAdmin, true, nil, time.Now(), time.Now())
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email =").
		WithArgs("admin@studio.test").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "admin@studio.test")
	require.NoError(t, err)
	require.Equal(t, "usr-1", user.ID)
	require.Equal(t, models.RoleAdmin, user.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByEmailMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email =").
		WithArgs("nobody@studio.test").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "nobody@studio.test")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindActiveByRole(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := userRows().AddRow("ins-1", "coach@studio.test", "hash", "Coach", models.RoleInstructor, true, nil, time.Now(), time.Now())
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = (.+) AND role = (.+) AND active = TRUE").
		WithArgs("ins-1", models.RoleInstructor).
		WillReturnRows(rows)

	user, err := repo.FindActiveByRole(context.Background(), "ins-1", models.RoleInstructor)
	require.NoError(t, err)
	require.Equal(t, models.RoleInstructor, user.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryRefreshTokenLifecycle(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO refresh_tokens").
		WillReturnResult(sqlmock.NewResult(0, 1))

	token := &models.RefreshToken{UserID: "usr-1", Token: "opaque", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.CreateRefreshToken(context.Background(), token))
	require.NotEmpty(t, token.ID)

	rows := sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at", "created_at", "revoked", "revoked_at"}).
		AddRow(token.ID, "usr-1", "opaque", token.ExpiresAt, token.CreatedAt, false, nil)
	mock.ExpectQuery("SELECT (.+) FROM refresh_tokens WHERE token =").
		WithArgs("opaque").
		WillReturnRows(rows)

	stored, err := repo.FindRefreshToken(context.Background(), "opaque")
	require.NoError(t, err)
	require.Equal(t, token.ID, stored.ID)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE id = $1")).
		WithArgs(token.ID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.RevokeRefreshToken(context.Background(), token.ID, time.Now().UTC()))

	require.NoError(t, mock.ExpectationsWereMet())
}
