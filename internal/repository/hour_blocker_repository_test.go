package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newHourBlockerRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestHourBlockerRepositoryLoad(t *testing.T) {
	db, mock, cleanup := newHourBlockerRepoMock(t)
	defer cleanup()
	repo := NewHourBlockerRepository(db)

	rows := sqlmock.NewRows([]string{"day", "period", "blocked"}).
		AddRow(0, 0, true).
		AddRow(0, 1, false).
		AddRow(9, 9, true)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT day, period, blocked FROM hour_blockers")).
		WillReturnRows(rows)

	blocker, err := repo.Load(context.Background(), 4, 10)
	require.NoError(t, err)
	require.True(t, blocker.IsBlocked(0, 0))
	require.False(t, blocker.IsBlocked(0, 1))
	require.False(t, blocker.IsBlocked(3, 9))
	require.True(t, blocker.IsBlocked(4, 0))
	require.NoError(t, mock.ExpectationsWereMet())
}
