package event_test

import (
	"context"
	"regexp"
	"testing"

	"hr-calendar/internal/domain"
	"hr-calendar/internal/event"
	eventerrors "hr-calendar/internal/event/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newRepoTest(t *testing.T) (event.Repository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Discard,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return event.NewRepository(gdb), mock
}

func TestEventRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("bumps the version", func(t *testing.T) {
		repo, mock := newRepoTest(t)
		ev := &event.Event{ID: uuid.New(), CompanyID: uuid.New(), Type: domain.EventTypeLeave, Status: domain.StatusApproved, Version: 4}

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "calendar_events" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Update(ctx, ev))
		assert.Equal(t, int64(5), ev.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version", func(t *testing.T) {
		repo, mock := newRepoTest(t)
		ev := &event.Event{ID: uuid.New(), CompanyID: uuid.New(), Version: 2}

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "calendar_events" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(ctx, ev)
		assert.ErrorIs(t, err, eventerrors.ErrConcurrentUpdate)
		assert.Equal(t, int64(2), ev.Version)
	})

	t.Run("serialization failure", func(t *testing.T) {
		repo, mock := newRepoTest(t)
		ev := &event.Event{ID: uuid.New(), CompanyID: uuid.New(), Version: 1}

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "calendar_events" SET`)).
			WillReturnError(&pgconn.PgError{Code: "40001"})

		assert.ErrorIs(t, repo.Update(ctx, ev), eventerrors.ErrConcurrentUpdate)
	})
}

func TestEventRepository_Delete(t *testing.T) {
	repo, mock := newRepoTest(t)
	ev := &event.Event{ID: uuid.New(), CompanyID: uuid.New(), Version: 3}

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "calendar_events" SET "deleted_at"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), ev))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_FindByIDForUpdate(t *testing.T) {
	repo, mock := newRepoTest(t)
	companyID, id := uuid.NewString(), uuid.NewString()

	mock.ExpectQuery(`SELECT \* FROM "calendar_events" WHERE .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByIDForUpdate(context.Background(), companyID, id)
	assert.ErrorIs(t, err, eventerrors.ErrEventNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_FindLeaveUsage(t *testing.T) {
	repo, mock := newRepoTest(t)
	from, to := day("2026-01-01"), day("2026-03-02")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "type","status","start_ts","end_ts" FROM "calendar_events"`)).
		WillReturnRows(sqlmock.NewRows([]string{"type", "status", "start_ts", "end_ts"}).
			AddRow(domain.EventTypeLeave, domain.StatusApproved, day("2026-02-02"), day("2026-02-05")))

	got, err := repo.FindLeaveUsage(context.Background(), uuid.NewString(), uuid.NewString(), from, to, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.EventTypeLeave, got[0].Type)
	assert.Equal(t, day("2026-02-02"), got[0].Start)
	assert.Equal(t, day("2026-02-05"), got[0].End)
	assert.NoError(t, mock.ExpectationsWereMet())
}
