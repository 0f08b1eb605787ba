package kafka_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"hr-calendar/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newRepo(t *testing.T) (kafka.OutboxRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	return kafka.NewOutboxRepository(gdb), mock
}

func TestOutboxRepository_Create(t *testing.T) {
	repo, mock := newRepo(t)
	event := kafka.OutboxEvent{
		ID:            "4b0f4f0e-3c39-4d4b-a3e1-8c1a1a2b3c4d",
		AggregateType: "calendar_event",
		AggregateID:   "9d2d1f0e-3c39-4d4b-a3e1-8c1a1a2b3c4d",
		EventType:     "leave_requested",
		Topic:         "hr.calendar.events.v1",
		Payload:       []byte(`{}`),
		Status:        kafka.OutboxStatusPending,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
		WithArgs(event.ID, event.RequestID, event.AggregateType, event.AggregateID, event.EventType, event.Topic, event.Payload, event.Status).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_CreateRejectsInvalid(t *testing.T) {
	repo, _ := newRepo(t)

	err := repo.Create(context.Background(), kafka.OutboxEvent{ID: "x", Topic: "t", Payload: []byte("{}"), Status: "bogus"})

	assert.EqualError(t, err, "invalid outbox status: bogus")
}

func TestOutboxRepository_ListPending(t *testing.T) {
	repo, mock := newRepo(t)

	rows := sqlmock.NewRows([]string{"id", "aggregate_type", "aggregate_id", "event_type", "topic", "payload", "status", "retry_count", "next_retry_at"}).
		AddRow("o1", "calendar_event", "e1", "leave_decided", "hr.calendar.events.v1", []byte(`{}`), "failed", 2, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
	mock.ExpectQuery(regexp.QuoteMeta("FROM outbox_events")).
		WithArgs(kafka.OutboxStatusPending, kafka.OutboxStatusFailed, 10).
		WillReturnRows(rows)

	got, err := repo.ListPending(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "o1", got[0].ID)
	assert.Equal(t, "leave_decided", got[0].EventType)
	assert.Equal(t, 2, got[0].RetryCount)
}

func TestOutboxRepository_MarkFailed(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE outbox_events")).
		WithArgs(kafka.OutboxStatusFailed, "boom", "o1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkFailed(context.Background(), "o1", "boom"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateOutboxEvent(t *testing.T) {
	assert.EqualError(t, kafka.ValidateOutboxEvent(kafka.OutboxEvent{}), "outbox id is required")
	assert.EqualError(t, kafka.ValidateOutboxEvent(kafka.OutboxEvent{ID: "x"}), "outbox topic is required")
	assert.EqualError(t, kafka.ValidateOutboxEvent(kafka.OutboxEvent{ID: "x", Topic: "t"}), "outbox payload is required")
}
