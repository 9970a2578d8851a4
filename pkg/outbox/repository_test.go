package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mmattyV/scentra-backend/pkg/db/models"
	"github.com/mmattyV/scentra-backend/pkg/enums"
)

func setupOutboxTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:outbox_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	events := `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`
	dlq := `
CREATE TABLE IF NOT EXISTS outbox_dlq (
  id TEXT PRIMARY KEY,
  event_id TEXT NOT NULL,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  error_reason TEXT NOT NULL,
  error_message TEXT,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  failed_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(events).Error)
	require.NoError(t, db.Exec(dlq).Error)
	require.NoError(t, db.Exec("DELETE FROM outbox_events").Error)
	require.NoError(t, db.Exec("DELETE FROM outbox_dlq").Error)
	return db
}

func buildOutboxEvent(eventType enums.OutboxEventType, aggregateID uuid.UUID, created time.Time) models.OutboxEvent {
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   aggregateID,
		Payload:       json.RawMessage(`{"version":1,"eventId":"evt","data":{}}`),
		CreatedAt:     created,
	}
}

func TestRepositoryInsertAndExists(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	aggregateID := uuid.New()
	event := buildOutboxEvent(enums.EventOrderCreated, aggregateID, time.Now().UTC())
	require.NoError(t, repo.Insert(db, event))

	exists, err := repo.ExistsTx(db, enums.EventOrderCreated, enums.AggregateOrder, aggregateID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsTx(db, enums.EventOrderCreated, enums.AggregateOrder, uuid.New())
	require.NoError(t, err)
	assert.False(t, exists)

	require.Error(t, repo.Insert(nil, event))
}

func TestRepositoryMarkPublishedAndFailed(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	event := buildOutboxEvent(enums.EventOrderCreated, uuid.New(), time.Now().UTC())
	require.NoError(t, repo.Insert(db, event))

	require.NoError(t, repo.MarkFailedTx(db, event.ID, errors.New("broker down")))
	var row models.OutboxEvent
	require.NoError(t, db.First(&row, "id = ?", event.ID).Error)
	assert.Equal(t, 1, row.AttemptCount)
	require.NotNil(t, row.LastError)
	assert.Contains(t, *row.LastError, "broker down")
	assert.Nil(t, row.PublishedAt)

	require.NoError(t, repo.MarkPublishedTx(db, event.ID))
	require.NoError(t, db.First(&row, "id = ?", event.ID).Error)
	assert.NotNil(t, row.PublishedAt)
	assert.Nil(t, row.LastError)
}

func TestRepositoryMarkTerminalPinsAttempts(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	event := buildOutboxEvent(enums.EventListingRemoved, uuid.New(), time.Now().UTC())
	require.NoError(t, repo.Insert(db, event))

	require.NoError(t, repo.MarkTerminalTx(db, event.ID, errors.New("bad payload"), 10))
	var row models.OutboxEvent
	require.NoError(t, db.First(&row, "id = ?", event.ID).Error)
	assert.Equal(t, 10, row.AttemptCount)
	assert.Nil(t, row.PublishedAt)
}

func TestRepositoryDeletePublishedBefore(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	old := buildOutboxEvent(enums.EventOrderCreated, uuid.New(), now.Add(-40*24*time.Hour))
	require.NoError(t, repo.Insert(db, old))
	require.NoError(t, repo.MarkPublishedTx(db, old.ID))
	require.NoError(t, db.Model(&models.OutboxEvent{}).Where("id = ?", old.ID).
		Update("published_at", now.Add(-40*24*time.Hour)).Error)

	fresh := buildOutboxEvent(enums.EventOrderCreated, uuid.New(), now)
	require.NoError(t, repo.Insert(db, fresh))
	require.NoError(t, repo.MarkPublishedTx(db, fresh.ID))

	pending := buildOutboxEvent(enums.EventOrderCancelled, uuid.New(), now.Add(-40*24*time.Hour))
	require.NoError(t, repo.Insert(db, pending))

	deleted, err := repo.DeletePublishedBefore(ctx, db, now.Add(-30*24*time.Hour), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).Count(&remaining).Error)
	assert.Equal(t, int64(2), remaining)
}

func TestDLQRepositoryInsertAndLookup(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewDLQRepository(db)
	ctx := context.Background()

	eventID := uuid.New()
	longMessage := strings.Repeat("x", maxDLQErrorLen+50)
	entry := models.OutboxDLQ{
		ID:            uuid.New(),
		EventID:       eventID,
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
		ErrorReason:   enums.OutboxDLQReasonMaxAttempts,
		ErrorMessage:  &longMessage,
		AttemptCount:  10,
		FailedAt:      time.Now().UTC(),
	}
	require.NoError(t, repo.InsertTx(db, entry))

	found, err := repo.FindByEventID(ctx, eventID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.NotNil(t, found.ErrorMessage)
	assert.Len(t, *found.ErrorMessage, maxDLQErrorLen)

	missing, err := repo.FindByEventID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDLQRepositoryDeleteFailedBefore(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewDLQRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	stale := models.OutboxDLQ{
		ID:            uuid.New(),
		EventID:       uuid.New(),
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
		ErrorReason:   enums.OutboxDLQReasonNonRetryable,
		FailedAt:      now.Add(-100 * 24 * time.Hour),
	}
	recent := stale
	recent.ID = uuid.New()
	recent.EventID = uuid.New()
	recent.FailedAt = now
	require.NoError(t, repo.InsertTx(db, stale))
	require.NoError(t, repo.InsertTx(db, recent))

	deleted, err := repo.DeleteFailedBefore(ctx, db, now.Add(-90*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	rows, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, recent.EventID, rows[0].EventID)
}
