package event

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/fabmate/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	mdb := testutil.NewMockDB(t)
	t.Cleanup(func() { _ = mdb.Close() })
	return mdb.DB, mdb.Mock
}

func setupOutboxRepo(t *testing.T) (*GormOutboxRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock := setupMockDB(t)
	return NewGormOutboxRepository(db), mock
}

// outboxColumns mirrors the outbox_events table in select order.
var outboxColumns = []string{
	"id", "company_id", "event_id", "event_type", "aggregate_id",
	"aggregate_type", "payload", "status", "retry_count", "max_retries",
	"last_error", "next_retry_at", "processed_at", "created_at", "updated_at",
}

func pendingOutboxRow(rows *sqlmock.Rows, entryID uuid.UUID) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		entryID, uuid.New(), uuid.New(), "OrderCreated", uuid.New(),
		"Order", []byte(`{}`), "PENDING", 0, 5,
		"", nil, nil, now, now,
	)
}

func pendingOrderEntry() *shared.OutboxEntry {
	companyID := uuid.New()
	event := newOrderEvent("OrderCreated", companyID)
	return shared.NewOutboxEntry(companyID, event, []byte(`{"test": true}`))
}

func TestGormOutboxRepository_Save(t *testing.T) {
	repo, mock := setupOutboxRepo(t)
	entry := pendingOrderEntry()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "outbox_events"`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(entry.CreatedAt, entry.UpdatedAt))
	mock.ExpectCommit()

	require.NoError(t, repo.Save(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_Save_Empty(t *testing.T) {
	repo, mock := setupOutboxRepo(t)

	// No entries means no statements at all.
	require.NoError(t, repo.Save(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_FindPending(t *testing.T) {
	repo, mock := setupOutboxRepo(t)
	entryID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "outbox_events" WHERE status = $1 ORDER BY created_at ASC LIMIT $2`)).
		WithArgs(shared.OutboxStatusPending, 10).
		WillReturnRows(pendingOutboxRow(sqlmock.NewRows(outboxColumns), entryID))

	entries, err := repo.FindPending(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entryID, entries[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_FindRetryable(t *testing.T) {
	repo, mock := setupOutboxRepo(t)
	before := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "outbox_events" WHERE status = $1 AND next_retry_at <= $2 ORDER BY next_retry_at ASC LIMIT $3`)).
		WithArgs(shared.OutboxStatusFailed, before, 10).
		WillReturnRows(sqlmock.NewRows(outboxColumns))

	entries, err := repo.FindRetryable(context.Background(), before, 10)

	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_Update(t *testing.T) {
	repo, mock := setupOutboxRepo(t)
	entry := pendingOrderEntry()
	entry.MarkSent()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "outbox_events"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Update(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_DeleteOlderThan(t *testing.T) {
	repo, mock := setupOutboxRepo(t)
	before := time.Now().Add(-7 * 24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "outbox_events" WHERE status = $1 AND processed_at < $2`)).
		WithArgs(shared.OutboxStatusSent, before).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectCommit()

	deleted, err := repo.DeleteOlderThan(context.Background(), before)

	require.NoError(t, err)
	assert.Equal(t, int64(5), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_WithTx(t *testing.T) {
	db, _ := setupMockDB(t)
	repo := NewGormOutboxRepository(db)

	txRepo := repo.WithTx(db)

	assert.NotNil(t, txRepo)
	assert.NotSame(t, repo, txRepo)
}
