package event

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newOrderPublisher() *OutboxPublisher {
	serializer := NewEventSerializer()
	serializer.Register("OrderCreated", &orderEvent{})
	return NewOutboxPublisher(serializer)
}

// expectOutboxInsert arms the mock for one batched INSERT covering the
// given events, inside a committed transaction.
func expectOutboxInsert(mock sqlmock.Sqlmock, events ...shared.DomainEvent) {
	rows := sqlmock.NewRows([]string{"created_at", "updated_at"})
	for _, ev := range events {
		rows.AddRow(ev.OccurredAt(), ev.OccurredAt())
	}
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "outbox_events"`)).WillReturnRows(rows)
	mock.ExpectCommit()
}

func TestOutboxPublisher_PublishWithTx(t *testing.T) {
	db, mock := setupMockDB(t)
	publisher := newOrderPublisher()
	event := newOrderEvent("OrderCreated", uuid.New())

	expectOutboxInsert(mock, event)

	err := db.Transaction(func(tx *gorm.DB) error {
		return publisher.PublishWithTx(context.Background(), tx, event)
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxPublisher_PublishWithTx_MultipleEvents(t *testing.T) {
	db, mock := setupMockDB(t)
	publisher := newOrderPublisher()

	companyID := uuid.New()
	events := []shared.DomainEvent{
		newOrderEvent("OrderCreated", companyID),
		newOrderEvent("OrderCreated", companyID),
		newOrderEvent("OrderCreated", companyID),
	}
	expectOutboxInsert(mock, events...)

	err := db.Transaction(func(tx *gorm.DB) error {
		return publisher.PublishWithTx(context.Background(), tx, events...)
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxPublisher_PublishWithTx_EmptyEvents(t *testing.T) {
	db, mock := setupMockDB(t)
	publisher := NewOutboxPublisher(NewEventSerializer())

	// Nothing to publish must not touch the outbox table.
	mock.ExpectBegin()
	mock.ExpectCommit()

	err := db.Transaction(func(tx *gorm.DB) error {
		return publisher.PublishWithTx(context.Background(), tx)
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxPublisher_PublishWithTx_TransactionRollback(t *testing.T) {
	db, mock := setupMockDB(t)
	publisher := newOrderPublisher()
	event := newOrderEvent("OrderCreated", uuid.New())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "outbox_events"`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(event.OccurredAt(), event.OccurredAt()))
	mock.ExpectRollback()

	businessErr := errors.New("simulated error")
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := publisher.PublishWithTx(context.Background(), tx, event); err != nil {
			return err
		}
		return businessErr
	})

	// The entry insert rolls back along with the failed business change.
	require.ErrorIs(t, err, businessErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}
