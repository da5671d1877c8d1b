package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/fabmate/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockEventHandler struct {
	mock.Mock
}

func (m *MockEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventHandler) EventTypes() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// rollupEvent stands in for the cross-context events the wrapper dedupes.
type rollupEvent struct {
	shared.BaseDomainEvent
	Reference string
}

func newRollupEvent() *rollupEvent {
	return &rollupEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			"WorkOrderStatusChanged",
			"WorkOrder",
			uuid.New(),
			uuid.New(),
		),
		Reference: "WO-0007",
	}
}

// wrappedFixture builds an idempotent handler around a mock, backed by the
// in-memory store.
func wrappedFixture(t *testing.T, opts ...IdempotentHandlerOption) (*IdempotentHandler, *MockEventHandler) {
	t.Helper()

	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { store.Close() })

	mockHandler := new(MockEventHandler)
	return NewIdempotentHandler(mockHandler, store, zap.NewNop(), opts...), mockHandler
}

func TestIdempotentHandler_Handle(t *testing.T) {
	t.Run("first delivery goes through", func(t *testing.T) {
		handler, mockHandler := wrappedFixture(t)
		event := newRollupEvent()
		mockHandler.On("Handle", mock.Anything, event).Return(nil)

		require.NoError(t, handler.Handle(context.Background(), event))

		mockHandler.AssertExpectations(t)
		assert.Equal(t, int64(1), handler.metrics.EventsProcessed.Load())
		assert.Equal(t, int64(0), handler.metrics.EventsDuplicate.Load())
	})

	t.Run("redeliveries are swallowed", func(t *testing.T) {
		handler, mockHandler := wrappedFixture(t)
		event := newRollupEvent()
		mockHandler.On("Handle", mock.Anything, event).Return(nil).Once()

		for range 3 {
			require.NoError(t, handler.Handle(context.Background(), event))
		}

		mockHandler.AssertExpectations(t)
		assert.Equal(t, int64(1), handler.metrics.EventsProcessed.Load())
		assert.Equal(t, int64(2), handler.metrics.EventsDuplicate.Load())
	})

	t.Run("handler error surfaces and counts as failed", func(t *testing.T) {
		handler, mockHandler := wrappedFixture(t)
		event := newRollupEvent()
		expectedErr := errors.New("handler error")
		mockHandler.On("Handle", mock.Anything, event).Return(expectedErr)

		err := handler.Handle(context.Background(), event)
		require.Error(t, err)
		assert.Equal(t, expectedErr, err)

		assert.Equal(t, int64(0), handler.metrics.EventsProcessed.Load())
		assert.Equal(t, int64(1), handler.metrics.EventsFailed.Load())
	})

	t.Run("store failure falls open", func(t *testing.T) {
		mockStore := new(MockIdempotencyStore)
		mockHandler := new(MockEventHandler)
		event := newRollupEvent()

		mockStore.On("MarkProcessed", mock.Anything, event.EventID().String(), mock.Anything).
			Return(false, errors.New("store error"))
		// Losing the dedupe store must not lose events.
		mockHandler.On("Handle", mock.Anything, event).Return(nil)

		handler := NewIdempotentHandler(mockHandler, mockStore, zap.NewNop())
		require.NoError(t, handler.Handle(context.Background(), event))

		mockStore.AssertExpectations(t)
		mockHandler.AssertExpectations(t)
	})

	t.Run("disabled config passes everything through", func(t *testing.T) {
		config := shared.DefaultIdempotencyConfig()
		config.Enabled = false

		handler, mockHandler := wrappedFixture(t, WithIdempotencyConfig(config))
		event := newRollupEvent()
		mockHandler.On("Handle", mock.Anything, event).Return(nil).Times(3)

		for range 3 {
			require.NoError(t, handler.Handle(context.Background(), event))
		}

		mockHandler.AssertExpectations(t)
		assert.Equal(t, int64(0), handler.metrics.EventsProcessed.Load())
		assert.Equal(t, int64(0), handler.metrics.EventsDuplicate.Load())
	})

	t.Run("custom TTL config is honored", func(t *testing.T) {
		handler, mockHandler := wrappedFixture(t, WithIdempotencyConfig(shared.IdempotencyConfig{
			TTL:     1 * time.Hour,
			Enabled: true,
		}))
		event := newRollupEvent()
		mockHandler.On("Handle", mock.Anything, event).Return(nil).Once()

		require.NoError(t, handler.Handle(context.Background(), event))
		mockHandler.AssertExpectations(t)
	})
}

func TestIdempotentHandler_DelegatesToWrapped(t *testing.T) {
	handler, mockHandler := wrappedFixture(t)

	expectedTypes := []string{"WorkPackageCreated", "WorkPackageDeleted"}
	mockHandler.On("EventTypes").Return(expectedTypes)

	assert.Equal(t, expectedTypes, handler.EventTypes())
	assert.Equal(t, mockHandler, handler.GetWrappedHandler())
	mockHandler.AssertExpectations(t)
}

func TestIdempotentHandler_SharedMetrics(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	sharedMetrics := &IdempotencyMetrics{}

	mockHandler1 := new(MockEventHandler)
	mockHandler2 := new(MockEventHandler)
	event1 := newRollupEvent()
	event2 := newRollupEvent()

	mockHandler1.On("Handle", mock.Anything, event1).Return(nil)
	mockHandler2.On("Handle", mock.Anything, event2).Return(nil)

	handler1 := NewIdempotentHandler(mockHandler1, store, zap.NewNop(), WithIdempotencyMetrics(sharedMetrics))
	handler2 := NewIdempotentHandler(mockHandler2, store, zap.NewNop(), WithIdempotencyMetrics(sharedMetrics))

	handler1.Handle(context.Background(), event1)
	handler2.Handle(context.Background(), event2)

	assert.Equal(t, int64(2), sharedMetrics.EventsProcessed.Load())
	mockHandler1.AssertExpectations(t)
	mockHandler2.AssertExpectations(t)
}

func TestWrapHandlersWithIdempotency(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	handlers := []shared.EventHandler{new(MockEventHandler), new(MockEventHandler)}
	wrapped := WrapHandlersWithIdempotency(handlers, store, zap.NewNop())

	require.Len(t, wrapped, 2)
	for i, h := range wrapped {
		assert.IsType(t, &IdempotentHandler{}, h, "handler %d", i)
	}
}

func TestIdempotencyMetrics_Stats(t *testing.T) {
	metrics := &IdempotencyMetrics{}
	metrics.EventsProcessed.Add(10)
	metrics.EventsDuplicate.Add(5)
	metrics.EventsFailed.Add(2)

	stats := metrics.Stats()
	assert.Equal(t, int64(10), stats.EventsProcessed)
	assert.Equal(t, int64(5), stats.EventsDuplicate)
	assert.Equal(t, int64(2), stats.EventsFailed)
}

func TestIdempotentHandler_ConcurrentDuplicates(t *testing.T) {
	handler, mockHandler := wrappedFixture(t)
	event := newRollupEvent()

	// Racing deliveries of the same event must collapse to one handling.
	mockHandler.On("Handle", mock.Anything, event).Return(nil).Once()

	const numGoroutines = 50
	errChan := make(chan error, numGoroutines)
	for range numGoroutines {
		go func() {
			errChan <- handler.Handle(context.Background(), event)
		}()
	}
	for range numGoroutines {
		assert.NoError(t, <-errChan)
	}

	mockHandler.AssertExpectations(t)
	assert.Equal(t, int64(1), handler.metrics.EventsProcessed.Load())
	assert.Equal(t, int64(numGoroutines-1), handler.metrics.EventsDuplicate.Load())
}
