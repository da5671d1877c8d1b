package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockOutboxRepository is an in-memory OutboxRepository with per-method
// overrides for failure injection.
type mockOutboxRepository struct {
	mu               sync.Mutex
	entries          map[uuid.UUID]*shared.OutboxEntry
	findPendingFn    func(ctx context.Context, limit int) ([]*shared.OutboxEntry, error)
	findRetryableFn  func(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error)
	markProcessingFn func(ctx context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error)
	updateFn         func(ctx context.Context, entry *shared.OutboxEntry) error
	deleteFn         func(ctx context.Context, before time.Time) (int64, error)
}

func newMockOutboxRepository() *mockOutboxRepository {
	return &mockOutboxRepository{entries: make(map[uuid.UUID]*shared.OutboxEntry)}
}

// byStatus snapshots entries in the given status, up to limit (0 = all).
func (r *mockOutboxRepository) byStatus(status shared.OutboxStatus, limit int) []*shared.OutboxEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status != status {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func (r *mockOutboxRepository) get(id uuid.UUID) *shared.OutboxEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[id]
}

func (r *mockOutboxRepository) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return nil
}

func (r *mockOutboxRepository) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	if r.findPendingFn != nil {
		return r.findPendingFn(ctx, limit)
	}
	return r.byStatus(shared.OutboxStatusPending, limit), nil
}

func (r *mockOutboxRepository) FindRetryable(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	if r.findRetryableFn != nil {
		return r.findRetryableFn(ctx, before, limit)
	}
	return nil, nil
}

func (r *mockOutboxRepository) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error) {
	if r.markProcessingFn != nil {
		return r.markProcessingFn(ctx, ids)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var claimed []*shared.OutboxEntry
	for _, id := range ids {
		if e, ok := r.entries[id]; ok {
			e.Status = shared.OutboxStatusProcessing
			claimed = append(claimed, e)
		}
	}
	return claimed, nil
}

func (r *mockOutboxRepository) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	if r.updateFn != nil {
		return r.updateFn(ctx, entry)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ID] = entry
	return nil
}

func (r *mockOutboxRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	if r.deleteFn != nil {
		return r.deleteFn(ctx, before)
	}
	return 0, nil
}

func (r *mockOutboxRepository) FindDead(ctx context.Context, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	dead := r.byStatus(shared.OutboxStatusDead, 0)
	return dead, int64(len(dead)), nil
}

func (r *mockOutboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	return r.get(id), nil
}

func (r *mockOutboxRepository) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[shared.OutboxStatus]int64)
	for _, e := range r.entries {
		counts[e.Status]++
	}
	return counts, nil
}

// fastPollConfig polls aggressively so tests finish in a few ticks.
func fastPollConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{BatchSize: 100, PollInterval: 50 * time.Millisecond}
}

// runProcessorBriefly starts the processor, lets a few polls elapse, then
// stops it and fails the test on a hung shutdown.
func runProcessorBriefly(t *testing.T, p *OutboxProcessor) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, p.Start(ctx))

	time.Sleep(200 * time.Millisecond)
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	require.NoError(t, p.Stop(stopCtx))
}

func TestOutboxProcessor_ProcessesPendingEntries(t *testing.T) {
	logger := zap.NewNop()
	serializer := NewEventSerializer()
	serializer.Register("WorkOrderDispatched", &orderEvent{})

	repo := newMockOutboxRepository()
	eventBus := NewInMemoryEventBus(logger)
	handler := newRecordingHandler("WorkOrderDispatched")
	eventBus.Subscribe(handler, "WorkOrderDispatched")

	companyID := uuid.New()
	event := newOrderEvent("WorkOrderDispatched", companyID)
	payload, _ := serializer.Serialize(event)
	entry := shared.NewOutboxEntry(companyID, event, payload)
	repo.Save(context.Background(), entry)

	processor := NewOutboxProcessor(repo, eventBus, serializer, fastPollConfig(), logger)
	runProcessorBriefly(t, processor)

	assert.Equal(t, 1, handler.handledCount())
	assert.Equal(t, shared.OutboxStatusSent, repo.get(entry.ID).Status)
}

func TestOutboxProcessor_UpgradesOldPayloadVersions(t *testing.T) {
	logger := zap.NewNop()
	serializer := NewVersionedSerializer(logger)
	mustRegisterDispatch(t, serializer, 2)

	repo := newMockOutboxRepository()
	eventBus := NewInMemoryEventBus(logger)
	handler := newRecordingHandler("WorkOrderDispatched")
	eventBus.Subscribe(handler, "WorkOrderDispatched")

	// Entry persisted before the schema gained the shift field.
	oldEvent := newDispatchEvent(1)
	payload, err := serializer.Serialize(oldEvent)
	require.NoError(t, err)
	entry := shared.NewOutboxEntry(oldEvent.CompanyID(), oldEvent, payload)
	repo.Save(context.Background(), entry)

	processor := NewOutboxProcessor(repo, eventBus, serializer, fastPollConfig(), logger)
	runProcessorBriefly(t, processor)

	// The handler must see the payload upgraded to the current schema.
	require.Equal(t, 1, handler.handledCount())
	upgraded, ok := handler.lastHandled().(*dispatchEventV2)
	require.True(t, ok)
	assert.Equal(t, "CUT-01", upgraded.Station)
	assert.Equal(t, "UNASSIGNED", upgraded.Shift)

	assert.Equal(t, shared.OutboxStatusSent, repo.get(entry.ID).Status)
}

func TestOutboxProcessor_StopGracefully(t *testing.T) {
	logger := zap.NewNop()
	processor := NewOutboxProcessor(
		newMockOutboxRepository(),
		NewInMemoryEventBus(logger),
		NewEventSerializer(),
		DefaultOutboxProcessorConfig(),
		logger,
	)

	require.NoError(t, processor.Start(context.Background()))

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, processor.Stop(stopCtx))
}

func TestOutboxProcessor_HandleDeserializationError(t *testing.T) {
	logger := zap.NewNop()
	serializer := NewEventSerializer() // event type deliberately unregistered

	repo := newMockOutboxRepository()
	companyID := uuid.New()
	event := newOrderEvent("UnregisteredEvent", companyID)
	entry := shared.NewOutboxEntry(companyID, event, []byte(`{"type": "UnregisteredEvent"}`))
	entry.EventType = "UnregisteredEvent"
	repo.Save(context.Background(), entry)

	processor := NewOutboxProcessor(repo, NewInMemoryEventBus(logger), serializer, fastPollConfig(), logger)
	runProcessorBriefly(t, processor)

	failed := repo.get(entry.ID)
	assert.Equal(t, shared.OutboxStatusFailed, failed.Status)
	assert.Contains(t, failed.LastError, "unknown event type")
}

func TestDefaultOutboxProcessorConfig(t *testing.T) {
	config := DefaultOutboxProcessorConfig()

	assert.Equal(t, 100, config.BatchSize)
	assert.Equal(t, 5*time.Second, config.PollInterval)
	assert.True(t, config.CleanupEnabled)
	assert.Equal(t, 7*24*time.Hour, config.CleanupRetention)
	assert.Equal(t, 1*time.Hour, config.CleanupInterval)
}
