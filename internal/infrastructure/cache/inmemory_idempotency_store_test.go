package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("first delivery wins", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "evt-rollup-0001", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("redelivery of the same event id is a duplicate", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "evt-rollup-0002", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, "evt-rollup-0002", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew, "redelivered event should be rejected")
	})

	t.Run("expired mark admits the event again", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "evt-rollup-0003", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, isNew)

		time.Sleep(20 * time.Millisecond)

		isNew, err = store.MarkProcessed(ctx, "evt-rollup-0003", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, isNew, "mark past its TTL should not block reprocessing")
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("unknown event id", func(t *testing.T) {
		processed, err := store.IsProcessed(ctx, "evt-never-seen")
		require.NoError(t, err)
		assert.False(t, processed)
	})

	t.Run("marked event id", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "evt-dispatch-0001", time.Hour)
		require.NoError(t, err)

		processed, err := store.IsProcessed(ctx, "evt-dispatch-0001")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("expired mark reads as unprocessed", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "evt-dispatch-0002", 10*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		processed, err := store.IsProcessed(ctx, "evt-dispatch-0002")
		require.NoError(t, err)
		assert.False(t, processed)
	})
}

func TestInMemoryIdempotencyStore_Size(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	assert.Equal(t, 0, store.Size())

	store.MarkProcessed(ctx, "evt-0001", time.Hour)
	assert.Equal(t, 1, store.Size())

	store.MarkProcessed(ctx, "evt-0002", time.Hour)
	assert.Equal(t, 2, store.Size())

	// A duplicate does not grow the map.
	store.MarkProcessed(ctx, "evt-0001", time.Hour)
	assert.Equal(t, 2, store.Size())
}

func TestInMemoryIdempotencyStore_Sweep(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	store.MarkProcessed(ctx, "evt-short-0001", 10*time.Millisecond)
	store.MarkProcessed(ctx, "evt-short-0002", 10*time.Millisecond)
	store.MarkProcessed(ctx, "evt-long-0001", time.Hour)

	assert.Equal(t, 3, store.Size())

	time.Sleep(20 * time.Millisecond)
	store.sweep()

	assert.Equal(t, 1, store.Size())

	processed, err := store.IsProcessed(ctx, "evt-long-0001")
	require.NoError(t, err)
	assert.True(t, processed)

	processed, err = store.IsProcessed(ctx, "evt-short-0001")
	require.NoError(t, err)
	assert.False(t, processed)
}

// A redelivery storm for one event id must let exactly one delivery through.
func TestInMemoryIdempotencyStore_ConcurrentMarks(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	const deliveries = 100

	results := make(chan bool, deliveries)
	for i := 0; i < deliveries; i++ {
		go func() {
			isNew, err := store.MarkProcessed(ctx, "evt-storm-0001", time.Hour)
			results <- err == nil && isNew
		}()
	}

	newCount := 0
	for i := 0; i < deliveries; i++ {
		if <-results {
			newCount++
		}
	}

	assert.Equal(t, 1, newCount, "exactly one delivery should win")
}

// Distinct event ids never dedupe each other.
func TestInMemoryIdempotencyStore_DistinctEventIDs(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		isNew, err := store.MarkProcessed(ctx, fmt.Sprintf("evt-wo-%04d", i), time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	}
	assert.Equal(t, 5, store.Size())
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore()

	assert.NoError(t, store.Close())
	// Closing twice must be safe.
	assert.NoError(t, store.Close())
}
