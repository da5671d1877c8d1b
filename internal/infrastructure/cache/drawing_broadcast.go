package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/fabmate/backend/internal/application/takeoff"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultDrawingChangeChannel is the Redis Pub/Sub channel carrying drawing
// change events between server instances.
const DefaultDrawingChangeChannel = "fabmate:drawing-changes"

// defaultCloseTimeout bounds the wait for the pub/sub loop to drain on Close
const defaultCloseTimeout = 5 * time.Second

// RedisDrawingBroadcaster fans drawing change events out over Redis Pub/Sub.
// A measurement saved on one server instance reaches SSE clients connected to
// any other instance through this channel.
type RedisDrawingBroadcaster struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	channel    string
	logger     *zap.Logger
	cancelFn   context.CancelFunc
	doneCh     chan struct{}
	doneOnce   sync.Once
	mu         sync.Mutex
	isRunning  bool
}

// RedisDrawingBroadcasterOption is a functional option for configuring the broadcaster
type RedisDrawingBroadcasterOption func(*RedisDrawingBroadcaster)

// WithBroadcastChannel sets the Pub/Sub channel name
func WithBroadcastChannel(channel string) RedisDrawingBroadcasterOption {
	return func(b *RedisDrawingBroadcaster) {
		b.channel = channel
	}
}

// WithBroadcastLogger sets the logger for the broadcaster
func WithBroadcastLogger(logger *zap.Logger) RedisDrawingBroadcasterOption {
	return func(b *RedisDrawingBroadcaster) {
		b.logger = logger
	}
}

// NewRedisDrawingBroadcaster creates a broadcaster with its own Redis connection
func NewRedisDrawingBroadcaster(cfg RedisConfig, opts ...RedisDrawingBroadcasterOption) (*RedisDrawingBroadcaster, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	broadcaster := &RedisDrawingBroadcaster{
		client:     client,
		ownsClient: true,
		channel:    DefaultDrawingChangeChannel,
		logger:     zap.NewNop(),
		doneCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(broadcaster)
	}

	return broadcaster, nil
}

// NewRedisDrawingBroadcasterWithClient creates a broadcaster with an existing Redis client.
// Note: The caller retains ownership of the client and is responsible for closing it.
func NewRedisDrawingBroadcasterWithClient(client *redis.Client, opts ...RedisDrawingBroadcasterOption) *RedisDrawingBroadcaster {
	broadcaster := &RedisDrawingBroadcaster{
		client:     client,
		ownsClient: false,
		channel:    DefaultDrawingChangeChannel,
		logger:     zap.NewNop(),
		doneCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(broadcaster)
	}

	return broadcaster
}

// NotifyDrawingChanged publishes a drawing change event to all subscribers
func (b *RedisDrawingBroadcaster) NotifyDrawingChanged(ctx context.Context, event takeoff.DrawingChangeEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal drawing change event",
			zap.String("event", event.Event),
			zap.Error(err))
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish drawing change event",
			zap.String("channel", b.channel),
			zap.Error(err))
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Published drawing change event",
		zap.String("event", event.Event),
		zap.String("drawing_id", event.DrawingID.String()),
		zap.String("channel", b.channel))

	return nil
}

// Subscribe starts listening for drawing change events.
// The callback function is invoked for each received event.
// This method should be called in a goroutine as it blocks.
func (b *RedisDrawingBroadcaster) Subscribe(ctx context.Context, callback func(event takeoff.DrawingChangeEvent)) error {
	b.mu.Lock()
	if b.isRunning {
		b.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	b.isRunning = true
	b.mu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	b.cancelFn = cancel
	b.mu.Unlock()

	pubsub := b.client.Subscribe(subCtx, b.channel)
	defer pubsub.Close()

	// Wait for subscription confirmation
	_, err := pubsub.Receive(subCtx)
	if err != nil {
		b.mu.Lock()
		b.isRunning = false
		b.mu.Unlock()
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	b.logger.Info("Subscribed to drawing change channel",
		zap.String("channel", b.channel))

	ch := pubsub.Channel()

	for {
		select {
		case <-subCtx.Done():
			b.logger.Info("Drawing change subscription stopped")
			b.mu.Lock()
			b.isRunning = false
			b.mu.Unlock()
			b.markDone()
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				b.logger.Warn("Drawing change channel closed")
				b.mu.Lock()
				b.isRunning = false
				b.mu.Unlock()
				b.markDone()
				return nil
			}

			var event takeoff.DrawingChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Error("Failed to unmarshal drawing change event",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}

			b.logger.Debug("Received drawing change event",
				zap.String("event", event.Event),
				zap.String("drawing_id", event.DrawingID.String()))

			// Call the callback in a separate goroutine to prevent blocking
			go func(e takeoff.DrawingChangeEvent) {
				defer func() {
					if r := recover(); r != nil {
						b.logger.Error("Panic in drawing change callback",
							zap.Any("panic", r))
					}
				}()
				callback(e)
			}(event)
		}
	}
}

// markDone safely marks the broadcaster as done
func (b *RedisDrawingBroadcaster) markDone() {
	b.doneOnce.Do(func() {
		close(b.doneCh)
	})
}

// Close releases any resources held by the broadcaster
func (b *RedisDrawingBroadcaster) Close() error {
	b.mu.Lock()
	cancelFn := b.cancelFn
	b.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		// Wait for subscription to stop with timeout
		select {
		case <-b.doneCh:
		case <-time.After(defaultCloseTimeout):
			b.logger.Warn("Timeout waiting for subscription to stop")
		}
	}

	if b.ownsClient {
		return b.client.Close()
	}
	return nil
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (b *RedisDrawingBroadcaster) GetClient() *redis.Client {
	return b.client
}

// Ensure RedisDrawingBroadcaster implements DrawingChangeNotifier
var _ takeoff.DrawingChangeNotifier = (*RedisDrawingBroadcaster)(nil)
