package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	takeoffapp "github.com/fabmate/backend/internal/application/takeoff"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// hubClient represents a connected measurement hub client
type hubClient struct {
	ID        string
	CompanyID uuid.UUID
	UserID    string
	Chan      chan hubMessage
	Done      chan struct{}

	mu       sync.Mutex
	drawings map[uuid.UUID]struct{}
}

func (c *hubClient) subscribe(drawingID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drawings[drawingID] = struct{}{}
}

func (c *hubClient) unsubscribe(drawingID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.drawings, drawingID)
}

func (c *hubClient) subscribed(drawingID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.drawings[drawingID]
	return ok
}

// hubMessage is a message queued for delivery to a hub client. Comment
// messages are written as SSE comments and carry no event payload.
type hubMessage struct {
	Event   string
	Data    string
	ID      string
	Comment string
}

// resyncEvent tells a client to re-fetch a drawing's full annotation state
type resyncEvent struct {
	DrawingID uuid.UUID `json:"drawing_id"`
	Timestamp int64     `json:"timestamp"`
}

// DrawingSubscriber is the subscription side of the drawing change fan-out
type DrawingSubscriber interface {
	Subscribe(ctx context.Context, callback func(event takeoffapp.DrawingChangeEvent)) error
}

// MeasurementHubHandler streams drawing change events to connected clients
// over SSE. Each client subscribes to a set of drawings; events for a drawing
// are delivered to every subscribed client in the same company except the
// originating client.
type MeasurementHubHandler struct {
	BaseHandler
	subscriber DrawingSubscriber
	logger     *zap.Logger
	clients    sync.Map // map[string]*hubClient
	ctx        context.Context
	cancel     context.CancelFunc
	heartbeat  time.Duration
	started    bool
	startMu    sync.Mutex
	maxClients int
}

// MeasurementHubOption is a functional option for configuring the handler
type MeasurementHubOption func(*MeasurementHubHandler)

// WithHubLogger sets the logger for the handler
func WithHubLogger(logger *zap.Logger) MeasurementHubOption {
	return func(h *MeasurementHubHandler) {
		h.logger = logger
	}
}

// WithHubHeartbeat sets the heartbeat interval
func WithHubHeartbeat(interval time.Duration) MeasurementHubOption {
	return func(h *MeasurementHubHandler) {
		h.heartbeat = interval
	}
}

// WithHubMaxClients sets the maximum number of concurrent hub clients
func WithHubMaxClients(max int) MeasurementHubOption {
	return func(h *MeasurementHubHandler) {
		h.maxClients = max
	}
}

// NewMeasurementHubHandler creates a new measurement hub handler
func NewMeasurementHubHandler(subscriber DrawingSubscriber, opts ...MeasurementHubOption) *MeasurementHubHandler {
	ctx, cancel := context.WithCancel(context.Background())
	h := &MeasurementHubHandler{
		subscriber: subscriber,
		logger:     zap.NewNop(),
		ctx:        ctx,
		cancel:     cancel,
		heartbeat:  30 * time.Second,
		maxClients: 10000,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Start begins listening for drawing change events and fanning them out
func (h *MeasurementHubHandler) Start() error {
	h.startMu.Lock()
	defer h.startMu.Unlock()

	if h.started {
		return fmt.Errorf("measurement hub already started")
	}

	go h.sendHeartbeats()

	go func() {
		err := h.subscriber.Subscribe(h.ctx, h.handleDrawingChange)
		if err != nil && h.ctx.Err() == nil {
			h.logger.Error("Measurement hub subscription error", zap.Error(err))
		}
	}()

	h.started = true
	h.logger.Info("Measurement hub started")
	return nil
}

// Stop stops the hub and disconnects all clients
func (h *MeasurementHubHandler) Stop() {
	h.cancel()

	h.clients.Range(func(key, value any) bool {
		if client, ok := value.(*hubClient); ok {
			close(client.Done)
		}
		return true
	})

	h.logger.Info("Measurement hub stopped")
}

// handleDrawingChange fans a drawing change event out to subscribed clients.
// The originating client is skipped so a save never triggers a self-reload.
func (h *MeasurementHubHandler) handleDrawingChange(event takeoffapp.DrawingChangeEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to marshal drawing change event", zap.Error(err))
		return
	}

	msg := hubMessage{
		Event: event.Event,
		Data:  string(data),
		ID:    fmt.Sprintf("%d", event.OccurredAt.UnixNano()),
	}

	h.clients.Range(func(key, value any) bool {
		client, ok := value.(*hubClient)
		if !ok {
			return true
		}
		if client.CompanyID != event.CompanyID {
			return true
		}
		if event.ClientID != "" && client.ID == event.ClientID {
			return true
		}
		if !client.subscribed(event.DrawingID) {
			return true
		}
		h.deliver(client, msg)
		return true
	})
}

// deliver queues a message for a client, dropping it if the client is slow
func (h *MeasurementHubHandler) deliver(client *hubClient, msg hubMessage) {
	select {
	case client.Chan <- msg:
	default:
		h.logger.Warn("Hub client channel full, dropping message",
			zap.String("client_id", client.ID),
			zap.String("event", msg.Event))
	}
}

// sendHeartbeats periodically writes SSE comments to keep connections alive
func (h *MeasurementHubHandler) sendHeartbeats() {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			msg := hubMessage{Comment: fmt.Sprintf("heartbeat %d", time.Now().Unix())}
			h.clients.Range(func(_, value any) bool {
				if client, ok := value.(*hubClient); ok {
					h.deliver(client, msg)
				}
				return true
			})
		}
	}
}

// Stream godoc
// @ID           measurementHubStream
// @Summary      Subscribe to drawing change events via SSE
// @Description  Establishes a Server-Sent Events connection delivering measurement and instant JSON change events for the requested drawings. A resync event is replayed for every subscribed drawing on connect so reconnecting clients re-fetch state they may have missed. The client identifies itself with the X-Client-ID header; events originated by the same client are suppressed.
// @Tags         measurement-hub
// @Produce      text/event-stream
// @Param        drawings query string false "Comma-separated drawing IDs to subscribe to"
// @Param        X-Client-ID header string false "Stable client identifier used for origin suppression"
// @Success      200 {string} string "SSE stream"
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      503 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /measurementHub [get]
func (h *MeasurementHubHandler) Stream(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	if h.maxClients > 0 && h.ClientCount() >= h.maxClients {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MAX_CONNECTIONS_REACHED",
				"message": "Maximum number of SSE connections reached",
			},
		})
		return
	}

	drawingIDs, err := parseDrawingList(c.Query("drawings"))
	if err != nil {
		h.BadRequest(c, "Invalid drawing ID in drawings parameter")
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	clientID := c.GetHeader("X-Client-ID")
	if clientID == "" {
		clientID = uuid.New().String()
	}

	var userID string
	if id, err := getUserID(c); err == nil {
		userID = id.String()
	}

	const hubMessageBufferSize = 100
	client := &hubClient{
		ID:        clientID,
		CompanyID: companyID,
		UserID:    userID,
		Chan:      make(chan hubMessage, hubMessageBufferSize),
		Done:      make(chan struct{}),
		drawings:  make(map[uuid.UUID]struct{}, len(drawingIDs)),
	}
	for _, id := range drawingIDs {
		client.drawings[id] = struct{}{}
	}

	// A reconnect with the same client id replaces the previous registration
	if prev, loaded := h.clients.LoadAndDelete(client.ID); loaded {
		if old, ok := prev.(*hubClient); ok {
			close(old.Done)
		}
	}
	h.clients.Store(client.ID, client)
	// Remove only our own registration: after a reconnect the key already
	// holds the replacement client, which must stay registered. Chan is never
	// closed; deliver uses a non-blocking send, so the channel is simply
	// garbage collected with the client.
	defer h.clients.CompareAndDelete(client.ID, client)

	h.logger.Info("Hub client connected",
		zap.String("client_id", client.ID),
		zap.String("company_id", companyID.String()),
		zap.Int("drawings", len(drawingIDs)))

	h.writeMessage(c.Writer, hubMessage{
		Event: "connected",
		Data:  fmt.Sprintf(`{"client_id":"%s","timestamp":%d}`, client.ID, time.Now().Unix()),
	})

	// Replay resync for every subscribed drawing so reconnecting clients
	// re-fetch anything missed while disconnected
	for _, id := range drawingIDs {
		h.writeResync(c.Writer, id)
	}
	c.Writer.Flush()

	reqCtx := c.Request.Context()

	for {
		select {
		case <-reqCtx.Done():
			h.logger.Info("Hub client disconnected", zap.String("client_id", client.ID))
			return
		case <-client.Done:
			return
		case <-h.ctx.Done():
			return
		case msg := <-client.Chan:
			h.writeMessage(c.Writer, msg)
			c.Writer.Flush()
		}
	}
}

// SubscribeToDrawing godoc
// @ID           subscribeToDrawing
// @Summary      Subscribe a connected client to a drawing
// @Description  Adds a drawing to the subscription set of the SSE client identified by X-Client-ID and replays a resync event for it
// @Tags         measurement-hub
// @Produce      json
// @Param        drawingId path string true "Drawing ID" format(uuid)
// @Param        X-Client-ID header string true "Client identifier of an open SSE connection"
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /measurementHub/subscriptions/{drawingId} [post]
func (h *MeasurementHubHandler) SubscribeToDrawing(c *gin.Context) {
	client, drawingID, ok := h.resolveSubscription(c)
	if !ok {
		return
	}

	client.subscribe(drawingID)

	data, _ := json.Marshal(resyncEvent{DrawingID: drawingID, Timestamp: time.Now().Unix()})
	h.deliver(client, hubMessage{Event: "resync", Data: string(data)})

	h.NoContent(c)
}

// UnsubscribeFromDrawing godoc
// @ID           unsubscribeFromDrawing
// @Summary      Unsubscribe a connected client from a drawing
// @Tags         measurement-hub
// @Produce      json
// @Param        drawingId path string true "Drawing ID" format(uuid)
// @Param        X-Client-ID header string true "Client identifier of an open SSE connection"
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /measurementHub/subscriptions/{drawingId} [delete]
func (h *MeasurementHubHandler) UnsubscribeFromDrawing(c *gin.Context) {
	client, drawingID, ok := h.resolveSubscription(c)
	if !ok {
		return
	}

	client.unsubscribe(drawingID)
	h.NoContent(c)
}

// resolveSubscription validates the subscription request and resolves the
// target client. The client must belong to the caller's company.
func (h *MeasurementHubHandler) resolveSubscription(c *gin.Context) (*hubClient, uuid.UUID, bool) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return nil, uuid.Nil, false
	}

	drawingID, err := uuid.Parse(c.Param("drawingId"))
	if err != nil {
		h.BadRequest(c, "Invalid drawing ID format")
		return nil, uuid.Nil, false
	}

	clientID := c.GetHeader("X-Client-ID")
	if clientID == "" {
		h.BadRequest(c, "Missing X-Client-ID header")
		return nil, uuid.Nil, false
	}

	value, ok := h.clients.Load(clientID)
	if !ok {
		h.NotFound(c, "No active stream for client")
		return nil, uuid.Nil, false
	}

	client, ok := value.(*hubClient)
	if !ok || client.CompanyID != companyID {
		h.NotFound(c, "No active stream for client")
		return nil, uuid.Nil, false
	}

	return client, drawingID, true
}

// writeResync writes a resync event for a drawing directly to the stream
func (h *MeasurementHubHandler) writeResync(w io.Writer, drawingID uuid.UUID) {
	data, _ := json.Marshal(resyncEvent{DrawingID: drawingID, Timestamp: time.Now().Unix()})
	h.writeMessage(w, hubMessage{Event: "resync", Data: string(data)})
}

// writeMessage writes a hub message to the response writer in SSE format
func (h *MeasurementHubHandler) writeMessage(w io.Writer, msg hubMessage) {
	if msg.Comment != "" {
		fmt.Fprintf(w, ": %s\n\n", msg.Comment)
		return
	}
	if msg.Event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.Event)
	}
	if msg.ID != "" {
		fmt.Fprintf(w, "id: %s\n", msg.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.Data)
}

// ClientCount returns the number of connected hub clients
func (h *MeasurementHubHandler) ClientCount() int {
	count := 0
	h.clients.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

func parseDrawingList(raw string) ([]uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
