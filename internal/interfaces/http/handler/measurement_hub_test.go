package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	takeoffapp "github.com/fabmate/backend/internal/application/takeoff"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockDrawingSubscriber implements DrawingSubscriber for testing
type mockDrawingSubscriber struct {
	mu        sync.Mutex
	callbacks []func(event takeoffapp.DrawingChangeEvent)
}

func (m *mockDrawingSubscriber) Subscribe(ctx context.Context, callback func(event takeoffapp.DrawingChangeEvent)) error {
	m.mu.Lock()
	m.callbacks = append(m.callbacks, callback)
	m.mu.Unlock()

	// Block until context is cancelled
	<-ctx.Done()
	return ctx.Err()
}

// sseRecorder is a concurrency-safe flushable response writer for SSE tests.
// httptest.ResponseRecorder is not safe to read while the stream goroutine
// writes to it.
type sseRecorder struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	header http.Header
	code   int
}

func newSSERecorder() *sseRecorder {
	return &sseRecorder{header: make(http.Header), code: http.StatusOK}
}

func (r *sseRecorder) Header() http.Header { return r.header }

func (r *sseRecorder) WriteHeader(code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.code = code
}

func (r *sseRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Write(p)
}

func (r *sseRecorder) Flush() {}

func (r *sseRecorder) BodyString() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.String()
}

// hubStream drives a Stream call in a goroutine with a cancellable request
type hubStream struct {
	recorder *sseRecorder
	cancel   context.CancelFunc
	done     chan struct{}
}

func openHubStream(h *MeasurementHubHandler, companyID uuid.UUID, clientID, drawings string) *hubStream {
	recorder := newSSERecorder()
	c, _ := gin.CreateTestContext(recorder)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/measurementHub?drawings="+drawings, nil).WithContext(ctx)
	req.Header.Set("X-Client-ID", clientID)
	c.Request = req
	setJWTContext(c, companyID, uuid.New())

	s := &hubStream{recorder: recorder, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(s.done)
		h.Stream(c)
	}()
	return s
}

func (s *hubStream) close(t *testing.T) {
	t.Helper()
	s.cancel()
	select {
	case <-s.done:
	case <-time.After(time.Second):
		t.Fatal("stream did not shut down")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func newHubClient(id string, companyID uuid.UUID, drawings ...uuid.UUID) *hubClient {
	client := &hubClient{
		ID:        id,
		CompanyID: companyID,
		Chan:      make(chan hubMessage, 100),
		Done:      make(chan struct{}),
		drawings:  make(map[uuid.UUID]struct{}, len(drawings)),
	}
	for _, d := range drawings {
		client.drawings[d] = struct{}{}
	}
	return client
}

func TestNewMeasurementHubHandler_Defaults(t *testing.T) {
	handler := NewMeasurementHubHandler(&mockDrawingSubscriber{})

	assert.NotNil(t, handler)
	assert.Equal(t, 30*time.Second, handler.heartbeat)
	assert.Equal(t, 0, handler.ClientCount())
}

func TestNewMeasurementHubHandler_WithOptions(t *testing.T) {
	logger := zap.NewNop()
	handler := NewMeasurementHubHandler(&mockDrawingSubscriber{},
		WithHubLogger(logger),
		WithHubHeartbeat(10*time.Second),
		WithHubMaxClients(5),
	)

	assert.Equal(t, 10*time.Second, handler.heartbeat)
	assert.Equal(t, logger, handler.logger)
	assert.Equal(t, 5, handler.maxClients)
}

func TestMeasurementHubHandler_Start_Stop(t *testing.T) {
	handler := NewMeasurementHubHandler(&mockDrawingSubscriber{}, WithHubLogger(zap.NewNop()))

	err := handler.Start()
	assert.NoError(t, err)

	// Starting again should fail
	err = handler.Start()
	assert.Error(t, err)

	handler.Stop()
}

func TestMeasurementHubHandler_HandleDrawingChange_FanOut(t *testing.T) {
	handler := NewMeasurementHubHandler(&mockDrawingSubscriber{}, WithHubLogger(zap.NewNop()))
	companyID := uuid.New()
	drawingID := uuid.New()

	subscribed := newHubClient("subscribed", companyID, drawingID)
	origin := newHubClient("origin", companyID, drawingID)
	otherCompany := newHubClient("other-company", uuid.New(), drawingID)
	notSubscribed := newHubClient("not-subscribed", companyID)
	for _, client := range []*hubClient{subscribed, origin, otherCompany, notSubscribed} {
		handler.clients.Store(client.ID, client)
	}

	handler.handleDrawingChange(takeoffapp.DrawingChangeEvent{
		Event:       takeoffapp.ChangeEventInstantJSONUpdated,
		CompanyID:   companyID,
		DrawingID:   drawingID,
		SyncVersion: 3,
		ClientID:    "origin",
		OccurredAt:  time.Now(),
	})

	select {
	case msg := <-subscribed.Chan:
		assert.Equal(t, takeoffapp.ChangeEventInstantJSONUpdated, msg.Event)
		assert.Contains(t, msg.Data, drawingID.String())
	default:
		t.Error("subscribed client did not receive the event")
	}

	assert.Empty(t, origin.Chan, "originating client must not receive its own event")
	assert.Empty(t, otherCompany.Chan, "event must not cross the company boundary")
	assert.Empty(t, notSubscribed.Chan, "unsubscribed client must not receive the event")
}

func TestMeasurementHubHandler_Stream_ReplaysResyncOnConnect(t *testing.T) {
	handler := NewMeasurementHubHandler(&mockDrawingSubscriber{}, WithHubLogger(zap.NewNop()))
	companyID := uuid.New()
	d1 := uuid.New()
	d2 := uuid.New()

	stream := openHubStream(handler, companyID, "tab-1", d1.String()+","+d2.String())
	defer stream.close(t)

	waitFor(t, func() bool { return handler.ClientCount() == 1 })
	waitFor(t, func() bool {
		body := stream.recorder.BodyString()
		return strings.Contains(body, "event: connected") &&
			strings.Count(body, "event: resync") == 2 &&
			strings.Contains(body, d1.String()) &&
			strings.Contains(body, d2.String())
	})
}

func TestMeasurementHubHandler_Stream_ReconnectKeepsNewRegistration(t *testing.T) {
	handler := NewMeasurementHubHandler(&mockDrawingSubscriber{}, WithHubLogger(zap.NewNop()))
	companyID := uuid.New()
	drawingID := uuid.New()

	first := openHubStream(handler, companyID, "tab-1", drawingID.String())
	waitFor(t, func() bool { return handler.ClientCount() == 1 })

	// Reconnect with the same client id: the old stream is torn down and
	// its cleanup must not remove the replacement registration
	second := openHubStream(handler, companyID, "tab-1", drawingID.String())
	defer second.close(t)

	select {
	case <-first.done:
	case <-time.After(time.Second):
		t.Fatal("old stream was not terminated by the reconnect")
	}
	first.cancel()

	assert.Equal(t, 1, handler.ClientCount())

	// The reconnected client still receives broadcasts
	handler.handleDrawingChange(takeoffapp.DrawingChangeEvent{
		Event:       takeoffapp.ChangeEventInstantJSONUpdated,
		CompanyID:   companyID,
		DrawingID:   drawingID,
		SyncVersion: 7,
		OccurredAt:  time.Now(),
	})
	waitFor(t, func() bool {
		return strings.Contains(second.recorder.BodyString(), takeoffapp.ChangeEventInstantJSONUpdated)
	})
}

func TestMeasurementHubHandler_Stream_InvalidDrawingParam(t *testing.T) {
	handler := NewMeasurementHubHandler(&mockDrawingSubscriber{}, WithHubLogger(zap.NewNop()))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/measurementHub?drawings=not-a-uuid", nil)
	setJWTContext(c, uuid.New(), uuid.New())

	handler.Stream(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, handler.ClientCount())
}

func TestMeasurementHubHandler_Stream_RequiresCompanyScope(t *testing.T) {
	handler := NewMeasurementHubHandler(&mockDrawingSubscriber{}, WithHubLogger(zap.NewNop()))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/measurementHub", nil)

	handler.Stream(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeasurementHubHandler_Stream_MaxClients(t *testing.T) {
	handler := NewMeasurementHubHandler(&mockDrawingSubscriber{},
		WithHubLogger(zap.NewNop()), WithHubMaxClients(1))
	companyID := uuid.New()

	existing := newHubClient("existing", companyID)
	handler.clients.Store(existing.ID, existing)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/measurementHub", nil)
	setJWTContext(c, companyID, uuid.New())

	handler.Stream(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "MAX_CONNECTIONS_REACHED")
}

func TestMeasurementHubHandler_SubscribeToDrawing(t *testing.T) {
	handler := NewMeasurementHubHandler(&mockDrawingSubscriber{}, WithHubLogger(zap.NewNop()))
	companyID := uuid.New()
	drawingID := uuid.New()

	client := newHubClient("tab-1", companyID)
	handler.clients.Store(client.ID, client)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/measurementHub/subscriptions/"+drawingID.String(), nil)
	c.Request.Header.Set("X-Client-ID", "tab-1")
	c.Params = gin.Params{{Key: "drawingId", Value: drawingID.String()}}
	setJWTContext(c, companyID, uuid.New())

	handler.SubscribeToDrawing(c)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, client.subscribed(drawingID))

	// A resync is replayed for the newly subscribed drawing
	select {
	case msg := <-client.Chan:
		assert.Equal(t, "resync", msg.Event)
		assert.Contains(t, msg.Data, drawingID.String())
	default:
		t.Error("expected a resync message for the subscribed drawing")
	}
}

func TestMeasurementHubHandler_UnsubscribeFromDrawing(t *testing.T) {
	handler := NewMeasurementHubHandler(&mockDrawingSubscriber{}, WithHubLogger(zap.NewNop()))
	companyID := uuid.New()
	drawingID := uuid.New()

	client := newHubClient("tab-1", companyID, drawingID)
	handler.clients.Store(client.ID, client)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("DELETE", "/measurementHub/subscriptions/"+drawingID.String(), nil)
	c.Request.Header.Set("X-Client-ID", "tab-1")
	c.Params = gin.Params{{Key: "drawingId", Value: drawingID.String()}}
	setJWTContext(c, companyID, uuid.New())

	handler.UnsubscribeFromDrawing(c)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, client.subscribed(drawingID))

	handler.handleDrawingChange(takeoffapp.DrawingChangeEvent{
		Event:      takeoffapp.ChangeEventMeasurementCreated,
		CompanyID:  companyID,
		DrawingID:  drawingID,
		OccurredAt: time.Now(),
	})
	assert.Empty(t, client.Chan, "unsubscribed client must not receive further events")
}

func TestMeasurementHubHandler_ResolveSubscription_Errors(t *testing.T) {
	handler := NewMeasurementHubHandler(&mockDrawingSubscriber{}, WithHubLogger(zap.NewNop()))
	companyID := uuid.New()
	drawingID := uuid.New()

	client := newHubClient("tab-1", companyID)
	handler.clients.Store(client.ID, client)

	tests := []struct {
		name           string
		clientID       string
		drawingParam   string
		companyID      uuid.UUID
		expectedStatus int
	}{
		{
			name:           "missing client id header",
			clientID:       "",
			drawingParam:   drawingID.String(),
			companyID:      companyID,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid drawing id",
			clientID:       "tab-1",
			drawingParam:   "not-a-uuid",
			companyID:      companyID,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown client",
			clientID:       "tab-99",
			drawingParam:   drawingID.String(),
			companyID:      companyID,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "client from another company",
			clientID:       "tab-1",
			drawingParam:   drawingID.String(),
			companyID:      uuid.New(),
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("POST", "/measurementHub/subscriptions/"+tt.drawingParam, nil)
			if tt.clientID != "" {
				c.Request.Header.Set("X-Client-ID", tt.clientID)
			}
			c.Params = gin.Params{{Key: "drawingId", Value: tt.drawingParam}}
			setJWTContext(c, tt.companyID, uuid.New())

			handler.SubscribeToDrawing(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
