package takeoff

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Drawing change event names pushed to connected measurement clients
const (
	ChangeEventMeasurementCreated = "measurement.created"
	ChangeEventMeasurementUpdated = "measurement.updated"
	ChangeEventMeasurementDeleted = "measurement.deleted"
	ChangeEventInstantJSONUpdated = "drawing.instantjson.updated"
)

// DrawingChangeEvent is the payload fanned out to every client subscribed to
// a drawing. SyncVersion lets clients discard events for versions they have
// already applied; ClientID identifies the originating client so it can skip
// reloading its own save.
type DrawingChangeEvent struct {
	Event        string    `json:"event"`
	CompanyID    uuid.UUID `json:"company_id"`
	DrawingID    uuid.UUID `json:"drawing_id"`
	AnnotationID string    `json:"annotation_id,omitempty"`
	SyncVersion  int64     `json:"sync_version,omitempty"`
	ClientID     string    `json:"client_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type clientIDContextKey struct{}

// WithClientID attaches the originating client id to the context. The HTTP
// layer sets it from the X-Client-ID header so change events can name their
// origin.
func WithClientID(ctx context.Context, clientID string) context.Context {
	if clientID == "" {
		return ctx
	}
	return context.WithValue(ctx, clientIDContextKey{}, clientID)
}

// ClientIDFromContext retrieves the originating client id, if any
func ClientIDFromContext(ctx context.Context) string {
	if clientID, ok := ctx.Value(clientIDContextKey{}).(string); ok {
		return clientID
	}
	return ""
}

// DrawingChangeNotifier broadcasts drawing changes to subscribed clients.
// Implemented by the Redis-backed fan-out feeding the SSE hub, so a change
// made on one server instance reaches clients connected to another.
type DrawingChangeNotifier interface {
	NotifyDrawingChanged(ctx context.Context, event DrawingChangeEvent) error
}

// NewDrawingChangeEvent builds a change event stamped with the current time
func NewDrawingChangeEvent(eventName string, companyID, drawingID uuid.UUID) DrawingChangeEvent {
	return DrawingChangeEvent{
		Event:      eventName,
		CompanyID:  companyID,
		DrawingID:  drawingID,
		OccurredAt: time.Now(),
	}
}
