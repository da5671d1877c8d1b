package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fabmate/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTestTracer swaps the global tracer provider for one backed by an
// in-memory recorder and restores it when the test ends.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	return sr
}

func onlySpan(t *testing.T, sr *tracetest.SpanRecorder) sdktrace.ReadOnlySpan {
	t.Helper()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	return spans[0]
}

func attrsOf(span sdktrace.ReadOnlySpan) map[string]any {
	m := make(map[string]any)
	for _, attr := range span.Attributes() {
		m[string(attr.Key)] = attr.Value.AsInterface()
	}
	return m
}

func TestStartSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "takeoff.autosave")
	require.NotNil(t, span)
	span.End()

	recorded := onlySpan(t, sr)
	assert.Equal(t, "takeoff.autosave", recorded.Name())
	assert.Equal(t, trace.SpanKindInternal, recorded.SpanKind())
}

func TestStartSpan_WithOptions(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "drawing.presign",
		telemetry.WithAttribute("drawing_id", "d-42"),
		telemetry.WithSpanKind(trace.SpanKindClient),
	)
	span.End()

	recorded := onlySpan(t, sr)
	assert.Equal(t, trace.SpanKindClient, recorded.SpanKind())
	assert.Equal(t, "d-42", attrsOf(recorded)["drawing_id"])
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "work_order", "create")
	span.End()

	assert.Equal(t, "work_order.create", onlySpan(t, sr).Name())
}

func TestSetAttributes(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "takeoff.autosave")
	telemetry.SetAttributes(span,
		"drawing_sheet", "S-101",
		"measurement_count", 42,
		"autosaved", true,
	)
	span.End()

	attrs := attrsOf(onlySpan(t, sr))
	assert.Equal(t, "S-101", attrs["drawing_sheet"])
	assert.Equal(t, int64(42), attrs["measurement_count"])
	assert.Equal(t, true, attrs["autosaved"])
}

func TestSetAttribute(t *testing.T) {
	sr := setupTestTracer(t)

	t.Run("string value", func(t *testing.T) {
		_, span := telemetry.StartSpan(context.Background(), "order.confirm")
		telemetry.SetAttribute(span, "order_number", "ORD-2024-0042")
		span.End()
	})

	orderID := uuid.New()
	t.Run("stringer value", func(t *testing.T) {
		_, span := telemetry.StartSpan(context.Background(), "order.confirm")
		telemetry.SetAttribute(span, "order_id", orderID)
		span.End()
	})

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "ORD-2024-0042", attrsOf(spans[0])["order_number"])
	assert.Equal(t, orderID.String(), attrsOf(spans[1])["order_id"],
		"uuid values go through fmt.Stringer")
}

func TestRecordError(t *testing.T) {
	t.Run("sets status and exception event", func(t *testing.T) {
		sr := setupTestTracer(t)

		_, span := telemetry.StartSpan(context.Background(), "takeoff.autosave")
		telemetry.RecordError(span, errors.New("takeoff blob rejected"))
		span.End()

		recorded := onlySpan(t, sr)
		assert.Equal(t, codes.Error, recorded.Status().Code)
		assert.Equal(t, "takeoff blob rejected", recorded.Status().Description)

		events := recorded.Events()
		require.GreaterOrEqual(t, len(events), 1)
		assert.Equal(t, "exception", events[0].Name)
	})

	t.Run("nil error is a no-op", func(t *testing.T) {
		sr := setupTestTracer(t)

		_, span := telemetry.StartSpan(context.Background(), "takeoff.autosave")
		telemetry.RecordError(span, nil)
		span.End()

		assert.NotEqual(t, codes.Error, onlySpan(t, sr).Status().Code)
	})
}

func TestSetOK(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "takeoff.autosave")
	telemetry.SetOK(span)
	span.End()

	assert.Equal(t, codes.Ok, onlySpan(t, sr).Status().Code)
}

func TestAddEvent(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "workorder.dispatch")
	telemetry.AddEvent(span, "routing_line_started",
		"work_order_id", "wo-123",
		"quantity", 10,
	)
	span.End()

	events := onlySpan(t, sr).Events()
	require.Len(t, events, 1)
	assert.Equal(t, "routing_line_started", events[0].Name)

	attrs := make(map[string]any)
	for _, attr := range events[0].Attributes {
		attrs[string(attr.Key)] = attr.Value.AsInterface()
	}
	assert.Equal(t, "wo-123", attrs["work_order_id"])
	assert.Equal(t, int64(10), attrs["quantity"])
}

func TestSpanFromContext(t *testing.T) {
	setupTestTracer(t)

	// Without a span the helper hands back a usable no-op.
	assert.NotNil(t, telemetry.SpanFromContext(context.Background()))

	ctx, created := telemetry.StartSpan(context.Background(), "takeoff.autosave")
	defer created.End()

	retrieved := telemetry.SpanFromContext(ctx)
	assert.Equal(t, created.SpanContext().SpanID(), retrieved.SpanContext().SpanID())
}

func TestGetTraceAndSpanIDs(t *testing.T) {
	setupTestTracer(t)

	assert.Empty(t, telemetry.GetTraceID(context.Background()))
	assert.Empty(t, telemetry.GetSpanID(context.Background()))

	ctx, span := telemetry.StartSpan(context.Background(), "takeoff.autosave")
	defer span.End()

	assert.Len(t, telemetry.GetTraceID(ctx), 32)
	assert.Len(t, telemetry.GetSpanID(ctx), 16)
}

func TestContextWithSpan(t *testing.T) {
	setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "takeoff.autosave")
	defer span.End()

	newCtx := telemetry.ContextWithSpan(context.Background(), span)
	retrieved := telemetry.SpanFromContext(newCtx)
	assert.Equal(t, span.SpanContext().SpanID(), retrieved.SpanContext().SpanID())
}

func TestNestedSpans(t *testing.T) {
	sr := setupTestTracer(t)

	ctx, parentSpan := telemetry.StartSpan(context.Background(), "order.confirm")
	_, childSpan := telemetry.StartSpan(ctx, "workpackage.rollup")
	childSpan.End()
	parentSpan.End()

	spans := sr.Ended()
	require.Len(t, spans, 2)

	var parent, child sdktrace.ReadOnlySpan
	for _, s := range spans {
		switch s.Name() {
		case "order.confirm":
			parent = s
		case "workpackage.rollup":
			child = s
		}
	}
	require.NotNil(t, parent)
	require.NotNil(t, child)

	assert.Equal(t, parent.SpanContext().TraceID(), child.SpanContext().TraceID())
	assert.Equal(t, parent.SpanContext().SpanID(), child.Parent().SpanID())
}

func TestNilSpanHelpers(t *testing.T) {
	// Every helper must tolerate a nil span.
	telemetry.SetAttributes(nil, "key", "value")
	telemetry.SetAttribute(nil, "key", "value")
	telemetry.SetOK(nil)
	telemetry.AddEvent(nil, "event_name", "key", "value")
	telemetry.RecordError(nil, errors.New("takeoff blob rejected"))
}

func TestSetAttributes_TypeCoverage(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "takeoff.autosave")
	telemetry.SetAttributes(span,
		"string", "value",
		"int", 42,
		"int64", int64(100),
		"float64", 3.14,
		"bool", true,
		"string_slice", []string{"a", "b"},
		"int_slice", []int{1, 2, 3},
		"int64_slice", []int64{10, 20},
		"float64_slice", []float64{1.1, 2.2},
		"bool_slice", []bool{true, false},
	)
	span.End()

	assert.GreaterOrEqual(t, len(onlySpan(t, sr).Attributes()), 10)
}

func TestSetAttributes_MalformedPairs(t *testing.T) {
	t.Run("odd argument count drops the orphan key", func(t *testing.T) {
		sr := setupTestTracer(t)

		_, span := telemetry.StartSpan(context.Background(), "takeoff.autosave")
		telemetry.SetAttributes(span,
			"key1", "value1",
			"key2", "value2",
			"orphan_key",
		)
		span.End()

		assert.Len(t, onlySpan(t, sr).Attributes(), 2)
	})

	t.Run("non-string key drops the pair", func(t *testing.T) {
		sr := setupTestTracer(t)

		_, span := telemetry.StartSpan(context.Background(), "takeoff.autosave")
		telemetry.SetAttributes(span,
			"valid_key", "value",
			123, "value for a bad key",
		)
		span.End()

		assert.Len(t, onlySpan(t, sr).Attributes(), 1)
	})
}
