package telemetry_test

import (
	"context"
	"runtime/pprof"
	"strings"
	"sync"
	"testing"

	"github.com/fabmate/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// appliedLabels runs fn-style label wrapping and reads back what actually
// landed on the goroutine, since both wrappers bottom out in pprof labels.
func appliedLabels(t *testing.T, labels map[string]string) map[string]string {
	t.Helper()

	var got map[string]string
	telemetry.WithProfilingLabels(context.Background(), labels, func(c context.Context) {
		got = collectPprofLabels(c)
	})
	require.NotNil(t, got, "wrapped function was not invoked")
	return got
}

func collectPprofLabels(ctx context.Context) map[string]string {
	got := map[string]string{}
	pprof.ForLabels(ctx, func(key, value string) bool {
		got[key] = value
		return true
	})
	return got
}

func TestWithProfilingLabels(t *testing.T) {
	t.Run("nil and empty maps still invoke the function", func(t *testing.T) {
		for _, labels := range []map[string]string{nil, {}} {
			called := false
			telemetry.WithProfilingLabels(context.Background(), labels, func(c context.Context) {
				called = true
			})
			assert.True(t, called)
		}
	})

	t.Run("labels are visible inside the callback", func(t *testing.T) {
		got := appliedLabels(t, map[string]string{
			"controller": "WorkOrderHandler",
			"method":     "POST",
			"route":      "/api/v1/work-orders",
		})

		assert.Equal(t, "WorkOrderHandler", got["controller"])
		assert.Equal(t, "POST", got["method"])
		assert.Equal(t, "/api/v1/work-orders", got["route"])
	})

	t.Run("high cardinality keys are dropped", func(t *testing.T) {
		got := appliedLabels(t, map[string]string{
			"controller": "OrderHandler",
			"user_id":    "user-123",
			"request_id": "req-abc",
			"order_id":   "ORD-2024-0042",
		})

		assert.Equal(t, "OrderHandler", got["controller"])
		assert.NotContains(t, got, "user_id")
		assert.NotContains(t, got, "request_id")
		assert.NotContains(t, got, "order_id")
	})

	t.Run("long values are truncated", func(t *testing.T) {
		got := appliedLabels(t, map[string]string{
			"controller": strings.Repeat("x", 200),
		})

		assert.Len(t, got["controller"], telemetry.MaxLabelValueLength)
	})

	t.Run("empty keys and values are dropped", func(t *testing.T) {
		got := appliedLabels(t, map[string]string{
			"controller": "OrderHandler",
			"method":     "",
			"":           "value",
		})

		assert.Equal(t, map[string]string{"controller": "OrderHandler"}, got)
	})

	t.Run("caller map stays untouched", func(t *testing.T) {
		labels := map[string]string{"controller": "OrderHandler", "user_id": "user-1"}
		appliedLabels(t, labels)
		assert.Equal(t, "user-1", labels["user_id"], "sanitization must work on a copy")
	})
}

func TestWithProfilingLabels_KeySanitization(t *testing.T) {
	tests := map[string]struct {
		inKey, wantKey string
	}{
		"spaces become underscores": {"my key", "my_key"},
		"dashes become underscores": {"my-key", "my_key"},
		"uppercase is lowered":      {"MyKey", "mykey"},
		"mixed case with spaces":    {"My Custom Key", "my_custom_key"},
		"invalid runes are removed": {"trace.id!", "traceid"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := appliedLabels(t, map[string]string{tt.inKey: "value"})
			assert.Equal(t, "value", got[tt.wantKey])
			if tt.inKey != tt.wantKey {
				assert.NotContains(t, got, tt.inKey)
			}
		})
	}
}

func TestWithProfilingLabels_Nested(t *testing.T) {
	telemetry.WithProfilingLabels(context.Background(), map[string]string{
		"controller": "OrderHandler",
	}, func(outerCtx context.Context) {
		telemetry.WithProfilingLabels(outerCtx, map[string]string{
			"operation": "QueryDB",
			"region":    "db_query",
		}, func(innerCtx context.Context) {
			got := collectPprofLabels(innerCtx)
			assert.Equal(t, "OrderHandler", got["controller"], "outer labels survive nesting")
			assert.Equal(t, "QueryDB", got["operation"])
			assert.Equal(t, "db_query", got["region"])
		})
	})
}

func TestWithProfilingLabels_ContextValuesPreserved(t *testing.T) {
	type contextKey string
	key := contextKey("request-id")
	ctx := context.WithValue(context.Background(), key, "req-9001")

	telemetry.WithProfilingLabels(ctx, map[string]string{"controller": "DrawingHandler"}, func(c context.Context) {
		assert.Equal(t, "req-9001", c.Value(key))
	})
}

// WithPprofLabels is the SDK-free path; it must apply the same sanitization.
func TestWithPprofLabels(t *testing.T) {
	t.Run("labels applied", func(t *testing.T) {
		telemetry.WithPprofLabels(context.Background(), map[string]string{
			"controller": "TakeoffHandler",
			"method":     "PUT",
			"user_id":    "user-456",
		}, func(c context.Context) {
			got := collectPprofLabels(c)
			assert.Equal(t, "TakeoffHandler", got["controller"])
			assert.Equal(t, "PUT", got["method"])
			assert.NotContains(t, got, "user_id")
		})
	})

	t.Run("nil and empty maps still invoke the function", func(t *testing.T) {
		for _, labels := range []map[string]string{nil, {}} {
			called := false
			telemetry.WithPprofLabels(context.Background(), labels, func(c context.Context) {
				called = true
			})
			assert.True(t, called)
		}
	})
}

func TestProfilingScope(t *testing.T) {
	t.Run("builder covers every standard key", func(t *testing.T) {
		scope := telemetry.NewProfilingScope(nil).
			WithController("WorkPackageHandler").
			WithRoute("/api/v1/work-packages").
			WithMethod("GET").
			WithCompanyID("company-acme").
			WithOperation("ListWorkPackages").
			WithRegion("db_query")

		labels := scope.Labels()
		assert.Equal(t, "WorkPackageHandler", labels[telemetry.ProfilingLabelController])
		assert.Equal(t, "/api/v1/work-packages", labels[telemetry.ProfilingLabelRoute])
		assert.Equal(t, "GET", labels[telemetry.ProfilingLabelMethod])
		assert.Equal(t, "company-acme", labels[telemetry.ProfilingLabelCompanyID])
		assert.Equal(t, "ListWorkPackages", labels[telemetry.ProfilingLabelOperation])
		assert.Equal(t, "db_query", labels[telemetry.ProfilingLabelRegion])
	})

	t.Run("initial labels are copied, later Withs overwrite", func(t *testing.T) {
		initial := map[string]string{"controller": "SeedHandler", "method": "GET"}
		scope := telemetry.NewProfilingScope(initial)

		initial["controller"] = "Mutated"
		scope.WithMethod("POST")

		labels := scope.Labels()
		assert.Equal(t, "SeedHandler", labels["controller"], "scope keeps its own copy")
		assert.Equal(t, "POST", labels["method"])
	})

	t.Run("Labels returns a copy", func(t *testing.T) {
		scope := telemetry.NewProfilingScope(nil).WithController("OrderHandler")

		first := scope.Labels()
		first["controller"] = "Mutated"

		assert.Equal(t, "OrderHandler", scope.Labels()["controller"])
	})

	t.Run("custom labels pass through", func(t *testing.T) {
		labels := telemetry.NewProfilingScope(nil).WithLabel("station", "CUT-01").Labels()
		assert.Equal(t, "CUT-01", labels["station"])
	})

	t.Run("Run applies the accumulated labels", func(t *testing.T) {
		scope := telemetry.NewProfilingScope(nil).
			WithController("RoutingHandler").
			WithMethod("POST")

		var got map[string]string
		scope.Run(context.Background(), func(c context.Context) {
			got = collectPprofLabels(c)
		})

		require.NotNil(t, got)
		assert.Equal(t, "RoutingHandler", got["controller"])
		assert.Equal(t, "POST", got["method"])
	})
}

func TestHTTPRequestLabels(t *testing.T) {
	tests := map[string]struct {
		controller, route, method, companyID string
		wantLen                              int
	}{
		"all fields":      {"OrderHandler", "/api/v1/orders", "GET", "company-acme", 4},
		"empty company":   {"OrderHandler", "/api/v1/orders", "GET", "", 3},
		"only controller": {"OrderHandler", "", "", "", 1},
		"all empty":       {"", "", "", "", 0},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			labels := telemetry.HTTPRequestLabels(tt.controller, tt.route, tt.method, tt.companyID)
			assert.Len(t, labels, tt.wantLen)

			if tt.controller != "" {
				assert.Equal(t, tt.controller, labels[telemetry.ProfilingLabelController])
			}
			if tt.companyID != "" {
				assert.Equal(t, tt.companyID, labels[telemetry.ProfilingLabelCompanyID])
			}
		})
	}
}

func TestOperationAndRegionLabels(t *testing.T) {
	t.Run("operation only", func(t *testing.T) {
		labels := telemetry.OperationLabels("CreateOrder", nil)
		assert.Equal(t, map[string]string{telemetry.ProfilingLabelOperation: "CreateOrder"}, labels)
	})

	t.Run("operation with extras", func(t *testing.T) {
		labels := telemetry.OperationLabels("CreateOrder", map[string]string{
			"controller": "OrderHandler",
			"method":     "POST",
		})
		assert.Equal(t, "CreateOrder", labels[telemetry.ProfilingLabelOperation])
		assert.Len(t, labels, 3)
	})

	t.Run("region with extras", func(t *testing.T) {
		labels := telemetry.RegionLabels("db_query", map[string]string{
			"operation": "ListWorkOrders",
			"table":     "work_orders",
		})
		assert.Equal(t, "db_query", labels[telemetry.ProfilingLabelRegion])
		assert.Equal(t, "work_orders", labels["table"])
		assert.Len(t, labels, 3)
	})
}

// The label keys and limits are part of the Pyroscope query contract.
func TestProfilingLabelContract(t *testing.T) {
	assert.Equal(t, "controller", telemetry.ProfilingLabelController)
	assert.Equal(t, "route", telemetry.ProfilingLabelRoute)
	assert.Equal(t, "method", telemetry.ProfilingLabelMethod)
	assert.Equal(t, "company_id", telemetry.ProfilingLabelCompanyID)
	assert.Equal(t, "operation", telemetry.ProfilingLabelOperation)
	assert.Equal(t, "region", telemetry.ProfilingLabelRegion)
	assert.Equal(t, 128, telemetry.MaxLabelValueLength)

	for _, key := range []string{"user_id", "request_id", "order_id", "trace_id", "span_id", "session_id"} {
		assert.True(t, telemetry.HighCardinalityLabels[key], "%s should be treated as high cardinality", key)
	}
}

func TestWithProfilingLabels_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			telemetry.WithProfilingLabels(context.Background(), map[string]string{
				"controller": "RollupWorker",
				"region":     "rollup",
			}, func(c context.Context) {})
		}()
	}
	wg.Wait()
}
