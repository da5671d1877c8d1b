package event

import (
	"context"
	"testing"
	"time"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Fixture: a dispatch event whose schema evolved across three versions.
// v1 carried only the station code, v2 added the shift, v3 renamed shift
// to shift_code and added the dispatch sequence.

type dispatchEventV1 struct {
	shared.BaseDomainEvent
	Station string `json:"station"`
}

type dispatchEventV2 struct {
	shared.BaseDomainEvent
	Station string `json:"station"`
	Shift   string `json:"shift"`
}

type dispatchEventV3 struct {
	shared.BaseDomainEvent
	Station   string `json:"station"`
	ShiftCode string `json:"shift_code"`
	Sequence  int    `json:"sequence"`
}

func newDispatchEvent(version int) shared.DomainEvent {
	base := shared.NewVersionedBaseDomainEvent("WorkOrderDispatched", "WorkOrder", uuid.New(), uuid.New(), version)
	switch version {
	case 2:
		return &dispatchEventV2{BaseDomainEvent: base, Station: "CUT-01", Shift: "DAY"}
	case 3:
		return &dispatchEventV3{BaseDomainEvent: base, Station: "CUT-01", ShiftCode: "DAY", Sequence: 5}
	default:
		return &dispatchEventV1{BaseDomainEvent: base, Station: "CUT-01"}
	}
}

func dispatchPrototypes(upTo int) map[int]shared.DomainEvent {
	all := map[int]shared.DomainEvent{
		1: &dispatchEventV1{},
		2: &dispatchEventV2{},
		3: &dispatchEventV3{},
	}
	for v := range all {
		if v > upTo {
			delete(all, v)
		}
	}
	return all
}

func dispatchV1ToV2Upgrader() EventUpgrader {
	return NewBaseEventUpgrader(1, 2, func(data map[string]any) (map[string]any, error) {
		data["shift"] = "UNASSIGNED"
		return data, nil
	})
}

func dispatchV2ToV3Upgrader() EventUpgrader {
	return NewBaseEventUpgrader(2, 3, func(data map[string]any) (map[string]any, error) {
		if shift, ok := data["shift"]; ok {
			data["shift_code"] = shift
			delete(data, "shift")
		}
		data["sequence"] = 0
		return data, nil
	})
}

func dispatchUpgraders(upTo int) []EventUpgrader {
	chain := []EventUpgrader{dispatchV1ToV2Upgrader(), dispatchV2ToV3Upgrader()}
	return chain[:upTo-1]
}

// mustRegisterDispatch wires the full dispatch upgrade chain up to the given
// current version into the serializer.
func mustRegisterDispatch(t *testing.T, s *VersionedSerializer, currentVersion int) {
	t.Helper()
	require.NoError(t, s.RegisterVersioned(
		"WorkOrderDispatched", currentVersion,
		dispatchPrototypes(currentVersion),
		dispatchUpgraders(currentVersion)...,
	))
}

func newVersionedSerializer() *VersionedSerializer {
	return NewVersionedSerializer(zap.NewNop())
}

func TestVersionRegistry_RegisterSimpleEvent(t *testing.T) {
	registry := NewVersionRegistry()
	registry.RegisterSimpleEvent("WorkOrderDispatched", &dispatchEventV1{})

	assert.True(t, registry.IsRegistered("WorkOrderDispatched"))

	config, ok := registry.GetConfig("WorkOrderDispatched")
	require.True(t, ok)
	assert.Equal(t, 1, config.CurrentVersion)
	assert.Empty(t, config.Upgraders)
}

func TestVersionRegistry_RegisterVersionedEvent(t *testing.T) {
	registry := NewVersionRegistry()

	err := registry.RegisterVersionedEvent("WorkOrderDispatched", 3,
		dispatchPrototypes(3), dispatchUpgraders(3)...)
	require.NoError(t, err)

	assert.True(t, registry.IsRegistered("WorkOrderDispatched"))
	version, ok := registry.GetCurrentVersion("WorkOrderDispatched")
	require.True(t, ok)
	assert.Equal(t, 3, version)
}

func TestVersionRegistry_RejectsBrokenUpgradeChains(t *testing.T) {
	t.Run("hole in the chain", func(t *testing.T) {
		registry := NewVersionRegistry()
		err := registry.RegisterVersionedEvent("WorkOrderDispatched", 3,
			dispatchPrototypes(3), dispatchV1ToV2Upgrader())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing upgrader for version 2 -> 3")
	})

	t.Run("upgrader that skips a version", func(t *testing.T) {
		skipper := NewBaseEventUpgrader(1, 3, func(data map[string]any) (map[string]any, error) {
			return data, nil
		})

		registry := NewVersionRegistry()
		err := registry.RegisterVersionedEvent("WorkOrderDispatched", 3,
			dispatchPrototypes(3), skipper)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "upgrader must be sequential")
	})
}

func TestVersionRegistry_UpgradePayload(t *testing.T) {
	registry := NewVersionRegistry()
	require.NoError(t, registry.RegisterVersionedEvent("WorkOrderDispatched", 3,
		dispatchPrototypes(3), dispatchUpgraders(3)...))

	v1Data, err := NewEventSerializer().Serialize(newDispatchEvent(1))
	require.NoError(t, err)

	upgraded, version, err := registry.UpgradePayload("WorkOrderDispatched", v1Data, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, version)
	assert.Contains(t, string(upgraded), "shift_code")
	assert.Contains(t, string(upgraded), "sequence")
	assert.NotContains(t, string(upgraded), `"shift":`)
}

func TestVersionRegistry_UpgradePayload_AlreadyCurrent(t *testing.T) {
	registry := NewVersionRegistry()
	registry.RegisterSimpleEvent("WorkOrderDispatched", &dispatchEventV1{})

	payload := []byte(`{"schema_version": 1, "station": "CUT-01"}`)

	upgraded, version, err := registry.UpgradePayload("WorkOrderDispatched", payload, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.Equal(t, payload, upgraded)
}

func TestExtractVersion(t *testing.T) {
	cases := map[string]struct {
		payload  string
		expected int
	}{
		"with version":    {`{"schema_version": 2, "station": "CUT-01"}`, 2},
		"without version": {`{"station": "CUT-01"}`, 1},
		"version zero":    {`{"schema_version": 0, "station": "CUT-01"}`, 1},
		"invalid json":    {`invalid`, 1},
		"empty":           {`{}`, 1},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ExtractVersion([]byte(tc.payload)))
		})
	}
}

func TestBaseEventUpgrader(t *testing.T) {
	upgrader := NewBaseEventUpgrader(1, 2, func(data map[string]any) (map[string]any, error) {
		data["new_field"] = "added"
		return data, nil
	})

	assert.Equal(t, 1, upgrader.SourceVersion())
	assert.Equal(t, 2, upgrader.TargetVersion())

	output, err := upgrader.Upgrade([]byte(`{"schema_version": 1, "existing": "value"}`))
	require.NoError(t, err)
	assert.Contains(t, string(output), `"new_field":"added"`)
	assert.Contains(t, string(output), `"schema_version":2`)
}

func TestVersionedSerializer_SimpleRegistration(t *testing.T) {
	serializer := newVersionedSerializer()
	serializer.Register("WorkOrderDispatched", &dispatchEventV1{})

	assert.True(t, serializer.IsRegistered("WorkOrderDispatched"))
	version, ok := serializer.GetCurrentVersion("WorkOrderDispatched")
	require.True(t, ok)
	assert.Equal(t, 1, version)
}

func TestVersionedSerializer_Serialize(t *testing.T) {
	serializer := newVersionedSerializer()

	data, err := serializer.Serialize(newDispatchEvent(3))
	require.NoError(t, err)

	assert.Contains(t, string(data), `"schema_version":3`)
	assert.Contains(t, string(data), `"station":"CUT-01"`)
}

func TestVersionedSerializer_Deserialize_CurrentVersion(t *testing.T) {
	serializer := newVersionedSerializer()
	mustRegisterDispatch(t, serializer, 3)

	original := newDispatchEvent(3).(*dispatchEventV3)
	data, err := serializer.Serialize(original)
	require.NoError(t, err)

	deserialized, err := serializer.Deserialize("WorkOrderDispatched", data)
	require.NoError(t, err)

	event, ok := deserialized.(*dispatchEventV3)
	require.True(t, ok)
	assert.Equal(t, original.Station, event.Station)
	assert.Equal(t, original.ShiftCode, event.ShiftCode)
	assert.Equal(t, original.Sequence, event.Sequence)
}

func TestVersionedSerializer_Deserialize_UpgradesOldPayloads(t *testing.T) {
	serializer := newVersionedSerializer()
	mustRegisterDispatch(t, serializer, 3)

	t.Run("from v2", func(t *testing.T) {
		v2Event := newDispatchEvent(2).(*dispatchEventV2)
		data, err := serializer.Serialize(v2Event)
		require.NoError(t, err)

		deserialized, err := serializer.Deserialize("WorkOrderDispatched", data)
		require.NoError(t, err)

		event, ok := deserialized.(*dispatchEventV3)
		require.True(t, ok)
		assert.Equal(t, v2Event.Station, event.Station)
		assert.Equal(t, v2Event.Shift, event.ShiftCode, "the rename upgrader moves shift to shift_code")
		assert.Equal(t, 0, event.Sequence)
	})

	t.Run("from a stored v1 payload", func(t *testing.T) {
		v1Payload := []byte(`{
			"id": "00000000-0000-0000-0000-000000000001",
			"type": "WorkOrderDispatched",
			"timestamp": "2024-01-01T00:00:00Z",
			"aggregate_id": "00000000-0000-0000-0000-000000000002",
			"aggregate_type": "WorkOrder",
			"company_id": "00000000-0000-0000-0000-000000000003",
			"schema_version": 1,
			"station": "SAW-02"
		}`)

		deserialized, err := serializer.Deserialize("WorkOrderDispatched", v1Payload)
		require.NoError(t, err)

		event, ok := deserialized.(*dispatchEventV3)
		require.True(t, ok)
		assert.Equal(t, "SAW-02", event.Station)
		assert.Equal(t, "UNASSIGNED", event.ShiftCode)
		assert.Equal(t, 0, event.Sequence)
	})
}

func TestVersionedSerializer_Deserialize_MissingVersionMeansV1(t *testing.T) {
	serializer := newVersionedSerializer()
	mustRegisterDispatch(t, serializer, 2)

	payload := []byte(`{
		"id": "00000000-0000-0000-0000-000000000001",
		"type": "WorkOrderDispatched",
		"timestamp": "2024-01-01T00:00:00Z",
		"aggregate_id": "00000000-0000-0000-0000-000000000002",
		"aggregate_type": "WorkOrder",
		"company_id": "00000000-0000-0000-0000-000000000003",
		"station": "WELD-01"
	}`)

	deserialized, err := serializer.Deserialize("WorkOrderDispatched", payload)
	require.NoError(t, err)

	event, ok := deserialized.(*dispatchEventV2)
	require.True(t, ok)
	assert.Equal(t, "WELD-01", event.Station)
	assert.Equal(t, "UNASSIGNED", event.Shift)
}

func TestVersionedSerializer_Deserialize_UnknownType(t *testing.T) {
	serializer := newVersionedSerializer()

	_, err := serializer.Deserialize("UnknownEvent", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event type")

	_, err = serializer.DeserializeToVersion("UnknownEvent", []byte(`{}`), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event type")
}

func TestVersionedSerializer_DeserializeToVersion(t *testing.T) {
	serializer := newVersionedSerializer()
	mustRegisterDispatch(t, serializer, 3)

	t.Run("stops at the requested version", func(t *testing.T) {
		v1Payload := []byte(`{"schema_version": 1, "station": "DRILL-03"}`)

		deserialized, err := serializer.DeserializeToVersion("WorkOrderDispatched", v1Payload, 2)
		require.NoError(t, err)

		event, ok := deserialized.(*dispatchEventV2)
		require.True(t, ok)
		assert.Equal(t, "DRILL-03", event.Station)
		assert.Equal(t, "UNASSIGNED", event.Shift)
	})

	t.Run("refuses to downgrade", func(t *testing.T) {
		v3Payload := []byte(`{"schema_version": 3, "station": "DRILL-03"}`)

		_, err := serializer.DeserializeToVersion("WorkOrderDispatched", v3Payload, 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot downgrade")
	})
}

func TestVersionedSerializer_RegisteredTypes(t *testing.T) {
	serializer := newVersionedSerializer()
	serializer.Register("WorkOrderDispatched", &dispatchEventV1{})
	serializer.Register("WorkOrderCompleted", &dispatchEventV1{})

	types := serializer.RegisteredTypes()
	assert.Len(t, types, 2)
	assert.Contains(t, types, "WorkOrderDispatched")
	assert.Contains(t, types, "WorkOrderCompleted")
}

func TestCommonUpgraders(t *testing.T) {
	upgraders := CommonUpgraders{}

	cases := map[string]struct {
		upgrader    EventUpgrader
		input       string
		contains    []string
		notContains []string
	}{
		"AddField": {
			upgrader: upgraders.AddField(1, "new_field", "default_value"),
			input:    `{"schema_version": 1, "existing": "value"}`,
			contains: []string{`"new_field":"default_value"`},
		},
		"RemoveField": {
			upgrader:    upgraders.RemoveField(1, "old_field"),
			input:       `{"schema_version": 1, "old_field": "remove_me", "keep": "value"}`,
			contains:    []string{`"keep":"value"`},
			notContains: []string{"old_field"},
		},
		"RenameField": {
			upgrader:    upgraders.RenameField(1, "old_name", "new_name"),
			input:       `{"schema_version": 1, "old_name": "value"}`,
			contains:    []string{`"new_name":"value"`},
			notContains: []string{"old_name"},
		},
		"WrapInObject": {
			upgrader: upgraders.WrapInObject(1, "value", "amount"),
			input:    `{"schema_version": 1, "value": 100}`,
			contains: []string{`"value":{"amount":100}`},
		},
		"UnwrapFromObject": {
			upgrader: upgraders.UnwrapFromObject(1, "value", "amount"),
			input:    `{"schema_version": 1, "value": {"amount": 100, "other": "x"}}`,
			contains: []string{`"value":100`},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			output, err := tc.upgrader.Upgrade([]byte(tc.input))
			require.NoError(t, err)
			for _, want := range tc.contains {
				assert.Contains(t, string(output), want)
			}
			for _, absent := range tc.notContains {
				assert.NotContains(t, string(output), absent)
			}
		})
	}

	t.Run("TransformField", func(t *testing.T) {
		// Dimension payloads stored in metres move to millimetres.
		u := upgraders.TransformField(1, "length", func(v any) any {
			if num, ok := v.(float64); ok {
				return num * 1000
			}
			return v
		})

		output, err := u.Upgrade([]byte(`{"schema_version": 1, "length": 10.5}`))
		require.NoError(t, err)
		assert.Contains(t, string(output), `"length":10500`)
	})
}

func TestEventMigrator_MigratePayloads(t *testing.T) {
	serializer := newVersionedSerializer()
	mustRegisterDispatch(t, serializer, 2)
	migrator := NewEventMigrator(serializer, zap.NewNop())

	payloads := [][]byte{
		[]byte(`{"schema_version": 1, "station": "SAW-01"}`),
		[]byte(`{"schema_version": 1, "station": "SAW-04"}`),
		[]byte(`{"schema_version": 2, "station": "SAW-05", "shift": "NIGHT"}`),
	}

	result, err := migrator.MigratePayloads(context.Background(), "WorkOrderDispatched", payloads)
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalProcessed)
	assert.Equal(t, 2, result.Upgraded)
	assert.Equal(t, 1, result.AlreadyCurrent)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 2, result.ToVersion)
}

func TestEventMigrator_MigratePayloads_Cancellation(t *testing.T) {
	serializer := newVersionedSerializer()
	serializer.Register("WorkOrderDispatched", &dispatchEventV1{})
	migrator := NewEventMigrator(serializer, zap.NewNop())

	payloads := make([][]byte, 100)
	for i := range payloads {
		payloads[i] = []byte(`{"schema_version": 1, "station": "CUT-01"}`)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := migrator.MigratePayloads(ctx, "WorkOrderDispatched", payloads)
	assert.Error(t, err)
	assert.True(t, result.TotalProcessed < 100)
}

func TestEventMigrator_AnalyzePayloads(t *testing.T) {
	serializer := newVersionedSerializer()
	mustRegisterDispatch(t, serializer, 3)
	migrator := NewEventMigrator(serializer, zap.NewNop())

	payloads := [][]byte{
		[]byte(`{"schema_version": 1}`),
		[]byte(`{"schema_version": 1}`),
		[]byte(`{"schema_version": 2}`),
		[]byte(`{"schema_version": 3}`),
	}

	analysis, err := migrator.AnalyzePayloads("WorkOrderDispatched", payloads)
	require.NoError(t, err)

	assert.Equal(t, "WorkOrderDispatched", analysis.EventType)
	assert.Equal(t, 3, analysis.CurrentVersion)
	assert.Equal(t, 4, analysis.TotalEvents)
	assert.Equal(t, 3, analysis.NeedsMigration)
	assert.Equal(t, 1, analysis.UpToDate)
	assert.Equal(t, 1, analysis.OldestVersion)
	assert.Equal(t, 3, analysis.NewestVersion)
	assert.Equal(t, 2, analysis.VersionCounts[1])
	assert.Equal(t, 1, analysis.VersionCounts[2])
	assert.Equal(t, 1, analysis.VersionCounts[3])
}

func TestEventMigrator_ValidateUpgradeChain(t *testing.T) {
	serializer := newVersionedSerializer()
	mustRegisterDispatch(t, serializer, 3)
	migrator := NewEventMigrator(serializer, zap.NewNop())

	assert.NoError(t, migrator.ValidateUpgradeChain("WorkOrderDispatched"))
	assert.Error(t, migrator.ValidateUpgradeChain("UnknownEvent"))
}

func TestEventMigrator_CreateMigrationPlan(t *testing.T) {
	serializer := newVersionedSerializer()
	mustRegisterDispatch(t, serializer, 3)
	migrator := NewEventMigrator(serializer, zap.NewNop())

	plan, err := migrator.CreateMigrationPlan("WorkOrderDispatched", 1)
	require.NoError(t, err)

	assert.Equal(t, "WorkOrderDispatched", plan.EventType)
	assert.Equal(t, 1, plan.FromVersion)
	assert.Equal(t, 3, plan.ToVersion)
	assert.Len(t, plan.UpgradeSteps, 2)
	assert.True(t, plan.IsValid())

	plan, err = migrator.CreateMigrationPlan("WorkOrderDispatched", 3)
	require.NoError(t, err)
	assert.Empty(t, plan.UpgradeSteps, "already at the current version")
}

func TestMigrationStats(t *testing.T) {
	stats := NewMigrationStats()

	stats.RecordMigration("WorkOrderDispatched", 1, 2, 10.5, true)
	stats.RecordMigration("WorkOrderDispatched", 1, 2, 5.5, true)
	stats.RecordMigration("WorkOrderDispatched", 2, 3, 3.0, true)
	stats.RecordMigration("WorkOrderDispatched", 1, 2, 0, false)

	eventStats, ok := stats.GetStats("WorkOrderDispatched")
	require.True(t, ok)

	assert.Equal(t, "WorkOrderDispatched", eventStats.EventType)
	assert.Equal(t, int64(3), eventStats.TotalMigrated)
	assert.Equal(t, int64(1), eventStats.TotalFailed)
	assert.True(t, eventStats.AverageDurationMs > 0)
	assert.Equal(t, int64(3), eventStats.MigrationsByVersion["v1->v2"])
	assert.Equal(t, int64(1), eventStats.MigrationsByVersion["v2->v3"])

	_, ok = stats.GetStats("UnknownEvent")
	assert.False(t, ok)
}

func TestMigrationResult_Duration(t *testing.T) {
	result := &MigrationResult{
		StartedAt:   time.Now().Add(-5 * time.Second),
		CompletedAt: time.Now(),
	}

	duration := result.Duration()
	assert.True(t, duration >= 4*time.Second)
	assert.True(t, duration <= 6*time.Second)
}

func TestCopyPayload(t *testing.T) {
	original := []byte(`{"key": "value", "nested": {"a": 1}}`)

	copied, err := CopyPayload(original)
	require.NoError(t, err)

	assert.Contains(t, string(copied), `"key":"value"`)
	assert.Contains(t, string(copied), `"nested"`)

	original[0] = 'X'
	assert.NotEqual(t, original[0], copied[0])
}

func TestBaseDomainEvent_SchemaVersion(t *testing.T) {
	base := shared.NewBaseDomainEvent("WorkOrderDispatched", "WorkOrder", uuid.New(), uuid.New())
	assert.Equal(t, 1, base.SchemaVersion())

	base = shared.NewVersionedBaseDomainEvent("WorkOrderDispatched", "WorkOrder", uuid.New(), uuid.New(), 3)
	assert.Equal(t, 3, base.SchemaVersion())

	// Anything at or below zero falls back to version 1.
	base = shared.BaseDomainEvent{Version: 0}
	assert.Equal(t, 1, base.SchemaVersion())
	base = shared.NewVersionedBaseDomainEvent("WorkOrderDispatched", "WorkOrder", uuid.New(), uuid.New(), -5)
	assert.Equal(t, 1, base.SchemaVersion())
	base = shared.NewVersionedBaseDomainEvent("WorkOrderDispatched", "WorkOrder", uuid.New(), uuid.New(), 0)
	assert.Equal(t, 1, base.SchemaVersion())
}
