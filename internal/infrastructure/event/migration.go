package event

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MigrationResult summarises one batch run over stored payloads of a single
// event type, as performed by the `migrate events` command.
type MigrationResult struct {
	EventType   string
	FromVersion int
	ToVersion   int

	TotalProcessed int
	Upgraded       int
	AlreadyCurrent int
	Failed         int
	FailedPayloads []FailedMigration

	StartedAt   time.Time
	CompletedAt time.Time
}

// FailedMigration captures a payload the upgrader chain could not handle.
type FailedMigration struct {
	Payload []byte
	Error   string
	Version int
}

// Duration returns the wall-clock time the batch took.
func (r *MigrationResult) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// EventMigrator batch-upgrades stored event payloads using the version
// registry of a VersionedSerializer.
type EventMigrator struct {
	serializer *VersionedSerializer
	logger     *zap.Logger
}

func NewEventMigrator(serializer *VersionedSerializer, logger *zap.Logger) *EventMigrator {
	return &EventMigrator{serializer: serializer, logger: logger}
}

// MigratePayloads upgrades every payload in the batch to the current schema
// version. Failures are collected rather than aborting the batch; a pending
// outbox row that cannot be upgraded still has to be reported.
func (m *EventMigrator) MigratePayloads(ctx context.Context, eventType string, payloads [][]byte) (*MigrationResult, error) {
	currentVersion, ok := m.serializer.GetCurrentVersion(eventType)
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	res := &MigrationResult{
		EventType:      eventType,
		ToVersion:      currentVersion,
		StartedAt:      time.Now(),
		FailedPayloads: []FailedMigration{},
	}

	for _, payload := range payloads {
		if ctx.Err() != nil {
			res.CompletedAt = time.Now()
			return res, ctx.Err()
		}

		res.TotalProcessed++
		version := ExtractVersion(payload)
		if res.FromVersion == 0 {
			res.FromVersion = version
		} else {
			res.FromVersion = min(res.FromVersion, version)
		}

		switch _, _, err := m.upgradeIfStale(eventType, payload, version, currentVersion); {
		case err == errAlreadyCurrent:
			res.AlreadyCurrent++
		case err != nil:
			res.Failed++
			res.FailedPayloads = append(res.FailedPayloads, FailedMigration{
				Payload: payload,
				Error:   err.Error(),
				Version: version,
			})
			m.logger.Warn("payload upgrade failed",
				zap.String("event_type", eventType),
				zap.Int("version", version),
				zap.Error(err))
		default:
			res.Upgraded++
		}
	}

	res.CompletedAt = time.Now()
	return res, nil
}

// errAlreadyCurrent is an internal sentinel; callers of MigratePayloads
// only ever see it as the AlreadyCurrent counter.
var errAlreadyCurrent = fmt.Errorf("payload already at current version")

func (m *EventMigrator) upgradeIfStale(eventType string, payload []byte, version, currentVersion int) ([]byte, int, error) {
	if version >= currentVersion {
		return payload, version, errAlreadyCurrent
	}
	return m.serializer.UpgradePayloadOnly(eventType, payload)
}

// MigratePayload upgrades a single payload and reports its new version.
func (m *EventMigrator) MigratePayload(eventType string, payload []byte) ([]byte, int, error) {
	return m.serializer.UpgradePayloadOnly(eventType, payload)
}

// ValidateUpgradeChain checks that every version from 1 up to the current one
// has an upgrader, so no stored payload can get stranded mid-chain.
func (m *EventMigrator) ValidateUpgradeChain(eventType string) error {
	plan, err := m.CreateMigrationPlan(eventType, 1)
	if err != nil {
		return err
	}
	for _, s := range plan.UpgradeSteps {
		if !s.HasUpgrader {
			return fmt.Errorf("missing upgrader for version %d -> %d", s.FromVersion, s.ToVersion)
		}
	}
	return nil
}

// EventVersionAnalysis describes the version spread of a stored payload set,
// used to size a migration before running it.
type EventVersionAnalysis struct {
	EventType      string
	CurrentVersion int

	// OldestVersion and NewestVersion are -1 for an empty payload set.
	OldestVersion int
	NewestVersion int

	VersionCounts  map[int]int
	TotalEvents    int
	NeedsMigration int
	UpToDate       int
}

// AnalyzePayloads tallies payload versions without modifying anything.
func (m *EventMigrator) AnalyzePayloads(eventType string, payloads [][]byte) (*EventVersionAnalysis, error) {
	currentVersion, ok := m.serializer.GetCurrentVersion(eventType)
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	a := &EventVersionAnalysis{
		EventType:      eventType,
		CurrentVersion: currentVersion,
		OldestVersion:  -1,
		NewestVersion:  -1,
		VersionCounts:  make(map[int]int),
		TotalEvents:    len(payloads),
	}
	for i, payload := range payloads {
		v := ExtractVersion(payload)
		a.VersionCounts[v]++
		if i == 0 {
			a.OldestVersion, a.NewestVersion = v, v
		} else {
			a.OldestVersion = min(a.OldestVersion, v)
			a.NewestVersion = max(a.NewestVersion, v)
		}
		if v < currentVersion {
			a.NeedsMigration++
			continue
		}
		a.UpToDate++
	}
	return a, nil
}

// MigrationPlan lists the upgrade steps needed to bring payloads at
// FromVersion up to the current schema.
type MigrationPlan struct {
	EventType    string
	FromVersion  int
	ToVersion    int
	UpgradeSteps []UpgradeStep
}

// UpgradeStep is one hop in an upgrade chain.
type UpgradeStep struct {
	FromVersion int
	ToVersion   int
	HasUpgrader bool
}

// CreateMigrationPlan enumerates the steps from fromVersion to current.
// Plans starting at or beyond the current version have no steps.
func (m *EventMigrator) CreateMigrationPlan(eventType string, fromVersion int) (*MigrationPlan, error) {
	config, ok := m.serializer.GetVersionRegistry().GetConfig(eventType)
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	plan := &MigrationPlan{
		EventType:    eventType,
		FromVersion:  fromVersion,
		ToVersion:    config.CurrentVersion,
		UpgradeSteps: []UpgradeStep{},
	}
	for from := fromVersion; from < config.CurrentVersion; from++ {
		_, ok := config.Upgraders[from]
		plan.UpgradeSteps = append(plan.UpgradeSteps, UpgradeStep{
			FromVersion: from,
			ToVersion:   from + 1,
			HasUpgrader: ok,
		})
	}
	return plan, nil
}

// IsValid reports whether every step in the plan has an upgrader.
func (p *MigrationPlan) IsValid() bool {
	for _, step := range p.UpgradeSteps {
		if !step.HasUpgrader {
			return false
		}
	}
	return true
}

// CommonUpgraders builds upgraders for the typical schema changes: adding a
// field with a default, dropping one, renaming, reshaping a value.
type CommonUpgraders struct{}

// step wraps a payload transform as a one-version upgrader.
func step(sourceVersion int, fn func(map[string]any) (map[string]any, error)) *BaseEventUpgrader {
	return NewBaseEventUpgrader(sourceVersion, sourceVersion+1, fn)
}

// AddField fills in a field that older payloads predate.
func (CommonUpgraders) AddField(sourceVersion int, fieldName string, defaultValue any) *BaseEventUpgrader {
	return step(sourceVersion, func(data map[string]any) (map[string]any, error) {
		data[fieldName] = defaultValue
		return data, nil
	})
}

// RemoveField drops a field the current schema no longer carries.
func (CommonUpgraders) RemoveField(sourceVersion int, fieldName string) *BaseEventUpgrader {
	return step(sourceVersion, func(data map[string]any) (map[string]any, error) {
		delete(data, fieldName)
		return data, nil
	})
}

// RenameField moves a value under a new key.
func (CommonUpgraders) RenameField(sourceVersion int, oldName, newName string) *BaseEventUpgrader {
	return step(sourceVersion, func(data map[string]any) (map[string]any, error) {
		if val, ok := data[oldName]; ok {
			data[newName] = val
			delete(data, oldName)
		}
		return data, nil
	})
}

// TransformField rewrites a field value in place.
func (CommonUpgraders) TransformField(sourceVersion int, fieldName string, transform func(any) any) *BaseEventUpgrader {
	return step(sourceVersion, func(data map[string]any) (map[string]any, error) {
		if val, ok := data[fieldName]; ok {
			data[fieldName] = transform(val)
		}
		return data, nil
	})
}

// WrapInObject nests a scalar under a key, for fields that grew structure.
func (CommonUpgraders) WrapInObject(sourceVersion int, fieldName, wrapperKey string) *BaseEventUpgrader {
	return step(sourceVersion, func(data map[string]any) (map[string]any, error) {
		if val, ok := data[fieldName]; ok {
			data[fieldName] = map[string]any{wrapperKey: val}
		}
		return data, nil
	})
}

// UnwrapFromObject is the inverse of WrapInObject.
func (CommonUpgraders) UnwrapFromObject(sourceVersion int, fieldName, wrapperKey string) *BaseEventUpgrader {
	return step(sourceVersion, func(data map[string]any) (map[string]any, error) {
		obj, ok := data[fieldName].(map[string]any)
		if !ok {
			return data, nil
		}
		if unwrapped, ok := obj[wrapperKey]; ok {
			data[fieldName] = unwrapped
		}
		return data, nil
	})
}

// CopyPayload deep-copies a payload via a JSON round trip.
func CopyPayload(payload []byte) ([]byte, error) {
	var m map[string]any
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

// MigrationStats tracks per-event-type upgrade counters across runs.
type MigrationStats struct {
	mu    sync.RWMutex
	stats map[string]*EventMigrationStats
}

// EventMigrationStats are the counters for one event type.
type EventMigrationStats struct {
	EventType           string
	TotalMigrated       int64
	TotalFailed         int64
	LastMigratedAt      time.Time
	AverageDurationMs   float64
	MigrationsByVersion map[string]int64 // "v1->v2" => count
}

func NewMigrationStats() *MigrationStats {
	return &MigrationStats{stats: make(map[string]*EventMigrationStats)}
}

// forType returns the counters for eventType, creating them on first use.
// Callers must hold the write lock.
func (s *MigrationStats) forType(eventType string) *EventMigrationStats {
	stats, ok := s.stats[eventType]
	if !ok {
		stats = &EventMigrationStats{
			EventType:           eventType,
			MigrationsByVersion: make(map[string]int64),
		}
		s.stats[eventType] = stats
	}
	return stats
}

// RecordMigration folds one upgrade attempt into the counters.
func (s *MigrationStats) RecordMigration(eventType string, fromVersion, toVersion int, durationMs float64, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.forType(eventType)
	stats.MigrationsByVersion[fmt.Sprintf("v%d->v%d", fromVersion, toVersion)]++
	if !success {
		stats.TotalFailed++
		return
	}

	stats.TotalMigrated++
	stats.LastMigratedAt = time.Now()
	n := float64(stats.TotalMigrated)
	stats.AverageDurationMs = stats.AverageDurationMs*(n-1)/n + durationMs/n
}

// GetStats returns a copy of the counters for one event type.
func (s *MigrationStats) GetStats(eventType string) (*EventMigrationStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, ok := s.stats[eventType]
	if !ok {
		return nil, false
	}
	cp := *stats
	cp.MigrationsByVersion = maps.Clone(stats.MigrationsByVersion)
	return &cp, true
}
