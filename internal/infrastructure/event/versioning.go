package event

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/fabmate/backend/internal/domain/shared"
)

// EventUpgrader rewrites a payload from one schema version to the next.
// Upgraders are strictly sequential; a v1 payload reaching a v3 consumer
// passes through the v1->v2 and v2->v3 upgraders in order.
type EventUpgrader interface {
	SourceVersion() int
	TargetVersion() int
	// Upgrade takes the raw JSON payload at SourceVersion and returns it
	// at TargetVersion.
	Upgrade(payload []byte) ([]byte, error)
}

// VersionedEventConfig describes one event type's schema history.
type VersionedEventConfig struct {
	EventType      string
	CurrentVersion int
	Upgraders      map[int]EventUpgrader // source version -> upgrader
	Versions       map[int]shared.DomainEvent
}

// VersionRegistry tracks schema versions and upgrade chains per event
// type. Old payloads sit in the outbox across deploys, so the registry has
// to know how to read every version still in the database.
type VersionRegistry struct {
	mu      sync.RWMutex
	configs map[string]*VersionedEventConfig
}

func NewVersionRegistry() *VersionRegistry {
	return &VersionRegistry{
		configs: make(map[string]*VersionedEventConfig),
	}
}

// RegisterVersionedEvent registers an event type with its full upgrade
// chain. Every version from 1 to currentVersion-1 needs an upgrader, and
// the versions map must carry an instance of the current shape.
func (r *VersionRegistry) RegisterVersionedEvent(
	eventType string,
	currentVersion int,
	versions map[int]shared.DomainEvent,
	upgraders ...EventUpgrader,
) error {
	upgraderMap, err := buildUpgradeChain(eventType, currentVersion, upgraders)
	if err != nil {
		return err
	}
	if _, ok := versions[currentVersion]; !ok {
		return fmt.Errorf("versions map must include current version %d for event type %s", currentVersion, eventType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[eventType] = &VersionedEventConfig{
		EventType:      eventType,
		CurrentVersion: currentVersion,
		Upgraders:      upgraderMap,
		Versions:       versions,
	}

	return nil
}

// buildUpgradeChain indexes upgraders by source version and checks the
// chain is sequential and has no gaps below currentVersion.
func buildUpgradeChain(eventType string, currentVersion int, upgraders []EventUpgrader) (map[int]EventUpgrader, error) {
	chain := make(map[int]EventUpgrader, len(upgraders))
	for _, u := range upgraders {
		if u.TargetVersion() != u.SourceVersion()+1 {
			return nil, fmt.Errorf("upgrader must be sequential: got %d -> %d", u.SourceVersion(), u.TargetVersion())
		}
		chain[u.SourceVersion()] = u
	}
	for v := 1; v < currentVersion; v++ {
		if _, ok := chain[v]; !ok {
			return nil, fmt.Errorf("missing upgrader for version %d -> %d for event type %s", v, v+1, eventType)
		}
	}
	return chain, nil
}

// RegisterSimpleEvent registers an event type at version 1 with no
// migrations. Most event types start here.
func (r *VersionRegistry) RegisterSimpleEvent(eventType string, eventInstance shared.DomainEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.configs[eventType] = &VersionedEventConfig{
		EventType:      eventType,
		CurrentVersion: 1,
		Upgraders:      make(map[int]EventUpgrader),
		Versions: map[int]shared.DomainEvent{
			1: eventInstance,
		},
	}
}

// GetConfig returns the versioning config for an event type.
func (r *VersionRegistry) GetConfig(eventType string) (*VersionedEventConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	config, ok := r.configs[eventType]
	return config, ok
}

// GetCurrentVersion returns the latest version for an event type.
func (r *VersionRegistry) GetCurrentVersion(eventType string) (int, bool) {
	if config, ok := r.GetConfig(eventType); ok {
		return config.CurrentVersion, true
	}
	return 0, false
}

// IsRegistered reports whether an event type is known.
func (r *VersionRegistry) IsRegistered(eventType string) bool {
	_, ok := r.GetConfig(eventType)
	return ok
}

// RegisteredTypes lists every registered event type, sorted.
func (r *VersionRegistry) RegisteredTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.configs))
}

// UpgradePayload walks the upgrade chain from fromVersion to the current
// version and returns the upgraded payload with the version it landed on.
// Payloads already at or past the current version pass through untouched.
func (r *VersionRegistry) UpgradePayload(eventType string, payload []byte, fromVersion int) ([]byte, int, error) {
	config, ok := r.GetConfig(eventType)
	if !ok {
		return nil, 0, fmt.Errorf("unknown event type: %s", eventType)
	}

	for v := fromVersion; v < config.CurrentVersion; v++ {
		upgrader, ok := config.Upgraders[v]
		if !ok {
			return nil, 0, fmt.Errorf("missing upgrader for version %d -> %d for event type %s", v, v+1, eventType)
		}
		upgraded, err := upgrader.Upgrade(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to upgrade from v%d to v%d: %w", v, v+1, err)
		}
		payload = upgraded
	}

	return payload, config.CurrentVersion, nil
}

// EventVersionInfo is the version envelope read out of raw payloads.
type EventVersionInfo struct {
	SchemaVersion int `json:"schema_version"`
}

// ExtractVersion reads the schema version from a raw payload. Payloads
// written before versioning existed carry no field and count as version 1.
func ExtractVersion(payload []byte) int {
	var info EventVersionInfo
	if err := json.Unmarshal(payload, &info); err != nil {
		return 1
	}
	return max(info.SchemaVersion, 1)
}

// BaseEventUpgrader implements EventUpgrader over a map transform, which
// covers the usual field add/rename/move migrations without a typed struct
// per historical version.
type BaseEventUpgrader struct {
	sourceVersion int
	targetVersion int
	transformFunc func(data map[string]any) (map[string]any, error)
}

func NewBaseEventUpgrader(source, target int, transform func(data map[string]any) (map[string]any, error)) *BaseEventUpgrader {
	return &BaseEventUpgrader{
		sourceVersion: source,
		targetVersion: target,
		transformFunc: transform,
	}
}

func (u *BaseEventUpgrader) SourceVersion() int { return u.sourceVersion }

func (u *BaseEventUpgrader) TargetVersion() int { return u.targetVersion }

// Upgrade unmarshals the payload, applies the transform, and stamps the
// target schema version.
func (u *BaseEventUpgrader) Upgrade(payload []byte) ([]byte, error) {
	var data map[string]any
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	transformed, err := u.transformFunc(data)
	if err != nil {
		return nil, fmt.Errorf("transform failed: %w", err)
	}
	transformed["schema_version"] = u.targetVersion

	result, err := json.Marshal(transformed)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transformed payload: %w", err)
	}
	return result, nil
}

var _ EventUpgrader = (*BaseEventUpgrader)(nil)
