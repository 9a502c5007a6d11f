package event

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/villahub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PayloadUpgrader rewrites an event payload from one schema version to the
// next. Upgraders are chained, so a v1 payload registered with current
// version 3 passes through the 1->2 and 2->3 upgraders in order.
type PayloadUpgrader interface {
	SourceVersion() int
	TargetVersion() int
	Upgrade(payload []byte) ([]byte, error)
}

// versionedType holds the current version and upgrade chain of one event type
type versionedType struct {
	currentVersion int
	upgraders      map[int]PayloadUpgrader // keyed by source version
}

// VersionedEventSerializer wraps EventSerializer with payload schema
// versioning. Outbox payloads carry a schema_version field; payloads written
// by an older deploy are upgraded to the current shape before
// deserialization, so the outbox drains cleanly across schema changes.
type VersionedEventSerializer struct {
	inner    *EventSerializer
	mu       sync.RWMutex
	versions map[string]*versionedType
	logger   *zap.Logger
}

// NewVersionedEventSerializer creates a versioned serializer
func NewVersionedEventSerializer(logger *zap.Logger) *VersionedEventSerializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VersionedEventSerializer{
		inner:    NewEventSerializer(),
		versions: make(map[string]*versionedType),
		logger:   logger,
	}
}

// Register registers an event type without schema versioning.
// Its payloads deserialize as-is.
func (s *VersionedEventSerializer) Register(eventType string, eventInstance shared.DomainEvent) {
	s.inner.Register(eventType, eventInstance)
}

// RegisterVersioned registers an event type at currentVersion together with
// the upgraders that lift older payloads. The chain must step through every
// version from 1 to currentVersion without gaps or duplicates.
func (s *VersionedEventSerializer) RegisterVersioned(
	eventType string,
	eventInstance shared.DomainEvent,
	currentVersion int,
	upgraders ...PayloadUpgrader,
) error {
	if currentVersion < 1 {
		return fmt.Errorf("event %s: current version must be >= 1, got %d", eventType, currentVersion)
	}

	chain := make(map[int]PayloadUpgrader, len(upgraders))
	for _, u := range upgraders {
		if u.TargetVersion() != u.SourceVersion()+1 {
			return fmt.Errorf("event %s: upgrader %d->%d must advance exactly one version",
				eventType, u.SourceVersion(), u.TargetVersion())
		}
		if _, dup := chain[u.SourceVersion()]; dup {
			return fmt.Errorf("event %s: duplicate upgrader for version %d", eventType, u.SourceVersion())
		}
		chain[u.SourceVersion()] = u
	}
	for v := 1; v < currentVersion; v++ {
		if _, ok := chain[v]; !ok {
			return fmt.Errorf("event %s: missing upgrader %d->%d", eventType, v, v+1)
		}
	}

	s.inner.Register(eventType, eventInstance)

	s.mu.Lock()
	s.versions[eventType] = &versionedType{
		currentVersion: currentVersion,
		upgraders:      chain,
	}
	s.mu.Unlock()

	return nil
}

// Serialize serializes an event, stamping schema_version for versioned types
func (s *VersionedEventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	payload, err := s.inner.Serialize(event)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	vt, versioned := s.versions[event.EventType()]
	s.mu.RUnlock()

	if !versioned {
		return payload, nil
	}

	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("failed to stamp schema version: %w", err)
	}
	fields["schema_version"] = vt.currentVersion
	return json.Marshal(fields)
}

// Deserialize deserializes a payload, upgrading stale versions first
func (s *VersionedEventSerializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	vt, versioned := s.versions[eventType]
	s.mu.RUnlock()

	if !versioned {
		return s.inner.Deserialize(eventType, data)
	}

	version := payloadSchemaVersion(data)
	if version > vt.currentVersion {
		return nil, fmt.Errorf("event %s: payload version %d is newer than current version %d",
			eventType, version, vt.currentVersion)
	}

	for version < vt.currentVersion {
		upgrader, ok := vt.upgraders[version]
		if !ok {
			return nil, fmt.Errorf("event %s: no upgrader for version %d", eventType, version)
		}

		upgraded, err := upgrader.Upgrade(data)
		if err != nil {
			return nil, fmt.Errorf("event %s: upgrade %d->%d failed: %w",
				eventType, upgrader.SourceVersion(), upgrader.TargetVersion(), err)
		}

		s.logger.Debug("upgraded event payload",
			zap.String("event_type", eventType),
			zap.Int("from_version", version),
			zap.Int("to_version", upgrader.TargetVersion()),
		)

		data = upgraded
		version = upgrader.TargetVersion()
	}

	return s.inner.Deserialize(eventType, data)
}

// CurrentVersion returns the registered schema version of an event type.
// Unversioned registered types report version 1.
func (s *VersionedEventSerializer) CurrentVersion(eventType string) (int, bool) {
	s.mu.RLock()
	vt, versioned := s.versions[eventType]
	s.mu.RUnlock()

	if versioned {
		return vt.currentVersion, true
	}
	if s.inner.IsRegistered(eventType) {
		return 1, true
	}
	return 0, false
}

// IsRegistered checks if an event type is registered
func (s *VersionedEventSerializer) IsRegistered(eventType string) bool {
	return s.inner.IsRegistered(eventType)
}

// RegisteredTypes returns all registered event types
func (s *VersionedEventSerializer) RegisteredTypes() []string {
	return s.inner.RegisteredTypes()
}

// payloadSchemaVersion reads the schema_version field from a raw payload.
// Payloads written before versioning was introduced carry no field and are
// treated as version 1.
func payloadSchemaVersion(data []byte) int {
	var envelope struct {
		SchemaVersion int `json:"schema_version"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil || envelope.SchemaVersion < 1 {
		return 1
	}
	return envelope.SchemaVersion
}

// FieldUpgrader is a PayloadUpgrader that applies a transform to the decoded
// payload fields and advances the schema version by one
type FieldUpgrader struct {
	source    int
	transform func(fields map[string]any) error
}

// NewFieldUpgrader creates an upgrader from source to source+1
func NewFieldUpgrader(source int, transform func(fields map[string]any) error) *FieldUpgrader {
	return &FieldUpgrader{source: source, transform: transform}
}

// SourceVersion returns the version this upgrader reads
func (u *FieldUpgrader) SourceVersion() int {
	return u.source
}

// TargetVersion returns the version this upgrader writes
func (u *FieldUpgrader) TargetVersion() int {
	return u.source + 1
}

// Upgrade applies the transform and restamps the schema version
func (u *FieldUpgrader) Upgrade(payload []byte) ([]byte, error) {
	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}

	if err := u.transform(fields); err != nil {
		return nil, err
	}

	fields["schema_version"] = u.source + 1
	return json.Marshal(fields)
}

// RenameField builds an upgrader that renames a payload field
func RenameField(source int, oldName, newName string) *FieldUpgrader {
	return NewFieldUpgrader(source, func(fields map[string]any) error {
		if value, ok := fields[oldName]; ok {
			fields[newName] = value
			delete(fields, oldName)
		}
		return nil
	})
}

// AddField builds an upgrader that adds a field with a default value when
// the payload does not already carry it
func AddField(source int, name string, defaultValue any) *FieldUpgrader {
	return NewFieldUpgrader(source, func(fields map[string]any) error {
		if _, ok := fields[name]; !ok {
			fields[name] = defaultValue
		}
		return nil
	})
}

var _ PayloadUpgrader = (*FieldUpgrader)(nil)
var _ Serializer = (*VersionedEventSerializer)(nil)
