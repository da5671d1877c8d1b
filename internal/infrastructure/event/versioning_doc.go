package event

/*
Event schema versioning

Outbox rows outlive deploys: a WorkPackageStatusChangedEvent written today may
only be read back after a release that changed its fields. Every event payload
therefore carries a schema_version (missing field means version 1), and the
VersionedSerializer upgrades old payloads to the current shape before handing
them to the bus. Handlers only ever see the latest version.

Evolving an event takes three steps:

 1. Keep the old struct and add the new one, e.g. WorkOrderDispatchedEvent
    and WorkOrderDispatchedEventV2 with the extra shift_code field.
 2. Write an upgrader for the single transition:

	v1ToV2 := NewBaseEventUpgrader(1, 2, func(data map[string]any) (map[string]any, error) {
	    data["shift_code"] = "UNASSIGNED"
	    return data, nil
	})

    CommonUpgraders covers the routine cases (AddField, RenameField,
    RemoveField, TransformField, WrapInObject, UnwrapFromObject).
 3. Switch the entry in RegisterAllEvents from Register to RegisterVersioned,
    listing every version struct plus the upgrader chain. Registration fails
    fast if the chain has a gap or an upgrader skips a version.

Upgraders must be sequential (v1->v2, v2->v3) and deterministic; a payload
several versions behind is walked through the whole chain. Never reuse an
event type name for a different shape: the name routes deserialization, so a
true rename is a new event type.

Stored rows can be rewritten eagerly with `migrate events`, which runs
EventMigrator over the unsent outbox payloads; AnalyzePayloads and
MigrationStats report the version spread and upgrade outcomes. Rewriting is
optional because the serializer upgrades lazily on read, but it keeps
dead-letter payloads readable in the current shape.
*/
