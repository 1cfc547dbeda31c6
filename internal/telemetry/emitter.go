package telemetry

import "context"

// Emitter mirrors built events to a secondary sink (e.g. Kafka, OTel Logs). Best-effort; callers log and ignore errors.
type Emitter interface {
	Emit(ctx context.Context, event *Event) error
}
