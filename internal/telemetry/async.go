package telemetry

import (
	"context"
	"time"

	"modtel/internal/logging"
)

// mirrorTimeout is the max time allowed for a single fire-and-forget mirror emit.
const mirrorTimeout = 5 * time.Second

// EmitAsync runs Emit in a goroutine with a short timeout so the caller is not blocked.
// Used for mirror sinks: fire-and-forget, best-effort; errors are logged.
//
// emitter and event may be nil; EmitAsync returns immediately without starting a goroutine.
// The goroutine uses context.Background() with mirrorTimeout so caller cancellation does not abort an in-flight emit.
func EmitAsync(emitter Emitter, ctx context.Context, event *Event, logger logging.Logger) {
	if emitter == nil || event == nil {
		return
	}
	go func() {
		emitCtx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
		defer cancel()
		if err := emitter.Emit(emitCtx, event); err != nil && logger != nil {
			logger.Log("telemetry: async mirror emit failed", logging.LevelWarning, err)
		}
	}()
}
