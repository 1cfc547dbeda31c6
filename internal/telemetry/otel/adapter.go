package otel

import (
	"context"
	"encoding/json"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"modtel/internal/telemetry"
)

// recordLogger is the slice of otellog.Logger the emitter needs; tests substitute a capture.
type recordLogger interface {
	Emit(ctx context.Context, rec otellog.Record)
}

// NewEventEmitter returns an Emitter that mirrors events as OTel log records via the given LoggerProvider.
// If provider is nil, returns a no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.Emitter {
	if provider == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: provider.Logger("modtel.telemetry")}
}

// NewEventEmitterWithLogger returns an emitter writing records to the given logger. Used by tests.
func NewEventEmitterWithLogger(logger recordLogger) telemetry.Emitter {
	return &otelEmitter{logger: logger}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *telemetry.Event) error { return nil }

type otelEmitter struct {
	logger recordLogger
}

// Emit converts the telemetry event to an OTel log record and emits it. Best-effort.
// The record body is the full serialized envelope; identity and type fields become attributes.
func (e *otelEmitter) Emit(ctx context.Context, event *telemetry.Event) error {
	if event == nil {
		return nil
	}
	rec := otellog.Record{}
	if event.Time != "" {
		if t, err := time.Parse(time.RFC3339Nano, event.Time); err == nil && !t.IsZero() {
			rec.SetTimestamp(t)
		}
	}
	if payload, err := json.Marshal(event); err == nil {
		rec.SetBody(otellog.BytesValue(payload))
	}
	if session := event.Tags["ai.session.id"]; session != "" {
		rec.AddAttributes(otellog.String("session_id", session))
	}
	if user := event.Tags["ai.user.id"]; user != "" {
		rec.AddAttributes(otellog.String("user_id", user))
	}
	if event.Data.BaseData.Name != "" {
		rec.AddAttributes(otellog.String("event_name", event.Data.BaseData.Name))
	}
	if event.Data.BaseType != "" {
		rec.AddAttributes(otellog.String("base_type", event.Data.BaseType))
	}
	if rec.Timestamp().IsZero() {
		rec.SetTimestamp(time.Now().UTC())
	}
	e.logger.Emit(ctx, rec)
	return nil
}
