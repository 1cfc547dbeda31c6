package telemetry

import (
	"context"
	"fmt"

	"modtel/internal/logging"
)

// reminderMessage is logged once per client lifetime unless suppressed by config.
const reminderMessage = "Usage telemetry is enabled. Set DISABLE_TELEMETRY=true to opt out, or SUPPRESS_TELEMETRY_REMINDER=true to hide this message."

// EmitEvent builds and delivers a custom event. It never returns an error and
// never panics: telemetry must not be the cause of a caller-visible failure.
// synchronous=false offloads the HTTP call to its own goroutine (the call
// still waits for completion, with the optional progress animation).
func (c *Client) EmitEvent(ctx context.Context, name string, properties map[string]string, metrics map[string]float64, synchronous bool) {
	defer c.swallowPanics("EmitEvent")

	if c.cfg.DisableTelemetry {
		c.logger.Log(fmt.Sprintf("telemetry disabled; skipping event %q", name), logging.LevelVerbose, nil)
		return
	}
	c.remindOnce()

	ev := c.CustomEvent(name, properties, metrics)
	c.deliver(ctx, ev, synchronous)
}

// EmitException builds and delivers an exception event for err. Same contract
// as EmitEvent: failures are normalized, logged, and swallowed.
func (c *Client) EmitException(ctx context.Context, err error, errorBucket string, properties map[string]string, synchronous bool) {
	defer c.swallowPanics("EmitException")

	if err == nil {
		c.logger.Log("telemetry: EmitException called with nil error; skipping", logging.LevelWarning, nil)
		return
	}
	if c.cfg.DisableTelemetry {
		c.logger.Log("telemetry disabled; skipping exception event", logging.LevelVerbose, nil)
		return
	}
	c.remindOnce()

	ev := c.ExceptionEvent(err, errorBucket, properties)
	c.deliver(ctx, ev, synchronous)
}

// deliver filters, mirrors, and sends one event, terminating every failure
// path in a log line.
func (c *Client) deliver(ctx context.Context, ev *Event, synchronous bool) {
	c.applyFilter(ctx, ev)

	for _, m := range c.mirrors {
		EmitAsync(m, ctx, ev.Clone(), c.logger)
	}

	if err := c.dispatcher.Send(ctx, ev, synchronous, c.cfg.WebRequestTimeout()); err != nil {
		diagnostic, nerr := Normalize(err)
		if nerr != nil {
			c.logger.Log("telemetry delivery failed with an unrecognized error", logging.LevelError, nerr)
			return
		}
		c.logger.Log(diagnostic, logging.LevelError, nil)
	}
}

// applyFilter runs the privacy policy over the event's properties: dropped
// keys are removed, redact-listed keys are hashed. Policy failures leave the
// properties as built.
func (c *Client) applyFilter(ctx context.Context, ev *Event) {
	if c.filter == nil {
		return
	}
	props := ev.Data.BaseData.Properties
	redact, drop, err := c.filter.Evaluate(ctx, ev.Data.BaseData.Name, props)
	if err != nil {
		c.logger.Log("telemetry: privacy policy evaluation failed; sending properties as built", logging.LevelWarning, err)
		return
	}
	for _, k := range drop {
		delete(props, k)
	}
	for _, k := range redact {
		if v, ok := props[k]; ok {
			props[k] = c.redactor.Redact(v)
		}
	}
}

func (c *Client) remindOnce() {
	if c.cfg.SuppressTelemetryReminder {
		return
	}
	c.reminderOnce.Do(func() {
		c.logger.Log(reminderMessage, logging.LevelWarning, nil)
	})
}

func (c *Client) swallowPanics(op string) {
	if r := recover(); r != nil {
		c.logger.Log(fmt.Sprintf("telemetry: %s panicked: %v", op, r), logging.LevelWarning, nil)
	}
}
