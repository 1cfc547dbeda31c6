package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/user"
	"sync"
	"time"

	"github.com/google/uuid"

	"modtel/internal/config"
	"modtel/internal/logging"
)

// handledAtUserCode marks exception events as handled by the module, not the runtime.
const handledAtUserCode = "UserCode"

// defaultHResult is reported for errors that do not expose their own code.
const defaultHResult uint32 = 0x80004005 // E_FAIL

// HResulter is implemented by errors that carry a platform result code.
type HResulter interface {
	HResult() int32
}

// PropertyFilter decides which property keys must be redacted or dropped
// before an event leaves the process.
type PropertyFilter interface {
	Evaluate(ctx context.Context, eventName string, properties map[string]string) (redact, drop []string, err error)
}

// Client owns the process-wide telemetry state: instrumentation key, session
// id, redacted user id, and the cached base-event template. Construct one at
// process start and pass it to every call site; the template is built lazily
// on first use, guarded for concurrent callers.
type Client struct {
	cfg        *config.Config
	logger     logging.Logger
	redactor   Redactor
	dispatcher *Dispatcher
	mirrors    []Emitter
	filter     PropertyFilter

	initOnce     sync.Once
	base         *Event
	sessionID    string
	reminderOnce sync.Once
}

// NewClient returns a telemetry client for the given config. logger must be
// non-nil; every failure in this package terminates in a log line.
func NewClient(cfg *config.Config, logger logging.Logger) *Client {
	return &Client{
		cfg:        cfg,
		logger:     logger,
		redactor:   Redactor{Disabled: cfg.DisablePiiProtection},
		dispatcher: NewDispatcher(cfg.TrackEndpoint, logger),
	}
}

// AddMirror registers an emitter that receives a fire-and-forget copy of every
// built event (e.g. Kafka, OTel logs). Mirror failures never affect delivery.
func (c *Client) AddMirror(em Emitter) {
	if em != nil {
		c.mirrors = append(c.mirrors, em)
	}
}

// SetPropertyFilter installs the privacy policy applied to event properties.
func (c *Client) SetPropertyFilter(f PropertyFilter) {
	c.filter = f
}

// SetProgress enables the wait animation for asynchronous sends (suppressed by
// DefaultNoStatus; callers wire this from config).
func (c *Client) SetProgress(w io.Writer) {
	c.dispatcher.Progress = w
}

// Dispatcher exposes the delivery dispatcher. Tests swap its HTTP client or
// endpoint through this.
func (c *Client) Dispatcher() *Dispatcher {
	return c.dispatcher
}

// SessionID returns the per-client session id, initializing state on first use.
func (c *Client) SessionID() string {
	c.init()
	return c.sessionID
}

// init builds the base-event template exactly once. Timestamp and day-of-week
// are snapshots from this first construction, not re-read per event.
func (c *Client) init() {
	c.initOnce.Do(func() {
		c.sessionID = uuid.NewString()
		userID := c.redactor.Redact(currentUsername())
		now := time.Now().UTC()
		c.base = &Event{
			Name: envelopeNameEvent,
			Time: now.Format(time.RFC3339Nano),
			IKey: c.cfg.AppInsightsKey,
			Tags: map[string]string{
				tagUserID:     userID,
				tagSessionID:  c.sessionID,
				tagAppVersion: c.cfg.ModuleVersion,
				tagSDKVersion: sdkVersion,
			},
			Data: EventPayload{
				BaseType: BaseTypeEvent,
				BaseData: BaseData{
					Ver: schemaVer,
					Properties: map[string]string{
						PropertyDayOfWeek: now.Weekday().String(),
						PropertyUsername:  userID,
					},
				},
			},
		}
	})
}

// BaseEvent returns an independent deep copy of the cached template. Callers
// may mutate the copy freely.
func (c *Client) BaseEvent() *Event {
	c.init()
	return c.base.Clone()
}

// CustomEvent builds an EventData event named name. properties are merged into
// the base properties (caller's value wins on collision); metrics are attached
// only when non-empty.
func (c *Client) CustomEvent(name string, properties map[string]string, metrics map[string]float64) *Event {
	ev := c.BaseEvent()
	ev.Data.BaseData.Name = name
	for k, v := range properties {
		ev.Data.BaseData.Properties[k] = v
	}
	if len(metrics) > 0 {
		m := make(map[string]float64, len(metrics))
		for k, v := range metrics {
			m[k] = v
		}
		ev.Data.BaseData.Measurements = m
	}
	return ev
}

// ExceptionEvent builds an ExceptionData event for err. errorBucket is added
// as a property when non-blank; caller properties are merged last and win on
// collision.
func (c *Client) ExceptionEvent(err error, errorBucket string, properties map[string]string) *Event {
	ev := c.BaseEvent()
	ev.Name = envelopeNameException
	ev.Data.BaseType = BaseTypeException
	ev.Data.BaseData.HandledAt = handledAtUserCode

	if errorBucket != "" {
		ev.Data.BaseData.Properties[PropertyErrorBucket] = errorBucket
	}
	ev.Data.BaseData.Properties[PropertyMessage] = err.Error()
	ev.Data.BaseData.Properties[PropertyHResult] = fmt.Sprintf("0x%X", hresultOf(err))
	for k, v := range properties {
		ev.Data.BaseData.Properties[k] = v
	}

	ev.Data.BaseData.Exceptions = []ExceptionDetails{{
		TypeName:     fmt.Sprintf("%T", err),
		Message:      err.Error(),
		HasFullStack: false,
	}}
	return ev
}

func hresultOf(err error) uint32 {
	if hr, ok := err.(HResulter); ok {
		return uint32(hr.HResult())
	}
	return defaultHResult
}

// currentUsername reads the OS user identity for the Username/user-id fields.
func currentUsername() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return os.Getenv("USERNAME")
}
