// Package telemetry builds and delivers usage-telemetry events describing
// module invocations and failures. Delivery is best-effort: nothing in this
// package is allowed to propagate a failure to the module's caller.
package telemetry

// Envelope names and base types of the Application Insights track schema.
const (
	envelopeNameEvent     = "Microsoft.ApplicationInsights.Event"
	envelopeNameException = "Microsoft.ApplicationInsights.Exception"

	BaseTypeEvent     = "EventData"
	BaseTypeException = "ExceptionData"

	// sdkVersion is reported in the ai.internal.sdkVersion tag.
	sdkVersion = "modtel-go:1.0.0"

	// schemaVer is the baseData schema version expected by the ingestion endpoint.
	schemaVer = 2
)

// Envelope tag keys.
const (
	tagUserID     = "ai.user.id"
	tagSessionID  = "ai.session.id"
	tagAppVersion = "ai.application.ver"
	tagSDKVersion = "ai.internal.sdkVersion"
)

// Property keys set by the builder. Callers may add their own keys; on
// collision the caller's value wins.
const (
	PropertyDayOfWeek   = "DayOfWeek"
	PropertyUsername    = "Username"
	PropertyErrorBucket = "ErrorBucket"
	PropertyMessage     = "Message"
	PropertyHResult     = "HResult"
)

// Event is the wire payload POSTed to the ingestion endpoint.
type Event struct {
	Name string            `json:"name"`
	Time string            `json:"time"`
	IKey string            `json:"iKey"`
	Tags map[string]string `json:"tags"`
	Data EventPayload      `json:"data"`
}

// EventPayload wraps the typed event body.
type EventPayload struct {
	BaseType string   `json:"baseType"`
	BaseData BaseData `json:"baseData"`
}

// BaseData carries the event-specific fields. Measurements and Exceptions are
// omitted from the wire body when empty.
type BaseData struct {
	Ver          int                `json:"ver"`
	Name         string             `json:"name,omitempty"`
	HandledAt    string             `json:"handledAt,omitempty"`
	Properties   map[string]string  `json:"properties,omitempty"`
	Measurements map[string]float64 `json:"measurements,omitempty"`
	Exceptions   []ExceptionDetails `json:"exceptions,omitempty"`
}

// ExceptionDetails describes one recorded failure on an ExceptionData event.
type ExceptionDetails struct {
	ID           int    `json:"id"`
	TypeName     string `json:"typeName"`
	Message      string `json:"message"`
	HasFullStack bool   `json:"hasFullStack"`
}

// Clone returns an independent deep copy. Mutating the copy's tags,
// properties, measurements, or exceptions never affects the original.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	out := *e
	out.Tags = copyStringMap(e.Tags)
	out.Data.BaseData.Properties = copyStringMap(e.Data.BaseData.Properties)
	if e.Data.BaseData.Measurements != nil {
		m := make(map[string]float64, len(e.Data.BaseData.Measurements))
		for k, v := range e.Data.BaseData.Measurements {
			m[k] = v
		}
		out.Data.BaseData.Measurements = m
	}
	if e.Data.BaseData.Exceptions != nil {
		exs := make([]ExceptionDetails, len(e.Data.BaseData.Exceptions))
		copy(exs, e.Data.BaseData.Exceptions)
		out.Data.BaseData.Exceptions = exs
	}
	return &out
}

func copyStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
