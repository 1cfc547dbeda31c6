// Package archive persists mirrored telemetry events so developers can verify
// locally what their module would send. Records come off the Kafka mirror
// topic as serialized envelopes.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Record is one archived telemetry event row.
type Record struct {
	ID         int64
	SessionID  string
	UserID     string
	EventName  string
	BaseType   string
	Payload    []byte // the full envelope, JSONB
	EventTime  *time.Time
	ReceivedAt time.Time
}

// Repository defines persistence for archived events.
type Repository interface {
	Save(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, id int64) (*Record, error)
	ListBySession(ctx context.Context, sessionID string, limit, offset int32) ([]*Record, error)
}

// wireFields is used to parse only the envelope fields the archive indexes.
type wireFields struct {
	Time string            `json:"time"`
	Tags map[string]string `json:"tags"`
	Data struct {
		BaseType string `json:"baseType"`
		BaseData struct {
			Name string `json:"name"`
		} `json:"baseData"`
	} `json:"data"`
}

// FromWire builds a Record from a serialized envelope (a Kafka message value).
// The payload is kept verbatim; session, user, name, and type are lifted out
// for indexing. Fails only when the payload is not JSON.
func FromWire(raw []byte) (*Record, error) {
	var fields wireFields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("archive: parse envelope: %w", err)
	}
	rec := &Record{
		SessionID:  fields.Tags["ai.session.id"],
		UserID:     fields.Tags["ai.user.id"],
		EventName:  fields.Data.BaseData.Name,
		BaseType:   fields.Data.BaseType,
		Payload:    raw,
		ReceivedAt: time.Now().UTC(),
	}
	if fields.Time != "" {
		if t, err := time.Parse(time.RFC3339Nano, fields.Time); err == nil {
			rec.EventTime = &t
		}
	}
	return rec, nil
}
