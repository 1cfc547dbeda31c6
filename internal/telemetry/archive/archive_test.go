package archive

import (
	"testing"
	"time"
)

func TestFromWire(t *testing.T) {
	raw := []byte(`{
		"name": "Microsoft.ApplicationInsights.Event",
		"time": "2026-08-29T12:00:00Z",
		"iKey": "ikey",
		"tags": {"ai.session.id": "sess1", "ai.user.id": "user1"},
		"data": {"baseType": "EventData", "baseData": {"ver": 2, "name": "Invoke"}}
	}`)

	rec, err := FromWire(raw)
	if err != nil {
		t.Fatalf("FromWire: %v", err)
	}
	if rec.SessionID != "sess1" {
		t.Errorf("SessionID = %q, want sess1", rec.SessionID)
	}
	if rec.UserID != "user1" {
		t.Errorf("UserID = %q, want user1", rec.UserID)
	}
	if rec.EventName != "Invoke" {
		t.Errorf("EventName = %q, want Invoke", rec.EventName)
	}
	if rec.BaseType != "EventData" {
		t.Errorf("BaseType = %q, want EventData", rec.BaseType)
	}
	if string(rec.Payload) != string(raw) {
		t.Error("Payload should be the envelope verbatim")
	}
	want := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	if rec.EventTime == nil || !rec.EventTime.Equal(want) {
		t.Errorf("EventTime = %v, want %v", rec.EventTime, want)
	}
	if rec.ReceivedAt.IsZero() {
		t.Error("ReceivedAt should be set")
	}
}

func TestFromWire_MissingFields(t *testing.T) {
	rec, err := FromWire([]byte(`{}`))
	if err != nil {
		t.Fatalf("FromWire: %v", err)
	}
	if rec.SessionID != "" || rec.EventName != "" {
		t.Errorf("empty envelope should have empty index fields, got %+v", rec)
	}
	if rec.EventTime != nil {
		t.Errorf("EventTime = %v, want nil", rec.EventTime)
	}
}

func TestFromWire_NotJSON(t *testing.T) {
	if _, err := FromWire([]byte("not json")); err == nil {
		t.Error("FromWire should fail for a non-JSON payload")
	}
}
