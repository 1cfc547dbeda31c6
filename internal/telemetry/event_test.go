package telemetry

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestClone_DeepCopiesSubstructures(t *testing.T) {
	src := &Event{
		Name: envelopeNameEvent,
		Tags: map[string]string{"k": "v"},
		Data: EventPayload{
			BaseType: BaseTypeException,
			BaseData: BaseData{
				Ver:          2,
				Properties:   map[string]string{"p": "1"},
				Measurements: map[string]float64{"m": 1},
				Exceptions:   []ExceptionDetails{{Message: "boom"}},
			},
		},
	}

	got := src.Clone()
	got.Tags["k"] = "changed"
	got.Data.BaseData.Properties["p"] = "changed"
	got.Data.BaseData.Measurements["m"] = 2
	got.Data.BaseData.Exceptions[0].Message = "changed"

	if src.Tags["k"] != "v" {
		t.Error("tag mutation leaked into the source")
	}
	if src.Data.BaseData.Properties["p"] != "1" {
		t.Error("property mutation leaked into the source")
	}
	if src.Data.BaseData.Measurements["m"] != 1 {
		t.Error("measurement mutation leaked into the source")
	}
	if src.Data.BaseData.Exceptions[0].Message != "boom" {
		t.Error("exception mutation leaked into the source")
	}
}

func TestClone_Nil(t *testing.T) {
	var e *Event
	if e.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}

func TestEvent_WireShape(t *testing.T) {
	ev := &Event{
		Name: envelopeNameEvent,
		Time: "2026-08-29T12:00:00Z",
		IKey: "ikey",
		Tags: map[string]string{tagSessionID: "s"},
		Data: EventPayload{
			BaseType: BaseTypeEvent,
			BaseData: BaseData{Ver: 2, Name: "X", Properties: map[string]string{"A": "B"}},
		},
	}

	raw, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)
	for _, want := range []string{`"name":"Microsoft.ApplicationInsights.Event"`, `"iKey":"ikey"`, `"baseType":"EventData"`, `"ver":2`, `"A":"B"`} {
		if !strings.Contains(body, want) {
			t.Errorf("wire body missing %s: %s", want, body)
		}
	}
	if strings.Contains(body, "measurements") {
		t.Errorf("empty measurements should be omitted from the wire body: %s", body)
	}
	if strings.Contains(body, "exceptions") {
		t.Errorf("empty exceptions should be omitted from the wire body: %s", body)
	}
}
