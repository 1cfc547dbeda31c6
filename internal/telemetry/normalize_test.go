package telemetry

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNormalize_FullDiagnostic(t *testing.T) {
	de := &DeliveryError{
		Message:           "the remote server returned an error: (403) Forbidden",
		StatusCode:        403,
		StatusDescription: " Forbidden ",
		InnerMessage:      `{"message":"Bad credentials","documentation_url":"http://x"}`,
		RequestID:         "req-1",
	}

	got, err := Normalize(de)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	lines := strings.Split(got, "\n")
	if lines[0] != "the remote server returned an error: (403) Forbidden" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "403 | Forbidden" {
		t.Errorf("line 1 = %q, want %q", lines[1], "403 | Forbidden")
	}
	if lines[2] != "Bad credentials | http://x" {
		t.Errorf("line 2 = %q, want %q", lines[2], "Bad credentials | http://x")
	}
	if lines[len(lines)-1] != "RequestId: req-1" {
		t.Errorf("last line = %q", lines[len(lines)-1])
	}
}

func TestNormalize_InnerMessageJSONString(t *testing.T) {
	de := &DeliveryError{Message: "m", InnerMessage: `"  plain detail  "`}
	got, err := Normalize(de)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !strings.Contains(got, "\nplain detail") {
		t.Errorf("diagnostic = %q, want trimmed string line", got)
	}
}

func TestNormalize_InnerMessageNotJSON(t *testing.T) {
	de := &DeliveryError{Message: "m", InnerMessage: "  not json at all  "}
	got, err := Normalize(de)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !strings.Contains(got, "\nnot json at all") {
		t.Errorf("diagnostic = %q, want raw trimmed fallback", got)
	}
}

func TestNormalize_DetailsTable(t *testing.T) {
	de := &DeliveryError{
		Message: "m",
		InnerMessage: `{"message":"Validation Failed","documentation_url":"http://x",` +
			`"details":[{"resource":"Issue","field":"title","code":"missing_field"}]}`,
	}
	got, err := Normalize(de)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !strings.Contains(got, "Validation Failed | http://x") {
		t.Errorf("diagnostic missing message line: %q", got)
	}
	for _, cell := range []string{"resource", "field", "code", "Issue", "title", "missing_field"} {
		if !strings.Contains(got, cell) {
			t.Errorf("diagnostic missing detail cell %q: %q", cell, got)
		}
	}
}

func TestNormalize_RawBodyVerbatim(t *testing.T) {
	de := &DeliveryError{Message: "m", RawResponseBody: "<html>502</html>"}
	got, err := Normalize(de)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !strings.Contains(got, "<html>502</html>") {
		t.Errorf("diagnostic = %q, want raw body verbatim", got)
	}
}

func TestNormalize_NoStatusLineWhenNoResponse(t *testing.T) {
	de := &DeliveryError{Message: "dial tcp: connection refused"}
	got, err := Normalize(de)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got != "dial tcp: connection refused" {
		t.Errorf("diagnostic = %q, want the message only", got)
	}
}

func TestNormalize_SerializedFailure(t *testing.T) {
	de := &DeliveryError{
		Message:           "the remote server returned an error: (403) Forbidden",
		StatusCode:        403,
		StatusDescription: "Forbidden",
		InnerMessage:      `{"message":"Bad credentials","documentation_url":"http://x"}`,
	}
	payload, err := json.Marshal(de)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	fromWire, err := Normalize(&remoteFailure{payload: payload})
	if err != nil {
		t.Fatalf("Normalize(remote): %v", err)
	}
	direct, err := Normalize(de)
	if err != nil {
		t.Fatalf("Normalize(direct): %v", err)
	}
	if fromWire != direct {
		t.Errorf("serialized and direct failures should normalize identically:\n%q\n%q", fromWire, direct)
	}
}

func TestNormalize_UnrecognizedShapePropagates(t *testing.T) {
	odd := errors.New("not a delivery failure")
	got, err := Normalize(odd)
	if got != "" {
		t.Errorf("diagnostic = %q, want empty", got)
	}
	if !errors.Is(err, odd) {
		t.Errorf("err = %v, want the original error unchanged", err)
	}
}

func TestNormalize_MalformedSerializedPayload(t *testing.T) {
	bad := &remoteFailure{payload: []byte("not json")}
	if _, err := Normalize(bad); err == nil {
		t.Error("malformed serialized payload should be unrecognized")
	}
}
