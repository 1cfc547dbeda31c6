package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("APPINSIGHTS_KEY", "00000000-0000-0000-0000-000000000001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.DisableTelemetry {
		t.Error("DisableTelemetry should default to false")
	}
	if cfg.DisablePiiProtection {
		t.Error("DisablePiiProtection should default to false")
	}
	if cfg.SuppressTelemetryReminder {
		t.Error("SuppressTelemetryReminder should default to false")
	}
	if cfg.WebRequestTimeoutSec != 0 {
		t.Errorf("WebRequestTimeoutSec = %d, want 0", cfg.WebRequestTimeoutSec)
	}
	if cfg.TrackEndpoint != DefaultTrackEndpoint {
		t.Errorf("TrackEndpoint = %q, want %q", cfg.TrackEndpoint, DefaultTrackEndpoint)
	}
	if cfg.ModuleName != "modtel" {
		t.Errorf("ModuleName = %q, want %q", cfg.ModuleName, "modtel")
	}
	if cfg.KafkaTopic != "modtel-events" {
		t.Errorf("KafkaTopic = %q, want %q", cfg.KafkaTopic, "modtel-events")
	}
	if cfg.KafkaGroupID != "modtel-archive-worker" {
		t.Errorf("KafkaGroupID = %q, want %q", cfg.KafkaGroupID, "modtel-archive-worker")
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("APPINSIGHTS_KEY", "k")
	os.Setenv("WEB_REQUEST_TIMEOUT_SEC", "45")
	os.Setenv("TRACK_ENDPOINT", "http://localhost:8081/v2/track")
	os.Setenv("DEFAULT_NO_STATUS", "true")
	os.Setenv("MODULE_VERSION", "1.2.3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WebRequestTimeoutSec != 45 {
		t.Errorf("WebRequestTimeoutSec = %d, want 45", cfg.WebRequestTimeoutSec)
	}
	if cfg.TrackEndpoint != "http://localhost:8081/v2/track" {
		t.Errorf("TrackEndpoint = %q", cfg.TrackEndpoint)
	}
	if !cfg.DefaultNoStatus {
		t.Error("DefaultNoStatus should be true")
	}
	if cfg.ModuleVersion != "1.2.3" {
		t.Errorf("ModuleVersion = %q, want %q", cfg.ModuleVersion, "1.2.3")
	}
}

func TestLoad_KeyRequiredUnlessDisabled(t *testing.T) {
	os.Clearenv()

	if _, err := Load(); err == nil {
		t.Error("Load should fail when APPINSIGHTS_KEY is empty and telemetry is enabled")
	}

	os.Setenv("DISABLE_TELEMETRY", "true")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with DISABLE_TELEMETRY=true: %v", err)
	}
	if !cfg.DisableTelemetry {
		t.Error("DisableTelemetry should be true")
	}
}

func TestLoad_NegativeTimeoutRejected(t *testing.T) {
	os.Clearenv()
	os.Setenv("APPINSIGHTS_KEY", "k")
	os.Setenv("WEB_REQUEST_TIMEOUT_SEC", "-1")

	if _, err := Load(); err == nil {
		t.Error("Load should reject a negative WEB_REQUEST_TIMEOUT_SEC")
	}
}

func TestWebRequestTimeout(t *testing.T) {
	cfg := &Config{WebRequestTimeoutSec: 30}
	if got := cfg.WebRequestTimeout(); got != 30*time.Second {
		t.Errorf("WebRequestTimeout = %v, want 30s", got)
	}
	cfg.WebRequestTimeoutSec = 0
	if got := cfg.WebRequestTimeout(); got != 0 {
		t.Errorf("WebRequestTimeout = %v, want 0", got)
	}
}

func TestKafkaBrokersList(t *testing.T) {
	cfg := &Config{KafkaBrokers: "localhost:9092, broker2:9092 ,"}
	got := cfg.KafkaBrokersList()
	if len(got) != 2 || got[0] != "localhost:9092" || got[1] != "broker2:9092" {
		t.Errorf("KafkaBrokersList = %v", got)
	}

	cfg = &Config{}
	if got := cfg.KafkaBrokersList(); got != nil {
		t.Errorf("KafkaBrokersList on empty config = %v, want nil", got)
	}
}
