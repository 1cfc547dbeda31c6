package migrate

import "testing"

func TestRun_EmptyDSN(t *testing.T) {
	if err := Run("", "up"); err == nil {
		t.Error("Run with empty DSN should fail")
	}
}

func TestRun_InvalidDirection(t *testing.T) {
	if err := Run("postgres://localhost/modtel", "sideways"); err == nil {
		t.Error("Run with invalid direction should fail")
	}
}
