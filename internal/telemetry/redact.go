package telemetry

import (
	"crypto/sha512"
	"encoding/hex"
	"strings"
)

// Redactor hashes free-text identifiers (username, repo names) before they are
// attached to an event. When Disabled (PII protection turned off by config)
// input passes through unchanged.
type Redactor struct {
	Disabled bool
}

// Redact returns the uppercase hex SHA-512 of plainText, or plainText itself
// when redaction is disabled. Deterministic, no side effects; empty input is
// hashed like any other value.
func (r Redactor) Redact(plainText string) string {
	if r.Disabled {
		return plainText
	}
	sum := sha512.Sum512([]byte(plainText))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
