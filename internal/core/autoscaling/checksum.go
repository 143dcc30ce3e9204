package autoscaling

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// =============================================================================
// Content Checksum
// =============================================================================

// schemaVersion is injected into both the checksum input and the persisted
// config snapshot.
const schemaVersion = 1

// withVersion copies the raw policy and stamps the schema version in.
func withVersion(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw)+1)
	for k, v := range raw {
		out[k] = v
	}
	out["version"] = schemaVersion
	return out
}

// Checksum returns the SHA-256 hex digest of the canonical JSON form of the
// policy with the schema version injected. Canonical means sorted keys,
// compact separators, and no HTML escaping, so the digest depends only on
// content, never on key order in the source document.
func Checksum(raw map[string]any) (string, error) {
	canonical, err := canonicalJSON(withVersion(raw))
	if err != nil {
		return "", fmt.Errorf("canonicalizing policy: %w", err)
	}
	return fmt.Sprintf("%x", sha256.Sum256(canonical)), nil
}

func canonicalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
