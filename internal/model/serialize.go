package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// SerializeRecord renders a change record as stable JSON for the audit
// column: object keys are emitted in sorted order at every nesting level
// and non-ASCII text is preserved verbatim. The output is deterministic
// for equal records regardless of how they were constructed.
func SerializeRecord(rec *ChangeRecord) (string, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal change record: %w", err)
	}

	// Struct marshaling emits keys in field order. Round-tripping through
	// a generic map re-sorts them, recursively, since encoding/json sorts
	// map keys.
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", fmt.Errorf("normalize change record: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(generic); err != nil {
		return "", fmt.Errorf("encode change record: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// DeserializeRecord restores a change record from its serialized form.
func DeserializeRecord(data string) (*ChangeRecord, error) {
	var rec ChangeRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decode change record: %w", err)
	}
	return &rec, nil
}
