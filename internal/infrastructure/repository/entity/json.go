package entity

import (
	"encoding/json"
	"fmt"
)

// JSON columns are stored as text on SQLite and JSONB on Postgres; both
// accept and return the encoded string.

func encodeJSON(column string, v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", column, err)
	}
	return string(b), nil
}

func decodeJSON(column, raw string, into any) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), into); err != nil {
		return fmt.Errorf("failed to decode %s: %w", column, err)
	}
	return nil
}

// jsonEncoder collects the first error of a series of encodes
type jsonEncoder struct {
	err error
}

func (e *jsonEncoder) encode(column string, v any) string {
	if e.err != nil {
		return ""
	}
	s, err := encodeJSON(column, v)
	e.err = err
	return s
}

type jsonDecoder struct {
	err error
}

func (d *jsonDecoder) decode(column, raw string, into any) {
	if d.err != nil {
		return
	}
	d.err = decodeJSON(column, raw, into)
}
