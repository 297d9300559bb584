package model

// jsonfield.go — defensive JSON column types.
//
// Several columns (additional_images, product_types, dimensions,
// specifications, bill_images) store JSON written by older clients, some of
// it malformed. Reads must never fail on bad data: a scan of anything
// undecodable yields the zero value instead of an error.

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONList is a JSON-encoded list of strings.
type JSONList []string

func (l *JSONList) Scan(value interface{}) error {
	raw, ok := asBytes(value)
	if !ok || len(raw) == 0 {
		*l = JSONList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		// Malformed stored JSON — substitute the empty list.
		*l = JSONList{}
		return nil
	}
	*l = out
	return nil
}

func (l JSONList) Value() (driver.Value, error) {
	if l == nil {
		l = JSONList{}
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("jsonlist: marshal: %w", err)
	}
	return string(b), nil
}

// JSONMap is a JSON-encoded string-to-string object (dimensions, specifications).
type JSONMap map[string]string

func (m *JSONMap) Scan(value interface{}) error {
	raw, ok := asBytes(value)
	if !ok || len(raw) == 0 {
		*m = JSONMap{}
		return nil
	}
	var out map[string]string
	if err := json.Unmarshal(raw, &out); err != nil {
		*m = JSONMap{}
		return nil
	}
	*m = out
	return nil
}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		m = JSONMap{}
	}
	b, err := json.Marshal(map[string]string(m))
	if err != nil {
		return nil, fmt.Errorf("jsonmap: marshal: %w", err)
	}
	return string(b), nil
}

// GormDataType tells GORM to create these columns as jsonb.
func (JSONList) GormDataType() string { return "jsonb" }
func (JSONMap) GormDataType() string  { return "jsonb" }

func asBytes(value interface{}) ([]byte, bool) {
	switch v := value.(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	case nil:
		return nil, true
	default:
		return nil, false
	}
}
