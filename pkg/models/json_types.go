// Package models contains domain models for teamboard.
package models

import (
	"database/sql/driver"
	"fmt"

	json "github.com/goccy/go-json"
)

// JSONStringArray stores an ordered string slice as a JSON TEXT column.
// It implements sql.Scanner and driver.Valuer so GORM models can embed it
// directly. Storage keeps duplicates and insertion order; set semantics are
// applied by the callers that need them.
type JSONStringArray []string

// Value implements driver.Valuer. A nil slice is stored as an empty array
// so the column is never NULL.
func (a JSONStringArray) Value() (driver.Value, error) {
	if a == nil {
		a = JSONStringArray{}
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, fmt.Errorf("marshal string array: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (a *JSONStringArray) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		return a.unmarshal(v)
	case string:
		return a.unmarshal([]byte(v))
	default:
		return fmt.Errorf("unsupported type for JSONStringArray: %T", src)
	}
}

func (a *JSONStringArray) unmarshal(data []byte) error {
	if len(data) == 0 {
		*a = nil
		return nil
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("unmarshal string array: %w", err)
	}
	*a = out
	return nil
}
