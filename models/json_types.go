package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON-typed columns are stored as serialized text so the same schema works on
// MySQL and the sqlite test database.

type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *StringList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func (m *JSONMap) Scan(value interface{}) error {
	return scanJSON(value, m)
}

// NutritionalInfo holds the optional per-item macro values.
type NutritionalInfo struct {
	Calories float64 `json:"calories,omitempty"`
	Protein  float64 `json:"protein,omitempty"`
	Carbs    float64 `json:"carbs,omitempty"`
	Fat      float64 `json:"fat,omitempty"`
}

func (n NutritionalInfo) Value() (driver.Value, error) {
	b, err := json.Marshal(n)
	return string(b), err
}

func (n *NutritionalInfo) Scan(value interface{}) error {
	return scanJSON(value, n)
}

// DayHours is one weekday entry of a restaurant's opening hours. Open and Close
// are HHMM integers (e.g. 900, 2230); nil means the value was never configured.
type DayHours struct {
	Open     *int `json:"open,omitempty"`
	Close    *int `json:"close,omitempty"`
	IsClosed bool `json:"isClosed"`
}

// OpeningHours maps the weekday ("0" = Sunday ... "6" = Saturday) to its hours.
type OpeningHours map[string]DayHours

func (h OpeningHours) Value() (driver.Value, error) {
	if h == nil {
		return "{}", nil
	}
	b, err := json.Marshal(h)
	return string(b), err
}

func (h *OpeningHours) Scan(value interface{}) error {
	return scanJSON(value, h)
}

func scanJSON(value, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dest)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported type for JSON column: %T", value)
	}
}
