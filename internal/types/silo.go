package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Silo is one reading of a monitored storage unit. Metric fields are nil when
// the reading is absent or malformed.
type Silo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Product     string   `json:"product,omitempty"`
	Location    string   `json:"location,omitempty"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Capacity    *float64 `json:"capacity"`
	Weight      *float64 `json:"weight,omitempty"`
	Connected   *bool    `json:"connected,omitempty"`
}

// Disconnected reports whether the silo is explicitly marked as offline.
// An unset flag counts as connected.
func (s Silo) Disconnected() bool {
	return s.Connected != nil && !*s.Connected
}

// Value returns the reading for a metric, or nil if it is absent.
func (s Silo) Value(m Metric) *float64 {
	switch m {
	case MetricTemperature:
		return s.Temperature
	case MetricHumidity:
		return s.Humidity
	case MetricCapacity:
		return s.Capacity
	}
	return nil
}

// UnmarshalJSON decodes a silo leniently: metric values that are missing,
// null or non-numeric become nil instead of failing the whole document.
// The id may be a JSON number or string.
func (s *Silo) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id, err := parseID(raw["id"])
	if err != nil {
		return err
	}

	*s = Silo{
		ID:          id,
		Name:        parseString(raw["name"]),
		Product:     parseString(raw["product"]),
		Location:    parseString(raw["location"]),
		Temperature: parseNumber(raw["temperature"]),
		Humidity:    parseNumber(raw["humidity"]),
		Capacity:    parseNumber(raw["capacity"]),
		Weight:      parseNumber(raw["weight"]),
		Connected:   parseBool(raw["connected"]),
	}
	return nil
}

func parseID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", fmt.Errorf("silo id is required")
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if str == "" {
			return "", fmt.Errorf("silo id is required")
		}
		return str, nil
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return "", fmt.Errorf("silo id must be a string or number: %w", err)
	}
	return num.String(), nil
}

func parseString(raw json.RawMessage) string {
	var str string
	if len(raw) == 0 || json.Unmarshal(raw, &str) != nil {
		return ""
	}
	return str
}

func parseNumber(raw json.RawMessage) *float64 {
	var v float64
	if isNull(raw) || json.Unmarshal(raw, &v) != nil {
		return nil
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parseBool(raw json.RawMessage) *bool {
	var b bool
	if isNull(raw) || json.Unmarshal(raw, &b) != nil {
		return nil
	}
	return &b
}

// isNull reports a missing field or an explicit null, which encoding/json
// would otherwise decode as the zero value.
func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}

// FormatValue renders a reading the shortest way that round-trips, so 30.0
// prints as "30" and 30.6 as "30.6".
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
