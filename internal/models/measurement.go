package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Placeholder rendered wherever a value is unset.
const Placeholder = "—"

// Measurement is a numeric field that distinguishes "no value recorded" from
// zero. Input sources juggle strings, numbers and nulls for thickness fields;
// everything is normalized into this type at the parsing boundary.
type Measurement struct {
	set   bool
	value float64
}

// MeasurementOf returns a set measurement.
func MeasurementOf(v float64) Measurement {
	return Measurement{set: true, value: v}
}

// UnsetMeasurement returns the zero, unset measurement.
func UnsetMeasurement() Measurement {
	return Measurement{}
}

// IsSet reports whether a value was recorded.
func (m Measurement) IsSet() bool {
	return m.set
}

// Float returns the recorded value, or 0 when unset.
func (m Measurement) Float() float64 {
	return m.value
}

// Display returns the value formatted for a document cell. Unset values
// render as an em-dash, never as zero.
func (m Measurement) Display() string {
	if !m.set {
		return Placeholder
	}
	return strconv.FormatFloat(m.value, 'f', -1, 64)
}

// MarshalJSON emits the number, or null when unset.
func (m Measurement) MarshalJSON() ([]byte, error) {
	if !m.set {
		return []byte("null"), nil
	}
	return json.Marshal(m.value)
}

// UnmarshalJSON accepts a number, a numeric string, an empty string or null.
func (m *Measurement) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = Measurement{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*m = Measurement{}
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*m = Measurement{set: true, value: v}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Measurement{set: true, value: v}
	return nil
}
