package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeasurementDisplay(t *testing.T) {
	assert.Equal(t, Placeholder, UnsetMeasurement().Display())
	assert.Equal(t, "12.5", MeasurementOf(12.5).Display())
	// Zero is a recorded value, not absence.
	assert.Equal(t, "0", MeasurementOf(0).Display())
}

func TestMeasurementUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		set     bool
		value   float64
		wantErr bool
	}{
		{`12.5`, true, 12.5, false},
		{`"12.5"`, true, 12.5, false},
		{`" 10 "`, true, 10, false},
		{`0`, true, 0, false},
		{`null`, false, 0, false},
		{`""`, false, 0, false},
		{`"abc"`, false, 0, true},
	}
	for _, tt := range tests {
		var m Measurement
		err := json.Unmarshal([]byte(tt.in), &m)
		if tt.wantErr {
			assert.Error(t, err, "input %s", tt.in)
			continue
		}
		require.NoError(t, err, "input %s", tt.in)
		assert.Equal(t, tt.set, m.IsSet(), "input %s", tt.in)
		assert.Equal(t, tt.value, m.Float(), "input %s", tt.in)
	}
}

func TestMeasurementMarshal(t *testing.T) {
	out, err := json.Marshal(MeasurementOf(12.5))
	require.NoError(t, err)
	assert.Equal(t, "12.5", string(out))

	out, err = json.Marshal(UnsetMeasurement())
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestMeasurementRoundTripInStruct(t *testing.T) {
	var pt UTPoint
	require.NoError(t, json.Unmarshal([]byte(`{"point":"A","min_mm":"10","actual_mm":null}`), &pt))
	assert.True(t, pt.MinMM.IsSet())
	assert.False(t, pt.ActualMM.IsSet())
}
