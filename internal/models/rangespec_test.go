package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRangeSpec(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected RangeSpec
		wantErr  bool
	}{
		{name: "kilometers", input: "500km", expected: RangeSpec{Value: 500, Unit: Kilometers}},
		{name: "default unit", input: "1000", expected: RangeSpec{Value: 1000, Unit: Kilometers}},
		{name: "nautical miles", input: "300nm", expected: RangeSpec{Value: 300, Unit: NauticalMiles}},
		{name: "miles with space", input: "250 mi", expected: RangeSpec{Value: 250, Unit: Miles}},
		{name: "decimal value", input: "1.5km", expected: RangeSpec{Value: 1.5, Unit: Kilometers}},
		{name: "meters", input: "800m", expected: RangeSpec{Value: 800, Unit: Meters}},
		{name: "empty", input: "", wantErr: true},
		{name: "unknown unit", input: "500furlongs", wantErr: true},
		{name: "negative value", input: "-5km", wantErr: true},
		{name: "zero value", input: "0km", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRangeSpec(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected.Value, got.Value)
			assert.Equal(t, tt.expected.Unit, got.Unit)
		})
	}
}

func TestRangeSpecKilometers(t *testing.T) {
	tests := []struct {
		name     string
		spec     RangeSpec
		expected float64
	}{
		{name: "km identity", spec: RangeSpec{Value: 500, Unit: Kilometers}, expected: 500},
		{name: "miles", spec: RangeSpec{Value: 100, Unit: Miles}, expected: 160.934},
		{name: "nautical miles", spec: RangeSpec{Value: 100, Unit: NauticalMiles}, expected: 185.2},
		{name: "meters", spec: RangeSpec{Value: 2500, Unit: Meters}, expected: 2.5},
		{name: "feet", spec: RangeSpec{Value: 10000, Unit: Feet}, expected: 3.048},
		{name: "yards", spec: RangeSpec{Value: 1000, Unit: Yards}, expected: 0.9144},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.spec.Kilometers()
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestRangeSpecKilometersInvalid(t *testing.T) {
	_, err := RangeSpec{Value: 0, Unit: Kilometers}.Kilometers()
	assert.ErrorIs(t, err, ErrNonPositiveRange)

	_, err = RangeSpec{Value: 10, Unit: "parsec"}.Kilometers()
	assert.ErrorIs(t, err, ErrUnknownUnit)
}

func TestFromKilometers(t *testing.T) {
	got, err := FromKilometers(185.2, NauticalMiles)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, got, 1e-9)

	_, err = FromKilometers(10, "cubit")
	assert.ErrorIs(t, err, ErrUnknownUnit)
}

func TestClassifyRange(t *testing.T) {
	tests := []struct {
		rangeKM  float64
		expected RangeClass
	}{
		{100, ClassCRBM},
		{299.9, ClassCRBM},
		{300, ClassSRBM},
		{999, ClassSRBM},
		{1000, ClassMRBM},
		{2999, ClassMRBM},
		{3000, ClassIRBM},
		{5499, ClassIRBM},
		{5500, ClassICBM},
		{15000, ClassICBM},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifyRange(tt.rangeKM), "range %.1f km", tt.rangeKM)
	}
}
