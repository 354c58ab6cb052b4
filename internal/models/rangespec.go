package models

import (
	"fmt"
	"strconv"
	"strings"
)

// DistanceUnit identifies a supported range unit.
type DistanceUnit string

const (
	Kilometers    DistanceUnit = "km"
	Miles         DistanceUnit = "mi"
	NauticalMiles DistanceUnit = "nm"
	Meters        DistanceUnit = "m"
	Feet          DistanceUnit = "ft"
	Yards         DistanceUnit = "yd"
)

// Fixed conversion factors to kilometers.
var unitToKM = map[DistanceUnit]float64{
	Kilometers:    1.0,
	Miles:         1.60934,
	NauticalMiles: 1.852,
	Meters:        0.001,
	Feet:          0.0003048,
	Yards:         0.0009144,
}

// RangeSpec is a range value with its unit and an optional display label.
type RangeSpec struct {
	Value float64
	Unit  DistanceUnit
	Label string
}

// Validate rejects non-positive values and unknown units.
func (r RangeSpec) Validate() error {
	if r.Value <= 0 {
		return fmt.Errorf("%w: got %f", ErrNonPositiveRange, r.Value)
	}
	if _, ok := unitToKM[r.Unit]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownUnit, r.Unit)
	}
	return nil
}

// Kilometers converts the spec to kilometers. Conversion happens exactly
// once, before any geometry operation.
func (r RangeSpec) Kilometers() (float64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	return r.Value * unitToKM[r.Unit], nil
}

// FromKilometers converts a kilometer value into the given unit.
func FromKilometers(km float64, unit DistanceUnit) (float64, error) {
	factor, ok := unitToKM[unit]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
	return km / factor, nil
}

// ParseRangeSpec parses strings like "500km", "300 nm" or "1000" (unit
// defaults to kilometers).
func ParseRangeSpec(s string) (RangeSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RangeSpec{}, fmt.Errorf("empty range spec")
	}
	i := len(s)
	for i > 0 {
		c := s[i-1]
		if c >= '0' && c <= '9' || c == '.' {
			break
		}
		i--
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(s[:i]), 64)
	if err != nil {
		return RangeSpec{}, fmt.Errorf("invalid range value %q: %w", s, err)
	}
	unit := DistanceUnit(strings.TrimSpace(s[i:]))
	if unit == "" {
		unit = Kilometers
	}
	spec := RangeSpec{Value: value, Unit: unit}
	if err := spec.Validate(); err != nil {
		return RangeSpec{}, err
	}
	return spec, nil
}

// RangeClass is a missile range classification based on standard
// definitions.
type RangeClass string

const (
	ClassCRBM RangeClass = "CRBM" // Close-Range (< 300 km)
	ClassSRBM RangeClass = "SRBM" // Short-Range (300-1000 km)
	ClassMRBM RangeClass = "MRBM" // Medium-Range (1000-3000 km)
	ClassIRBM RangeClass = "IRBM" // Intermediate-Range (3000-5500 km)
	ClassICBM RangeClass = "ICBM" // Intercontinental (> 5500 km)
)

// ClassifyRange maps a range in kilometers to its classification.
func ClassifyRange(rangeKM float64) RangeClass {
	switch {
	case rangeKM < 300:
		return ClassCRBM
	case rangeKM < 1000:
		return ClassSRBM
	case rangeKM < 3000:
		return ClassMRBM
	case rangeKM < 5500:
		return ClassIRBM
	default:
		return ClassICBM
	}
}
