package models

import (
	"fmt"
	"strings"
)

// Resolution controls how finely ring geometry is sampled.
type Resolution int

const (
	ResolutionLow Resolution = iota
	ResolutionNormal
	ResolutionHigh
)

// ParseResolution accepts "low", "normal" or "high" (case-insensitive).
func ParseResolution(s string) (Resolution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return ResolutionLow, nil
	case "normal", "":
		return ResolutionNormal, nil
	case "high":
		return ResolutionHigh, nil
	default:
		return ResolutionNormal, fmt.Errorf("resolution must be 'low', 'normal', or 'high', got %q", s)
	}
}

func (r Resolution) String() string {
	switch r {
	case ResolutionLow:
		return "low"
	case ResolutionHigh:
		return "high"
	default:
		return "normal"
	}
}

// CirclePoints is the azimuth sample count for geodesic circles.
func (r Resolution) CirclePoints() int {
	switch r {
	case ResolutionLow:
		return 72
	case ResolutionHigh:
		return 360
	default:
		return 180
	}
}

// BufferSegments is the arc segment count used when rounding buffer
// corners in planar space.
func (r Resolution) BufferSegments() int {
	switch r {
	case ResolutionLow:
		return 8
	case ResolutionHigh:
		return 32
	default:
		return 16
	}
}

// BoundarySamples is the base boundary sample budget for polygon
// buffering before the range-adaptive multiplier is applied.
func (r Resolution) BoundarySamples() int {
	switch r {
	case ResolutionLow:
		return 100
	case ResolutionHigh:
		return 400
	default:
		return 200
	}
}

// AntipodalHolePoints is the sample count for the antipodal exclusion
// circle used by hemispheric buffers. Larger than CirclePoints because
// the hole circle spans a large share of the globe.
func (r Resolution) AntipodalHolePoints() int {
	switch r {
	case ResolutionLow:
		return 240
	case ResolutionHigh:
		return 960
	default:
		return 480
	}
}
