// Package projector maps geographic positions onto the tactical view.
//
// Projection is a pure function of (position, frame, zoom). Results are
// unbounded; clipping to the visible area is the renderer's concern.
package projector

import (
	"math"

	"github.com/kavach/kavach/internal/types"
)

// Frame is the fixed reference the map is drawn against
type Frame struct {
	OriginLat float64 `yaml:"origin_lat" validate:"gte=-90,lte=90"`
	OriginLng float64 `yaml:"origin_lng" validate:"gte=-180,lte=180"`
	// BaseScale is the screen units per degree at 100% zoom
	BaseScale float64 `yaml:"base_scale" validate:"gt=0"`
}

// DefaultFrame is anchored at 25.5N 74.5E. At 50% zoom it yields 200 units
// per degree, the layout of the northern border sector grid.
func DefaultFrame() Frame {
	return Frame{OriginLat: 25.5, OriginLng: 74.5, BaseScale: 400}
}

// Point is a projected screen position in frame units
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Scale returns the units per degree for zoomPercent. The zoom must already be
// clamped into [MinZoom, MaxZoom]; this function never clamps.
func Scale(f Frame, zoomPercent int) (float64, error) {
	if zoomPercent < types.MinZoom || zoomPercent > types.MaxZoom {
		return 0, types.OutOfRange("zoom %d%% outside [%d, %d]", zoomPercent, types.MinZoom, types.MaxZoom)
	}
	if !(f.BaseScale > 0) || math.IsInf(f.BaseScale, 0) {
		return 0, types.OutOfRange("frame base scale %v must be positive and finite", f.BaseScale)
	}
	return float64(f.BaseScale*float64(zoomPercent)) / 100, nil
}

// Project converts pos to screen space. Higher zoom spreads points further
// apart from the origin and from each other.
func Project(pos types.Position, f Frame, zoomPercent int) (Point, error) {
	scale, err := Scale(f, zoomPercent)
	if err != nil {
		return Point{}, err
	}
	for _, v := range [...]float64{pos.Latitude, pos.Longitude, f.OriginLat, f.OriginLng} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Point{}, types.OutOfRange("non-finite coordinate %v", v)
		}
	}
	// explicit float64 conversions force rounding of each product so no
	// fused multiply-add changes the result between builds
	return Point{
		X: float64(float64(pos.Longitude-f.OriginLng) * scale),
		Y: float64(float64(f.OriginLat-pos.Latitude) * scale),
	}, nil
}

// Distance is the Euclidean distance between two projected points
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
