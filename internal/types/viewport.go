package types

// Zoom bounds, in percent
const (
	MinZoom = 10
	MaxZoom = 100
)

// Viewport is the per-session view state. It is never persisted.
type Viewport struct {
	ZoomPercent int         `json:"zoom_percent"`
	Layer       Layer       `json:"layer"`
	AlertFilter AlertFilter `json:"alert_filter"`
}

// ClampZoom pins a requested zoom into [MinZoom, MaxZoom]
func ClampZoom(percent int) int {
	if percent < MinZoom {
		return MinZoom
	}
	if percent > MaxZoom {
		return MaxZoom
	}
	return percent
}
