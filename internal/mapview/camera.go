// Package mapview owns the map view state and the controller that ties
// the style registry, the data loader, and the layer renderer together
// for one page session.
package mapview

// Camera holds the map view parameters. The page mirrors its camera here
// on every interaction so style switches can restore the view.
type Camera struct {
	Center  [2]float64 `json:"center" doc:"Camera center as [longitude, latitude]"`
	Zoom    float64    `json:"zoom" doc:"Zoom level"`
	Pitch   float64    `json:"pitch" doc:"Pitch in degrees"`
	Bearing float64    `json:"bearing" doc:"Bearing in degrees"`
}

// Zoom bounds applied to programmatic zoom changes.
const (
	MinZoom = 0
	MaxZoom = 22
)

// ResetDurationMS is the animation length of the reset-view transition.
const ResetDurationMS = 2000

// DefaultCamera is the initial view: continental US at low zoom.
func DefaultCamera() Camera {
	return Camera{
		Center: [2]float64{-98.5795, 39.8283},
		Zoom:   3,
	}
}

// EaseTo describes an animated camera transition.
type EaseTo struct {
	Camera     Camera `json:"camera"`
	DurationMS int    `json:"durationMs" doc:"Animation duration in milliseconds"`
}

// Lon returns the camera center longitude.
func (c Camera) Lon() float64 { return c.Center[0] }

// Lat returns the camera center latitude.
func (c Camera) Lat() float64 { return c.Center[1] }

func clampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}
