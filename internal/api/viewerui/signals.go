package viewerui

import (
	"encoding/json"

	"github.com/harmap/harmap/internal/mapview"
)

// Signals provides type-safe access to Datastar signal values.
// Datastar sends all signals as a flat JSON object in the request body.
// Signal names are lowercase due to data-bind behavior.
type Signals map[string]any

// ParseSignals parses Datastar signals from a raw request body.
func ParseSignals(body []byte) (Signals, error) {
	var signals Signals
	if err := json.Unmarshal(body, &signals); err != nil {
		return nil, err
	}
	return signals, nil
}

// String returns a string signal value, or empty string if not found.
func (s Signals) String(key string) string {
	if v, ok := s[key]; ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return ""
}

// Float returns a float64 signal value, or 0 if not found.
func (s Signals) Float(key string) float64 {
	if v, ok := s[key]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return 0
}

// Has returns true if the signal exists (even if empty/zero).
func (s Signals) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Camera extracts the page's mirrored camera from signals. Returns false
// when the page did not send a camera.
func (s Signals) Camera() (mapview.Camera, bool) {
	if !s.Has("lng") || !s.Has("lat") {
		return mapview.Camera{}, false
	}
	return mapview.Camera{
		Center:  [2]float64{s.Float("lng"), s.Float("lat")},
		Zoom:    s.Float("zoom"),
		Pitch:   s.Float("pitch"),
		Bearing: s.Float("bearing"),
	}, true
}

// SignalsInput is a reusable input struct for handlers that receive
// Datastar signals.
type SignalsInput struct {
	RawBody []byte
}

// Parse parses the signals from the raw body. An empty body yields an
// empty signal set rather than an error.
func (i *SignalsInput) Parse() Signals {
	if len(i.RawBody) == 0 {
		return Signals{}
	}
	signals, err := ParseSignals(i.RawBody)
	if err != nil {
		return Signals{}
	}
	return signals
}
