package mapview

import (
	"math"

	"github.com/harmap/harmap/internal/geodata"
)

// URLDisplayLimit is the maximum number of URL characters shown in a
// popup before truncation. The full URL is always kept as the link
// target and hover title.
const URLDisplayLimit = 50

// Popup is the content and anchor of one point popup.
type Popup struct {
	IP         string  `json:"ip"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	DisplayURL string  `json:"displayUrl"`
	FullURL    string  `json:"fullUrl"`
	// AnchorLon is the feature longitude shifted toward the clicked map
	// copy, so the popup renders next to the click near the antimeridian.
	AnchorLon float64 `json:"anchorLon"`
	AnchorLat float64 `json:"anchorLat"`
}

// BuildPopup assembles the popup for a feature clicked at clickLon.
func BuildPopup(f geodata.PointFeature, clickLon float64) Popup {
	return Popup{
		IP:         f.IP,
		Lat:        f.Lat,
		Lon:        f.Lon,
		DisplayURL: TruncateURL(f.URL),
		FullURL:    f.URL,
		AnchorLon:  AdjustLongitude(f.Lon, clickLon),
		AnchorLat:  f.Lat,
	}
}

// TruncateURL shortens u to URLDisplayLimit characters plus an ellipsis.
func TruncateURL(u string) string {
	runes := []rune(u)
	if len(runes) <= URLDisplayLimit {
		return u
	}
	return string(runes[:URLDisplayLimit]) + "…"
}

// AdjustLongitude shifts featureLon by ±360° toward clickLon when the
// two differ by more than 180°, preserving continuity across the
// antimeridian instead of wrapping the popup back to the far side.
func AdjustLongitude(featureLon, clickLon float64) float64 {
	if math.Abs(clickLon-featureLon) <= 180 {
		return featureLon
	}
	if clickLon > featureLon {
		return featureLon + 360
	}
	return featureLon - 360
}
