// Package geodata loads and holds the IP geolocation feature collection.
package geodata

// PointFeature is a single geolocated IP observation. Features are
// immutable once loaded; they are sourced verbatim from the input file.
type PointFeature struct {
	IP  string  `json:"ip" doc:"IP address resolved from the capture" example:"93.184.216.34"`
	URL string  `json:"url" doc:"Source page that resolved to this IP" example:"https://example.com/index.html"`
	Lon float64 `json:"lon" doc:"Longitude in degrees"`
	Lat float64 `json:"lat" doc:"Latitude in degrees"`
}

// Collection is one loaded generation of the feature collection. A new
// generation replaces the previous one wholesale; collections are never
// mutated in place.
type Collection struct {
	Generation string         `json:"generation" doc:"Opaque ID of this load generation"`
	Features   []PointFeature `json:"features" doc:"Loaded point features"`
}

// Count returns the number of features in the collection.
func (c *Collection) Count() int {
	if c == nil {
		return 0
	}
	return len(c.Features)
}

// Feature returns the feature at index i.
func (c *Collection) Feature(i int) (PointFeature, bool) {
	if c == nil || i < 0 || i >= len(c.Features) {
		return PointFeature{}, false
	}
	return c.Features[i], true
}
