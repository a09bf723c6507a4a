// Package layers builds the clustered source and presentation layer
// specifications for the point overlay. The specs are declarative JSON
// consumed by the map page; building them again for the same collection
// generation yields an identical plan, so re-rendering after a basemap
// swap replaces rather than duplicates.
package layers

import (
	"errors"

	"github.com/harmap/harmap/internal/geodata"
)

// Fixed identifiers for the overlay source and its three layers.
const (
	SourceID       = "ip-points"
	ClusterLayerID = "clusters"
	CountLayerID   = "cluster-count"
	PointLayerID   = "unclustered-point"
)

// Clustering parameters applied to the GeoJSON source.
const (
	ClusterMaxZoom = 14
	ClusterRadius  = 50
)

// Cluster circle buckets. Thresholds are inclusive lower bounds: a count
// of 9 falls in the first bucket, 10 in the second, 30 in the third.
var (
	bucketThresholds = []int{10, 30}
	bucketRadii      = []float64{20, 30, 40}
	bucketColors     = []string{"#51bbd6", "#f1f075", "#f28cb1"}
)

// ErrNoCollection is returned when render is requested before any data
// has been loaded.
var ErrNoCollection = errors.New("no feature collection loaded")

// ClusterCircleRadius returns the circle radius bucket for a cluster of
// count points.
func ClusterCircleRadius(count int) float64 {
	return bucketRadii[bucketIndex(count)]
}

// ClusterCircleColor returns the circle color bucket for a cluster of
// count points.
func ClusterCircleColor(count int) string {
	return bucketColors[bucketIndex(count)]
}

func bucketIndex(count int) int {
	idx := 0
	for i, threshold := range bucketThresholds {
		if count >= threshold {
			idx = i + 1
		}
	}
	return idx
}

// SourceSpec declares the clustered GeoJSON source.
type SourceSpec struct {
	ID             string `json:"id" doc:"Source identifier"`
	Type           string `json:"type" doc:"Source type" example:"geojson"`
	Data           string `json:"data" doc:"URL of the GeoJSON document"`
	Cluster        bool   `json:"cluster" doc:"Whether the source clusters points"`
	ClusterMaxZoom int    `json:"clusterMaxZoom" doc:"Maximum zoom at which points cluster"`
	ClusterRadius  int    `json:"clusterRadius" doc:"Cluster radius in pixels"`
}

// LayerSpec declares one presentation layer over the source.
type LayerSpec struct {
	ID     string         `json:"id" doc:"Layer identifier"`
	Type   string         `json:"type" doc:"Layer type" example:"circle"`
	Source string         `json:"source" doc:"Source identifier"`
	Filter []any          `json:"filter,omitempty" doc:"Feature filter expression"`
	Paint  map[string]any `json:"paint,omitempty" doc:"Paint properties"`
	Layout map[string]any `json:"layout,omitempty" doc:"Layout properties"`
}

// RenderPlan is the complete overlay declaration for one collection
// generation: the source plus exactly three layers.
type RenderPlan struct {
	Generation string      `json:"generation" doc:"Collection generation this plan renders"`
	Count      int         `json:"count" doc:"Number of features in the collection"`
	Source     SourceSpec  `json:"source"`
	Layers     []LayerSpec `json:"layers"`
}

// LayerIDs returns the identifiers of the declared layers in paint order.
func (p *RenderPlan) LayerIDs() []string {
	ids := make([]string, len(p.Layers))
	for i, l := range p.Layers {
		ids[i] = l.ID
	}
	return ids
}

// Renderer builds render plans against the current collection.
type Renderer struct {
	// DataURL is where the page fetches the GeoJSON document from.
	DataURL string
}

// NewRenderer returns a renderer pointing the source at dataURL.
func NewRenderer(dataURL string) *Renderer {
	return &Renderer{DataURL: dataURL}
}

// Render builds the full plan for the given collection. It is idempotent
// and re-entrant: the plan depends only on the collection generation, so
// a repeat call after a style change produces the same declarations.
func (r *Renderer) Render(coll *geodata.Collection) (*RenderPlan, error) {
	if coll == nil || coll.Count() == 0 {
		return nil, ErrNoCollection
	}

	return &RenderPlan{
		Generation: coll.Generation,
		Count:      coll.Count(),
		Source: SourceSpec{
			ID:             SourceID,
			Type:           "geojson",
			Data:           r.DataURL,
			Cluster:        true,
			ClusterMaxZoom: ClusterMaxZoom,
			ClusterRadius:  ClusterRadius,
		},
		Layers: []LayerSpec{
			clusterLayer(),
			countLayer(),
			pointLayer(),
		},
	}, nil
}

// clusterLayer steps circle radius and color by point count.
func clusterLayer() LayerSpec {
	return LayerSpec{
		ID:     ClusterLayerID,
		Type:   "circle",
		Source: SourceID,
		Filter: []any{"has", "point_count"},
		Paint: map[string]any{
			"circle-color": []any{
				"step", []any{"get", "point_count"},
				bucketColors[0], bucketThresholds[0],
				bucketColors[1], bucketThresholds[1],
				bucketColors[2],
			},
			"circle-radius": []any{
				"step", []any{"get", "point_count"},
				bucketRadii[0], bucketThresholds[0],
				bucketRadii[1], bucketThresholds[1],
				bucketRadii[2],
			},
		},
	}
}

// countLayer shows the abbreviated point count as white text.
func countLayer() LayerSpec {
	return LayerSpec{
		ID:     CountLayerID,
		Type:   "symbol",
		Source: SourceID,
		Filter: []any{"has", "point_count"},
		Layout: map[string]any{
			"text-field": []any{"get", "point_count_abbreviated"},
			"text-font":  []any{"Open Sans Semibold"},
			"text-size":  12,
		},
		Paint: map[string]any{
			"text-color": "#ffffff",
		},
	}
}

// pointLayer renders singleton features.
func pointLayer() LayerSpec {
	return LayerSpec{
		ID:     PointLayerID,
		Type:   "circle",
		Source: SourceID,
		Filter: []any{"!", []any{"has", "point_count"}},
		Paint: map[string]any{
			"circle-color":        "#11b4da",
			"circle-radius":       8,
			"circle-stroke-width": 2,
			"circle-stroke-color": "#ffffff",
		},
	}
}
