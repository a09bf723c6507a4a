// Package style holds the basemap style registry: a static table mapping
// a style key to either a remote style-document URL or an inline raster
// style descriptor.
package style

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// RasterSource describes one raster tile source inside an inline style
// document.
type RasterSource struct {
	Type        string   `json:"type" yaml:"type"`
	Tiles       []string `json:"tiles" yaml:"tiles"`
	TileSize    int      `json:"tileSize" yaml:"tileSize"`
	Attribution string   `json:"attribution,omitempty" yaml:"attribution,omitempty"`
}

// DocumentLayer is one layer entry of an inline style document.
type DocumentLayer struct {
	ID      string  `json:"id" yaml:"id"`
	Type    string  `json:"type" yaml:"type"`
	Source  string  `json:"source" yaml:"source"`
	MinZoom float64 `json:"minzoom" yaml:"minzoom"`
	MaxZoom float64 `json:"maxzoom" yaml:"maxzoom"`
}

// Document is an inline raster style document with the fixed shape the
// map library expects.
type Document struct {
	Version int                     `json:"version" yaml:"version"`
	Sources map[string]RasterSource `json:"sources" yaml:"sources"`
	Layers  []DocumentLayer         `json:"layers" yaml:"layers"`
}

// Style is one registry entry. Exactly one of URL or Document is set: a
// URL is opaque and resolved by the map library, a Document is applied
// inline.
type Style struct {
	Key      string    `json:"key" doc:"Registry key" example:"voyager"`
	Name     string    `json:"name" doc:"Display name" example:"Voyager"`
	URL      string    `json:"url,omitempty" doc:"Remote style document URL"`
	Document *Document `json:"document,omitempty" doc:"Inline raster style document"`
}

// DefaultKey is the style active on first paint.
const DefaultKey = "voyager"

// Registry maps style keys to styles. Lookups of unknown keys return
// false; callers treat that as a no-op.
type Registry struct {
	styles map[string]Style
	order  []string
}

// NewRegistry returns a registry with the built-in basemaps.
func NewRegistry() *Registry {
	r := &Registry{styles: make(map[string]Style)}

	r.add(Style{
		Key:  "voyager",
		Name: "Voyager",
		URL:  "https://basemaps.cartocdn.com/gl/voyager-gl-style/style.json",
	})
	r.add(Style{
		Key:  "dark",
		Name: "Dark Matter",
		URL:  "https://basemaps.cartocdn.com/gl/dark-matter-gl-style/style.json",
	})
	r.add(Style{
		Key:  "osm",
		Name: "OpenStreetMap",
		Document: rasterDocument("osm-tiles", RasterSource{
			Type:        "raster",
			Tiles:       []string{"https://tile.openstreetmap.org/{z}/{x}/{y}.png"},
			TileSize:    256,
			Attribution: "&copy; OpenStreetMap contributors",
		}, 0, 19),
	})
	r.add(Style{
		Key:  "satellite",
		Name: "Satellite",
		Document: rasterDocument("esri-imagery", RasterSource{
			Type:        "raster",
			Tiles:       []string{"https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}"},
			TileSize:    256,
			Attribution: "Tiles &copy; Esri",
		}, 0, 18),
	})

	return r
}

func rasterDocument(sourceID string, src RasterSource, minZoom, maxZoom float64) *Document {
	return &Document{
		Version: 8,
		Sources: map[string]RasterSource{sourceID: src},
		Layers: []DocumentLayer{{
			ID:      sourceID + "-layer",
			Type:    "raster",
			Source:  sourceID,
			MinZoom: minZoom,
			MaxZoom: maxZoom,
		}},
	}
}

func (r *Registry) add(s Style) {
	if _, exists := r.styles[s.Key]; !exists {
		r.order = append(r.order, s.Key)
	}
	r.styles[s.Key] = s
}

// Get returns the style for key. Unknown keys return false.
func (r *Registry) Get(key string) (Style, bool) {
	s, ok := r.styles[key]
	return s, ok
}

// List returns all styles in registration order.
func (r *Registry) List() []Style {
	out := make([]Style, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.styles[key])
	}
	return out
}

// Keys returns all registered keys, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.styles))
	for k := range r.styles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// override is the YAML shape of one styles.yaml entry.
type override struct {
	Name        string   `yaml:"name"`
	URL         string   `yaml:"url"`
	Tiles       []string `yaml:"tiles"`
	TileSize    int      `yaml:"tileSize"`
	Attribution string   `yaml:"attribution"`
	MinZoom     float64  `yaml:"minzoom"`
	MaxZoom     float64  `yaml:"maxzoom"`
}

// LoadOverrides merges styles.yaml entries on top of the built-ins. A
// missing file is not an error; a malformed one is.
func (r *Registry) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var entries map[string]override
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	// Deterministic merge order.
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		o := entries[key]
		s := Style{Key: key, Name: o.Name}
		if s.Name == "" {
			s.Name = key
		}
		switch {
		case o.URL != "":
			s.URL = o.URL
		case len(o.Tiles) > 0:
			tileSize := o.TileSize
			if tileSize == 0 {
				tileSize = 256
			}
			maxZoom := o.MaxZoom
			if maxZoom == 0 {
				maxZoom = 19
			}
			s.Document = rasterDocument(key+"-tiles", RasterSource{
				Type:        "raster",
				Tiles:       o.Tiles,
				TileSize:    tileSize,
				Attribution: o.Attribution,
			}, o.MinZoom, maxZoom)
		default:
			return fmt.Errorf("style %q in %s needs either url or tiles", key, path)
		}
		r.add(s)
	}
	return nil
}
