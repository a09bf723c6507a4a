package mapview

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmap/harmap/internal/geodata"
	"github.com/harmap/harmap/internal/layers"
	"github.com/harmap/harmap/internal/style"
)

const testDoc = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [179.0, -16.5]},
      "properties": {"ip": "10.0.0.1", "url": "https://a.example/x.js"}
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [-73.9857, 40.7484]},
      "properties": {"ip": "10.0.0.2", "url": "https://b.example/y.js"}
    }
  ]
}`

func newTestController(t *testing.T) (*Controller, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "points.geojson")
	require.NoError(t, os.WriteFile(path, []byte(testDoc), 0o644))

	c := NewController(
		geodata.NewStore(),
		geodata.NewFileLoader(path),
		style.NewRegistry(),
		layers.NewRenderer("/data/points.geojson"),
		NewBus(),
		zerolog.Nop(),
	)
	return c, path
}

func TestHandleMapLoad(t *testing.T) {
	c, _ := newTestController(t)
	events := c.Bus().Subscribe()
	defer c.Bus().Unsubscribe(events)

	plan, err := c.HandleMapLoad(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, plan.Count)
	assert.Empty(t, c.LastError())

	// The load event fires before anything data-dependent.
	e := <-events
	assert.Equal(t, EventLoad, e.Type)
}

func TestLoadEventFiresOnce(t *testing.T) {
	c, _ := newTestController(t)
	events := c.Bus().Subscribe()
	defer c.Bus().Unsubscribe(events)

	_, err := c.HandleMapLoad(context.Background())
	require.NoError(t, err)
	_, err = c.HandleMapLoad(context.Background())
	require.NoError(t, err)

	e := <-events
	assert.Equal(t, EventLoad, e.Type)
	select {
	case e := <-events:
		t.Fatalf("unexpected second event %q", e.Type)
	default:
	}
}

func TestLoadErrorIsSticky(t *testing.T) {
	c, path := newTestController(t)
	require.NoError(t, os.Remove(path))

	events := c.Bus().Subscribe()
	defer c.Bus().Unsubscribe(events)

	_, err := c.HandleMapLoad(context.Background())
	require.Error(t, err)
	assert.Contains(t, c.LastError(), "geodata not found (HTTP 404)")

	<-events // load
	e := <-events
	assert.Equal(t, EventError, e.Type)
	assert.Contains(t, e.Message, "HTTP 404")

	// The message stays until a successful render replaces it.
	assert.NotEmpty(t, c.LastError())

	require.NoError(t, os.WriteFile(path, []byte(testDoc), 0o644))
	_, err = c.HandleMapLoad(context.Background())
	require.NoError(t, err)
	assert.Empty(t, c.LastError())
}

func TestRenderIdempotent(t *testing.T) {
	c, _ := newTestController(t)

	_, err := c.HandleMapLoad(context.Background())
	require.NoError(t, err)

	first, err := c.Render()
	require.NoError(t, err)
	second, err := c.Render()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first.LayerIDs(), second.LayerIDs())
}

func TestStyleSwitchPreservesCamera(t *testing.T) {
	c, _ := newTestController(t)

	_, err := c.HandleMapLoad(context.Background())
	require.NoError(t, err)

	moved := Camera{Center: [2]float64{2.3522, 48.8566}, Zoom: 11.5, Bearing: 30}
	c.SetCamera(moved)

	s, ok := c.SwitchStyle("dark")
	require.True(t, ok)
	assert.Equal(t, "dark", s.Key)
	assert.Equal(t, "dark", c.StyleKey())

	cam, plan := c.HandleStyleData()
	assert.Equal(t, moved, cam)
	require.NotNil(t, plan)
	assert.Equal(t, 2, plan.Count)
}

func TestStyleSwitchBeforeLoad(t *testing.T) {
	c, _ := newTestController(t)

	_, ok := c.SwitchStyle("osm")
	require.True(t, ok)

	cam, plan := c.HandleStyleData()
	assert.Equal(t, DefaultCamera(), cam)
	assert.Nil(t, plan)
}

func TestUnknownStyleKeyIsNoOp(t *testing.T) {
	c, _ := newTestController(t)

	_, ok := c.SwitchStyle("watercolor")
	assert.False(t, ok)
	assert.Equal(t, style.DefaultKey, c.StyleKey())
	assert.Empty(t, c.LastError())
}

func TestZoomClamping(t *testing.T) {
	c, _ := newTestController(t)

	c.SetCamera(Camera{Center: DefaultCamera().Center, Zoom: MaxZoom - 0.5})
	assert.Equal(t, float64(MaxZoom), c.ZoomIn().Zoom)
	assert.Equal(t, float64(MaxZoom), c.ZoomIn().Zoom)

	c.SetCamera(Camera{Center: DefaultCamera().Center, Zoom: MinZoom + 0.5})
	assert.Equal(t, float64(MinZoom), c.ZoomOut().Zoom)
	assert.Equal(t, float64(MinZoom), c.ZoomOut().Zoom)
}

func TestResetView(t *testing.T) {
	c, _ := newTestController(t)
	c.SetCamera(Camera{Center: [2]float64{139.6917, 35.6895}, Zoom: 14, Pitch: 45})

	ease := c.ResetView()
	assert.Equal(t, DefaultCamera(), ease.Camera)
	assert.Equal(t, ResetDurationMS, ease.DurationMS)
	assert.Equal(t, DefaultCamera(), c.Camera())
}

func TestPopupNear(t *testing.T) {
	c, _ := newTestController(t)

	_, ok := c.PopupNear(179, -16.5, 179)
	assert.False(t, ok, "no popup before load")

	_, err := c.HandleMapLoad(context.Background())
	require.NoError(t, err)

	// Rendered coordinates are tile-quantized, so a slightly-off lookup
	// still resolves to the nearest feature.
	p, ok := c.PopupNear(179.0004, -16.4996, -179)
	require.True(t, ok)
	assert.Equal(t, "10.0.0.1", p.IP)
	assert.Equal(t, -181.0, p.AnchorLon)

	_, ok = c.PopupNear(50, 50, 50)
	assert.False(t, ok)
}
