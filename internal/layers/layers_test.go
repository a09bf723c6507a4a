package layers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmap/harmap/internal/geodata"
)

func testCollection(n int) *geodata.Collection {
	coll := &geodata.Collection{Generation: "gen-1"}
	for i := 0; i < n; i++ {
		coll.Features = append(coll.Features, geodata.PointFeature{
			IP:  "10.0.0.1",
			URL: "https://example.com",
			Lon: float64(i),
			Lat: float64(i),
		})
	}
	return coll
}

func TestClusterBuckets(t *testing.T) {
	cases := []struct {
		count  int
		radius float64
		color  string
	}{
		{1, 20, "#51bbd6"},
		{9, 20, "#51bbd6"},
		{10, 30, "#f1f075"}, // thresholds are inclusive lower bounds
		{29, 30, "#f1f075"},
		{30, 40, "#f28cb1"},
		{500, 40, "#f28cb1"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.radius, ClusterCircleRadius(tc.count), "radius for count %d", tc.count)
		assert.Equal(t, tc.color, ClusterCircleColor(tc.count), "color for count %d", tc.count)
	}
}

func TestRenderPlan(t *testing.T) {
	r := NewRenderer("/data/points.geojson")

	plan, err := r.Render(testCollection(3))
	require.NoError(t, err)

	assert.Equal(t, "gen-1", plan.Generation)
	assert.Equal(t, 3, plan.Count)

	assert.Equal(t, SourceID, plan.Source.ID)
	assert.Equal(t, "geojson", plan.Source.Type)
	assert.Equal(t, "/data/points.geojson", plan.Source.Data)
	assert.True(t, plan.Source.Cluster)
	assert.Equal(t, ClusterMaxZoom, plan.Source.ClusterMaxZoom)
	assert.Equal(t, ClusterRadius, plan.Source.ClusterRadius)

	assert.Equal(t, []string{ClusterLayerID, CountLayerID, PointLayerID}, plan.LayerIDs())
}

func TestRenderIdempotent(t *testing.T) {
	r := NewRenderer("/data/points.geojson")
	coll := testCollection(5)

	first, err := r.Render(coll)
	require.NoError(t, err)
	second, err := r.Render(coll)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRenderNoCollection(t *testing.T) {
	r := NewRenderer("/data/points.geojson")

	_, err := r.Render(nil)
	assert.ErrorIs(t, err, ErrNoCollection)

	_, err = r.Render(&geodata.Collection{Generation: "gen-2"})
	assert.ErrorIs(t, err, ErrNoCollection)
}

func TestClusterLayerStepExpressions(t *testing.T) {
	plan, err := NewRenderer("/data/points.geojson").Render(testCollection(1))
	require.NoError(t, err)

	cluster := plan.Layers[0]
	assert.Equal(t, []any{"has", "point_count"}, cluster.Filter)

	color, ok := cluster.Paint["circle-color"].([]any)
	require.True(t, ok)
	assert.Equal(t, "step", color[0])
	assert.Equal(t, "#51bbd6", color[2])
	assert.Equal(t, 10, color[3])
	assert.Equal(t, "#f1f075", color[4])
	assert.Equal(t, 30, color[5])
	assert.Equal(t, "#f28cb1", color[6])

	point := plan.Layers[2]
	assert.Equal(t, []any{"!", []any{"has", "point_count"}}, point.Filter)
	assert.Equal(t, "#11b4da", point.Paint["circle-color"])
}
