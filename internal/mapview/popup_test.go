package mapview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harmap/harmap/internal/geodata"
)

func TestTruncateURL(t *testing.T) {
	short := "https://example.com/a.js"
	assert.Equal(t, short, TruncateURL(short))

	exact := strings.Repeat("x", URLDisplayLimit)
	assert.Equal(t, exact, TruncateURL(exact))

	long := "https://example.com/" + strings.Repeat("a", 60)
	got := TruncateURL(long)
	assert.Equal(t, URLDisplayLimit+1, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.Equal(t, long[:URLDisplayLimit], got[:len(got)-len("…")])
}

func TestTruncateURLMultibyte(t *testing.T) {
	long := strings.Repeat("ü", 70)
	got := TruncateURL(long)
	assert.Equal(t, URLDisplayLimit+1, len([]rune(got)))
}

func TestAdjustLongitude(t *testing.T) {
	// Click and feature on the same side: no shift.
	assert.Equal(t, 10.0, AdjustLongitude(10, 20))
	assert.Equal(t, 179.0, AdjustLongitude(179, 170))

	// Feature at 179 clicked on a map copy near -179: shift west.
	assert.Equal(t, -181.0, AdjustLongitude(179, -179))

	// Feature at -179 clicked near 179: shift east.
	assert.Equal(t, 181.0, AdjustLongitude(-179, 179))

	// Exactly 180 apart stays put.
	assert.Equal(t, 0.0, AdjustLongitude(0, 180))
}

func TestBuildPopup(t *testing.T) {
	f := geodata.PointFeature{
		IP:  "93.184.216.34",
		URL: "https://example.com/" + strings.Repeat("p", 60),
		Lon: 179,
		Lat: -16.5,
	}

	p := BuildPopup(f, -179)

	assert.Equal(t, "93.184.216.34", p.IP)
	assert.Equal(t, -16.5, p.Lat)
	assert.Equal(t, 179.0, p.Lon)
	assert.Equal(t, f.URL, p.FullURL)
	assert.True(t, strings.HasSuffix(p.DisplayURL, "…"))
	assert.Equal(t, -181.0, p.AnchorLon)
	assert.Equal(t, -16.5, p.AnchorLat)
}
