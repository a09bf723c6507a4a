package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmap/harmap/internal/mapview"
)

func TestPopupFragment(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)

	p := mapview.Popup{
		IP:         "93.184.216.34",
		Lat:        37.774929,
		Lon:        -122.419416,
		DisplayURL: "https://example.com/assets/app…",
		FullURL:    "https://example.com/assets/app.js?version=12345",
	}

	html, err := r.Render("popup", p)
	require.NoError(t, err)

	assert.Contains(t, html, "<strong>93.184.216.34</strong>")
	// Coordinates render latitude first, four decimals each.
	assert.Contains(t, html, "37.7749, -122.4194")
	assert.Contains(t, html, `href="https://example.com/assets/app.js?version=12345"`)
	assert.Contains(t, html, `title="https://example.com/assets/app.js?version=12345"`)
	assert.Contains(t, html, "app…</a>")
}

func TestStatusFragments(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)

	html, err := r.Render("status-count", map[string]any{"Count": 42})
	require.NoError(t, err)
	assert.Contains(t, html, "42 IP locations shown")
	assert.Contains(t, html, "status-success")

	html, err = r.Render("status-error", map[string]any{"Message": "geodata not found (HTTP 404)"})
	require.NoError(t, err)
	assert.Contains(t, html, "status-error")
	assert.Contains(t, html, "geodata not found")
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	override := `{{define "status-count"}}<b>{{.Count}} pins</b>{{end}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "status.html"), []byte(override), 0o644))

	r, err := New(dir)
	require.NoError(t, err)

	html, err := r.Render("status-count", map[string]any{"Count": 3})
	require.NoError(t, err)
	assert.Equal(t, "<b>3 pins</b>", html)

	// Fragments not overridden keep their embedded definition.
	html, err = r.Render("style-option", map[string]any{"Key": "dark", "Name": "Dark Matter", "Selected": true})
	require.NoError(t, err)
	assert.Contains(t, html, `value="dark"`)
	assert.Contains(t, html, "selected")
}
