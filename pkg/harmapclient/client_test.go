package harmapclient_test

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/harmap/harmap/internal/server"
	"github.com/harmap/harmap/pkg/harmapclient"
)

const fixture = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [-122.4194, 37.7749]},
      "properties": {"ip": "93.184.216.34", "url": "https://example.com/assets/app.js"}
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [2.3522, 48.8566]},
      "properties": {"ip": "151.101.1.69", "url": "https://cdn.example.net/fonts/inter.woff2"}
    }
  ]
}`

func newTestServer(t *testing.T) (*httptest.Server, *server.Server) {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "points.geojson"), []byte(fixture), 0o644); err != nil {
		t.Fatal(err)
	}

	srv := server.New(server.Config{
		Host:    "127.0.0.1",
		Port:    "0",
		DataDir: dir,
		NoDB:    true,
	})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts, srv
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	_, body, err := harmapclient.New(ts.URL).Health(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" {
		t.Fatalf("status=%q, want ok", body.Status)
	}
}

func TestGetInfo(t *testing.T) {
	ts, _ := newTestServer(t)

	_, body, err := harmapclient.New(ts.URL).GetInfo(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if body.Name != "harmap" {
		t.Fatalf("name=%q, want harmap", body.Name)
	}
}

func TestListStyles(t *testing.T) {
	ts, _ := newTestServer(t)
	c := harmapclient.New(ts.URL)
	ctx := context.Background()

	_, body, err := c.ListStyles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if body.Default != "voyager" {
		t.Fatalf("default=%q, want voyager", body.Default)
	}
	if len(body.Styles) < 2 {
		t.Fatalf("styles=%d, want at least 2", len(body.Styles))
	}

	_, s, err := c.GetStyle(ctx, "dark")
	if err != nil {
		t.Fatal(err)
	}
	if s.URL == "" {
		t.Fatal("dark style has no URL")
	}

	_, _, err = c.GetStyle(ctx, "nope")
	apiErr, ok := err.(*harmapclient.APIError)
	if !ok {
		t.Fatalf("err=%v, want APIError", err)
	}
	if apiErr.StatusCode != 404 {
		t.Fatalf("status=%d, want 404", apiErr.StatusCode)
	}
}

func TestStatusAndLayers(t *testing.T) {
	ts, srv := newTestServer(t)
	c := harmapclient.New(ts.URL)
	ctx := context.Background()

	_, status, err := c.GetStatus(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if status.Loaded {
		t.Fatal("loaded before any map load")
	}

	if _, _, err := c.GetLayers(ctx); err == nil {
		t.Fatal("layers before load should 404")
	}

	if _, err := srv.Controller().HandleMapLoad(ctx); err != nil {
		t.Fatal(err)
	}

	_, status, err = c.GetStatus(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !status.Loaded || status.Count != 2 {
		t.Fatalf("loaded=%v count=%d, want loaded with 2 features", status.Loaded, status.Count)
	}

	_, plan, err := c.GetLayers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Source.ID != "ip-points" || !plan.Source.Cluster {
		t.Fatalf("source=%+v, want clustered ip-points", plan.Source)
	}
	if len(plan.Layers) != 3 {
		t.Fatalf("layers=%d, want 3", len(plan.Layers))
	}
}

func TestCameraRoundTrip(t *testing.T) {
	ts, _ := newTestServer(t)
	c := harmapclient.New(ts.URL)
	ctx := context.Background()

	want := harmapclient.CameraBody{Center: [2]float64{2.3522, 48.8566}, Zoom: 11}
	_, _, err := c.SetCamera(ctx, want)
	if err != nil {
		t.Fatal(err)
	}

	_, got, err := c.GetCamera(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Center != want.Center || got.Zoom != want.Zoom {
		t.Fatalf("camera=%+v, want %+v", got, want)
	}
}

func TestGetPopup(t *testing.T) {
	ts, srv := newTestServer(t)
	c := harmapclient.New(ts.URL)
	ctx := context.Background()

	if _, err := srv.Controller().HandleMapLoad(ctx); err != nil {
		t.Fatal(err)
	}

	_, popup, err := c.GetPopup(ctx, -122.4194, 37.7749, -122.42)
	if err != nil {
		t.Fatal(err)
	}
	if popup.IP != "93.184.216.34" {
		t.Fatalf("ip=%q, want 93.184.216.34", popup.IP)
	}
	if popup.HTML == "" {
		t.Fatal("popup HTML missing")
	}

	_, _, err = c.GetPopup(ctx, 0, 0, 0)
	if err == nil {
		t.Fatal("popup far from any feature should 404")
	}
}
