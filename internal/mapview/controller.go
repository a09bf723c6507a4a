package mapview

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/harmap/harmap/internal/geodata"
	"github.com/harmap/harmap/internal/layers"
	"github.com/harmap/harmap/internal/style"
)

// Controller is the single owner of the session's map state: the loaded
// collection, the camera, the active style, and the current render plan.
// All UI glue goes through it, so no state is touched by more than one
// logical flow at a time.
type Controller struct {
	store    *geodata.Store
	loader   *geodata.Loader
	styles   *style.Registry
	renderer *layers.Renderer
	bus      *Bus
	log      zerolog.Logger

	mu            sync.Mutex
	camera        Camera
	styleKey      string
	savedCamera   *Camera
	plan          *layers.RenderPlan
	loadPublished bool
	lastError     string
	onLoaded      func(*geodata.Collection)
}

// NewController wires the controller to its collaborators and sets the
// default camera and style.
func NewController(store *geodata.Store, loader *geodata.Loader, styles *style.Registry, renderer *layers.Renderer, bus *Bus, log zerolog.Logger) *Controller {
	return &Controller{
		store:    store,
		loader:   loader,
		styles:   styles,
		renderer: renderer,
		bus:      bus,
		log:      log,
		camera:   DefaultCamera(),
		styleKey: style.DefaultKey,
	}
}

// Bus exposes the lifecycle event bus.
func (c *Controller) Bus() *Bus { return c.bus }

// SetOnLoaded installs a hook invoked after each successful collection
// replacement, before the render plan is built.
func (c *Controller) SetOnLoaded(fn func(*geodata.Collection)) {
	c.mu.Lock()
	c.onLoaded = fn
	c.mu.Unlock()
}

// Camera returns the current camera.
func (c *Controller) Camera() Camera {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.camera
}

// SetCamera mirrors a camera change made on the page.
func (c *Controller) SetCamera(cam Camera) {
	c.mu.Lock()
	c.camera = cam
	c.mu.Unlock()
}

// StyleKey returns the active style key.
func (c *Controller) StyleKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.styleKey
}

// ActiveStyle returns the active style entry.
func (c *Controller) ActiveStyle() style.Style {
	c.mu.Lock()
	key := c.styleKey
	c.mu.Unlock()
	s, _ := c.styles.Get(key)
	return s
}

// LastError returns the sticky error message, empty when none.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// HandleMapLoad runs the load sequence the page triggers once its map
// fired "load": fetch the collection, replace the store contents, and
// build the first render plan. The load event is published at most once,
// before any data-dependent event.
func (c *Controller) HandleMapLoad(ctx context.Context) (*layers.RenderPlan, error) {
	c.mu.Lock()
	if !c.loadPublished {
		c.loadPublished = true
		c.mu.Unlock()
		c.bus.Publish(Event{Type: EventLoad})
	} else {
		c.mu.Unlock()
	}

	coll, err := c.loader.Load(ctx)
	if err != nil {
		c.reportError(err)
		return nil, err
	}

	c.store.Replace(coll)
	c.log.Info().Int("count", coll.Count()).Str("generation", coll.Generation).Msg("feature collection loaded")

	c.mu.Lock()
	hook := c.onLoaded
	c.mu.Unlock()
	if hook != nil {
		hook(coll)
	}

	plan, err := c.Render()
	if err != nil {
		c.reportError(err)
		return nil, err
	}
	return plan, nil
}

// Render builds the render plan for the current collection. Idempotent
// and re-entrant: calling it again after a basemap swap replaces the
// plan with identical declarations, never duplicating layers.
func (c *Controller) Render() (*layers.RenderPlan, error) {
	coll, ok := c.store.Current()
	if !ok {
		return nil, layers.ErrNoCollection
	}

	plan, err := c.renderer.Render(coll)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.plan = plan
	c.lastError = ""
	c.mu.Unlock()
	return plan, nil
}

// Plan returns the current render plan, or false before the first
// successful render.
func (c *Controller) Plan() (*layers.RenderPlan, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plan, c.plan != nil
}

// SwitchStyle captures the current camera and activates the style for
// key. Unknown keys are a no-op, reported as such to the caller but not
// to the user.
func (c *Controller) SwitchStyle(key string) (style.Style, bool) {
	s, ok := c.styles.Get(key)
	if !ok {
		c.log.Debug().Str("key", key).Msg("unknown style key ignored")
		return style.Style{}, false
	}

	c.mu.Lock()
	saved := c.camera
	c.savedCamera = &saved
	c.styleKey = key
	c.mu.Unlock()

	c.log.Info().Str("style", key).Msg("style switch requested")
	return s, true
}

// HandleStyleData completes a style switch once the page reports the new
// style finished loading: it restores the camera captured by SwitchStyle
// and rebuilds the render plan if data was already loaded. The returned
// plan is nil when nothing has been loaded yet.
func (c *Controller) HandleStyleData() (Camera, *layers.RenderPlan) {
	c.mu.Lock()
	if c.savedCamera != nil {
		c.camera = *c.savedCamera
		c.savedCamera = nil
	}
	cam := c.camera
	key := c.styleKey
	c.mu.Unlock()

	c.bus.Publish(Event{Type: EventStyleData, StyleKey: key})

	plan, err := c.Render()
	if err != nil {
		// No data loaded yet: style switches before the first load
		// legitimately have nothing to re-render.
		return cam, nil
	}
	return cam, plan
}

// ZoomIn moves the camera one zoom level in.
func (c *Controller) ZoomIn() Camera {
	return c.zoomBy(1)
}

// ZoomOut moves the camera one zoom level out.
func (c *Controller) ZoomOut() Camera {
	return c.zoomBy(-1)
}

func (c *Controller) zoomBy(delta float64) Camera {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.camera.Zoom = clampZoom(c.camera.Zoom + delta)
	return c.camera
}

// ResetView returns the animated transition back to the default camera.
func (c *Controller) ResetView() EaseTo {
	c.mu.Lock()
	c.camera = DefaultCamera()
	cam := c.camera
	c.mu.Unlock()
	return EaseTo{Camera: cam, DurationMS: ResetDurationMS}
}

// PopupNear builds the popup for the loaded feature closest to
// (lon, lat), clicked at clickLon. Rendered feature coordinates are
// tile-quantized by the map library, so the lookup is nearest-match
// within a small tolerance rather than exact.
func (c *Controller) PopupNear(lon, lat, clickLon float64) (Popup, bool) {
	coll, ok := c.store.Current()
	if !ok {
		return Popup{}, false
	}

	const tolerance = 0.01 // degrees
	best := -1
	bestDist := tolerance * tolerance
	for i, f := range coll.Features {
		dx := f.Lon - lon
		dy := f.Lat - lat
		if d := dx*dx + dy*dy; d <= bestDist {
			best = i
			bestDist = d
		}
	}
	if best < 0 {
		return Popup{}, false
	}
	return BuildPopup(coll.Features[best], clickLon), true
}

// reportError records the sticky error message and publishes an error
// event. Errors never clear on their own; only a successful render does.
func (c *Controller) reportError(err error) {
	c.mu.Lock()
	c.lastError = err.Error()
	c.mu.Unlock()

	c.log.Error().Err(err).Msg("map data error")
	c.bus.Publish(Event{Type: EventError, Message: err.Error()})
}
