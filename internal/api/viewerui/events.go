package viewerui

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/harmap/harmap/internal/mapview"
	"github.com/harmap/harmap/internal/templates"
)

// EventHandler streams map lifecycle events to the page via SSE so a
// second browser tab (or a monitoring view) can follow load, error, and
// styledata transitions.
type EventHandler struct {
	bus      *mapview.Bus
	renderer *templates.Renderer
}

// NewEventHandler creates a new event handler.
func NewEventHandler(bus *mapview.Bus, renderer *templates.Renderer) *EventHandler {
	return &EventHandler{bus: bus, renderer: renderer}
}

func (h *EventHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/viewer/events", h.Events, huma.OperationTags("viewer"))
}

func (h *EventHandler) Events(ctx context.Context, input *EmptyInput) (*huma.StreamResponse, error) {
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			sse := NewSSE(humaCtx)
			ch := h.bus.Subscribe()
			defer h.bus.Unsubscribe(ch)

			for {
				select {
				case <-ctx.Done():
					return
				case ev := <-ch:
					if ev.Type == mapview.EventError {
						if html, err := h.renderer.Render("status-error", statusMessageData{Message: ev.Message}); err == nil {
							sse.Patch(html, "#status")
						}
					}
					sse.DispatchCustomEvent("harmap:event", ev)
				}
			}
		},
	}, nil
}
