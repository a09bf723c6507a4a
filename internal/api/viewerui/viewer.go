package viewerui

import (
	"bytes"
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/harmap/harmap/internal/mapview"
	"github.com/harmap/harmap/internal/style"
	"github.com/harmap/harmap/internal/templates"
)

// ViewerHandler drives the map page over SSE.
type ViewerHandler struct {
	controller *mapview.Controller
	styles     *style.Registry
	renderer   *templates.Renderer
}

// NewViewerHandler creates the SSE handler for the viewer page.
func NewViewerHandler(controller *mapview.Controller, styles *style.Registry, renderer *templates.Renderer) *ViewerHandler {
	return &ViewerHandler{controller: controller, styles: styles, renderer: renderer}
}

func (h *ViewerHandler) RegisterRoutes(api huma.API) {
	huma.Post(api, "/api/v1/viewer/load", h.Load, huma.OperationTags("viewer"))
	huma.Post(api, "/api/v1/viewer/style", h.SwitchStyle, huma.OperationTags("viewer"))
	huma.Post(api, "/api/v1/viewer/styledata", h.StyleData, huma.OperationTags("viewer"))
	huma.Post(api, "/api/v1/viewer/zoom-in", h.ZoomIn, huma.OperationTags("viewer"))
	huma.Post(api, "/api/v1/viewer/zoom-out", h.ZoomOut, huma.OperationTags("viewer"))
	huma.Post(api, "/api/v1/viewer/reset", h.Reset, huma.OperationTags("viewer"))
	huma.Get(api, "/api/v1/viewer/styles/options", h.StyleOptions, huma.OperationTags("viewer"))
}

type statusCountData struct {
	Count int
}

type statusMessageData struct {
	Message string
}

// Load runs the data load sequence the page triggers after its map
// fired "load". Success updates the status line with the feature count
// and hands the render plan to the page; failure leaves a sticky error
// banner and the basemap untouched.
func (h *ViewerHandler) Load(ctx context.Context, input *SignalsInput) (*huma.StreamResponse, error) {
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			sse := NewSSE(humaCtx)

			if cam, ok := input.Parse().Camera(); ok {
				h.controller.SetCamera(cam)
			}

			h.patchStatus(sse, "status-info", statusMessageData{Message: "Loading IP locations…"})

			plan, err := h.controller.HandleMapLoad(ctx)
			if err != nil {
				h.patchStatus(sse, "status-error", statusMessageData{Message: err.Error()})
				sse.Error(err.Error())
				return
			}

			h.patchStatus(sse, "status-count", statusCountData{Count: plan.Count})
			sse.Signals(map[string]any{
				"count":      plan.Count,
				"generation": plan.Generation,
				"error":      "",
			})
			sse.DispatchCustomEvent("harmap:render", plan)
		},
	}, nil
}

// SwitchStyle captures the page camera and activates the requested
// style. Unknown style keys are a silent no-op.
func (h *ViewerHandler) SwitchStyle(ctx context.Context, input *SignalsInput) (*huma.StreamResponse, error) {
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			sse := NewSSE(humaCtx)
			signals := input.Parse()

			if cam, ok := signals.Camera(); ok {
				h.controller.SetCamera(cam)
			}

			key := signals.String("stylekey")
			s, ok := h.controller.SwitchStyle(key)
			if !ok {
				return
			}

			sse.Signals(map[string]any{"stylekey": s.Key})
			sse.DispatchCustomEvent("harmap:style", s)
		},
	}, nil
}

// StyleData completes a style switch once the page reports styledata:
// the captured camera is restored and, when data was already loaded,
// the render plan is re-issued so the overlay survives the basemap swap.
func (h *ViewerHandler) StyleData(ctx context.Context, input *EmptyInput) (*huma.StreamResponse, error) {
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			sse := NewSSE(humaCtx)

			cam, plan := h.controller.HandleStyleData()
			detail := map[string]any{"camera": cam}
			if plan != nil {
				detail["plan"] = plan
			}
			sse.DispatchCustomEvent("harmap:restore", detail)
		},
	}, nil
}

// ZoomIn nudges the camera one zoom level in.
func (h *ViewerHandler) ZoomIn(ctx context.Context, input *EmptyInput) (*huma.StreamResponse, error) {
	return h.easeResponse(func() mapview.EaseTo {
		return mapview.EaseTo{Camera: h.controller.ZoomIn()}
	}), nil
}

// ZoomOut nudges the camera one zoom level out.
func (h *ViewerHandler) ZoomOut(ctx context.Context, input *EmptyInput) (*huma.StreamResponse, error) {
	return h.easeResponse(func() mapview.EaseTo {
		return mapview.EaseTo{Camera: h.controller.ZoomOut()}
	}), nil
}

// Reset animates back to the default camera.
func (h *ViewerHandler) Reset(ctx context.Context, input *EmptyInput) (*huma.StreamResponse, error) {
	return h.easeResponse(h.controller.ResetView), nil
}

func (h *ViewerHandler) easeResponse(move func() mapview.EaseTo) *huma.StreamResponse {
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			sse := NewSSE(humaCtx)
			sse.DispatchCustomEvent("harmap:ease", move())
		},
	}
}

// StyleOptions renders the style selector options.
func (h *ViewerHandler) StyleOptions(ctx context.Context, input *EmptyInput) (*huma.StreamResponse, error) {
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			sse := NewSSE(humaCtx)
			active := h.controller.StyleKey()

			var buf bytes.Buffer
			for _, s := range h.styles.List() {
				h.renderer.RenderToBuffer(&buf, "style-option", map[string]any{
					"Key":      s.Key,
					"Name":     s.Name,
					"Selected": s.Key == active,
				})
			}
			sse.Patch(buf.String(), "#style-select")
		},
	}, nil
}

func (h *ViewerHandler) patchStatus(sse *SSEContext, fragment string, data any) {
	html, err := h.renderer.Render(fragment, data)
	if err != nil {
		return
	}
	sse.Patch(html, "#status")
}
