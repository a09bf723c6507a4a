// Package api defines the Huma API routes and handlers.
package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/harmap/harmap/internal/geodata"
	"github.com/harmap/harmap/internal/layers"
	"github.com/harmap/harmap/internal/mapview"
	"github.com/harmap/harmap/internal/style"
	"github.com/harmap/harmap/internal/templates"
)

// Services holds the service dependencies for API handlers.
type Services struct {
	Store      *geodata.Store
	Styles     *style.Registry
	Controller *mapview.Controller
	Renderer   *templates.Renderer
}

// Types

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

type StatusBody struct {
	Loaded     bool   `json:"loaded" doc:"Whether a feature collection is loaded"`
	Count      int    `json:"count" doc:"Number of loaded features"`
	Generation string `json:"generation,omitempty" doc:"Current collection generation"`
	StyleKey   string `json:"styleKey" doc:"Active basemap style key"`
	Error      string `json:"error,omitempty" doc:"Sticky error message, if any"`
}

type StyleKeyInput struct {
	Key string `path:"key" doc:"Style registry key" example:"voyager"`
}

type StylesOutput struct {
	Body struct {
		Default string        `json:"default" doc:"Default style key"`
		Styles  []style.Style `json:"styles" doc:"Registered basemap styles"`
	}
}

type PopupInput struct {
	Lon      float64 `query:"lon" required:"true" doc:"Clicked feature longitude"`
	Lat      float64 `query:"lat" required:"true" doc:"Clicked feature latitude"`
	ClickLon float64 `query:"clickLon" doc:"Longitude of the click, for antimeridian adjustment"`
}

type PopupBody struct {
	mapview.Popup
	HTML string `json:"html" doc:"Rendered popup body"`
}

type PopupOutput struct {
	Body PopupBody
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterStatus registers the viewer status route.
func (h *APIHandler) RegisterStatus(api huma.API) {
	huma.Get(api, "/api/v1/status", h.GetStatus, huma.OperationTags("viewer"))
}

// RegisterStyles registers the style registry routes.
func (h *APIHandler) RegisterStyles(api huma.API) {
	huma.Get(api, "/api/v1/styles", h.GetStyles, huma.OperationTags("styles"))
	huma.Get(api, "/api/v1/styles/{key}", h.GetStyle, huma.OperationTags("styles"))
}

// RegisterLayers registers the render plan route.
func (h *APIHandler) RegisterLayers(api huma.API) {
	huma.Get(api, "/api/v1/layers", h.GetLayers, huma.OperationTags("layers"))
}

// RegisterCamera registers camera state routes.
func (h *APIHandler) RegisterCamera(api huma.API) {
	huma.Get(api, "/api/v1/camera", h.GetCamera, huma.OperationTags("viewer"))
	huma.Put(api, "/api/v1/camera", h.PutCamera, huma.OperationTags("viewer"))
}

// RegisterPopup registers the popup content route.
func (h *APIHandler) RegisterPopup(api huma.API) {
	huma.Get(api, "/api/v1/popup", h.GetPopup, huma.OperationTags("viewer"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func (h *APIHandler) GetStatus(ctx context.Context, input *struct{}) (*struct{ Body StatusBody }, error) {
	_, loaded := h.svc.Store.Current()
	return &struct{ Body StatusBody }{Body: StatusBody{
		Loaded:     loaded,
		Count:      h.svc.Store.Count(),
		Generation: h.svc.Store.Generation(),
		StyleKey:   h.svc.Controller.StyleKey(),
		Error:      h.svc.Controller.LastError(),
	}}, nil
}

func (h *APIHandler) GetStyles(ctx context.Context, input *struct{}) (*StylesOutput, error) {
	out := &StylesOutput{}
	out.Body.Default = style.DefaultKey
	out.Body.Styles = h.svc.Styles.List()
	return out, nil
}

func (h *APIHandler) GetStyle(ctx context.Context, input *StyleKeyInput) (*struct{ Body style.Style }, error) {
	s, ok := h.svc.Styles.Get(input.Key)
	if !ok {
		return nil, huma.Error404NotFound("unknown style key: " + input.Key)
	}
	return &struct{ Body style.Style }{Body: s}, nil
}

func (h *APIHandler) GetLayers(ctx context.Context, input *struct{}) (*struct{ Body layers.RenderPlan }, error) {
	plan, err := h.svc.Controller.Render()
	if err != nil {
		return nil, huma.Error404NotFound("no feature collection loaded")
	}
	return &struct{ Body layers.RenderPlan }{Body: *plan}, nil
}

func (h *APIHandler) GetCamera(ctx context.Context, input *struct{}) (*struct{ Body mapview.Camera }, error) {
	return &struct{ Body mapview.Camera }{Body: h.svc.Controller.Camera()}, nil
}

func (h *APIHandler) PutCamera(ctx context.Context, input *struct{ Body mapview.Camera }) (*struct{ Body mapview.Camera }, error) {
	h.svc.Controller.SetCamera(input.Body)
	return &struct{ Body mapview.Camera }{Body: h.svc.Controller.Camera()}, nil
}

func (h *APIHandler) GetPopup(ctx context.Context, input *PopupInput) (*PopupOutput, error) {
	popup, ok := h.svc.Controller.PopupNear(input.Lon, input.Lat, input.ClickLon)
	if !ok {
		return nil, huma.Error404NotFound("no feature near the clicked location")
	}

	body := PopupBody{Popup: popup}
	if h.svc.Renderer != nil {
		if html, err := h.svc.Renderer.Render("popup", popup); err == nil {
			body.HTML = html
		}
	}
	return &PopupOutput{Body: body}, nil
}
