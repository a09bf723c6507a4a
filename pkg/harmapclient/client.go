// Package harmapclient is a small Go client for the harmap API.
package harmapclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// Client talks to a running harmap server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the given base URL, e.g. "http://localhost:8091".
func New(baseURL string) *Client {
	return &Client{baseURL: baseURL, http: http.DefaultClient}
}

// NewWithClient creates a client using a custom http.Client.
func NewWithClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: baseURL, http: hc}
}

// Response bodies. These mirror the server's JSON shapes.

type HealthBody struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type InfoBody struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	DataDir  string   `json:"data_dir"`
	DataFile string   `json:"data_file"`
	DB       bool     `json:"db"`
	Features []string `json:"features"`
}

type StatusBody struct {
	Loaded     bool   `json:"loaded"`
	Count      int    `json:"count"`
	Generation string `json:"generation,omitempty"`
	StyleKey   string `json:"styleKey"`
	Error      string `json:"error,omitempty"`
}

type Style struct {
	Key      string          `json:"key"`
	Name     string          `json:"name"`
	URL      string          `json:"url,omitempty"`
	Document json.RawMessage `json:"document,omitempty"`
}

type StylesBody struct {
	Default string  `json:"default"`
	Styles  []Style `json:"styles"`
}

type SourceSpec struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	Data           string `json:"data"`
	Cluster        bool   `json:"cluster"`
	ClusterMaxZoom int    `json:"clusterMaxZoom"`
	ClusterRadius  int    `json:"clusterRadius"`
}

type LayerSpec struct {
	ID     string         `json:"id"`
	Type   string         `json:"type"`
	Source string         `json:"source"`
	Filter []any          `json:"filter,omitempty"`
	Paint  map[string]any `json:"paint,omitempty"`
	Layout map[string]any `json:"layout,omitempty"`
}

type RenderPlanBody struct {
	Generation string      `json:"generation"`
	Count      int         `json:"count"`
	Source     SourceSpec  `json:"source"`
	Layers     []LayerSpec `json:"layers"`
}

type CameraBody struct {
	Center  [2]float64 `json:"center"`
	Zoom    float64    `json:"zoom"`
	Pitch   float64    `json:"pitch"`
	Bearing float64    `json:"bearing"`
}

type PopupBody struct {
	IP         string  `json:"ip"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	DisplayURL string  `json:"displayUrl"`
	FullURL    string  `json:"fullUrl"`
	AnchorLon  float64 `json:"anchorLon"`
	AnchorLat  float64 `json:"anchorLat"`
	HTML       string  `json:"html"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("harmap API error %d: %s", e.StatusCode, e.Detail)
}

// Operations

func (c *Client) Health(ctx context.Context) (*http.Response, *HealthBody, error) {
	return get[HealthBody](ctx, c, "/health", nil)
}

func (c *Client) GetInfo(ctx context.Context) (*http.Response, *InfoBody, error) {
	return get[InfoBody](ctx, c, "/api/v1/info", nil)
}

func (c *Client) GetStatus(ctx context.Context) (*http.Response, *StatusBody, error) {
	return get[StatusBody](ctx, c, "/api/v1/status", nil)
}

func (c *Client) ListStyles(ctx context.Context) (*http.Response, *StylesBody, error) {
	return get[StylesBody](ctx, c, "/api/v1/styles", nil)
}

func (c *Client) GetStyle(ctx context.Context, key string) (*http.Response, *Style, error) {
	return get[Style](ctx, c, "/api/v1/styles/"+url.PathEscape(key), nil)
}

func (c *Client) GetLayers(ctx context.Context) (*http.Response, *RenderPlanBody, error) {
	return get[RenderPlanBody](ctx, c, "/api/v1/layers", nil)
}

func (c *Client) GetCamera(ctx context.Context) (*http.Response, *CameraBody, error) {
	return get[CameraBody](ctx, c, "/api/v1/camera", nil)
}

func (c *Client) SetCamera(ctx context.Context, cam CameraBody) (*http.Response, *CameraBody, error) {
	return do[CameraBody](ctx, c, http.MethodPut, "/api/v1/camera", nil, cam)
}

func (c *Client) GetPopup(ctx context.Context, lon, lat, clickLon float64) (*http.Response, *PopupBody, error) {
	q := url.Values{}
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("clickLon", strconv.FormatFloat(clickLon, 'f', -1, 64))
	return get[PopupBody](ctx, c, "/api/v1/popup", q)
}

func get[T any](ctx context.Context, c *Client, path string, query url.Values) (*http.Response, *T, error) {
	return do[T](ctx, c, http.MethodGet, path, query, nil)
}

func do[T any](ctx context.Context, c *Client, method, path string, query url.Values, body any) (*http.Response, *T, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var problem struct {
			Detail string `json:"detail"`
			Title  string `json:"title"`
		}
		detail := string(data)
		if json.Unmarshal(data, &problem) == nil && problem.Detail != "" {
			detail = problem.Detail
		}
		return resp, nil, &APIError{StatusCode: resp.StatusCode, Detail: detail}
	}

	out := new(T)
	if len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp, nil, err
		}
	}
	return resp, out, nil
}
