package geodata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Validation failure sentinels. Each maps to a distinct user-facing
// message so the UI can tell the causes apart.
var (
	ErrInvalidJSON     = errors.New("response is not valid JSON")
	ErrMissingFeatures = errors.New("document has no features array")
	ErrEmptyCollection = errors.New("features array is empty")
)

// HTTPError is returned when the geodata endpoint answers with a non-2xx
// status. The message always embeds the status code; 404 adds path-check
// guidance since a misplaced data file is the usual cause.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	if e.StatusCode == http.StatusNotFound {
		return fmt.Sprintf("geodata not found (HTTP 404): check that %s exists next to the page", e.URL)
	}
	return fmt.Sprintf("failed to load geodata: HTTP %d from %s", e.StatusCode, e.URL)
}

// ConnectivityError is returned when the endpoint could not be reached at
// all, as opposed to answering with an error status.
type ConnectivityError struct {
	URL string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("could not reach %s: check connectivity: %v", e.URL, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// Loader fetches the GeoJSON document, either over HTTP or from a local
// file, and validates its shape. There is no retry policy: one failed
// attempt leaves the map on the basemap until the operation is re-issued.
type Loader struct {
	// Path is a local file to read when URL is empty.
	Path string
	// URL is fetched with a single GET when set.
	URL string

	Client *http.Client
}

// NewFileLoader returns a loader that reads the collection from path.
func NewFileLoader(path string) *Loader {
	return &Loader{Path: path}
}

// NewHTTPLoader returns a loader that fetches the collection from url.
func NewHTTPLoader(url string) *Loader {
	return &Loader{URL: url, Client: &http.Client{Timeout: 30 * time.Second}}
}

// Load performs one fetch-and-validate cycle and returns a fresh
// collection generation.
func (l *Loader) Load(ctx context.Context) (*Collection, error) {
	raw, err := l.read(ctx)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

func (l *Loader) read(ctx context.Context) ([]byte, error) {
	if l.URL == "" {
		data, err := os.ReadFile(l.Path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, &HTTPError{StatusCode: http.StatusNotFound, URL: l.Path}
			}
			return nil, fmt.Errorf("read %s: %w", l.Path, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return nil, err
	}

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &ConnectivityError{URL: l.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: l.URL}
	}

	return io.ReadAll(resp.Body)
}

// Parse validates a raw GeoJSON document and converts it into a
// collection. Features without Point geometry or without the ip/url
// properties are skipped rather than failing the whole load.
func Parse(raw []byte) (*Collection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		if looksLikeMissingFeatures(raw) {
			return nil, ErrMissingFeatures
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if fc.Features == nil {
		return nil, ErrMissingFeatures
	}
	if len(fc.Features) == 0 {
		return nil, ErrEmptyCollection
	}

	coll := &Collection{Generation: uuid.NewString()}
	for _, f := range fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		coll.Features = append(coll.Features, PointFeature{
			IP:  f.Properties.MustString("ip", ""),
			URL: f.Properties.MustString("url", ""),
			Lon: pt.Lon(),
			Lat: pt.Lat(),
		})
	}
	if len(coll.Features) == 0 {
		return nil, ErrEmptyCollection
	}
	return coll, nil
}

// looksLikeMissingFeatures distinguishes "valid JSON, wrong shape" from
// "not JSON at all" so the two causes get distinct messages. orb rejects
// both with a parse error.
func looksLikeMissingFeatures(raw []byte) bool {
	var probe map[string]any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	_, ok := probe["features"]
	return !ok
}
