package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/rs/zerolog"

	"github.com/harmap/harmap/internal/api"
	"github.com/harmap/harmap/internal/api/viewerui"
	"github.com/harmap/harmap/internal/db"
	"github.com/harmap/harmap/internal/geodata"
	"github.com/harmap/harmap/internal/layers"
	"github.com/harmap/harmap/internal/mapview"
	"github.com/harmap/harmap/internal/style"
	"github.com/harmap/harmap/internal/templates"
)

// Config holds the server configuration.
type Config struct {
	Host    string
	Port    string
	DataDir string
	// WebDir optionally overrides the embedded page and fragments.
	WebDir string
	// DataFile is the GeoJSON file name inside DataDir served to the
	// viewer and loaded into the store.
	DataFile string
	// NoDB skips the DuckDB analytics sidecar (used in tests).
	NoDB bool
}

// Server is the harmap HTTP server.
type Server struct {
	config     Config
	mux        *http.ServeMux
	humaAPI    huma.API
	log        zerolog.Logger
	db         *sql.DB
	styles     *style.Registry
	store      *geodata.Store
	controller *mapview.Controller
	renderer   *templates.Renderer
}

// New creates a new harmap server.
func New(cfg Config) *Server {
	if cfg.DataFile == "" {
		cfg.DataFile = "points.geojson"
	}

	log := zerolog.New(os.Stderr).With().Timestamp().Str("service", "harmap").Logger()
	mux := http.NewServeMux()

	humaConfig := huma.DefaultConfig("harmap API", "1.0.0")
	humaConfig.Info.Description = "IP geolocation map viewer: serves HAR-derived GeoJSON points, basemap styles, and the clustered overlay declarations."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())

	humaAPI := humago.New(mux, humaConfig)

	styles := style.NewRegistry()
	if err := styles.LoadOverrides(filepath.Join(cfg.DataDir, "styles.yaml")); err != nil {
		log.Warn().Err(err).Msg("style overrides ignored")
	}

	store := geodata.NewStore()
	loader := geodata.NewFileLoader(filepath.Join(cfg.DataDir, cfg.DataFile))
	planRenderer := layers.NewRenderer("/data/" + cfg.DataFile)
	bus := mapview.NewBus()
	controller := mapview.NewController(store, loader, styles, planRenderer, bus, log)

	var fragmentsDir string
	if cfg.WebDir != "" {
		fragmentsDir = filepath.Join(cfg.WebDir, "templates", "fragments")
	}
	renderer, err := templates.New(fragmentsDir)
	if err != nil {
		// Embedded fragments are compiled in; only an override dir with
		// broken templates can fail here.
		log.Error().Err(err).Msg("fragment templates unavailable")
		renderer, _ = templates.New("")
	}

	s := &Server{
		config:     cfg,
		mux:        mux,
		humaAPI:    humaAPI,
		log:        log,
		styles:     styles,
		store:      store,
		controller: controller,
		renderer:   renderer,
	}

	if !cfg.NoDB {
		conn, err := db.Get(db.Config{DataDir: cfg.DataDir, DBName: "harmap"})
		if err != nil {
			log.Warn().Err(err).Msg("analytics database unavailable")
		} else {
			s.db = conn
			controller.SetOnLoaded(func(coll *geodata.Collection) {
				if err := db.ImportCollection(conn, coll); err != nil {
					log.Warn().Err(err).Msg("points mirror failed")
				}
			})
		}
	}

	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close closes server resources.
func (s *Server) Close() error {
	return db.Close()
}

// OpenAPI returns the generated OpenAPI description.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Controller exposes the map controller, mainly for the validate
// subcommand and tests.
func (s *Server) Controller() *mapview.Controller {
	return s.controller
}

func (s *Server) routes() {
	services := &api.Services{
		Store:      s.store,
		Styles:     s.styles,
		Controller: s.controller,
		Renderer:   s.renderer,
	}

	// REST API routes (OpenAPI-documented JSON endpoints)
	huma.AutoRegister(s.humaAPI, api.NewAPIHandler(services))
	api.NewInfoHandler(s.config.DataDir, s.config.DataFile, s.db != nil).RegisterRoutes(s.humaAPI)
	if s.db != nil {
		api.NewDBHandler(s.db).RegisterRoutes(s.humaAPI)
	}

	// Datastar SSE routes driving the viewer page
	viewerui.NewViewerHandler(s.controller, s.styles, s.renderer).RegisterRoutes(s.humaAPI)
	viewerui.NewEventHandler(s.controller.Bus(), s.renderer).RegisterRoutes(s.humaAPI)

	// The GeoJSON document and any other artifacts next to it
	s.mux.Handle("/data/", http.StripPrefix("/data/", s.handleData(s.config.DataDir)))

	// Static files when a web dir is configured
	if s.config.WebDir != "" {
		staticDir := filepath.Join(s.config.WebDir, "static")
		s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}

	// Page routes
	s.mux.HandleFunc("/viewer", s.handleViewer)
	s.mux.HandleFunc("/", s.handleRoot)
}

// handleData serves the data directory with the CORS headers map
// libraries need for range requests.
func (s *Server) handleData(dataDir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Range")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range, Accept-Ranges")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		http.FileServer(http.Dir(dataDir)).ServeHTTP(w, r)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.handleViewer(w, r)
}

func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	if s.config.WebDir != "" {
		pagePath := filepath.Join(s.config.WebDir, "templates", "viewer.html")
		if _, err := os.Stat(pagePath); err == nil {
			http.ServeFile(w, r, pagePath)
			return
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(viewerPage)
}
