package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

type InfoHandler struct {
	dataDir  string
	dataFile string
	dbOK     bool
}

func NewInfoHandler(dataDir, dataFile string, dbOK bool) *InfoHandler {
	return &InfoHandler{dataDir: dataDir, dataFile: dataFile, dbOK: dbOK}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name     string   `json:"name" doc:"Service name"`
	Version  string   `json:"version" doc:"Service version"`
	DataDir  string   `json:"data_dir" doc:"Data directory path"`
	DataFile string   `json:"data_file" doc:"GeoJSON file served to the viewer"`
	DB       bool     `json:"db" doc:"Whether the analytics database is available"`
	Features []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:     "harmap",
		Version:  "0.1.0",
		DataDir:  h.dataDir,
		DataFile: h.dataFile,
		DB:       h.dbOK,
		Features: []string{"clustering", "styles", "popups", "duckdb"},
	}}, nil
}
