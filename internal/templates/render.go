// Package templates renders the HTML fragments pushed to the viewer UI
// over SSE (status line, error banner, popup body).
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"path/filepath"
	"sync"
)

//go:embed fragments/*.html
var builtin embed.FS

// funcMap provides common template functions.
var funcMap = template.FuncMap{
	// coord formats a coordinate with four decimal places.
	"coord": func(v float64) string {
		return fmt.Sprintf("%.4f", v)
	},
}

// Renderer manages the HTML fragment templates.
type Renderer struct {
	mu        sync.RWMutex
	templates *template.Template
}

// New returns a renderer with the embedded fragments. When overrideDir
// is non-empty, *.html files found there replace the built-ins, which
// keeps the page skinnable without a rebuild.
func New(overrideDir string) (*Renderer, error) {
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(builtin, "fragments/*.html")
	if err != nil {
		return nil, err
	}
	if overrideDir != "" {
		pattern := filepath.Join(overrideDir, "*.html")
		if matches, _ := filepath.Glob(pattern); len(matches) > 0 {
			if tmpl, err = tmpl.ParseGlob(pattern); err != nil {
				return nil, err
			}
		}
	}
	return &Renderer{templates: tmpl}, nil
}

// Render renders a named fragment to a string.
func (r *Renderer) Render(name string, data any) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToBuffer renders a named fragment to a buffer.
func (r *Renderer) RenderToBuffer(buf *bytes.Buffer, name string, data any) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.templates.ExecuteTemplate(buf, name, data)
}
