// Package viewerui contains the Datastar SSE handlers that drive the
// map viewer page: status line updates, error banners, style switching,
// and camera control.
package viewerui

import (
	"encoding/json"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/starfederation/datastar-go/datastar"
)

// EmptyInput is a shared empty input struct for handlers with no parameters.
type EmptyInput struct{}

// SSEContext wraps the Datastar SSE generator with helper methods.
type SSEContext struct {
	SSE *datastar.ServerSentEventGenerator
}

// NewSSE creates an SSE context from a Huma context.
func NewSSE(humaCtx huma.Context) *SSEContext {
	r, w := humago.Unwrap(humaCtx)
	return &SSEContext{
		SSE: datastar.NewSSE(w, r),
	}
}

// Patch sends HTML to replace content at a selector.
func (c *SSEContext) Patch(html, selector string) {
	c.SSE.PatchElements(html, datastar.WithSelector(selector), datastar.WithModeInner())
}

// Error sends a sticky error signal to the client.
func (c *SSEContext) Error(msg string) {
	c.SSE.MarshalAndPatchSignals(map[string]any{
		"error": msg,
	})
}

// Signals sends arbitrary signals to the client.
func (c *SSEContext) Signals(signals map[string]any) {
	c.SSE.MarshalAndPatchSignals(signals)
}

// DispatchCustomEvent fires a DOM CustomEvent on the page window. The
// viewer script listens for these to drive map library calls that only
// the browser can make.
func (c *SSEContext) DispatchCustomEvent(name string, detail any) {
	payload, err := json.Marshal(detail)
	if err != nil {
		return
	}
	c.SSE.ExecuteScript(
		"window.dispatchEvent(new CustomEvent(" + jsString(name) + ", {detail: " + string(payload) + "}))",
	)
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
