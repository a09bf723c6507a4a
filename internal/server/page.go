package server

import _ "embed"

// viewerPage is the built-in map page, used when no web dir override is
// configured.
//
//go:embed viewer.html
var viewerPage []byte
