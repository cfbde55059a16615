// Package static holds the stylesheet and script served under /static/.
package static

import "embed"

// Files are the built-in assets, used when no static directory is configured
//
//go:embed mines.css mines.js
var Files embed.FS
