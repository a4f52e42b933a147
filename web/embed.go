// Package web provides embedded static assets served at /static/.
package web

import "embed"

// Static embeds the web/static/ directory tree.
//
//go:embed all:static
var Static embed.FS
