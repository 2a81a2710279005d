// Package embedded expone los archivos web del dashboard.
package embedded

import "embed"

// WebFiles contiene el sitio web estático (HTML, CSS, JS)
//
//go:embed internal/assets/web
var WebFiles embed.FS
