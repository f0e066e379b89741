// Package web embeds the browser chat page served at /.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var files embed.FS

// Static returns the page assets rooted at the static directory.
func Static() (fs.FS, error) {
	return fs.Sub(files, "static")
}
