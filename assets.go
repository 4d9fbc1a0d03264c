package orderform

import (
	"io/fs"

	"github.com/goliatone/go-orderform/pkg/renderers/vanilla"
)

// EmbeddedTemplates exposes the built-in HTML templates so callers can
// reuse or override them without importing the renderer package.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// AssetsFS exposes the stylesheet the HTML renderer links.
//
// Typical mount:
//
//	r.Handle("/assets/*", http.StripPrefix("/assets/",
//	  http.FileServerFS(orderform.AssetsFS())))
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}

// StylesheetPath is where AssetsFS's stylesheet is served when mounted
// under /assets/.
const StylesheetPath = "/assets/" + vanilla.StylesheetName
