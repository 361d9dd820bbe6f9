package frontend

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

// FS embeds the page templates and static assets
//
//go:embed templates/*.html static
var FS embed.FS

// Templates parses the embedded page templates with funcs available
func Templates(funcs template.FuncMap) (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(FS, "templates/*.html")
}

// GetHTTPFS returns the embedded static assets for HTTP serving
func GetHTTPFS() (http.FileSystem, error) {
	sub, err := fs.Sub(FS, "static")
	if err != nil {
		return nil, err
	}

	// style.css is a marker that the assets are present
	if _, err := fs.Stat(sub, "style.css"); err != nil {
		return nil, err
	}

	return http.FS(sub), nil
}
