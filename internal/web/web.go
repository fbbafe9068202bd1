// Package web holds the HTML templates rendered by the gin engine.
package web

import (
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format("Mon 02 Jan 2006")
	},
	"datetime": func(t time.Time) string {
		return t.Format("02 Jan 2006 15:04")
	},
	"fieldError": func(errs map[string]string, field string) string {
		return errs[field]
	},
}

// Templates parses every page and partial. Pages are addressed by file
// name, e.g. "index.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}
