// Package web embeds the console's HTML templates.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/django/v3"
)

//go:embed views
var files embed.FS

// Views returns the template tree rooted at views/.
func Views() fs.FS {
	sub, err := fs.Sub(files, "views")
	if err != nil {
		panic(err)
	}
	return sub
}

// NewEngine builds the django template engine over the embedded views.
func NewEngine(reload bool) *django.Engine {
	engine := django.NewFileSystem(http.FS(Views()), ".html")
	engine.Reload(reload)
	return engine
}
