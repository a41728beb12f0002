// Package web embeds the server-rendered pages.
package web

import (
	"embed"
	"html/template"

	"github.com/stemsi/exstem-enroll/internal/quiz"
)

//go:embed templates/*.html
var templateFS embed.FS

// Funcs are the helpers available to every page.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"selected": quiz.Selected,
		"add":      func(a, b int) int { return a + b },
	}
}

// Templates parses all pages. Each page is addressed by its file name, e.g.
// "login.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs()).ParseFS(templateFS, "templates/*.html")
}
