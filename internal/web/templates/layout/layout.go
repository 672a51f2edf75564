// Package layout holds the page shell shared by every web page.
package layout

import (
	"context"
	_ "embed"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/mcoot/chinquiz/internal/model"
)

//go:embed base.html
var baseHTML string

// FlashMessage is a one-shot notice shown at the top of the next page
type FlashMessage struct {
	Type    string // "success", "error" or "info"
	Message string
}

// PageData is the data every page needs for the shell
type PageData struct {
	Title  string
	Player *model.PlayerIdentity
	Flash  *FlashMessage
	// RefreshSeconds, if positive, reloads the page after that many seconds
	RefreshSeconds int
}

var funcs = template.FuncMap{
	"seconds": func(ms int64) int64 { return ms / 1000 },
}

var base = template.Must(template.New("base").Funcs(funcs).Parse(baseHTML))

// NewPage parses a page's content templates into a copy of the shell. The
// content must define a "content" template.
func NewPage(content string) *template.Template {
	page := template.Must(base.Clone())
	return template.Must(page.Parse(content))
}

// Render returns a component that executes page with data
func Render(page *template.Template, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return page.ExecuteTemplate(w, "base", data)
	})
}
