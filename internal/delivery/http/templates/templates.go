// Package templates holds the embedded pages of the authentication surface.
package templates

import (
	"embed"
	"html/template"
	"io"

	"sharp/internal/errors"

	"github.com/labstack/echo/v4"
)

//go:embed *.html
var pagesFS embed.FS

//go:embed style.css
var defaultStylesheet []byte

// Renderer implements echo.Renderer over the embedded pages.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded pages once at startup.
func NewRenderer() (*Renderer, error) {
	parsed, err := template.ParseFS(pagesFS, "*.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse embedded templates")
	}

	return &Renderer{templates: parsed}, nil
}

// Render writes the named page with the given data.
func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return errors.WithStack(r.templates.ExecuteTemplate(w, name, data))
}

// DefaultStylesheet returns the embedded stylesheet served when no custom
// one is configured.
func DefaultStylesheet() []byte {
	return defaultStylesheet
}
