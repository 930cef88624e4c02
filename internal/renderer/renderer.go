package renderer

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"github.com/damacus/s3-browser/views"
	"github.com/labstack/echo/v4"
)

// Pages rendered inside the base layout.
var Pages = []string{"index", "buckets", "objects", "error"}

// TemplateRenderer implements echo.Renderer
type TemplateRenderer struct {
	Templates map[string]*template.Template
}

// New creates a new TemplateRenderer with templates parsed from the embedded views.
func New() (*TemplateRenderer, error) {
	return NewFromFS(views.FS)
}

// NewFromFS parses the layout, partials and every page found in fsys.
func NewFromFS(fsys fs.FS) (*TemplateRenderer, error) {
	r := &TemplateRenderer{
		Templates: make(map[string]*template.Template, len(Pages)),
	}
	for _, name := range Pages {
		tmpl, err := template.ParseFS(fsys,
			"layouts/base.html",
			"partials/*.html",
			"pages/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.Templates[name] = tmpl
	}
	return r, nil
}

// Render renders a page through the "base" layout
func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := t.Templates[name]
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "Template not found: "+name)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}
