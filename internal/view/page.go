package view

import (
	"embed"
	"html/template"
	"io"
	"strings"

	"rickshaw-client/internal/dto"
)

//go:embed templates/*.html
var templates embed.FS

// Page renders the single analysis page from a session snapshot.
type Page struct {
	tmpl *template.Template
}

func NewPage() (*Page, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"isMode":     func(snap dto.SessionSnapshot, mode string) bool { return snap.InputMode == mode },
		"previewSrc": previewSrc,
	}).ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Page{tmpl: tmpl}, nil
}

func (p *Page) Render(w io.Writer, snap dto.SessionSnapshot) error {
	return p.tmpl.ExecuteTemplate(w, "index.html", snap)
}

// previewSrc lets image data URIs through the template's URL sanitizer, which
// rejects the data: scheme. Anything else is left to the default escaping.
func previewSrc(preview string) interface{} {
	if strings.HasPrefix(preview, "data:image/") {
		return template.URL(preview)
	}
	return preview
}
