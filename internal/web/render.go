package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"time"
)

//go:embed templates
var templatesFS embed.FS

// templateFuncs are helpers available to every template.
var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format("2006-01-02")
	},
}

// baseData carries the fields every page needs. Page data structs embed it.
type baseData struct {
	Authenticated bool
	Flash         *Flash
	// Error is an inline message shown on the form being re-rendered.
	Error string
}

// Renderer renders the embedded HTML templates. Each page template is
// parsed together with the shared layout at construction time so template
// errors surface at startup, not per request.
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

// NewRenderer parses all page templates against the base layout.
func NewRenderer(log *slog.Logger) (*Renderer, error) {
	if log == nil {
		log = slog.Default()
	}

	pages, err := fs.Glob(templatesFS, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob templates: %w", err)
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		name := path.Base(page)
		tmpl, err := template.New(name).
			Funcs(templateFuncs).
			ParseFS(templatesFS, "templates/base.html", page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		templates[name] = tmpl
	}

	return &Renderer{
		templates: templates,
		logger:    log.With(slog.String("component", "renderer")),
	}, nil
}

// Render writes the named page with the given status code. The template is
// executed into a buffer first so a rendering failure produces a clean 500
// instead of a half-written page.
func (rd *Renderer) Render(w http.ResponseWriter, status int, page string, data any) {
	tmpl, ok := rd.templates[page]
	if !ok {
		rd.logger.Error("unknown template", "page", page)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		rd.logger.Error("failed to render template", "page", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		rd.logger.Error("failed to write response", "page", page, "error", err)
	}
}
