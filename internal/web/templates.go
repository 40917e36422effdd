package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/rlanders/weatherview/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer holds the parsed page templates. Each page is the base layout
// plus one content template, parsed once at startup.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{"index.html", "about.html"} {
		t, err := template.ParseFS(templateFS, "templates/base.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{pages: pages}, nil
}

// Flash is one session flash message with a display category
// (error, success, info).
type Flash struct {
	Category string
	Message  string
}

// indexView is the data handed to the index template. Weather and Error are
// mutually exclusive; both absent means a bare search form.
type indexView struct {
	Query       string
	CollectData bool
	Flashes     []Flash
	Weather     *models.WeatherEnvelope
	Error       string
	CurrentYear int
}

type aboutView struct {
	Flashes     []Flash
	CurrentYear int
}

// Render executes the named page into a buffer first so a template failure
// yields a clean 500 instead of a truncated page.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data interface{}) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown template %q", page)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("execute template %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func currentYear() int {
	return time.Now().Year()
}
