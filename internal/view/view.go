// Package view renders the HTML pages from templates embedded in the
// binary.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/club-booking/internal/service"
)

//go:embed templates/*.html
var files embed.FS

// Page names accepted by Renderer.
const (
	IndexPage   = "index.html"
	WelcomePage = "welcome.html"
	BookingPage = "booking.html"
)

// IndexData feeds the login page.
type IndexData struct {
	Flashes []string
}

// WelcomeData feeds the club summary page.
type WelcomeData struct {
	Summary service.Summary
	Flashes []string
}

// BookingData feeds the booking form.
type BookingData struct {
	Page    service.BookingPage
	Flashes []string
}

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"bookURL": func(competition, club string) string {
		return "/book/" + url.PathEscape(competition) + "/" + url.PathEscape(club)
	},
}

// New parses every page together with the shared layout.
func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range []string{IndexPage, WelcomePage, BookingPage} {
		t, err := template.New(name).Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render implements echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return t.ExecuteTemplate(w, name, data)
}
