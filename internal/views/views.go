// Package views renders the catalog's HTML pages from templates embedded in
// the binary.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"local-library/internal/models"
	"local-library/internal/validator"
)

//go:embed templates/*.html
var files embed.FS

const layout = "templates/layout.html"

// Option is one entry of a select box or checkbox group.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// BookRow is a book joined with its author, nil when the author is gone.
type BookRow struct {
	Book   models.Book
	Author *models.Author
}

// CopyRow is a copy joined with its book, nil when the book is gone.
type CopyRow struct {
	Copy models.BookInstance
	Book *models.Book
}

// PageData is the context every template receives. Pages read the fields
// they need and ignore the rest.
type PageData struct {
	Title   string
	Message string

	// Form holds the values shown in form inputs, already unescaped for display.
	Form    map[string]string
	Errors  validator.Errors
	Options map[string][]Option
	Counts  map[string]int64

	Author  *models.Author
	Authors []models.Author
	Book    *models.Book
	Books   []BookRow
	Genre   *models.Genre
	Genres  []models.Genre
	Copy    *models.BookInstance
	Copies  []CopyRow

	Now time.Time
}

var funcs = template.FuncMap{
	// stored text is escaped on the way in; templates escape again on output
	"display":    html.UnescapeString,
	"authorName": func(a models.Author) string { return html.UnescapeString(models.AuthorName(a)) },
	"lifespan":   models.AuthorLifespan,
	"date":       models.FormatDate,
	"dueBack":    models.DueBackLabel,
	"dueIn":      models.DueBackRelative,
	"comma":      humanize.Comma,
	"authorURL":  models.AuthorURL,
	"bookURL":    models.BookURL,
	"genreURL":   models.GenreURL,
	"copyURL":    models.BookInstanceURL,
	"hex":        func(id primitive.ObjectID) string { return id.Hex() },
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every embedded page together with the shared layout.
func New() (*Renderer, error) {
	names, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		if name == layout {
			continue
		}
		page := strings.TrimSuffix(path.Base(name), ".html")
		t, err := template.New(page).Funcs(funcs).ParseFS(files, layout, name)
		if err != nil {
			return nil, fmt.Errorf("views: parse %s: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

// Has reports whether a page named name exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Render executes the named page into a buffer and only then writes the
// status and body, so a template failure never leaves a half-written page.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data PageData) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("views: no page named %q", name)
	}
	if data.Now.IsZero() {
		data.Now = time.Now()
	}

	buf := new(bytes.Buffer)
	if err := t.ExecuteTemplate(buf, "layout", data); err != nil {
		return fmt.Errorf("views: render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
