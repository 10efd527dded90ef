// Package importer loads a catalog dump into the stores through the same
// sanitizing pipelines the forms use.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/url"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gedex/inflector"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"local-library/internal/constants"
	"local-library/internal/models"
	"local-library/internal/store"
	"local-library/internal/utils"
	v "local-library/internal/validator"
)

type Author struct {
	FirstName   string `json:"first_name"`
	FamilyName  string `json:"family_name"`
	DateOfBirth string `json:"date_of_birth"`
	DateOfDeath string `json:"date_of_death"`
}

type Book struct {
	Title   string   `json:"title"`
	Author  string   `json:"author"` // "Family, First"
	Summary string   `json:"summary"`
	ISBN    string   `json:"isbn"`
	Genres  []string `json:"genre"` // genre names
}

type Copy struct {
	Book    string `json:"book"` // book title
	Imprint string `json:"imprint"`
	Status  string `json:"status"`
	DueBack string `json:"due_back"`
}

// Catalog is the import file layout.
type Catalog struct {
	Authors       []Author `json:"authors"`
	Genres        []string `json:"genres"`
	Books         []Book   `json:"books"`
	BookInstances []Copy   `json:"bookinstances"`
}

// Size is the number of records in c.
func (c Catalog) Size() int {
	return len(c.Authors) + len(c.Genres) + len(c.Books) + len(c.BookInstances)
}

func Decode(r io.Reader) (Catalog, error) {
	var c Catalog
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Catalog{}, fmt.Errorf("importer: decode catalog: %w", err)
	}
	return c, nil
}

// ErrUnknownReference is returned when a record names an author, genre or
// book the catalog does not define.
var ErrUnknownReference = errors.New("unknown reference")

// Summary counts what one import wrote.
type Summary struct {
	Authors      int
	Genres       int
	ReusedGenres int
	Books        int
	Copies       int
}

func (s Summary) String() string {
	parts := []string{
		count(s.Authors, "author"),
		count(s.Genres, "genre"),
		count(s.Books, "book"),
		count(s.Copies, "copy"),
	}
	out := "imported " + strings.Join(parts, ", ")
	if s.ReusedGenres > 0 {
		out += fmt.Sprintf(" and reused %s", count(s.ReusedGenres, "genre"))
	}
	return out
}

func count(n int, noun string) string {
	if n != 1 {
		noun = inflector.Pluralize(noun)
	}
	return humanize.Comma(int64(n)) + " " + noun
}

// Importer writes catalogs into Stores. Progress, when set, is called once
// per record handled.
type Importer struct {
	Stores   store.Stores
	Audit    *utils.AuditLogger
	Progress func()
}

func New(stores store.Stores, audit *utils.AuditLogger) *Importer {
	return &Importer{Stores: stores, Audit: audit}
}

// Run imports c in dependency order: authors and genres, then books, then
// copies. The first invalid record stops the import; earlier records stay.
func (im *Importer) Run(ctx context.Context, c Catalog) (Summary, error) {
	var sum Summary

	authors := make(map[string]primitive.ObjectID, len(c.Authors))
	for i, rec := range c.Authors {
		a, err := im.author(ctx, rec)
		if err != nil {
			return sum, fmt.Errorf("importer: author %d: %w", i, err)
		}
		authors[html.UnescapeString(models.AuthorName(*a))] = a.ID
		sum.Authors++
		im.step()
	}

	genres := make(map[string]primitive.ObjectID, len(c.Genres))
	for i, name := range c.Genres {
		g, reused, err := im.genre(ctx, name)
		if err != nil {
			return sum, fmt.Errorf("importer: genre %d: %w", i, err)
		}
		genres[html.UnescapeString(g.Name)] = g.ID
		if reused {
			sum.ReusedGenres++
		} else {
			sum.Genres++
		}
		im.step()
	}

	books := make(map[string]primitive.ObjectID, len(c.Books))
	for i, rec := range c.Books {
		b, err := im.book(ctx, rec, authors, genres)
		if err != nil {
			return sum, fmt.Errorf("importer: book %d: %w", i, err)
		}
		books[html.UnescapeString(b.Title)] = b.ID
		sum.Books++
		im.step()
	}

	for i, rec := range c.BookInstances {
		if err := im.copy(ctx, rec, books); err != nil {
			return sum, fmt.Errorf("importer: book instance %d: %w", i, err)
		}
		sum.Copies++
		im.step()
	}

	return sum, nil
}

func (im *Importer) step() {
	if im.Progress != nil {
		im.Progress()
	}
}

func (im *Importer) author(ctx context.Context, rec Author) (*models.Author, error) {
	res := v.AuthorRules.Run(url.Values{
		"first_name":    {rec.FirstName},
		"family_name":   {rec.FamilyName},
		"date_of_birth": {rec.DateOfBirth},
		"date_of_death": {rec.DateOfDeath},
	})
	if !res.Valid() {
		return nil, res.Errors
	}

	a := &models.Author{
		FirstName:   res.Get("first_name"),
		FamilyName:  res.Get("family_name"),
		DateOfBirth: v.OptionalTime(res.Get("date_of_birth")),
		DateOfDeath: v.OptionalTime(res.Get("date_of_death")),
	}
	if err := im.Stores.Authors.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, im.audit(ctx, models.AuthorEntity, a)
}

// genre reuses a stored genre of the same name rather than adding a duplicate.
func (im *Importer) genre(ctx context.Context, name string) (*models.Genre, bool, error) {
	res := v.GenreRules.Run(url.Values{"name": {name}})
	if !res.Valid() {
		return nil, false, res.Errors
	}

	existing, err := im.Stores.Genres.FindByName(ctx, res.Get("name"))
	switch {
	case err == nil:
		return existing, true, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, false, err
	}

	g := &models.Genre{Name: res.Get("name")}
	if err := im.Stores.Genres.Create(ctx, g); err != nil {
		return nil, false, err
	}
	return g, false, im.audit(ctx, models.GenreEntity, g)
}

func (im *Importer) book(ctx context.Context, rec Book, authors, genres map[string]primitive.ObjectID) (*models.Book, error) {
	author, ok := authors[strings.TrimSpace(rec.Author)]
	if !ok {
		return nil, fmt.Errorf("%w: author %q", ErrUnknownReference, rec.Author)
	}
	form := url.Values{
		"title":   {rec.Title},
		"author":  {author.Hex()},
		"summary": {rec.Summary},
		"isbn":    {rec.ISBN},
	}
	for _, name := range rec.Genres {
		id, ok := genres[strings.TrimSpace(name)]
		if !ok {
			return nil, fmt.Errorf("%w: genre %q", ErrUnknownReference, name)
		}
		form.Add("genre", id.Hex())
	}

	res := v.BookRules.Run(form)
	if !res.Valid() {
		return nil, res.Errors
	}

	b := &models.Book{
		Title:   res.Get("title"),
		Author:  author,
		Summary: res.Get("summary"),
		ISBN:    res.Get("isbn"),
		Genre:   res.ObjectIDs("genre"),
	}
	if err := im.Stores.Books.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, im.audit(ctx, models.BookEntity, b)
}

func (im *Importer) copy(ctx context.Context, rec Copy, books map[string]primitive.ObjectID) error {
	book, ok := books[strings.TrimSpace(rec.Book)]
	if !ok {
		return fmt.Errorf("%w: book %q", ErrUnknownReference, rec.Book)
	}

	res := v.BookInstanceRules.Run(url.Values{
		"book":     {book.Hex()},
		"imprint":  {rec.Imprint},
		"status":   {rec.Status},
		"due_back": {rec.DueBack},
	})
	if !res.Valid() {
		return res.Errors
	}

	bi := &models.BookInstance{
		Book:    book,
		Imprint: res.Get("imprint"),
		Status:  models.CopyStatus(res.Get("status")),
		DueBack: v.OptionalTime(res.Get("due_back")),
	}
	if err := im.Stores.BookInstances.Create(ctx, bi); err != nil {
		return err
	}
	return im.audit(ctx, models.BookInstanceEntity, bi)
}

func (im *Importer) audit(ctx context.Context, entity string, data any) error {
	if im.Audit == nil {
		return nil
	}
	return im.Audit.Log(ctx, entity, constants.Import, data)
}
