package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"local-library/internal/constants"
	"local-library/internal/guard"
	"local-library/internal/models"
	"local-library/internal/parallel"
	"local-library/internal/store"
	"local-library/internal/validator"
	"local-library/internal/views"
)

type BookHandler struct {
	Deps
	deletes guard.Policy[*models.Book, models.BookInstance]
}

func NewBookHandler(d Deps) *BookHandler {
	return &BookHandler{
		Deps: d,
		deletes: guard.Policy[*models.Book, models.BookInstance]{
			Kind:       models.BookInstanceEntity,
			Load:       d.Stores.Books.Get,
			Dependents: d.Stores.BookInstances.ListByBook,
			Remove:     d.Stores.Books.Delete,
		},
	}
}

// GET /catalog/books
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	results, err := parallel.Run(r.Context(), parallel.Tasks{
		"books":   func(ctx context.Context) (any, error) { return h.Stores.Books.List(ctx) },
		"authors": func(ctx context.Context) (any, error) { return h.Stores.Authors.List(ctx) },
	})
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	authors := make(map[primitive.ObjectID]*models.Author)
	for _, a := range parallel.Value[[]models.Author](results, "authors") {
		a := a
		authors[a.ID] = &a
	}

	books := parallel.Value[[]models.Book](results, "books")
	rows := make([]views.BookRow, len(books))
	for i, b := range books {
		rows[i] = views.BookRow{Book: b, Author: authors[b.Author]}
	}
	h.render(w, r, http.StatusOK, "book_list", views.PageData{Title: "Book List", Books: rows})
}

// GET /catalog/book/{id}
func (h *BookHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	results, err := parallel.Run(r.Context(), parallel.Tasks{
		"book":           func(ctx context.Context) (any, error) { return h.Stores.Books.Get(ctx, id) },
		"book_instances": func(ctx context.Context) (any, error) { return h.Stores.BookInstances.ListByBook(ctx, id) },
	})
	if err != nil {
		h.fail(w, r, err, "Book")
		return
	}
	book := parallel.Value[*models.Book](results, "book")

	// the author and genres hang off the book, so they are a second round
	refs, err := parallel.Run(r.Context(), parallel.Tasks{
		"author": func(ctx context.Context) (any, error) { return h.optionalAuthor(ctx, book.Author) },
		"genres": func(ctx context.Context) (any, error) { return h.Stores.Genres.ListByIDs(ctx, book.Genre) },
	})
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	copies := parallel.Value[[]models.BookInstance](results, "book_instances")
	h.render(w, r, http.StatusOK, "book_detail", views.PageData{
		Title:  book.Title,
		Book:   book,
		Author: parallel.Value[*models.Author](refs, "author"),
		Genres: parallel.Value[[]models.Genre](refs, "genres"),
		Copies: copyRows(copies, book),
	})
}

// GET /catalog/book/create
func (h *BookHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, "Create Book", map[string]string{}, nil, nil)
}

// POST /catalog/book/create
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}

	res := validator.BookRules.Run(form)
	book := bookFromForm(res)
	if !res.Valid() {
		h.renderForm(w, r, "Create Book", rawForm(form, bookFields...), form["genre"], res.Errors)
		return
	}

	if err := h.Stores.Books.Create(r.Context(), book); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.audit(r.Context(), r, models.BookEntity, constants.Create, book)
	redirect(w, r, models.BookURL(book.ID))
}

// GET /catalog/book/{id}/update
func (h *BookHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	results, err := parallel.Run(r.Context(), parallel.Tasks{
		"book":    func(ctx context.Context) (any, error) { return h.Stores.Books.Get(ctx, id) },
		"authors": func(ctx context.Context) (any, error) { return h.Stores.Authors.List(ctx) },
		"genres":  func(ctx context.Context) (any, error) { return h.Stores.Genres.List(ctx) },
	})
	if err != nil {
		h.fail(w, r, err, "Book")
		return
	}

	book := parallel.Value[*models.Book](results, "book")
	h.render(w, r, http.StatusOK, "book_form", views.PageData{
		Title: "Update Book",
		Form: map[string]string{
			"title":   unescape(book.Title),
			"author":  book.Author.Hex(),
			"summary": unescape(book.Summary),
			"isbn":    unescape(book.ISBN),
		},
		Options: map[string][]views.Option{
			"author": authorOptions(parallel.Value[[]models.Author](results, "authors"), book.Author.Hex()),
			"genre":  genreOptions(parallel.Value[[]models.Genre](results, "genres"), hexes(book.Genre)),
		},
	})
}

// POST /catalog/book/{id}/update
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}

	res := validator.BookRules.Run(form)
	book := bookFromForm(res)
	if !res.Valid() {
		h.renderForm(w, r, "Update Book", rawForm(form, bookFields...), form["genre"], res.Errors)
		return
	}

	book.ID = id
	if err := h.Stores.Books.Update(r.Context(), book); err != nil {
		h.fail(w, r, err, "Book")
		return
	}
	h.audit(r.Context(), r, models.BookEntity, constants.Update, book)
	redirect(w, r, models.BookURL(book.ID))
}

// GET /catalog/book/{id}/delete
func (h *BookHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	check, err := h.deletes.Inspect(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Book")
		return
	}
	h.renderDelete(w, r, check)
}

// POST /catalog/book/{id}/delete
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	check, err := h.deletes.Delete(r.Context(), id)
	var blocked *guard.BlockedError
	switch {
	case errors.As(err, &blocked):
		h.renderDelete(w, r, check)
		return
	case err != nil:
		h.fail(w, r, err, "Book")
		return
	}

	h.audit(r.Context(), r, models.BookEntity, constants.Delete, check.Record)
	redirect(w, r, "/catalog/books")
}

// renderForm shows the book form with the author and genre choices, marking
// the submitted selections.
func (h *BookHandler) renderForm(w http.ResponseWriter, r *http.Request, title string, form map[string]string, genres []string, errs validator.Errors) {
	results, err := parallel.Run(r.Context(), parallel.Tasks{
		"authors": func(ctx context.Context) (any, error) { return h.Stores.Authors.List(ctx) },
		"genres":  func(ctx context.Context) (any, error) { return h.Stores.Genres.List(ctx) },
	})
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "book_form", views.PageData{
		Title:  title,
		Form:   form,
		Errors: errs,
		Options: map[string][]views.Option{
			"author": authorOptions(parallel.Value[[]models.Author](results, "authors"), form["author"]),
			"genre":  genreOptions(parallel.Value[[]models.Genre](results, "genres"), genres),
		},
	})
}

func (h *BookHandler) renderDelete(w http.ResponseWriter, r *http.Request, check guard.Check[*models.Book, models.BookInstance]) {
	author, err := h.optionalAuthor(r.Context(), check.Record.Author)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "book_delete", views.PageData{
		Title:  "Delete Book",
		Book:   check.Record,
		Author: author,
		Copies: copyRows(check.Dependents, check.Record),
	})
}

// optionalAuthor loads a book's author, returning nil when it no longer exists.
func (h *BookHandler) optionalAuthor(ctx context.Context, id primitive.ObjectID) (*models.Author, error) {
	author, err := h.Stores.Authors.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return author, err
}

func bookFromForm(res validator.Result) *models.Book {
	return &models.Book{
		Title:   res.Get("title"),
		Author:  res.ObjectIDOf("author"),
		Summary: res.Get("summary"),
		ISBN:    res.Get("isbn"),
		Genre:   res.ObjectIDs("genre"),
	}
}

func copyRows(copies []models.BookInstance, book *models.Book) []views.CopyRow {
	rows := make([]views.CopyRow, len(copies))
	for i, c := range copies {
		rows[i] = views.CopyRow{Copy: c, Book: book}
	}
	return rows
}
