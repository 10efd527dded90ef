package handlers

import (
	"context"
	"errors"
	"net/http"

	"local-library/internal/constants"
	"local-library/internal/guard"
	"local-library/internal/models"
	"local-library/internal/parallel"
	"local-library/internal/store"
	"local-library/internal/validator"
	"local-library/internal/views"
)

type GenreHandler struct {
	Deps
	deletes guard.Policy[*models.Genre, models.Book]
}

func NewGenreHandler(d Deps) *GenreHandler {
	return &GenreHandler{
		Deps: d,
		deletes: guard.Policy[*models.Genre, models.Book]{
			Kind:       models.BookEntity,
			Load:       d.Stores.Genres.Get,
			Dependents: d.Stores.Books.ListByGenre,
			Remove:     d.Stores.Genres.Delete,
		},
	}
}

// GET /catalog/genres
func (h *GenreHandler) List(w http.ResponseWriter, r *http.Request) {
	genres, err := h.Stores.Genres.List(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "genre_list", views.PageData{Title: "Genre List", Genres: genres})
}

// GET /catalog/genre/{id}
func (h *GenreHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	results, err := parallel.Run(r.Context(), parallel.Tasks{
		"genre":       func(ctx context.Context) (any, error) { return h.Stores.Genres.Get(ctx, id) },
		"genre_books": func(ctx context.Context) (any, error) { return h.Stores.Books.ListByGenre(ctx, id) },
	})
	if err != nil {
		h.fail(w, r, err, "Genre")
		return
	}

	h.render(w, r, http.StatusOK, "genre_detail", views.PageData{
		Title: "Genre Detail",
		Genre: parallel.Value[*models.Genre](results, "genre"),
		Books: bookRows(parallel.Value[[]models.Book](results, "genre_books"), nil),
	})
}

// GET /catalog/genre/create
func (h *GenreHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, "Create Genre", map[string]string{}, nil)
}

// POST /catalog/genre/create
func (h *GenreHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}

	res := validator.GenreRules.Run(form)
	if !res.Valid() {
		h.renderForm(w, r, "Create Genre", rawForm(form, genreFields...), res.Errors)
		return
	}

	genre := &models.Genre{Name: res.Get("name")}
	if h.redirectToExisting(w, r, genre.Name) {
		return
	}

	if err := h.Stores.Genres.Create(r.Context(), genre); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.audit(r.Context(), r, models.GenreEntity, constants.Create, genre)
	redirect(w, r, models.GenreURL(genre.ID))
}

// GET /catalog/genre/{id}/update
func (h *GenreHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	genre, err := h.Stores.Genres.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Genre")
		return
	}
	h.renderForm(w, r, "Update Genre", map[string]string{"name": unescape(genre.Name)}, nil)
}

// POST /catalog/genre/{id}/update
func (h *GenreHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}

	res := validator.GenreRules.Run(form)
	if !res.Valid() {
		h.renderForm(w, r, "Update Genre", rawForm(form, genreFields...), res.Errors)
		return
	}

	genre := &models.Genre{ID: id, Name: res.Get("name")}
	if h.redirectToExisting(w, r, genre.Name) {
		return
	}

	if err := h.Stores.Genres.Update(r.Context(), genre); err != nil {
		h.fail(w, r, err, "Genre")
		return
	}
	h.audit(r.Context(), r, models.GenreEntity, constants.Update, genre)
	redirect(w, r, models.GenreURL(genre.ID))
}

// GET /catalog/genre/{id}/delete
func (h *GenreHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	check, err := h.deletes.Inspect(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Genre")
		return
	}
	h.renderDelete(w, r, check)
}

// POST /catalog/genre/{id}/delete
func (h *GenreHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
		h.fail(w, r, err, "Genre")
		return
	}

	h.audit(r.Context(), r, models.GenreEntity, constants.Delete, check.Record)
	redirect(w, r, "/catalog/genres")
}

// redirectToExisting sends the client to a genre already carrying name and
// reports whether it did. Genre names are unique, so nothing is written.
func (h *GenreHandler) redirectToExisting(w http.ResponseWriter, r *http.Request, name string) bool {
	found, err := h.Stores.Genres.FindByName(r.Context(), name)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return false
	case err != nil:
		h.serverError(w, r, err)
		return true
	}
	redirect(w, r, models.GenreURL(found.ID))
	return true
}

func (h *GenreHandler) renderForm(w http.ResponseWriter, r *http.Request, title string, form map[string]string, errs validator.Errors) {
	h.render(w, r, http.StatusOK, "genre_form", views.PageData{Title: title, Form: form, Errors: errs})
}

func (h *GenreHandler) renderDelete(w http.ResponseWriter, r *http.Request, check guard.Check[*models.Genre, models.Book]) {
	h.render(w, r, http.StatusOK, "genre_delete", views.PageData{
		Title: "Delete Genre",
		Genre: check.Record,
		Books: bookRows(check.Dependents, nil),
	})
}
