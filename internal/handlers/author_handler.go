package handlers

import (
	"context"
	"errors"
	"net/http"

	"local-library/internal/constants"
	"local-library/internal/guard"
	"local-library/internal/models"
	"local-library/internal/parallel"
	"local-library/internal/validator"
	"local-library/internal/views"
)

type AuthorHandler struct {
	Deps
	deletes guard.Policy[*models.Author, models.Book]
}

func NewAuthorHandler(d Deps) *AuthorHandler {
	return &AuthorHandler{
		Deps: d,
		deletes: guard.Policy[*models.Author, models.Book]{
			Kind:       models.BookEntity,
			Load:       d.Stores.Authors.Get,
			Dependents: d.Stores.Books.ListByAuthor,
			Remove:     d.Stores.Authors.Delete,
		},
	}
}

// GET /catalog/authors
func (h *AuthorHandler) List(w http.ResponseWriter, r *http.Request) {
	authors, err := h.Stores.Authors.List(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "author_list", views.PageData{Title: "Author List", Authors: authors})
}

// GET /catalog/author/{id}
func (h *AuthorHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	results, err := parallel.Run(r.Context(), parallel.Tasks{
		"author":       func(ctx context.Context) (any, error) { return h.Stores.Authors.Get(ctx, id) },
		"author_books": func(ctx context.Context) (any, error) { return h.Stores.Books.ListByAuthor(ctx, id) },
	})
	if err != nil {
		h.fail(w, r, err, "Author")
		return
	}

	author := parallel.Value[*models.Author](results, "author")
	h.render(w, r, http.StatusOK, "author_detail", views.PageData{
		Title:  "Author Detail",
		Author: author,
		Books:  bookRows(parallel.Value[[]models.Book](results, "author_books"), author),
	})
}

// GET /catalog/author/create
func (h *AuthorHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "author_form", views.PageData{Title: "Create Author", Form: map[string]string{}})
}

// POST /catalog/author/create
func (h *AuthorHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}

	res := validator.AuthorRules.Run(form)
	if !res.Valid() {
		h.renderForm(w, r, "Create Author", rawForm(form, authorFields...), res.Errors)
		return
	}

	author := authorFromForm(res)
	if err := h.Stores.Authors.Create(r.Context(), author); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.audit(r.Context(), r, models.AuthorEntity, constants.Create, author)
	redirect(w, r, models.AuthorURL(author.ID))
}

// GET /catalog/author/{id}/update
func (h *AuthorHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	author, err := h.Stores.Authors.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Author")
		return
	}

	h.renderForm(w, r, "Update Author", map[string]string{
		"first_name":    unescape(author.FirstName),
		"family_name":   unescape(author.FamilyName),
		"date_of_birth": models.FormatDate(author.DateOfBirth),
		"date_of_death": models.FormatDate(author.DateOfDeath),
	}, nil)
}

// POST /catalog/author/{id}/update
func (h *AuthorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}

	res := validator.AuthorRules.Run(form)
	if !res.Valid() {
		h.renderForm(w, r, "Update Author", rawForm(form, authorFields...), res.Errors)
		return
	}

	author := authorFromForm(res)
	author.ID = id
	if err := h.Stores.Authors.Update(r.Context(), author); err != nil {
		h.fail(w, r, err, "Author")
		return
	}
	h.audit(r.Context(), r, models.AuthorEntity, constants.Update, author)
	redirect(w, r, models.AuthorURL(author.ID))
}

// GET /catalog/author/{id}/delete
func (h *AuthorHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	check, err := h.deletes.Inspect(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Author")
		return
	}
	h.renderDelete(w, r, check)
}

// POST /catalog/author/{id}/delete
func (h *AuthorHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
		h.fail(w, r, err, "Author")
		return
	}

	h.audit(r.Context(), r, models.AuthorEntity, constants.Delete, check.Record)
	redirect(w, r, "/catalog/authors")
}

func (h *AuthorHandler) renderForm(w http.ResponseWriter, r *http.Request, title string, form map[string]string, errs validator.Errors) {
	h.render(w, r, http.StatusOK, "author_form", views.PageData{Title: title, Form: form, Errors: errs})
}

func (h *AuthorHandler) renderDelete(w http.ResponseWriter, r *http.Request, check guard.Check[*models.Author, models.Book]) {
	h.render(w, r, http.StatusOK, "author_delete", views.PageData{
		Title:  "Delete Author",
		Author: check.Record,
		Books:  bookRows(check.Dependents, check.Record),
	})
}

func authorFromForm(res validator.Result) *models.Author {
	return &models.Author{
		FirstName:   res.Get("first_name"),
		FamilyName:  res.Get("family_name"),
		DateOfBirth: validator.OptionalTime(res.Get("date_of_birth")),
		DateOfDeath: validator.OptionalTime(res.Get("date_of_death")),
	}
}

// bookRows pairs books with a known author, or leaves the author unset.
func bookRows(books []models.Book, author *models.Author) []views.BookRow {
	rows := make([]views.BookRow, len(books))
	for i, b := range books {
		rows[i] = views.BookRow{Book: b, Author: author}
	}
	return rows
}
