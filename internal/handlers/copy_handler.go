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

// CopyHandler serves book instances, the physical copies of a book.
type CopyHandler struct {
	Deps
	deletes guard.Policy[*models.BookInstance, struct{}]
}

func NewCopyHandler(d Deps) *CopyHandler {
	return &CopyHandler{
		Deps: d,
		// nothing references a copy
		deletes: guard.Policy[*models.BookInstance, struct{}]{
			Kind:   models.BookInstanceEntity,
			Load:   d.Stores.BookInstances.Get,
			Remove: d.Stores.BookInstances.Delete,
		},
	}
}

// GET /catalog/bookinstances
func (h *CopyHandler) List(w http.ResponseWriter, r *http.Request) {
	results, err := parallel.Run(r.Context(), parallel.Tasks{
		"bookinstances": func(ctx context.Context) (any, error) { return h.Stores.BookInstances.List(ctx) },
		"books":         func(ctx context.Context) (any, error) { return h.Stores.Books.List(ctx) },
	})
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	books := make(map[primitive.ObjectID]*models.Book)
	for _, b := range parallel.Value[[]models.Book](results, "books") {
		b := b
		books[b.ID] = &b
	}

	copies := parallel.Value[[]models.BookInstance](results, "bookinstances")
	rows := make([]views.CopyRow, len(copies))
	for i, c := range copies {
		rows[i] = views.CopyRow{Copy: c, Book: books[c.Book]}
	}
	h.render(w, r, http.StatusOK, "bookinstance_list", views.PageData{Title: "Book Instance List", Copies: rows})
}

// GET /catalog/bookinstance/{id}
func (h *CopyHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	bi, err := h.Stores.BookInstances.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Book copy")
		return
	}
	book, err := h.optionalBook(r.Context(), bi.Book)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	title := "Copy"
	if book != nil {
		title = "Copy of " + book.Title
	}
	h.render(w, r, http.StatusOK, "bookinstance_detail", views.PageData{Title: title, Copy: bi, Book: book})
}

// GET /catalog/bookinstance/create
func (h *CopyHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, "Create Book Instance", map[string]string{}, nil)
}

// POST /catalog/bookinstance/create
func (h *CopyHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}

	res := validator.BookInstanceRules.Run(form)
	bi := copyFromForm(res)
	if !res.Valid() {
		h.renderForm(w, r, "Create Book Instance", rawForm(form, copyFields...), res.Errors)
		return
	}

	if err := h.Stores.BookInstances.Create(r.Context(), bi); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.audit(r.Context(), r, models.BookInstanceEntity, constants.Create, bi)
	redirect(w, r, models.BookInstanceURL(bi.ID))
}

// GET /catalog/bookinstance/{id}/update
func (h *CopyHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	results, err := parallel.Run(r.Context(), parallel.Tasks{
		"bookinstance": func(ctx context.Context) (any, error) { return h.Stores.BookInstances.Get(ctx, id) },
		"books":        func(ctx context.Context) (any, error) { return h.Stores.Books.List(ctx) },
	})
	if err != nil {
		h.fail(w, r, err, "Book copy")
		return
	}

	bi := parallel.Value[*models.BookInstance](results, "bookinstance")
	form := map[string]string{
		"book":     bi.Book.Hex(),
		"imprint":  unescape(bi.Imprint),
		"status":   string(bi.Status),
		"due_back": models.FormatDate(bi.DueBack),
	}
	h.render(w, r, http.StatusOK, "bookinstance_form", views.PageData{
		Title: "Update Book Instance",
		Form:  form,
		Options: map[string][]views.Option{
			"book":   bookOptions(parallel.Value[[]models.Book](results, "books"), form["book"]),
			"status": statusOptions(form["status"]),
		},
	})
}

// POST /catalog/bookinstance/{id}/update
func (h *CopyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}

	res := validator.BookInstanceRules.Run(form)
	bi := copyFromForm(res)
	if !res.Valid() {
		h.renderForm(w, r, "Update Book Instance", rawForm(form, copyFields...), res.Errors)
		return
	}

	bi.ID = id
	if err := h.Stores.BookInstances.Update(r.Context(), bi); err != nil {
		h.fail(w, r, err, "Book copy")
		return
	}
	h.audit(r.Context(), r, models.BookInstanceEntity, constants.Update, bi)
	redirect(w, r, models.BookInstanceURL(bi.ID))
}

// GET /catalog/bookinstance/{id}/delete
func (h *CopyHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	check, err := h.deletes.Inspect(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Book copy")
		return
	}
	h.renderDelete(w, r, check.Record)
}

// POST /catalog/bookinstance/{id}/delete
func (h *CopyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	check, err := h.deletes.Delete(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Book copy")
		return
	}

	h.audit(r.Context(), r, models.BookInstanceEntity, constants.Delete, check.Record)
	redirect(w, r, "/catalog/bookinstances")
}

func (h *CopyHandler) renderForm(w http.ResponseWriter, r *http.Request, title string, form map[string]string, errs validator.Errors) {
	books, err := h.Stores.Books.List(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "bookinstance_form", views.PageData{
		Title:  title,
		Form:   form,
		Errors: errs,
		Options: map[string][]views.Option{
			"book":   bookOptions(books, form["book"]),
			"status": statusOptions(form["status"]),
		},
	})
}

func (h *CopyHandler) renderDelete(w http.ResponseWriter, r *http.Request, bi *models.BookInstance) {
	book, err := h.optionalBook(r.Context(), bi.Book)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "bookinstance_delete", views.PageData{Title: "Delete Book Instance", Copy: bi, Book: book})
}

// optionalBook loads a copy's book, returning nil when it no longer exists.
func (h *CopyHandler) optionalBook(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	book, err := h.Stores.Books.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return book, err
}

func copyFromForm(res validator.Result) *models.BookInstance {
	return &models.BookInstance{
		Book:    res.ObjectIDOf("book"),
		Imprint: res.Get("imprint"),
		Status:  models.CopyStatus(res.Get("status")),
		DueBack: validator.OptionalTime(res.Get("due_back")),
	}
}
