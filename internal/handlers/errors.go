package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"local-library/internal/middleware"
	"local-library/internal/store"
	"local-library/internal/views"
)

// logError logs an internal error with the request method, URL and id.
func (d Deps) logError(r *http.Request, err error) {
	d.Logger.Error(err.Error(),
		slog.String("request_id", middleware.RequestIDFrom(r.Context())),
		slog.String("request_method", r.Method),
		slog.String("request_url", r.URL.String()),
	)
}

// render writes a page, falling back to a bare 500 when the template fails.
func (d Deps) render(w http.ResponseWriter, r *http.Request, status int, page string, data views.PageData) {
	if err := d.Views.Render(w, status, page, data); err != nil {
		d.logError(r, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (d Deps) errorPage(w http.ResponseWriter, r *http.Request, status int, message string) {
	d.render(w, r, status, "error", views.PageData{Title: http.StatusText(status), Message: message})
}

func (d Deps) notFound(w http.ResponseWriter, r *http.Request, message string) {
	d.errorPage(w, r, http.StatusNotFound, message)
}

func (d Deps) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	d.errorPage(w, r, http.StatusBadRequest, err.Error())
}

func (d Deps) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	d.errorPage(w, r, http.StatusMethodNotAllowed, "The "+r.Method+" method is not supported for this page.")
}

// serverError logs err and shows a generic failure page. Store details never
// reach the client.
func (d Deps) serverError(w http.ResponseWriter, r *http.Request, err error) {
	d.logError(r, err)
	d.errorPage(w, r, http.StatusInternalServerError, "The server encountered a problem and could not process your request.")
}

func (d Deps) rateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	d.errorPage(w, r, http.StatusTooManyRequests, "Rate limit exceeded. Please slow down.")
}

// fail is the single boundary for store errors: a missing record becomes a
// 404 page naming it, anything else a 500.
func (d Deps) fail(w http.ResponseWriter, r *http.Request, err error, what string) {
	if errors.Is(err, store.ErrNotFound) {
		d.notFound(w, r, what+" not found")
		return
	}
	d.serverError(w, r, err)
}
