package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"local-library/internal/middleware"
)

// resource is the set of pages every catalog record type exposes.
type resource interface {
	List(w http.ResponseWriter, r *http.Request)
	Detail(w http.ResponseWriter, r *http.Request)
	CreateForm(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	UpdateForm(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	DeleteForm(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

const idPattern = "{id:[0-9a-fA-F]{24}}"

// mount registers the pages of one resource:
//
//	GET  /catalog/<name>s
//	GET  /catalog/<name>/create         POST /catalog/<name>/create
//	GET  /catalog/<name>/{id}
//	GET  /catalog/<name>/{id}/update    POST /catalog/<name>/{id}/update
//	GET  /catalog/<name>/{id}/delete    POST /catalog/<name>/{id}/delete
func mount(r *mux.Router, name string, h resource) {
	base := "/catalog/" + name
	record := fmt.Sprintf("%s/%s", base, idPattern)

	r.HandleFunc(base+"s", h.List).Methods(http.MethodGet)
	r.HandleFunc(base+"/create", h.CreateForm).Methods(http.MethodGet)
	r.HandleFunc(base+"/create", h.Create).Methods(http.MethodPost)
	r.HandleFunc(record, h.Detail).Methods(http.MethodGet)
	r.HandleFunc(record+"/update", h.UpdateForm).Methods(http.MethodGet)
	r.HandleFunc(record+"/update", h.Update).Methods(http.MethodPost)
	r.HandleFunc(record+"/delete", h.DeleteForm).Methods(http.MethodGet)
	r.HandleFunc(record+"/delete", h.Delete).Methods(http.MethodPost)
}

// NewRouter wires every page and wraps the router in the middleware chain:
//
//	requestID → accessLog → recoverPanic → extra... → router
func NewRouter(d Deps, extra ...mux.MiddlewareFunc) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		d.notFound(w, req, "The requested page could not be found.")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(d.methodNotAllowed)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "OK")
	}).Methods(http.MethodGet)
	r.Handle("/", http.RedirectHandler("/catalog", http.StatusFound)).Methods(http.MethodGet)

	r.HandleFunc("/catalog", NewCatalogHandler(d).Index).Methods(http.MethodGet)
	mount(r, "author", NewAuthorHandler(d))
	mount(r, "book", NewBookHandler(d))
	mount(r, "bookinstance", NewCopyHandler(d))
	mount(r, "genre", NewGenreHandler(d))

	var h http.Handler = r
	for i := len(extra) - 1; i >= 0; i-- {
		h = extra[i](h)
	}
	h = middleware.RecoverPanic(d.serverError)(h)
	h = middleware.AccessLog(d.Logger)(h)
	return middleware.RequestID(h)
}

// RateLimit adapts a per-IP limiter so rejected requests get the error page.
func RateLimit(d Deps, l *middleware.RateLimiter) mux.MiddlewareFunc {
	l.OnLimit = d.rateLimitExceeded
	return l.Handler
}
