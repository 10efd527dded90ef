package handlers_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"local-library/internal/handlers"
	"local-library/internal/models"
	"local-library/internal/store"
	"local-library/internal/utils"
	"local-library/internal/views"
)

type testApp struct {
	handler http.Handler
	stores  store.Stores
	deps    handlers.Deps
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWith(t, store.NewMemoryStores())
}

func newTestAppWith(t *testing.T, stores store.Stores) *testApp {
	t.Helper()

	renderer, err := views.New()
	require.NoError(t, err)

	deps := handlers.Deps{
		Stores:      stores,
		Views:       renderer,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		AuditLogger: utils.NewAuditLogger(stores.AuditLogs),
	}
	return &testApp{handler: handlers.NewRouter(deps), stores: stores, deps: deps}
}

func (a *testApp) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func (a *testApp) post(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func (a *testApp) author(t *testing.T, first, family string) *models.Author {
	t.Helper()
	author := &models.Author{FirstName: first, FamilyName: family}
	require.NoError(t, a.stores.Authors.Create(context.Background(), author))
	return author
}

func (a *testApp) genre(t *testing.T, name string) *models.Genre {
	t.Helper()
	genre := &models.Genre{Name: name}
	require.NoError(t, a.stores.Genres.Create(context.Background(), genre))
	return genre
}

func (a *testApp) book(t *testing.T, title string, author *models.Author, genres ...*models.Genre) *models.Book {
	t.Helper()
	book := &models.Book{Title: title, Author: author.ID, Summary: "A summary", ISBN: "9780441013593"}
	for _, g := range genres {
		book.Genre = append(book.Genre, g.ID)
	}
	require.NoError(t, a.stores.Books.Create(context.Background(), book))
	return book
}

func (a *testApp) copy(t *testing.T, book *models.Book, status models.CopyStatus) *models.BookInstance {
	t.Helper()
	bi := &models.BookInstance{Book: book.ID, Imprint: "Ace, 1990", Status: status}
	require.NoError(t, a.stores.BookInstances.Create(context.Background(), bi))
	return bi
}

func (a *testApp) auditActions(t *testing.T) []string {
	t.Helper()
	logs, err := a.stores.AuditLogs.ListUnexported(context.Background())
	require.NoError(t, err)
	out := make([]string, len(logs))
	for i, l := range logs {
		out[i] = l.Entity + ":" + l.Action
	}
	return out
}

var errDatabaseDown = errors.New("connection refused by 10.0.0.5:27017")

// brokenAuthors fails every read, standing in for a lost database.
type brokenAuthors struct {
	store.AuthorStore
}

func (brokenAuthors) List(context.Context) ([]models.Author, error) {
	return nil, &store.Error{Op: "find", Collection: store.AuthorCollection, Err: errDatabaseDown}
}

func (brokenAuthors) Count(context.Context) (int64, error) {
	return 0, &store.Error{Op: "count", Collection: store.AuthorCollection, Err: errDatabaseDown}
}
