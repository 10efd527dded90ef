package views

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"local-library/internal/models"
	"local-library/internal/validator"
)

func TestNewParsesEveryPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	for _, resource := range []string{"author", "book", "bookinstance", "genre"} {
		for _, page := range []string{"list", "detail", "form", "delete"} {
			assert.True(t, r.Has(resource+"_"+page), resource+"_"+page)
		}
	}
	assert.True(t, r.Has("index"))
	assert.True(t, r.Has("error"))
	assert.False(t, r.Has("layout"))
}

func TestRender(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	t.Run("unknown page", func(t *testing.T) {
		w := httptest.NewRecorder()
		assert.Error(t, r.Render(w, http.StatusOK, "missing", PageData{}))
		assert.Empty(t, w.Body.String())
	})

	t.Run("status and content type", func(t *testing.T) {
		w := httptest.NewRecorder()
		require.NoError(t, r.Render(w, http.StatusNotFound, "error", PageData{Title: "Not Found", Message: "Author not found"}))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "Author not found")
	})

	t.Run("stored text is escaped once", func(t *testing.T) {
		w := httptest.NewRecorder()
		genre := &models.Genre{ID: primitive.NewObjectID(), Name: "Sword &amp; Sorcery"}
		require.NoError(t, r.Render(w, http.StatusOK, "genre_detail", PageData{Title: "Genre Detail", Genre: genre}))

		body := w.Body.String()
		assert.Contains(t, body, "Genre: Sword &amp; Sorcery")
		assert.NotContains(t, body, "&amp;amp;")
	})

	t.Run("form values and errors", func(t *testing.T) {
		w := httptest.NewRecorder()
		data := PageData{
			Title:  "Create Author",
			Form:   map[string]string{"first_name": "  <Ann>  ", "family_name": ""},
			Errors: validator.Errors{{Field: "family_name", Message: "Family name must be specified."}},
		}
		require.NoError(t, r.Render(w, http.StatusOK, "author_form", data))

		body := w.Body.String()
		assert.Contains(t, body, `value="  &lt;Ann&gt;  "`)
		assert.Contains(t, body, "Family name must be specified.")
	})

	t.Run("copy list with due dates", func(t *testing.T) {
		now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		due := now.Add(72 * time.Hour)
		book := &models.Book{ID: primitive.NewObjectID(), Title: "Dune"}

		w := httptest.NewRecorder()
		data := PageData{
			Title: "Book Instance List",
			Now:   now,
			Copies: []CopyRow{
				{Copy: models.BookInstance{ID: primitive.NewObjectID(), Imprint: "Ace", Status: models.StatusLoaned, DueBack: &due}, Book: book},
				{Copy: models.BookInstance{ID: primitive.NewObjectID(), Imprint: "Chilton", Status: models.StatusAvailable}},
			},
		}
		require.NoError(t, r.Render(w, http.StatusOK, "bookinstance_list", data))

		body := w.Body.String()
		assert.Contains(t, body, "Dune : Ace")
		assert.Contains(t, body, "Due: Mar 4, 2024, 3 days from now")
		assert.Contains(t, body, "Unknown book : Chilton")
	})

	t.Run("index counts", func(t *testing.T) {
		w := httptest.NewRecorder()
		data := PageData{Title: "Local Library Home", Counts: map[string]int64{"book_count": 1200, "genre_count": 3}}
		require.NoError(t, r.Render(w, http.StatusOK, "index", data))

		body := w.Body.String()
		assert.Contains(t, body, `<span id="book_count">1,200</span>`)
		assert.Contains(t, body, `<span id="genre_count">3</span>`)
		assert.Contains(t, body, `<span id="author_count">0</span>`)
	})
}
