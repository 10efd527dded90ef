package handlers_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"local-library/internal/models"
	"local-library/internal/store"
)

func TestCopyHandler_Create(t *testing.T) {
	t.Run("status defaults to maintenance", func(t *testing.T) {
		app := newTestApp(t)
		dune := app.book(t, "Dune", app.author(t, "Frank", "Herbert"))

		w := app.post(t, "/catalog/bookinstance/create", url.Values{
			"book":    {dune.ID.Hex()},
			"imprint": {" Ace, 1990 "},
		})
		require.Equal(t, http.StatusSeeOther, w.Code)

		copies, err := app.stores.BookInstances.ListByBook(context.Background(), dune.ID)
		require.NoError(t, err)
		require.Len(t, copies, 1)
		assert.Equal(t, models.BookInstanceURL(copies[0].ID), w.Header().Get("Location"))
		assert.Equal(t, "Ace, 1990", copies[0].Imprint)
		assert.Equal(t, models.StatusMaintenance, copies[0].Status)
		assert.Nil(t, copies[0].DueBack)
	})

	t.Run("due date is parsed", func(t *testing.T) {
		app := newTestApp(t)
		dune := app.book(t, "Dune", app.author(t, "Frank", "Herbert"))

		w := app.post(t, "/catalog/bookinstance/create", url.Values{
			"book":     {dune.ID.Hex()},
			"imprint":  {"Ace"},
			"status":   {"Loaned"},
			"due_back": {"2024-03-04"},
		})
		require.Equal(t, http.StatusSeeOther, w.Code)

		copies, err := app.stores.BookInstances.List(context.Background())
		require.NoError(t, err)
		require.Len(t, copies, 1)
		assert.Equal(t, models.StatusLoaned, copies[0].Status)
		assert.Equal(t, "Mar 4, 2024", models.DueBackLabel(copies[0]))
	})

	t.Run("invalid values", func(t *testing.T) {
		app := newTestApp(t)
		dune := app.book(t, "Dune", app.author(t, "Frank", "Herbert"))

		w := app.post(t, "/catalog/bookinstance/create", url.Values{
			"book":     {dune.ID.Hex()},
			"imprint":  {""},
			"status":   {"Lost"},
			"due_back": {"2023-02-29"},
		})
		require.Equal(t, http.StatusOK, w.Code)

		body := w.Body.String()
		assert.Contains(t, body, "Imprint must be specified.")
		assert.Contains(t, body, "Status must be one of")
		assert.Contains(t, body, "Invalid date")
		assert.Contains(t, body, `value="2023-02-29"`)
		assert.Contains(t, body, `<option value="`+dune.ID.Hex()+`" selected>`)

		n, err := app.stores.BookInstances.Count(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestCopyHandler_Pages(t *testing.T) {
	app := newTestApp(t)
	dune := app.book(t, "Dune", app.author(t, "Frank", "Herbert"))
	bi := app.copy(t, dune, models.StatusReserved)

	t.Run("list joins book titles", func(t *testing.T) {
		w := app.get(t, "/catalog/bookinstances")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Dune : Ace, 1990")
	})

	t.Run("detail", func(t *testing.T) {
		w := app.get(t, models.BookInstanceURL(bi.ID))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "<title>Copy of Dune</title>")
		assert.Contains(t, w.Body.String(), "Reserved")
	})

	t.Run("update form selects the current book and status", func(t *testing.T) {
		w := app.get(t, models.BookInstanceURL(bi.ID)+"/update")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `<option value="`+dune.ID.Hex()+`" selected>`)
		assert.Contains(t, w.Body.String(), `<option value="Reserved" selected>`)
	})

	t.Run("update", func(t *testing.T) {
		w := app.post(t, models.BookInstanceURL(bi.ID)+"/update", url.Values{
			"book":    {dune.ID.Hex()},
			"imprint": {"Ace, 1990"},
			"status":  {"Available"},
		})
		require.Equal(t, http.StatusSeeOther, w.Code)

		got, err := app.stores.BookInstances.Get(context.Background(), bi.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusAvailable, got.Status)
	})

	t.Run("missing copy", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, app.get(t, models.BookInstanceURL(primitive.NewObjectID())).Code)
	})

	t.Run("delete is never blocked", func(t *testing.T) {
		w := app.get(t, models.BookInstanceURL(bi.ID)+"/delete")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Do you really want to delete this book instance?")

		w = app.post(t, models.BookInstanceURL(bi.ID)+"/delete", nil)
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/catalog/bookinstances", w.Header().Get("Location"))

		_, err := app.stores.BookInstances.Get(context.Background(), bi.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}
