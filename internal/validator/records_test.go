package validator

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"local-library/internal/models"
)

func TestBookInstanceRules(t *testing.T) {
	book := primitive.NewObjectID().Hex()

	t.Run("status defaults to maintenance", func(t *testing.T) {
		res := BookInstanceRules.Run(url.Values{"book": {book}, "imprint": {"Ace"}})
		require.True(t, res.Valid())
		assert.Equal(t, string(models.DefaultCopyStatus), res.Get("status"))
	})

	t.Run("every known status passes", func(t *testing.T) {
		for _, s := range models.CopyStatuses {
			res := BookInstanceRules.Run(url.Values{"book": {book}, "imprint": {"Ace"}, "status": {string(s)}})
			assert.True(t, res.Valid(), s)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		res := BookInstanceRules.Run(url.Values{"book": {book}, "imprint": {"Ace"}, "status": {"available"}})
		assert.Equal(t, Errors{{Field: "status", Message: "Status must be one of Available, Maintenance, Loaned or Reserved."}}, res.Errors)
	})

	t.Run("missing book is reported once", func(t *testing.T) {
		res := BookInstanceRules.Run(url.Values{"imprint": {"Ace"}})
		assert.Equal(t, Errors{{Field: "book", Message: "Book must be specified."}}, res.Errors)
	})

	t.Run("malformed book", func(t *testing.T) {
		res := BookInstanceRules.Run(url.Values{"book": {"dune"}, "imprint": {"Ace"}})
		assert.Equal(t, Errors{{Field: "book", Message: "Book must be an existing book."}}, res.Errors)
		assert.Equal(t, primitive.NilObjectID, res.ObjectIDOf("book"))
	})
}

func TestBookRules(t *testing.T) {
	author := primitive.NewObjectID()
	genre := primitive.NewObjectID()

	res := BookRules.Run(url.Values{
		"title":   {" Dune "},
		"author":  {author.Hex()},
		"summary": {"Spice."},
		"isbn":    {"9780441013593"},
		"genre":   {genre.Hex(), genre.Hex(), "x"},
	})
	assert.Equal(t, Errors{{Field: "genre", Message: "Genre is invalid."}}, res.Errors)
	assert.Equal(t, author, res.ObjectIDOf("author"))
	assert.Equal(t, []primitive.ObjectID{genre}, res.ObjectIDs("genre"))

	t.Run("no genres", func(t *testing.T) {
		res := BookRules.Run(url.Values{"title": {"t"}, "author": {author.Hex()}, "summary": {"s"}, "isbn": {"i"}})
		require.True(t, res.Valid())
		assert.NotNil(t, res.ObjectIDs("genre"))
		assert.Empty(t, res.ObjectIDs("genre"))
	})
}

func TestAuthorRules(t *testing.T) {
	res := AuthorRules.Run(url.Values{"first_name": {"J.R.R."}, "family_name": {""}})
	assert.Equal(t, Errors{
		{Field: "first_name", Message: "First name has non-alphanumeric characters."},
		{Field: "family_name", Message: "Family name must be specified."},
	}, res.Errors)
}
