package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"local-library/internal/models"
)

func TestMongoAuthors(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	if mt.Client != nil {
		defer mt.Client.Disconnect(context.Background())
	}

	mt.Run("get decodes the document", func(mt *mtest.T) {
		stores := NewMongoStores(mt.DB, 0)
		id := primitive.NewObjectID()

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.authors", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "first_name", Value: "Isaac"},
			{Key: "family_name", Value: "Asimov"},
		}))

		author, err := stores.Authors.Get(context.Background(), id)
		require.NoError(mt, err)
		assert.Equal(mt, id, author.ID)
		assert.Equal(mt, "Asimov, Isaac", models.AuthorName(*author))
		assert.Nil(mt, author.DateOfBirth)
	})

	mt.Run("get reports missing documents", func(mt *mtest.T) {
		stores := NewMongoStores(mt.DB, 0)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.authors", mtest.FirstBatch))

		_, err := stores.Authors.Get(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("list returns every document", func(mt *mtest.T) {
		stores := NewMongoStores(mt.DB, 0)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.authors", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "family_name", Value: "Asimov"}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "family_name", Value: "Banks"}},
		))

		authors, err := stores.Authors.List(context.Background())
		require.NoError(mt, err)
		require.Len(mt, authors, 2)
		assert.Equal(mt, "Banks", authors[1].FamilyName)
	})

	mt.Run("empty list is not nil", func(mt *mtest.T) {
		stores := NewMongoStores(mt.DB, 0)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.authors", mtest.FirstBatch))

		authors, err := stores.Authors.List(context.Background())
		require.NoError(mt, err)
		assert.NotNil(mt, authors)
		assert.Empty(mt, authors)
	})

	mt.Run("create assigns an id", func(mt *mtest.T) {
		stores := NewMongoStores(mt.DB, 0)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		a := &models.Author{FirstName: "Iain", FamilyName: "Banks"}
		require.NoError(mt, stores.Authors.Create(context.Background(), a))
		assert.False(mt, a.ID.IsZero())
	})

	mt.Run("update of unknown id", func(mt *mtest.T) {
		stores := NewMongoStores(mt.DB, 0)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := stores.Authors.Update(context.Background(), &models.Author{ID: primitive.NewObjectID()})
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		stores := NewMongoStores(mt.DB, 0)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)

		id := primitive.NewObjectID()
		assert.NoError(mt, stores.Authors.Delete(context.Background(), id))
		assert.ErrorIs(mt, stores.Authors.Delete(context.Background(), id), ErrNotFound)
	})

	mt.Run("driver failures are wrapped", func(mt *mtest.T) {
		stores := NewMongoStores(mt.DB, 0)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad filter",
		}))

		_, err := stores.Authors.List(context.Background())
		require.Error(mt, err)

		var storeErr *Error
		require.True(mt, errors.As(err, &storeErr))
		assert.Equal(mt, "find", storeErr.Op)
		assert.Equal(mt, AuthorCollection, storeErr.Collection)
		assert.False(mt, errors.Is(err, ErrNotFound))
	})
}

func TestMongoBooksAndGenres(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	if mt.Client != nil {
		defer mt.Client.Disconnect(context.Background())
	}

	mt.Run("books by genre decode genre lists", func(mt *mtest.T) {
		stores := NewMongoStores(mt.DB, 0)
		genre := primitive.NewObjectID()

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.books", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "title", Value: "Dune"},
			{Key: "genre", Value: bson.A{genre}},
		}))

		books, err := stores.Books.ListByGenre(context.Background(), genre)
		require.NoError(mt, err)
		require.Len(mt, books, 1)
		assert.True(mt, books[0].HasGenre(genre))
	})

	mt.Run("genre lookup by name", func(mt *mtest.T) {
		stores := NewMongoStores(mt.DB, 0)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.genres", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "Fantasy"},
		}))

		g, err := stores.Genres.FindByName(context.Background(), "Fantasy")
		require.NoError(mt, err)
		assert.Equal(mt, id, g.ID)
	})

	mt.Run("no ids means no query", func(mt *mtest.T) {
		stores := NewMongoStores(mt.DB, 0)

		genres, err := stores.Genres.ListByIDs(context.Background(), nil)
		require.NoError(mt, err)
		assert.Empty(mt, genres)
	})

	mt.Run("count copies by status", func(mt *mtest.T) {
		stores := NewMongoStores(mt.DB, 0)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.bookinstances", mtest.FirstBatch, bson.D{
			{Key: "n", Value: int64(3)},
		}))

		n, err := stores.BookInstances.CountByStatus(context.Background(), models.StatusAvailable)
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), n)
	})

	mt.Run("mark audit logs exported", func(mt *mtest.T) {
		stores := NewMongoStores(mt.DB, 0)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 2},
			bson.E{Key: "nModified", Value: 2},
		))

		err := stores.AuditLogs.MarkExported(context.Background(), []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()})
		assert.NoError(mt, err)
	})
}
