// Package store persists catalog records.
//
// Every collection is reachable through a small interface so handlers can be
// wired either to MongoDB (NewMongoStores) or to the in-process backend
// (NewMemoryStores). Both backends are safe for concurrent use.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"local-library/internal/models"
)

// ErrNotFound is returned when no record matches an id or lookup key.
var ErrNotFound = errors.New("record not found")

// Error wraps a failure reported by the underlying database.
type Error struct {
	Op         string
	Collection string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

const (
	AuthorCollection       = "authors"
	BookCollection         = "books"
	BookInstanceCollection = "bookinstances"
	GenreCollection        = "genres"
	AuditLogCollection     = "audit_logs"
)

type AuthorStore interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Author, error)
	// List returns every author ordered by family name.
	List(ctx context.Context) ([]models.Author, error)
	Create(ctx context.Context, a *models.Author) error
	Update(ctx context.Context, a *models.Author) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

type GenreStore interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Genre, error)
	List(ctx context.Context) ([]models.Genre, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Genre, error)
	FindByName(ctx context.Context, name string) (*models.Genre, error)
	Create(ctx context.Context, g *models.Genre) error
	Update(ctx context.Context, g *models.Genre) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

type BookStore interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Book, error)
	List(ctx context.Context) ([]models.Book, error)
	ListByAuthor(ctx context.Context, author primitive.ObjectID) ([]models.Book, error)
	ListByGenre(ctx context.Context, genre primitive.ObjectID) ([]models.Book, error)
	Create(ctx context.Context, b *models.Book) error
	Update(ctx context.Context, b *models.Book) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

type BookInstanceStore interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.BookInstance, error)
	List(ctx context.Context) ([]models.BookInstance, error)
	ListByBook(ctx context.Context, book primitive.ObjectID) ([]models.BookInstance, error)
	Create(ctx context.Context, bi *models.BookInstance) error
	Update(ctx context.Context, bi *models.BookInstance) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status models.CopyStatus) (int64, error)
}

type AuditStore interface {
	Insert(ctx context.Context, l *models.AuditLog) error
	ListUnexported(ctx context.Context) ([]models.AuditLog, error)
	MarkExported(ctx context.Context, ids []primitive.ObjectID) error
}

// Stores groups the catalog collections handed to handlers at construction.
type Stores struct {
	Authors       AuthorStore
	Books         BookStore
	BookInstances BookInstanceStore
	Genres        GenreStore
	AuditLogs     AuditStore
}
