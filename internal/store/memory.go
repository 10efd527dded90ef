package store

import (
	"context"
	"slices"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"local-library/internal/models"
)

// NewMemoryStores returns process-local stores, used for development runs
// without a database and by tests. Records keep insertion order.
func NewMemoryStores() Stores {
	return Stores{
		Authors: &memoryAuthors{newMemoryCollection[models.Author](nil)},
		Books: &memoryBooks{newMemoryCollection[models.Book](func(b models.Book) models.Book {
			b.Genre = slices.Clone(b.Genre)
			return b
		})},
		BookInstances: &memoryBookInstances{newMemoryCollection[models.BookInstance](nil)},
		Genres:        &memoryGenres{newMemoryCollection[models.Genre](nil)},
		AuditLogs:     &memoryAuditLogs{newMemoryCollection[models.AuditLog](nil)},
	}
}

// memoryCollection is a thread-safe ordered document map.
type memoryCollection[T any, PT interface {
	*T
	models.Record
}] struct {
	mu    sync.RWMutex
	docs  map[primitive.ObjectID]T
	order []primitive.ObjectID
	clone func(T) T
}

func newMemoryCollection[T any, PT interface {
	*T
	models.Record
}](clone func(T) T) *memoryCollection[T, PT] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &memoryCollection[T, PT]{
		docs:  make(map[primitive.ObjectID]T),
		clone: clone,
	}
}

func (c *memoryCollection[T, PT]) get(ctx context.Context, id primitive.ObjectID) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	doc, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := c.clone(doc)
	return &out, nil
}

// filter returns copies of matching documents in insertion order.
func (c *memoryCollection[T, PT]) filter(ctx context.Context, match func(PT) bool) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []T{}
	for _, id := range c.order {
		doc := c.clone(c.docs[id])
		if match == nil || match(PT(&doc)) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (c *memoryCollection[T, PT]) first(ctx context.Context, match func(PT) bool) (*T, error) {
	docs, err := c.filter(ctx, match)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return &docs[0], nil
}

func (c *memoryCollection[T, PT]) count(ctx context.Context, match func(PT) bool) (int64, error) {
	docs, err := c.filter(ctx, match)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

func (c *memoryCollection[T, PT]) insert(ctx context.Context, doc PT) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if doc.GetID().IsZero() {
		doc.SetID(primitive.NewObjectID())
	}
	if _, exists := c.docs[doc.GetID()]; !exists {
		c.order = append(c.order, doc.GetID())
	}
	c.docs[doc.GetID()] = c.clone(*doc)
	return nil
}

func (c *memoryCollection[T, PT]) replace(ctx context.Context, doc PT) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.docs[doc.GetID()]; !ok {
		return ErrNotFound
	}
	c.docs[doc.GetID()] = c.clone(*doc)
	return nil
}

func (c *memoryCollection[T, PT]) delete(ctx context.Context, id primitive.ObjectID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.docs[id]; !ok {
		return ErrNotFound
	}
	delete(c.docs, id)
	c.order = slices.DeleteFunc(c.order, func(o primitive.ObjectID) bool { return o == id })
	return nil
}

type memoryAuthors struct {
	*memoryCollection[models.Author, *models.Author]
}

func (s *memoryAuthors) Get(ctx context.Context, id primitive.ObjectID) (*models.Author, error) {
	return s.get(ctx, id)
}

func (s *memoryAuthors) List(ctx context.Context) ([]models.Author, error) {
	authors, err := s.filter(ctx, nil)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(authors, func(i, j int) bool {
		return authors[i].FamilyName < authors[j].FamilyName
	})
	return authors, nil
}

func (s *memoryAuthors) Create(ctx context.Context, a *models.Author) error {
	return s.insert(ctx, a)
}

func (s *memoryAuthors) Update(ctx context.Context, a *models.Author) error {
	return s.replace(ctx, a)
}

func (s *memoryAuthors) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.delete(ctx, id)
}

func (s *memoryAuthors) Count(ctx context.Context) (int64, error) {
	return s.count(ctx, nil)
}

type memoryGenres struct {
	*memoryCollection[models.Genre, *models.Genre]
}

func (s *memoryGenres) Get(ctx context.Context, id primitive.ObjectID) (*models.Genre, error) {
	return s.get(ctx, id)
}

func (s *memoryGenres) List(ctx context.Context) ([]models.Genre, error) {
	return s.filter(ctx, nil)
}

func (s *memoryGenres) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Genre, error) {
	return s.filter(ctx, func(g *models.Genre) bool {
		return slices.Contains(ids, g.ID)
	})
}

func (s *memoryGenres) FindByName(ctx context.Context, name string) (*models.Genre, error) {
	return s.first(ctx, func(g *models.Genre) bool { return g.Name == name })
}

func (s *memoryGenres) Create(ctx context.Context, g *models.Genre) error {
	return s.insert(ctx, g)
}

func (s *memoryGenres) Update(ctx context.Context, g *models.Genre) error {
	return s.replace(ctx, g)
}

func (s *memoryGenres) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.delete(ctx, id)
}

func (s *memoryGenres) Count(ctx context.Context) (int64, error) {
	return s.count(ctx, nil)
}

type memoryBooks struct {
	*memoryCollection[models.Book, *models.Book]
}

func (s *memoryBooks) Get(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	return s.get(ctx, id)
}

func (s *memoryBooks) List(ctx context.Context) ([]models.Book, error) {
	return s.filter(ctx, nil)
}

func (s *memoryBooks) ListByAuthor(ctx context.Context, author primitive.ObjectID) ([]models.Book, error) {
	return s.filter(ctx, func(b *models.Book) bool { return b.Author == author })
}

func (s *memoryBooks) ListByGenre(ctx context.Context, genre primitive.ObjectID) ([]models.Book, error) {
	return s.filter(ctx, func(b *models.Book) bool { return b.HasGenre(genre) })
}

func (s *memoryBooks) Create(ctx context.Context, b *models.Book) error {
	return s.insert(ctx, b)
}

func (s *memoryBooks) Update(ctx context.Context, b *models.Book) error {
	return s.replace(ctx, b)
}

func (s *memoryBooks) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.delete(ctx, id)
}

func (s *memoryBooks) Count(ctx context.Context) (int64, error) {
	return s.count(ctx, nil)
}

type memoryBookInstances struct {
	*memoryCollection[models.BookInstance, *models.BookInstance]
}

func (s *memoryBookInstances) Get(ctx context.Context, id primitive.ObjectID) (*models.BookInstance, error) {
	return s.get(ctx, id)
}

func (s *memoryBookInstances) List(ctx context.Context) ([]models.BookInstance, error) {
	return s.filter(ctx, nil)
}

func (s *memoryBookInstances) ListByBook(ctx context.Context, book primitive.ObjectID) ([]models.BookInstance, error) {
	return s.filter(ctx, func(bi *models.BookInstance) bool { return bi.Book == book })
}

func (s *memoryBookInstances) Create(ctx context.Context, bi *models.BookInstance) error {
	return s.insert(ctx, bi)
}

func (s *memoryBookInstances) Update(ctx context.Context, bi *models.BookInstance) error {
	return s.replace(ctx, bi)
}

func (s *memoryBookInstances) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.delete(ctx, id)
}

func (s *memoryBookInstances) Count(ctx context.Context) (int64, error) {
	return s.count(ctx, nil)
}

func (s *memoryBookInstances) CountByStatus(ctx context.Context, status models.CopyStatus) (int64, error) {
	return s.count(ctx, func(bi *models.BookInstance) bool { return bi.Status == status })
}

type memoryAuditLogs struct {
	*memoryCollection[models.AuditLog, *models.AuditLog]
}

func (s *memoryAuditLogs) Insert(ctx context.Context, l *models.AuditLog) error {
	return s.insert(ctx, l)
}

func (s *memoryAuditLogs) ListUnexported(ctx context.Context) ([]models.AuditLog, error) {
	return s.filter(ctx, func(l *models.AuditLog) bool { return !l.Exported })
}

func (s *memoryAuditLogs) MarkExported(ctx context.Context, ids []primitive.ObjectID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if l, ok := s.docs[id]; ok {
			l.Exported = true
			s.docs[id] = l
		}
	}
	return nil
}
