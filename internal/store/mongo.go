package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"local-library/internal/models"
)

// NewMongoStores binds every catalog collection of database. Each operation
// runs under timeout (no limit when timeout is zero).
func NewMongoStores(database *mongo.Database, timeout time.Duration) Stores {
	return Stores{
		Authors:       &mongoAuthors{newCollection[models.Author](database.Collection(AuthorCollection), timeout)},
		Books:         &mongoBooks{newCollection[models.Book](database.Collection(BookCollection), timeout)},
		BookInstances: &mongoBookInstances{newCollection[models.BookInstance](database.Collection(BookInstanceCollection), timeout)},
		Genres:        &mongoGenres{newCollection[models.Genre](database.Collection(GenreCollection), timeout)},
		AuditLogs:     &mongoAuditLogs{newCollection[models.AuditLog](database.Collection(AuditLogCollection), timeout)},
	}
}

type collection[T any, PT interface {
	*T
	models.Record
}] struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func newCollection[T any, PT interface {
	*T
	models.Record
}](coll *mongo.Collection, timeout time.Duration) collection[T, PT] {
	return collection[T, PT]{coll: coll, timeout: timeout}
}

func (c collection[T, PT]) withTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.timeout)
}

func (c collection[T, PT]) fail(op string, err error) error {
	return &Error{Op: op, Collection: c.coll.Name(), Err: err}
}

func (c collection[T, PT]) findOne(ctx context.Context, filter any) (*T, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var doc T
	err := c.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, c.fail("find one", err)
	}
	return &doc, nil
}

func (c collection[T, PT]) findByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	return c.findOne(ctx, bson.M{"_id": id})
}

func (c collection[T, PT]) find(ctx context.Context, filter any, opts ...*options.FindOptions) ([]T, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	cursor, err := c.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, c.fail("find", err)
	}
	defer cursor.Close(ctx)

	var docs []T
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, c.fail("decode", err)
	}
	if docs == nil {
		docs = []T{}
	}
	return docs, nil
}

func (c collection[T, PT]) insert(ctx context.Context, doc PT) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if doc.GetID().IsZero() {
		doc.SetID(primitive.NewObjectID())
	}
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return c.fail("insert", err)
	}
	return nil
}

// replace swaps the stored document for doc, keeping its id.
func (c collection[T, PT]) replace(ctx context.Context, doc PT) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.coll.ReplaceOne(ctx, bson.M{"_id": doc.GetID()}, doc)
	if err != nil {
		return c.fail("replace", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c collection[T, PT]) delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return c.fail("delete", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c collection[T, PT]) count(ctx context.Context, filter any) (int64, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	n, err := c.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, c.fail("count", err)
	}
	return n, nil
}

type mongoAuthors struct {
	collection[models.Author, *models.Author]
}

func (s *mongoAuthors) Get(ctx context.Context, id primitive.ObjectID) (*models.Author, error) {
	return s.findByID(ctx, id)
}

func (s *mongoAuthors) List(ctx context.Context) ([]models.Author, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "family_name", Value: 1}}))
}

func (s *mongoAuthors) Create(ctx context.Context, a *models.Author) error {
	return s.insert(ctx, a)
}

func (s *mongoAuthors) Update(ctx context.Context, a *models.Author) error {
	return s.replace(ctx, a)
}

func (s *mongoAuthors) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.delete(ctx, id)
}

func (s *mongoAuthors) Count(ctx context.Context) (int64, error) {
	return s.count(ctx, bson.M{})
}

type mongoGenres struct {
	collection[models.Genre, *models.Genre]
}

func (s *mongoGenres) Get(ctx context.Context, id primitive.ObjectID) (*models.Genre, error) {
	return s.findByID(ctx, id)
}

func (s *mongoGenres) List(ctx context.Context) ([]models.Genre, error) {
	return s.find(ctx, bson.M{})
}

func (s *mongoGenres) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Genre, error) {
	if len(ids) == 0 {
		return []models.Genre{}, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (s *mongoGenres) FindByName(ctx context.Context, name string) (*models.Genre, error) {
	return s.findOne(ctx, bson.M{"name": name})
}

func (s *mongoGenres) Create(ctx context.Context, g *models.Genre) error {
	return s.insert(ctx, g)
}

func (s *mongoGenres) Update(ctx context.Context, g *models.Genre) error {
	return s.replace(ctx, g)
}

func (s *mongoGenres) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.delete(ctx, id)
}

func (s *mongoGenres) Count(ctx context.Context) (int64, error) {
	return s.count(ctx, bson.M{})
}

type mongoBooks struct {
	collection[models.Book, *models.Book]
}

func (s *mongoBooks) Get(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	return s.findByID(ctx, id)
}

func (s *mongoBooks) List(ctx context.Context) ([]models.Book, error) {
	return s.find(ctx, bson.M{})
}

func (s *mongoBooks) ListByAuthor(ctx context.Context, author primitive.ObjectID) ([]models.Book, error) {
	return s.find(ctx, bson.M{"author": author})
}

// ListByGenre matches books whose genre array contains genre.
func (s *mongoBooks) ListByGenre(ctx context.Context, genre primitive.ObjectID) ([]models.Book, error) {
	return s.find(ctx, bson.M{"genre": genre})
}

func (s *mongoBooks) Create(ctx context.Context, b *models.Book) error {
	return s.insert(ctx, b)
}

func (s *mongoBooks) Update(ctx context.Context, b *models.Book) error {
	return s.replace(ctx, b)
}

func (s *mongoBooks) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.delete(ctx, id)
}

func (s *mongoBooks) Count(ctx context.Context) (int64, error) {
	return s.count(ctx, bson.M{})
}

type mongoBookInstances struct {
	collection[models.BookInstance, *models.BookInstance]
}

func (s *mongoBookInstances) Get(ctx context.Context, id primitive.ObjectID) (*models.BookInstance, error) {
	return s.findByID(ctx, id)
}

func (s *mongoBookInstances) List(ctx context.Context) ([]models.BookInstance, error) {
	return s.find(ctx, bson.M{})
}

func (s *mongoBookInstances) ListByBook(ctx context.Context, book primitive.ObjectID) ([]models.BookInstance, error) {
	return s.find(ctx, bson.M{"book": book})
}

func (s *mongoBookInstances) Create(ctx context.Context, bi *models.BookInstance) error {
	return s.insert(ctx, bi)
}

func (s *mongoBookInstances) Update(ctx context.Context, bi *models.BookInstance) error {
	return s.replace(ctx, bi)
}

func (s *mongoBookInstances) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.delete(ctx, id)
}

func (s *mongoBookInstances) Count(ctx context.Context) (int64, error) {
	return s.count(ctx, bson.M{})
}

func (s *mongoBookInstances) CountByStatus(ctx context.Context, status models.CopyStatus) (int64, error) {
	return s.count(ctx, bson.M{"status": status})
}

type mongoAuditLogs struct {
	collection[models.AuditLog, *models.AuditLog]
}

func (s *mongoAuditLogs) Insert(ctx context.Context, l *models.AuditLog) error {
	return s.insert(ctx, l)
}

func (s *mongoAuditLogs) ListUnexported(ctx context.Context) ([]models.AuditLog, error) {
	return s.find(ctx, bson.M{"exported": false})
}

func (s *mongoAuditLogs) MarkExported(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.coll.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, bson.M{"$set": bson.M{"exported": true}})
	if err != nil {
		return s.fail("update", err)
	}
	return nil
}
