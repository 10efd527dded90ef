// Package db owns the MongoDB client lifecycle: connect once at startup,
// ensure indexes, disconnect at shutdown.
package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"local-library/internal/store"
)

const connectTimeout = 10 * time.Second

// Connect dials uri and pings the primary before returning the client.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("db: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("db: ping: %w", err)
	}
	return client, nil
}

// Indexes lists the indexes the catalog relies on, keyed by collection.
// Genre names are unique; the rest back the dependency lookups.
func Indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		store.GenreCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		store.AuthorCollection: {
			{Keys: bson.D{{Key: "family_name", Value: 1}}},
		},
		store.BookCollection: {
			{Keys: bson.D{{Key: "author", Value: 1}}},
			{Keys: bson.D{{Key: "genre", Value: 1}}},
		},
		store.BookInstanceCollection: {
			{Keys: bson.D{{Key: "book", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		store.AuditLogCollection: {
			{Keys: bson.D{{Key: "exported", Value: 1}}},
		},
	}
}

func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	for coll, models := range Indexes() {
		if _, err := database.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("db: create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func Disconnect(ctx context.Context, client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}
