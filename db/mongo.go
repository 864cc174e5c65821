package db

import (
	"context"
	"fmt"
	"time"

	"discofm/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connect establishes the MongoDB connection and verifies it with a ping.
// The returned database handle is shared by all repositories.
func Connect(ctx context.Context, cfg *config.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client.Database(cfg.MongoDBName), nil
}

// Disconnect closes the underlying client of the given database handle.
func Disconnect(ctx context.Context, database *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return database.Client().Disconnect(ctx)
}
