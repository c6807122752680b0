package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DB owns the Mongo client for the process: connected once at startup,
// shared by the repositories, closed on shutdown.
type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func New(ctx context.Context, uri string, dbName string) (*DB, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(10 * time.Second).
		SetConnectTimeout(10 * time.Second).
		SetMaxPoolSize(50)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	slog.Info("mongodb connected", "database", dbName)
	return &DB{Client: client, Database: client.Database(dbName)}, nil
}

func (db *DB) Close(ctx context.Context) {
	if db.Client != nil {
		_ = db.Client.Disconnect(ctx)
	}
}

func (db *DB) Health(ctx context.Context) error {
	return db.Client.Ping(ctx, readpref.Primary())
}
