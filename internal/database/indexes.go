package database

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection   = "users"
	ReviewsCollection = "reviews"
)

// EnsureIndexes creates the indexes the application relies on for
// correctness. Uniqueness of usernames, emails and the one-review-per-movie
// rule is enforced here, not by application-level locking: concurrent writers
// race and the losing write fails with a duplicate-key error.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	users := db.Database.Collection(UsersCollection)
	_, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("username_unique"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		{
			Keys:    bson.D{{Key: "reset_token_hash", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("reset_token_hash"),
		},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	reviews := db.Database.Collection(ReviewsCollection)
	_, err = reviews.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "movie_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("movie_user_unique"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("user_id"),
		},
	})
	if err != nil {
		return fmt.Errorf("create review indexes: %w", err)
	}

	slog.Info("database indexes ensured")
	return nil
}
