package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"review-room/internal/model"
)

type ReviewRepository struct {
	coll *mongo.Collection
}

func NewReviewRepository(coll *mongo.Collection) *ReviewRepository {
	return &ReviewRepository{coll: coll}
}

func (r *ReviewRepository) ListByMovie(ctx context.Context, movieID int64) ([]model.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"movie_id": movieID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list reviews by movie: %w", err)
	}

	reviews := []model.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	return reviews, nil
}

func (r *ReviewRepository) ListByUser(ctx context.Context, userID string) ([]model.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list reviews by user: %w", err)
	}

	reviews := []model.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	return reviews, nil
}

func (r *ReviewRepository) FindByID(ctx context.Context, id string) (model.Review, error) {
	var review model.Review
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Review{}, model.ErrReviewNotFound
	}
	if err != nil {
		return model.Review{}, fmt.Errorf("find review by id: %w", err)
	}
	return review, nil
}

func (r *ReviewRepository) Create(ctx context.Context, review model.Review) error {
	_, err := r.coll.InsertOne(ctx, review)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.ErrReviewExists
		}
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

func (r *ReviewRepository) Update(ctx context.Context, review model.Review) error {
	update := bson.M{"$set": bson.M{
		"rating":     review.Rating,
		"content":    review.Content,
		"updated_at": time.Now().UTC(),
	}}

	tag, err := r.coll.UpdateOne(ctx, bson.M{"_id": review.ID}, update)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	if tag.MatchedCount == 0 {
		return model.ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if tag.DeletedCount == 0 {
		return model.ErrReviewNotFound
	}
	return nil
}
