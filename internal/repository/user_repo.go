package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"review-room/internal/model"
)

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(coll *mongo.Collection) *UserRepository {
	return &UserRepository{coll: coll}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	var u model.User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := r.coll.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// FindByIdentifier looks up a user by email or username.
func (r *UserRepository) FindByIdentifier(ctx context.Context, identifier string) (model.User, error) {
	identifier = strings.TrimSpace(identifier)
	filter := bson.M{"$or": bson.A{
		bson.M{"email": strings.ToLower(identifier)},
		bson.M{"username": identifier},
	}}

	var u model.User
	err := r.coll.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by identifier: %w", err)
	}
	return u, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"email": normalizeEmail(email)}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"username": strings.TrimSpace(username)}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check username exists: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepository) Create(ctx context.Context, u model.User) error {
	_, err := r.coll.InsertOne(ctx, u)
	if err != nil {
		if dup := translateUserDuplicate(err); dup != nil {
			return dup
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, username string, email string) (model.User, error) {
	update := bson.M{"$set": bson.M{
		"username":   username,
		"email":      email,
		"updated_at": time.Now().UTC(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u model.User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		if dup := translateUserDuplicate(err); dup != nil {
			return model.User{}, dup
		}
		return model.User{}, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

// SetPasswordReset stores the reset token hash and expiry, replacing any
// previous token for the user.
func (r *UserRepository) SetPasswordReset(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) error {
	update := bson.M{"$set": bson.M{
		"reset_token_hash": tokenHash,
		"reset_expires_at": expiresAt.UTC(),
		"updated_at":       time.Now().UTC(),
	}}

	tag, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("set password reset: %w", err)
	}
	if tag.MatchedCount == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// ConsumePasswordReset atomically swaps the password hash for the user whose
// unexpired reset token matches tokenHash, clearing both reset fields in the
// same write. A not-found and an expired token are indistinguishable.
func (r *UserRepository) ConsumePasswordReset(ctx context.Context, tokenHash string, newPasswordHash string, now time.Time) error {
	filter := bson.M{
		"reset_token_hash": tokenHash,
		"reset_expires_at": bson.M{"$gt": now.UTC()},
	}
	update := bson.M{
		"$set": bson.M{
			"password_hash": newPasswordHash,
			"updated_at":    now.UTC(),
		},
		"$unset": bson.M{
			"reset_token_hash": "",
			"reset_expires_at": "",
		},
	}

	tag, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("consume password reset: %w", err)
	}
	if tag.MatchedCount == 0 {
		return model.ErrInvalidResetToken
	}
	return nil
}

// translateUserDuplicate maps a unique-index violation to the conflict error
// naming the colliding field, so a registration race loses with the same
// error as the pre-insert check.
func translateUserDuplicate(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return nil
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "email"):
		return model.ErrEmailTaken
	case strings.Contains(msg, "username"):
		return model.ErrUsernameTaken
	default:
		return model.ErrUsernameTaken
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
