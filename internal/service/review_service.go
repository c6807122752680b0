package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"review-room/internal/model"
	"review-room/pkg/apierror"
)

const (
	minRating        = 1
	maxRating        = 5
	minContentLength = 10
)

type ReviewStore interface {
	ListByMovie(ctx context.Context, movieID int64) ([]model.Review, error)
	ListByUser(ctx context.Context, userID string) ([]model.Review, error)
	FindByID(ctx context.Context, id string) (model.Review, error)
	Create(ctx context.Context, review model.Review) error
	Update(ctx context.Context, review model.Review) error
	Delete(ctx context.Context, id string) error
}

type ReviewService struct {
	reviews ReviewStore
}

func NewReviewService(reviews ReviewStore) *ReviewService {
	return &ReviewService{reviews: reviews}
}

func (s *ReviewService) ListByMovie(ctx context.Context, movieID int64) ([]model.Review, error) {
	if movieID <= 0 {
		return nil, apierror.BadRequest("invalid movie id", "movie_id")
	}
	return s.reviews.ListByMovie(ctx, movieID)
}

func (s *ReviewService) ListMine(ctx context.Context, identity model.Identity) ([]model.Review, error) {
	return s.reviews.ListByUser(ctx, identity.ID)
}

func (s *ReviewService) Create(ctx context.Context, identity model.Identity, movieID int64, rating int, content string) (model.Review, error) {
	if movieID <= 0 {
		return model.Review{}, apierror.BadRequest("invalid movie id", "movie_id")
	}
	if err := validateRating(rating); err != nil {
		return model.Review{}, err
	}
	content = strings.TrimSpace(content)
	if err := validateContent(content); err != nil {
		return model.Review{}, err
	}

	now := time.Now().UTC()
	review := model.Review{
		ID:        uuid.NewString(),
		MovieID:   movieID,
		UserID:    identity.ID,
		Username:  identity.Username,
		Rating:    rating,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return model.Review{}, err
	}
	return review, nil
}

// Update applies the provided fields to the caller's own review. Someone
// else's review is a 403, not a 404: the resource exists, the caller may not
// touch it.
func (s *ReviewService) Update(ctx context.Context, identity model.Identity, reviewID string, rating *int, content *string) (model.Review, error) {
	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return model.Review{}, err
	}

	if review.UserID != identity.ID {
		return model.Review{}, apierror.Forbidden("you can only edit your own reviews")
	}

	if rating != nil {
		if err := validateRating(*rating); err != nil {
			return model.Review{}, err
		}
		review.Rating = *rating
	}
	if content != nil {
		trimmed := strings.TrimSpace(*content)
		if err := validateContent(trimmed); err != nil {
			return model.Review{}, err
		}
		review.Content = trimmed
	}

	review.UpdatedAt = time.Now().UTC()
	if err := s.reviews.Update(ctx, review); err != nil {
		return model.Review{}, err
	}
	return review, nil
}

func (s *ReviewService) Delete(ctx context.Context, identity model.Identity, reviewID string) error {
	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return err
	}

	if review.UserID != identity.ID {
		return apierror.Forbidden("you can only delete your own reviews")
	}

	return s.reviews.Delete(ctx, reviewID)
}

func validateRating(rating int) error {
	if rating < minRating || rating > maxRating {
		return apierror.BadRequest("rating must be between 1 and 5", "rating")
	}
	return nil
}

func validateContent(content string) error {
	if len(content) < minContentLength {
		return apierror.BadRequest("review content must be at least 10 characters", "content")
	}
	return nil
}
