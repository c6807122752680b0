package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"review-room/internal/model"
)

// MemoryUserRepository is an in-memory stand-in for the Mongo-backed store,
// used by tests. It enforces the same uniqueness rules the database indexes
// enforce in production.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: map[string]model.User{}}
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = normalizeEmail(email)
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (r *MemoryUserRepository) FindByIdentifier(_ context.Context, identifier string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identifier = strings.TrimSpace(identifier)
	for _, u := range r.users {
		if u.Email == strings.ToLower(identifier) || u.Username == identifier {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (r *MemoryUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *MemoryUserRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	username = strings.TrimSpace(username)
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryUserRepository) Create(_ context.Context, u model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email {
			return model.ErrEmailTaken
		}
		if existing.Username == u.Username {
			return model.ErrUsernameTaken
		}
	}

	r.users[u.ID] = u
	return nil
}

func (r *MemoryUserRepository) UpdateProfile(_ context.Context, id string, username string, email string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}

	for otherID, other := range r.users {
		if otherID == id {
			continue
		}
		if other.Email == email {
			return model.User{}, model.ErrEmailTaken
		}
		if other.Username == username {
			return model.User{}, model.ErrUsernameTaken
		}
	}

	u.Username = username
	u.Email = email
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return u, nil
}

func (r *MemoryUserRepository) SetPasswordReset(_ context.Context, userID string, tokenHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}

	expiry := expiresAt.UTC()
	u.ResetTokenHash = tokenHash
	u.ResetExpiresAt = &expiry
	r.users[userID] = u
	return nil
}

func (r *MemoryUserRepository) ConsumePasswordReset(_ context.Context, tokenHash string, newPasswordHash string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, u := range r.users {
		if u.ResetTokenHash != tokenHash || u.ResetExpiresAt == nil {
			continue
		}
		if !u.ResetExpiresAt.After(now) {
			continue
		}

		u.PasswordHash = newPasswordHash
		u.ResetTokenHash = ""
		u.ResetExpiresAt = nil
		u.UpdatedAt = now.UTC()
		r.users[id] = u
		return nil
	}
	return model.ErrInvalidResetToken
}

// MemoryReviewRepository mirrors the Mongo review store, including the
// one-review-per-user-per-movie constraint.
type MemoryReviewRepository struct {
	mu      sync.RWMutex
	reviews map[string]model.Review
}

func NewMemoryReviewRepository() *MemoryReviewRepository {
	return &MemoryReviewRepository{reviews: map[string]model.Review{}}
}

func (r *MemoryReviewRepository) ListByMovie(_ context.Context, movieID int64) ([]model.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []model.Review{}
	for _, review := range r.reviews {
		if review.MovieID == movieID {
			out = append(out, review)
		}
	}
	sortByNewest(out)
	return out, nil
}

func (r *MemoryReviewRepository) ListByUser(_ context.Context, userID string) ([]model.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []model.Review{}
	for _, review := range r.reviews {
		if review.UserID == userID {
			out = append(out, review)
		}
	}
	sortByNewest(out)
	return out, nil
}

func (r *MemoryReviewRepository) FindByID(_ context.Context, id string) (model.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	review, ok := r.reviews[id]
	if !ok {
		return model.Review{}, model.ErrReviewNotFound
	}
	return review, nil
}

func (r *MemoryReviewRepository) Create(_ context.Context, review model.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.reviews {
		if existing.MovieID == review.MovieID && existing.UserID == review.UserID {
			return model.ErrReviewExists
		}
	}

	r.reviews[review.ID] = review
	return nil
}

func (r *MemoryReviewRepository) Update(_ context.Context, review model.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.reviews[review.ID]
	if !ok {
		return model.ErrReviewNotFound
	}

	existing.Rating = review.Rating
	existing.Content = review.Content
	existing.UpdatedAt = time.Now().UTC()
	r.reviews[review.ID] = existing
	return nil
}

func (r *MemoryReviewRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reviews[id]; !ok {
		return model.ErrReviewNotFound
	}
	delete(r.reviews, id)
	return nil
}

func sortByNewest(reviews []model.Review) {
	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
}
