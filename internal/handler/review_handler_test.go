package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-room/internal/model"
)

func createReview(t *testing.T, serverURL string, token string, movieID int64) model.Review {
	t.Helper()

	resp, parsed := doJSON(t, http.MethodPost, serverURL+"/api/v1/reviews/", model.CreateReviewRequest{
		MovieID: movieID,
		Rating:  4,
		Content: "A solid film with strong performances.",
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var review model.Review
	require.NoError(t, json.Unmarshal(parsed.Data, &review))
	return review
}

func TestCreateAndListReviews(t *testing.T) {
	server := newTestServer(t, serverOptions{})
	alice := registerUser(t, server.URL, "alice", "alice@example.com", "password123")
	bob := registerUser(t, server.URL, "bob", "bob@example.com", "password123")

	createReview(t, server.URL, alice.Token, 550)
	createReview(t, server.URL, bob.Token, 550)
	createReview(t, server.URL, alice.Token, 600)

	// listing is public, no token required
	resp, parsed := doJSON(t, http.MethodGet, server.URL+"/api/v1/reviews/movie/550", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reviews []model.Review
	require.NoError(t, json.Unmarshal(parsed.Data, &reviews))
	require.Len(t, reviews, 2)

	resp, parsed = doJSON(t, http.MethodGet, server.URL+"/api/v1/reviews/mine", nil, alice.Token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(parsed.Data, &reviews))
	require.Len(t, reviews, 2)
	for _, review := range reviews {
		assert.Equal(t, "alice", review.Username)
	}
}

func TestCreateReviewRequiresAuth(t *testing.T) {
	server := newTestServer(t, serverOptions{})

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/reviews/", model.CreateReviewRequest{
		MovieID: 550,
		Rating:  4,
		Content: "A solid film with strong performances.",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDuplicateReviewRejected(t *testing.T) {
	server := newTestServer(t, serverOptions{})
	alice := registerUser(t, server.URL, "alice", "alice@example.com", "password123")
	createReview(t, server.URL, alice.Token, 550)

	resp, parsed := doJSON(t, http.MethodPost, server.URL+"/api/v1/reviews/", model.CreateReviewRequest{
		MovieID: 550,
		Rating:  2,
		Content: "Changed my mind, writing it again.",
	}, alice.Token)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	require.NotNil(t, parsed.Error)
	assert.Equal(t, "ALREADY_EXISTS", parsed.Error.Code)
}

func TestReviewOwnership(t *testing.T) {
	server := newTestServer(t, serverOptions{})
	alice := registerUser(t, server.URL, "alice", "alice@example.com", "password123")
	bob := registerUser(t, server.URL, "bob", "bob@example.com", "password123")
	review := createReview(t, server.URL, alice.Token, 550)

	newRating := 1
	resp, parsed := doJSON(t, http.MethodPut, server.URL+"/api/v1/reviews/"+review.ID, model.UpdateReviewRequest{
		Rating: &newRating,
	}, bob.Token)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.NotNil(t, parsed.Error)
	assert.Equal(t, "FORBIDDEN", parsed.Error.Code)

	resp, _ = doJSON(t, http.MethodDelete, server.URL+"/api/v1/reviews/"+review.ID, nil, bob.Token)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// the owner can still update and delete
	resp, parsed = doJSON(t, http.MethodPut, server.URL+"/api/v1/reviews/"+review.ID, model.UpdateReviewRequest{
		Rating: &newRating,
	}, alice.Token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated model.Review
	require.NoError(t, json.Unmarshal(parsed.Data, &updated))
	assert.Equal(t, 1, updated.Rating)

	resp, _ = doJSON(t, http.MethodDelete, server.URL+"/api/v1/reviews/"+review.ID, nil, alice.Token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, server.URL+"/api/v1/reviews/"+review.ID, nil, alice.Token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReviewValidationOverHTTP(t *testing.T) {
	server := newTestServer(t, serverOptions{})
	alice := registerUser(t, server.URL, "alice", "alice@example.com", "password123")

	tests := []struct {
		name string
		req  model.CreateReviewRequest
	}{
		{"rating too high", model.CreateReviewRequest{MovieID: 550, Rating: 6, Content: "Content long enough to pass."}},
		{"rating too low", model.CreateReviewRequest{MovieID: 550, Rating: 0, Content: "Content long enough to pass."}},
		{"content too short", model.CreateReviewRequest{MovieID: 550, Rating: 3, Content: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, parsed := doJSON(t, http.MethodPost, server.URL+"/api/v1/reviews/", tt.req, alice.Token)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			require.NotNil(t, parsed.Error)
			assert.Equal(t, "BAD_REQUEST", parsed.Error.Code)
		})
	}
}
