package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"review-room/internal/config"
	"review-room/internal/handler"
	"review-room/internal/middleware"
	"review-room/internal/model"
	"review-room/internal/repository"
	"review-room/internal/router"
	"review-room/internal/service"
)

// stubCatalog stands in for the upstream movie API.
type stubCatalog struct {
	payload json.RawMessage
	err     error
}

func (s stubCatalog) PopularMovies(context.Context, int) (json.RawMessage, error) {
	return s.payload, s.err
}

func (s stubCatalog) SearchMovies(context.Context, string, int) (json.RawMessage, error) {
	return s.payload, s.err
}

func (s stubCatalog) MovieDetails(context.Context, int64) (json.RawMessage, error) {
	return s.payload, s.err
}

type serverOptions struct {
	exposeResetToken bool
	catalog          service.MovieCatalog
}

func newTestServer(t *testing.T, opts serverOptions) *httptest.Server {
	t.Helper()

	if opts.catalog == nil {
		opts.catalog = stubCatalog{payload: json.RawMessage(`{"page":1,"results":[]}`)}
	}

	userRepo := repository.NewMemoryUserRepository()
	reviewRepo := repository.NewMemoryReviewRepository()

	authService, err := service.NewAuthService(userRepo, service.LogMailer{}, "test-secret", time.Hour, 10*time.Minute, opts.exposeResetToken)
	require.NoError(t, err)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(authService)
	reviewHandler := handler.NewReviewHandler(service.NewReviewService(reviewRepo))
	movieHandler := handler.NewMovieHandler(service.NewMovieService(opts.catalog, nil))

	cfg := &config.Config{
		ServerPort:       "8080",
		RequestTimeout:   30 * time.Second,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     1000,
		AuthRateLimitRPM: 1000,
	}

	server := httptest.NewServer(router.New(cfg, authMiddleware, authHandler, userHandler, movieHandler, reviewHandler))
	t.Cleanup(server.Close)
	return server
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	} `json:"error"`
}

func doJSON(t *testing.T, method string, url string, body any, token string) (*http.Response, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var parsed envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp, parsed
}

func registerUser(t *testing.T, serverURL string, username string, email string, password string) model.AuthResponse {
	t.Helper()

	resp, parsed := doJSON(t, http.MethodPost, serverURL+"/api/v1/users/register", model.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, parsed.Success)

	var auth model.AuthResponse
	require.NoError(t, json.Unmarshal(parsed.Data, &auth))
	require.NotEmpty(t, auth.Token)
	return auth
}
