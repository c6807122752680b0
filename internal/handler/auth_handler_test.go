package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-room/internal/model"
)

func TestRegisterAndProfile(t *testing.T) {
	server := newTestServer(t, serverOptions{})

	auth := registerUser(t, server.URL, "alice", "alice@example.com", "password123")
	assert.Equal(t, "alice", auth.User.Username)
	assert.Equal(t, "alice@example.com", auth.User.Email)

	resp, parsed := doJSON(t, http.MethodGet, server.URL+"/api/v1/users/profile", nil, auth.Token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var profile model.Profile
	require.NoError(t, json.Unmarshal(parsed.Data, &profile))
	assert.Equal(t, "alice", profile.Username)
}

func TestProfileRejectsBadToken(t *testing.T) {
	server := newTestServer(t, serverOptions{})
	auth := registerUser(t, server.URL, "alice", "alice@example.com", "password123")

	tests := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"truncated token", auth.Token[:len(auth.Token)-2]},
		{"garbage token", "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, parsed := doJSON(t, http.MethodGet, server.URL+"/api/v1/users/profile", nil, tt.token)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			require.NotNil(t, parsed.Error)
			assert.Equal(t, "UNAUTHORIZED", parsed.Error.Code)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	server := newTestServer(t, serverOptions{})
	registerUser(t, server.URL, "alice", "alice@example.com", "password123")

	resp, parsed := doJSON(t, http.MethodPost, server.URL+"/api/v1/users/register", model.RegisterRequest{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "password123",
	}, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	require.NotNil(t, parsed.Error)
	assert.Equal(t, "ALREADY_EXISTS", parsed.Error.Code)
	assert.Equal(t, "email", parsed.Error.Details)
}

func TestLoginWithEmailOrUsername(t *testing.T) {
	server := newTestServer(t, serverOptions{})
	registerUser(t, server.URL, "alice", "alice@example.com", "password123")

	for _, identifier := range []string{"alice", "alice@example.com"} {
		resp, parsed := doJSON(t, http.MethodPost, server.URL+"/api/v1/users/login", model.LoginRequest{
			Identifier: identifier,
			Password:   "password123",
		}, "")
		require.Equal(t, http.StatusOK, resp.StatusCode, identifier)

		var auth model.AuthResponse
		require.NoError(t, json.Unmarshal(parsed.Data, &auth))
		assert.NotEmpty(t, auth.Token)
	}

	resp, parsed := doJSON(t, http.MethodPost, server.URL+"/api/v1/users/login", model.LoginRequest{
		Identifier: "alice",
		Password:   "wrongpassword",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.NotNil(t, parsed.Error)
	assert.Equal(t, "invalid credentials", parsed.Error.Message)
}

func TestUpdateProfile(t *testing.T) {
	server := newTestServer(t, serverOptions{})
	auth := registerUser(t, server.URL, "alice", "alice@example.com", "password123")

	resp, parsed := doJSON(t, http.MethodPut, server.URL+"/api/v1/users/profile", model.UpdateProfileRequest{
		Username: "alice-renamed",
	}, auth.Token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var profile model.Profile
	require.NoError(t, json.Unmarshal(parsed.Data, &profile))
	assert.Equal(t, "alice-renamed", profile.Username)
	assert.Equal(t, "alice@example.com", profile.Email)
}

func TestPasswordResetEndToEnd(t *testing.T) {
	server := newTestServer(t, serverOptions{exposeResetToken: true})
	registerUser(t, server.URL, "alice", "alice@example.com", "password123")

	resp, parsed := doJSON(t, http.MethodPost, server.URL+"/api/v1/users/forgot-password", model.ForgotPasswordRequest{
		Email: "alice@example.com",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reset model.ResetRequestedResponse
	require.NoError(t, json.Unmarshal(parsed.Data, &reset))
	require.NotEmpty(t, reset.ResetToken)

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/v1/users/reset-password", model.ResetPasswordRequest{
		Token:       reset.ResetToken,
		NewPassword: "newpass456",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/v1/users/login", model.LoginRequest{
		Identifier: "alice@example.com",
		Password:   "password123",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/v1/users/login", model.LoginRequest{
		Identifier: "alice@example.com",
		Password:   "newpass456",
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// the token was consumed above
	resp, parsed = doJSON(t, http.MethodPost, server.URL+"/api/v1/users/reset-password", model.ResetPasswordRequest{
		Token:       reset.ResetToken,
		NewPassword: "anotherpass789",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, parsed.Error)
	assert.Equal(t, "token is invalid or has expired", parsed.Error.Message)
}

func TestForgotPasswordDoesNotRevealAccounts(t *testing.T) {
	server := newTestServer(t, serverOptions{exposeResetToken: false})
	registerUser(t, server.URL, "alice", "alice@example.com", "password123")

	readBody := func(email string) (int, string) {
		payload, err := json.Marshal(model.ForgotPasswordRequest{Email: email})
		require.NoError(t, err)
		resp, err := http.Post(server.URL+"/api/v1/users/forgot-password", "application/json", strings.NewReader(string(payload)))
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	knownStatus, knownBody := readBody("alice@example.com")
	unknownStatus, unknownBody := readBody("nobody@example.com")

	assert.Equal(t, http.StatusOK, knownStatus)
	assert.Equal(t, knownStatus, unknownStatus)
	assert.Equal(t, knownBody, unknownBody)
	assert.NotContains(t, knownBody, "reset_token")
}
