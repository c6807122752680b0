package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-room/internal/model"
)

func TestMovieProxyPassthrough(t *testing.T) {
	payload := json.RawMessage(`{"page":1,"results":[{"id":550,"title":"Fight Club"}]}`)
	server := newTestServer(t, serverOptions{catalog: stubCatalog{payload: payload}})

	for _, path := range []string{"/api/v1/movies/popular", "/api/v1/movies/search?query=fight", "/api/v1/movies/550"} {
		resp, parsed := doJSON(t, http.MethodGet, server.URL+path, nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.JSONEq(t, string(payload), string(parsed.Data), path)
	}
}

func TestMovieSearchRequiresQuery(t *testing.T) {
	server := newTestServer(t, serverOptions{})

	resp, parsed := doJSON(t, http.MethodGet, server.URL+"/api/v1/movies/search", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, parsed.Error)
	assert.Equal(t, "BAD_REQUEST", parsed.Error.Code)
}

func TestMovieUpstreamFailures(t *testing.T) {
	t.Run("upstream down", func(t *testing.T) {
		server := newTestServer(t, serverOptions{catalog: stubCatalog{err: model.ErrUpstreamUnavailable}})

		resp, parsed := doJSON(t, http.MethodGet, server.URL+"/api/v1/movies/popular", nil, "")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		require.NotNil(t, parsed.Error)
		assert.Equal(t, "SERVICE_UNAVAILABLE", parsed.Error.Code)
	})

	t.Run("unknown movie", func(t *testing.T) {
		server := newTestServer(t, serverOptions{catalog: stubCatalog{err: model.ErrMovieNotFound}})

		resp, parsed := doJSON(t, http.MethodGet, server.URL+"/api/v1/movies/99999999", nil, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.NotNil(t, parsed.Error)
		assert.Equal(t, "NOT_FOUND", parsed.Error.Code)
	})
}
