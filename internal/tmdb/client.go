// Package tmdb is a thin client for The Movie Database API. Responses are
// passed through as raw JSON; the service only proxies and caches them.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"review-room/internal/model"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

func New(baseURL string, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        "tmdb",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
		// A 404 from upstream is an answer, not an outage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errNotFound)
		},
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

func (c *Client) PopularMovies(ctx context.Context, page int) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	return c.get(ctx, "/movie/popular", query)
}

func (c *Client) SearchMovies(ctx context.Context, searchQuery string, page int) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("query", searchQuery)
	query.Set("page", strconv.Itoa(page))
	return c.get(ctx, "/search/movie", query)
}

func (c *Client) MovieDetails(ctx context.Context, movieID int64) (json.RawMessage, error) {
	return c.get(ctx, fmt.Sprintf("/movie/%d", movieID), url.Values{})
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	query.Set("api_key", c.apiKey)
	query.Set("language", "en-US")
	requestURL := c.baseURL + path + "?" + query.Encode()

	result, err := c.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, errNotFound
		case resp.StatusCode != http.StatusOK:
			io.Copy(io.Discard, resp.Body)
			return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		return json.RawMessage(body), nil
	})
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, model.ErrMovieNotFound
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open", model.ErrUpstreamUnavailable)
		}
		return nil, fmt.Errorf("%w: %v", model.ErrUpstreamUnavailable, err)
	}

	return result.(json.RawMessage), nil
}

var errNotFound = errors.New("tmdb: not found")
