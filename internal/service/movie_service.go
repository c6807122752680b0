package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"review-room/pkg/apierror"
)

type MovieCatalog interface {
	PopularMovies(ctx context.Context, page int) (json.RawMessage, error)
	SearchMovies(ctx context.Context, query string, page int) (json.RawMessage, error)
	MovieDetails(ctx context.Context, movieID int64) (json.RawMessage, error)
}

type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
}

type MovieService struct {
	catalog MovieCatalog
	cache   PageCache
}

// NewMovieService proxies the upstream catalog. cache may be nil, in which
// case every call goes upstream.
func NewMovieService(catalog MovieCatalog, cache PageCache) *MovieService {
	return &MovieService{catalog: catalog, cache: cache}
}

func (s *MovieService) Popular(ctx context.Context, page int) (json.RawMessage, error) {
	if page < 1 {
		page = 1
	}

	key := fmt.Sprintf("movies:popular:%d", page)
	return s.cached(ctx, key, func() (json.RawMessage, error) {
		return s.catalog.PopularMovies(ctx, page)
	})
}

func (s *MovieService) Search(ctx context.Context, query string, page int) (json.RawMessage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apierror.BadRequest("search query is required", "query")
	}
	if page < 1 {
		page = 1
	}

	key := fmt.Sprintf("movies:search:%s:%d", strings.ToLower(query), page)
	return s.cached(ctx, key, func() (json.RawMessage, error) {
		return s.catalog.SearchMovies(ctx, query, page)
	})
}

func (s *MovieService) Details(ctx context.Context, movieID int64) (json.RawMessage, error) {
	if movieID <= 0 {
		return nil, apierror.BadRequest("invalid movie id", "id")
	}

	key := fmt.Sprintf("movies:details:%d", movieID)
	return s.cached(ctx, key, func() (json.RawMessage, error) {
		return s.catalog.MovieDetails(ctx, movieID)
	})
}

func (s *MovieService) cached(ctx context.Context, key string, fetch func() (json.RawMessage, error)) (json.RawMessage, error) {
	if s.cache != nil {
		if hit, ok := s.cache.Get(ctx, key); ok {
			return json.RawMessage(hit), nil
		}
	}

	payload, err := fetch()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, payload)
	}
	return payload, nil
}
