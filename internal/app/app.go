package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"review-room/internal/cache"
	"review-room/internal/config"
	"review-room/internal/database"
	"review-room/internal/handler"
	"review-room/internal/middleware"
	"review-room/internal/repository"
	"review-room/internal/router"
	"review-room/internal/service"
	"review-room/internal/tmdb"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to MongoDB")
	db, err := database.New(context.Background(), cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureIndexes(context.Background()); err != nil {
		db.Close(context.Background())
		return nil, fmt.Errorf("failed to ensure database indexes: %w", err)
	}

	userRepo := repository.NewUserRepository(db.Database.Collection(database.UsersCollection))
	reviewRepo := repository.NewReviewRepository(db.Database.Collection(database.ReviewsCollection))
	slog.Info("database ready")

	cleanupFuncs := []func(){
		func() { db.Close(context.Background()) },
	}

	var pageCache service.PageCache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedis(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		if err != nil {
			// The cache is an optimization; a dead Redis must not keep
			// the service down.
			slog.Warn("redis unavailable, catalog caching disabled", "error", err.Error())
		} else {
			pageCache = redisCache
			cleanupFuncs = append(cleanupFuncs, redisCache.Close)
		}
	}

	authService, err := service.NewAuthService(userRepo, service.LogMailer{}, cfg.JWTSecret, cfg.JWTTTL, cfg.ResetTokenTTL, !cfg.IsProduction())
	if err != nil {
		db.Close(context.Background())
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}
	authMiddleware := middleware.NewAuthMiddleware(authService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(authService)

	reviewService := service.NewReviewService(reviewRepo)
	reviewHandler := handler.NewReviewHandler(reviewService)

	catalog := tmdb.New(cfg.TMDBBaseURL, cfg.TMDBAPIKey, cfg.TMDBTimeout)
	movieService := service.NewMovieService(catalog, pageCache)
	movieHandler := handler.NewMovieHandler(movieService)

	appRouter := router.New(cfg, authMiddleware, authHandler, userHandler, movieHandler, reviewHandler)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      appRouter,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return &App{
		server:       server,
		cleanupFuncs: cleanupFuncs,
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return nil
}
