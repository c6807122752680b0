package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"review-room/internal/config"
	"review-room/internal/handler"
	"review-room/internal/middleware"
)

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	movieHandler *handler.MovieHandler,
	reviewHandler *handler.ReviewHandler,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/users", func(users chi.Router) {
			users.Post("/register", authHandler.Register)
			users.Post("/login", authHandler.Login)
			users.Post("/forgot-password", authHandler.ForgotPassword)
			users.Post("/reset-password", authHandler.ResetPassword)
			users.With(authMiddleware.RequireAuth).Get("/profile", userHandler.Profile)
			users.With(authMiddleware.RequireAuth).Put("/profile", userHandler.UpdateProfile)
		})

		api.Route("/movies", func(movies chi.Router) {
			movies.Get("/popular", movieHandler.Popular)
			movies.Get("/search", movieHandler.Search)
			movies.Get("/{id}", movieHandler.Details)
		})

		api.Route("/reviews", func(reviews chi.Router) {
			reviews.Get("/movie/{movieID}", reviewHandler.ListByMovie)
			reviews.With(authMiddleware.RequireAuth).Get("/mine", reviewHandler.ListMine)
			reviews.With(authMiddleware.RequireAuth).Post("/", reviewHandler.Create)
			reviews.With(authMiddleware.RequireAuth).Put("/{id}", reviewHandler.Update)
			reviews.With(authMiddleware.RequireAuth).Delete("/{id}", reviewHandler.Delete)
		})
	})

	return r
}
