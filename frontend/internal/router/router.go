package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/itchan-dev/blogfeed/frontend/internal/middleware"
	"github.com/itchan-dev/blogfeed/frontend/internal/setup"
	mw "github.com/itchan-dev/blogfeed/shared/middleware"
	"github.com/itchan-dev/blogfeed/shared/middleware/metrics"
	rl "github.com/itchan-dev/blogfeed/shared/middleware/ratelimiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// New wires the page routes.
// IMPORTANT! a rate limiter set with .Use limits requests for all routes of that group combined
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(mw.SecurityHeaders(deps.Public.SecureCookies, mw.DefaultCSP))

	// hover preview is fetched by script, possibly from another allowed origin
	if len(deps.Public.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   deps.Public.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", middleware.CSRFHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}).Handler)
	}

	h := deps.Handler
	// every limiter's expiration timers are stopped on shutdown
	limiter := func(l *rl.UserRateLimiter) *rl.UserRateLimiter {
		deps.OnClose(l.Stop)
		return l
	}

	r.Get("/health", h.HealthHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(deps.StaticDir))))

	r.Group(func(r chi.Router) {
		r.Use(middleware.GenerateCSRFToken(middleware.CSRFConfig{SecureCookies: deps.Public.SecureCookies}))
		r.Use(middleware.ValidateCSRFToken())

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.OptionalAuth())
			r.Use(mw.RateLimit(limiter(rl.Rps10()), mw.GetIP))
			r.Get("/", h.FeedGetHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.NeedAuth())
			r.Use(middleware.ForwardAccessToken)
			r.Use(mw.RateLimit(limiter(rl.Rps10()), mw.GetUserIDFromContext)) // 10 RPS per user

			// CreatePost: 1 per 10 seconds per user
			r.With(mw.RateLimit(limiter(rl.New(0.1, 1, time.Hour)), mw.GetUserIDFromContext)).Post("/posts", h.CreatePostHandler)
			r.Post("/posts/{postId}/edit", h.EditPostHandler)
			r.Post("/posts/{postId}/delete", h.DeletePostHandler)
			r.With(mw.RateLimit(limiter(rl.OnceInSecond()), mw.GetUserIDFromContext)).Post("/posts/{postId}/like", h.LikePostHandler)
			r.With(mw.RateLimit(limiter(rl.OnceInSecond()), mw.GetUserIDFromContext)).Post("/posts/{postId}/comments", h.CreateCommentHandler)

			r.Post("/posts/{postId}/hover", h.HoverHandler)
			r.Post("/hover/leave", h.HoverLeaveHandler)
		})
	})

	return r
}
