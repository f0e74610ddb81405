package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/ayush/student-rating/internal/admin"
	"github.com/ayush/student-rating/internal/auth"
	"github.com/ayush/student-rating/internal/content"
	"github.com/ayush/student-rating/internal/lib/validate"
	"github.com/ayush/student-rating/internal/metrics"
	"github.com/ayush/student-rating/internal/middleware"
	"github.com/ayush/student-rating/internal/rating"
	"github.com/ayush/student-rating/internal/site"
)

// Storage is everything the HTTP layer needs from a backing store.
// Both store.PostgresStore and store.MemoryStore implement it.
type Storage interface {
	auth.UserStore
	rating.Store
	content.Store
	site.Profiles
	admin.Accounts
}

// Deps are the handles the router is built from.
type Deps struct {
	Log          *slog.Logger
	Store        Storage
	Sessions     *auth.SessionStore
	Registry     *prometheus.Registry
	BcryptCost   int
	CookieSecure bool
	LoginLimiter *rate.Limiter
	CORSOrigins  []string
}

// NewRouter wires services and handlers onto a chi router.
func NewRouter(d Deps) http.Handler {
	m := metrics.New(d.Registry)
	v := validate.New()

	authSvc := auth.NewService(d.Store, d.BcryptCost, d.Log)
	ledger := rating.NewLedger(d.Store, d.Log)
	news := content.NewService(d.Store, d.Log)

	authHandler := auth.NewHandler(authSvc, d.Sessions, d.Log, m, v, d.CookieSecure)
	siteHandler := site.NewHandler(ledger, news, d.Store, d.Log, v)
	adminHandler := admin.NewHandler(authSvc, ledger, d.Store, news, d.Log, m, v)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(middleware.LoadPrincipal(d.Sessions, d.Log))

		// Public pages
		r.Get("/", siteHandler.Home)
		r.Get("/rating", siteHandler.Rating)
		r.Get("/news", siteHandler.ListNews)
		r.Get("/news/{id}", siteHandler.GetNews)

		// Auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Get("/register", authHandler.RegisterPage)
			r.Post("/register", authHandler.Register)
			r.Get("/login", authHandler.LoginPage)
			r.With(middleware.RateLimit(d.LoginLimiter, d.Log)).Post("/login", authHandler.Login)
			r.Get("/logout", authHandler.Logout)
			r.Post("/logout", authHandler.Logout)
			r.With(middleware.RequireAuth(auth.LoginPath)).Get("/me", authHandler.Me)
		})

		// Profile (signed in)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(auth.LoginPath))
			r.Get("/profile", siteHandler.Profile)
			r.Post("/profile", siteHandler.UpdateProfile)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/", adminHandler.Dashboard)
			r.Post("/add-student", adminHandler.AddStudent)
			r.Post("/delete-user/{id}", adminHandler.DeleteUser)
			r.Post("/add-points/{id}", adminHandler.AddPoints)
			r.Post("/set-active/{id}", adminHandler.SetActive)
			r.Post("/add-news", adminHandler.AddNews)
			r.Post("/delete-news/{id}", adminHandler.DeleteNews)
		})
	})

	return r
}
