package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/glassops/glassops-backend/api/controllers"
	"github.com/glassops/glassops-backend/api/middleware"
	"github.com/glassops/glassops-backend/internal/activity"
	"github.com/glassops/glassops-backend/internal/auth"
	"github.com/glassops/glassops-backend/internal/customers"
	"github.com/glassops/glassops-backend/internal/jobs"
	"github.com/glassops/glassops-backend/internal/quotes"
	"github.com/glassops/glassops-backend/internal/technicians"
	"github.com/glassops/glassops-backend/pkg/auth/session"
	"github.com/glassops/glassops-backend/pkg/config"
	"github.com/glassops/glassops-backend/pkg/enums"
	"github.com/glassops/glassops-backend/pkg/logger"
	"github.com/glassops/glassops-backend/pkg/metrics"
	pkgredis "github.com/glassops/glassops-backend/pkg/redis"
)

// Dependencies carries everything the HTTP surface is built from.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer
	Ready       map[string]controllers.Pinger

	Sessions    session.AccessSessionChecker
	Limiter     middleware.WindowLimiter
	Idempotency pkgredis.IdempotencyStore

	Auth        auth.Service
	Quotes      quotes.Service
	Converter   jobs.Converter
	Customers   customers.Service
	Technicians technicians.Service
	Jobs        jobs.Service
	Activity    activity.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.RateLimitPolicy{
		Name:           "login",
		Window:         cfg.RateLimit.LoginWindow,
		IPLimit:        cfg.RateLimit.LoginIPLimit,
		EmailLimit:     cfg.RateLimit.LoginEmailLimit,
		TrustedProxies: cfg.RateLimit.TrustedProxies,
	}
	quotePolicy := middleware.RateLimitPolicy{
		Name:           "quote",
		Window:         cfg.RateLimit.QuoteWindow,
		IPLimit:        cfg.RateLimit.QuoteIPLimit,
		EmailLimit:     cfg.RateLimit.QuoteEmailLimit,
		TrustedProxies: cfg.RateLimit.TrustedProxies,
	}

	// Idempotency is attached per route so the full route pattern is
	// resolved by the time the middleware looks it up.
	idempotent := middleware.Idempotency(deps.Idempotency, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(deps.Ready, logg))
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/quote", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(quotePolicy, deps.Limiter, logg))
			r.With(idempotent).Post("/submit", controllers.QuoteSubmit(deps.Quotes, logg))
			r.Post("/submit-with-files", controllers.QuoteSubmitWithFiles(deps.Quotes, cfg.Uploads, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
			r.Get("/stats", controllers.QuoteStats(deps.Quotes, logg))
			r.Route("/submissions", func(r chi.Router) {
				r.Get("/", controllers.QuoteList(deps.Quotes, logg))
				r.Get("/{id}", controllers.QuoteGet(deps.Quotes, logg))
				r.Put("/{id}", controllers.QuoteUpdateStatus(deps.Quotes, logg))
				r.With(middleware.RequireRole(logg, enums.UserRoleAdmin)).Delete("/{id}", controllers.QuoteDelete(deps.Quotes, logg))
				r.With(idempotent).Post("/{id}/convert-to-job", controllers.QuoteConvert(deps.Converter, logg))
			})
		})
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.RateLimit(loginPolicy, deps.Limiter, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, deps.Sessions, logg)).Post("/logout", controllers.AuthLogout(deps.Auth, logg))
		if cfg.App.IsDev() {
			r.Post("/register", controllers.AuthRegister(deps.Auth, logg))
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		adminOnly := middleware.RequireRole(logg, enums.UserRoleAdmin)

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.CustomerList(deps.Customers, logg))
			r.With(idempotent).Post("/", controllers.CustomerCreate(deps.Customers, logg))
			r.Get("/search/email/{email}", controllers.CustomerFindByEmail(deps.Customers, logg))
			r.Get("/search/phone/{phone}", controllers.CustomerFindByPhone(deps.Customers, logg))
			r.Get("/{id}", controllers.CustomerGet(deps.Customers, logg))
			r.Put("/{id}", controllers.CustomerUpdate(deps.Customers, logg))
			r.With(adminOnly).Delete("/{id}", controllers.CustomerDelete(deps.Customers, logg))
			r.Get("/{id}/history", controllers.CustomerHistory(deps.Customers, logg))
		})

		r.Route("/technicians", func(r chi.Router) {
			r.Get("/", controllers.TechnicianList(deps.Technicians, logg))
			r.Get("/{id}", controllers.TechnicianGet(deps.Technicians, logg))
			r.With(adminOnly, idempotent).Post("/", controllers.TechnicianCreate(deps.Technicians, logg))
			r.With(adminOnly).Put("/{id}", controllers.TechnicianUpdate(deps.Technicians, logg))
			r.With(adminOnly).Delete("/{id}", controllers.TechnicianDelete(deps.Technicians, logg))
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", controllers.JobList(deps.Jobs, logg))
			r.Get("/{id}", controllers.JobGet(deps.Jobs, logg))
			r.Put("/{id}/status", controllers.JobUpdateStatus(deps.Jobs, logg))
		})

		r.Get("/activity", controllers.ActivityList(deps.Activity, logg))
	})

	return r
}
