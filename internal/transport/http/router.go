package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"carddemo/internal/platform/metrics"
	"carddemo/internal/platform/middleware"
)

// RouterConfig carries everything the router wiring needs.
type RouterConfig struct {
	Auth        AuthService
	Cards       CardService
	Admin       AdminService
	Validator   middleware.TokenValidator
	Registry    *prometheus.Registry
	Metrics     *metrics.Metrics
	CORSOrigins []string
	Logger      *slog.Logger
}

// NewRouter wires all endpoints with the middleware stack. The auth
// endpoints stay public; everything else sits behind token validation,
// with user management additionally requiring the admin type.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)
	r.Use(middleware.Timeout(30 * time.Second))
	if cfg.Metrics != nil {
		r.Use(latency(cfg.Metrics))
	}

	r.Get("/health", handleHealth)
	if cfg.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}

	authHandler := NewAuthHandler(cfg.Auth)
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Post("/auth/login", authHandler.handleLogin)
		r.Post("/auth/logout", authHandler.handleLogout)
		r.Post("/auth/refresh", authHandler.handleRefresh)
		r.Post("/auth/validate", authHandler.handleValidate)
	})

	cardHandler := NewCardHandler(cfg.Cards)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(cfg.Validator, cfg.Logger))

		r.Get("/accounts", cardHandler.handleListAccounts)
		r.Get("/accounts/{accountID}", cardHandler.handleGetAccount)
		r.Put("/accounts/{accountID}", cardHandler.handleUpdateAccount)
		r.Post("/accounts/{accountID}/payments", cardHandler.handlePayBalance)
		r.Get("/cards", cardHandler.handleListCards)
		r.Get("/cards/{cardNumber}", cardHandler.handleGetCard)
		r.Get("/transactions", cardHandler.handleListTransactions)
		r.Get("/transactions/{transactionID}", cardHandler.handleGetTransaction)
		r.Post("/transactions", cardHandler.handleAddTransaction)
	})

	adminHandler := NewAdminHandler(cfg.Admin)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(cfg.Validator, cfg.Logger))
		r.Use(middleware.RequireAdmin(cfg.Logger))

		r.Get("/admin/users", adminHandler.handleListUsers)
		r.Post("/admin/users", adminHandler.handleCreateUser)
		r.Get("/admin/users/{userID}", adminHandler.handleGetUser)
		r.Put("/admin/users/{userID}", adminHandler.handleUpdateUser)
		r.Delete("/admin/users/{userID}", adminHandler.handleDeleteUser)
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// latency records per-endpoint request durations. The route pattern is used
// as the label so path parameters do not blow up cardinality.
func latency(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)

			endpoint := chi.RouteContext(r.Context()).RoutePattern()
			if endpoint == "" {
				endpoint = r.URL.Path
			}
			m.ObserveEndpointLatency(endpoint, time.Since(start).Seconds())
		})
	}
}
