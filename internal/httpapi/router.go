package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/solcache/internal/auth"
	"github.com/example/solcache/internal/handlers"
	"github.com/example/solcache/internal/rate"
)

// RouterDeps bundles everything the router mounts.
type RouterDeps struct {
	Balances   *handlers.BalanceHandler
	Admin      *handlers.AdminHandler
	Signup     *handlers.SignupHandler
	Limiter    *rate.LimiterMap
	Store      auth.KeyStore
	AdminToken string
}

// NewRouter wires routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Logger)
	r.Use(CORS)
	r.Use(RateLimit(deps.Limiter))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if deps.Store != nil {
			if err := deps.Store.Ping(req.Context()); err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"status":"unhealthy"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(Auth(deps.Store))
		api.Post("/balances", deps.Balances.ServeHTTP)
	})

	if deps.Admin != nil && deps.AdminToken != "" {
		r.Post("/admin/create-key", deps.Admin.ServeHTTP)
	}
	if deps.Signup != nil {
		r.Post("/public/signup", deps.Signup.ServeHTTP)
	}

	return r
}
