package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	securitymiddleware "archie-shopify-sync/internal/infrastructure/middleware"
)

// RouterConfig wires the handlers into a router
type RouterConfig struct {
	Sync     *SyncHandler
	Webhooks *WebhookHandler
	// SyncAuth guards the /sync routes; nil leaves them open
	SyncAuth func(http.Handler) http.Handler
	// Metrics serves /metrics; nil uses the default Prometheus registry
	Metrics http.Handler
}

// NewRouter builds the HTTP surface
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(securitymiddleware.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metrics)

	if cfg.Webhooks != nil {
		r.Post("/webhooks/app-uninstalled", cfg.Webhooks.AppUninstalled)
	}

	if cfg.Sync != nil {
		r.Route("/sync/{shop}", func(r chi.Router) {
			if cfg.SyncAuth != nil {
				r.Use(cfg.SyncAuth)
			}
			r.Post("/full", cfg.Sync.TriggerFull)
			r.Post("/{entity}", cfg.Sync.TriggerEntity)
			r.Post("/{entity}/cancel", cfg.Sync.Cancel)
			r.Get("/status", cfg.Sync.Status)
			r.Get("/runs", cfg.Sync.Runs)
			r.Get("/events", cfg.Sync.Events)
		})
	}

	return r
}
