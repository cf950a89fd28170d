package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/priyansh-soni/honeypot-agent/internal/handler/analyze"
	"github.com/priyansh-soni/honeypot-agent/internal/handler/monitor"
	sessionHandler "github.com/priyansh-soni/honeypot-agent/internal/handler/session"
	middlewarePkg "github.com/priyansh-soni/honeypot-agent/internal/middleware"
	"github.com/priyansh-soni/honeypot-agent/internal/service/callback"
	"github.com/priyansh-soni/honeypot-agent/internal/service/engage"
	sessionstore "github.com/priyansh-soni/honeypot-agent/internal/service/session"
	"github.com/priyansh-soni/honeypot-agent/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(coordinator *engage.Coordinator, store *sessionstore.Store, hub *monitor.Hub, callbacks *callback.Client, apiSecretKey string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	analyzeHandler := analyze.New(coordinator, callbacks, hub)
	sessionsHandler := sessionHandler.New(store)
	monitorHandler := monitor.New(hub)

	r.Route("/api", func(api chi.Router) {
		api.Group(func(protected chi.Router) {
			protected.Use(middlewarePkg.RequireAPIKey(apiSecretKey))
			analyzeHandler.RegisterRoutes(protected)
			sessionsHandler.RegisterRoutes(protected)
		})

		// The monitor endpoint stays open; browsers cannot attach
		// custom headers on websocket upgrades.
		monitorHandler.RegisterRoutes(api)
	})

	return r
}
