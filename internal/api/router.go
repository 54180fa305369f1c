package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/app"
	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/handlers"
	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/middleware"
	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/realtime"
	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/services"
	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/store"
)

// Services bundles the long-lived session services mounted on the router.
type Services struct {
	Store     *store.SessionStore
	Hub       *realtime.Hub
	Lifecycle *services.LifecycleService
	Presence  *services.PresenceService
	Chat      *services.ChatService
	Polls     *services.PollService
}

// NewRouter builds the Gin engine, wires middleware and registers the
// control-plane and event-channel routes.
func NewRouter(cfg *app.Config, svc Services) (*gin.Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if svc.Store == nil || svc.Hub == nil {
		return nil, fmt.Errorf("session store and realtime hub must be provided")
	}
	if svc.Lifecycle == nil || svc.Presence == nil || svc.Chat == nil || svc.Polls == nil {
		return nil, fmt.Errorf("session services must be provided")
	}

	// Inbound events route through the dispatcher from here on.
	svc.Hub.SetHandler(handlers.NewEventDispatcher(svc.Lifecycle, svc.Presence, svc.Chat, svc.Polls))

	metricsEndpoint := ""
	if cfg.Monitoring.Prometheus.Enabled {
		metricsEndpoint = cfg.Monitoring.Prometheus.Endpoint
		if metricsEndpoint == "" {
			metricsEndpoint = "/metrics"
		}
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics(metricsEndpoint))

	// Health endpoint (public)
	r.GET("/health", handlers.Health(svc.Store))

	if metricsEndpoint != "" {
		r.GET(metricsEndpoint, gin.WrapH(promhttp.Handler()))
	}

	// Everything under /api requires a gateway-supplied identity.
	api := r.Group("/api")
	api.Use(middleware.Identity())

	sessionHandler := handlers.NewSessionHandler(svc.Lifecycle, svc.Polls)
	registerSessionRoutes(api, sessionHandler)
	registerPollRoutes(api, handlers.NewPollHandler(svc.Polls))
	registerBreakoutRoutes(api, handlers.NewBreakoutHandler(svc.Lifecycle))
	registerRealtimeRoutes(api, handlers.NewRealtimeHandler(svc.Hub))

	return r, nil
}
