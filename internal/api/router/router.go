package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/frontdesk-ai/platform/internal/http/handlers"
	httpmiddleware "github.com/frontdesk-ai/platform/internal/http/middleware"
	"github.com/frontdesk-ai/platform/internal/webchat"
	"github.com/frontdesk-ai/platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	VoiceTurnHandler   *handlers.VoiceTurnHandler
	AdminReservations  *handlers.AdminReservationsHandler
	AdminCalls         *handlers.AdminCallsHandler
	WebchatHandler     *webchat.Handler
	MetricsHandler     http.Handler
	AdminAuthSecret    string
	CORSAllowedOrigins []string

	// TurnRateLimit bounds requests/sec per IP on the voice endpoint.
	// Zero disables limiting.
	TurnRateLimit float64
	TurnRateBurst int
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.VoiceTurnHandler != nil {
			public.Route("/v1/voice", func(voice chi.Router) {
				if cfg.TurnRateLimit > 0 {
					voice.Use(httpmiddleware.RateLimit(cfg.TurnRateLimit, cfg.TurnRateBurst))
				}
				voice.Post("/turn", cfg.VoiceTurnHandler.HandleTurn)
			})
		}
		if cfg.WebchatHandler != nil {
			public.Get("/chat/ws", cfg.WebchatHandler.HandleWebSocket)
		}
	})

	// Admin routes, protected by HMAC JWT
	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			if cfg.AdminReservations != nil {
				admin.Get("/reservations", cfg.AdminReservations.ListUpcoming)
			}
			if cfg.AdminCalls != nil {
				admin.Get("/calls", cfg.AdminCalls.ListRecent)
			}
		})
	}

	return r
}
