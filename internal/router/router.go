package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/swapfee/aura-discord-panel-sub000/internal/config"
	"github.com/swapfee/aura-discord-panel-sub000/internal/db"
	"github.com/swapfee/aura-discord-panel-sub000/internal/handlers"
	"github.com/swapfee/aura-discord-panel-sub000/internal/middleware"
	"github.com/swapfee/aura-discord-panel-sub000/internal/relay"
	"github.com/swapfee/aura-discord-panel-sub000/internal/services"
)

func New(cfg *config.Config, queries *db.Queries, hub *relay.Hub) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewRealIPMiddleware(cfg.TrustedProxies).Handler)
	r.Use(middleware.RequestContextMiddleware)
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))

	// Services
	authService := services.NewAuthService(cfg.JWTSecret, cfg.SessionTokenDuration)
	discordService := services.NewDiscordService(cfg.DiscordClientID, cfg.DiscordClientSecret, cfg.DiscordRedirectURI)
	botService := services.NewBotService(cfg.BotAPIURL, cfg.BotAPIKey)

	// Handlers
	authHandler := handlers.NewAuthHandler(cfg, queries, authService, discordService)
	statsHandler := handlers.NewStatsHandler(queries)
	controlsHandler := handlers.NewControlsHandler(botService)
	ingressHandler := handlers.NewIngressHandler(hub, cfg.InternalAPIKey)
	configHandler := handlers.NewConfigHandler(cfg)
	sentryTunnelHandler := handlers.NewSentryTunnelHandler(cfg)
	relayHandler := relay.NewHandler(hub, authService, cfg.CORSAllowedOrigins)

	// Rate limiter for routes that call out to Discord
	discordRateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)

	// Routes
	r.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})

		// Public configuration (Discord client ID, etc.)
		r.Get("/config", configHandler.PublicConfig)

		// Frontend Sentry envelope tunnel
		r.Post("/st", sentryTunnelHandler.Tunnel)

		// OAuth flow (no auth)
		r.Route("/auth", func(r chi.Router) {
			r.Get("/login", authHandler.Login)
			r.Get("/callback", authHandler.Callback)
			r.Post("/logout", authHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(middleware.AuthMiddleware(authService))
				r.Use(middleware.UpdateRequestContextMiddleware)
				r.Get("/me", authHandler.Me)
			})
		})

		// Authenticated dashboard API
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(authService))
			r.Use(middleware.UpdateRequestContextMiddleware)

			// Guild list hits the Discord API, keep it rate limited
			r.With(discordRateLimiter.Middleware).Get("/guilds", authHandler.Guilds)

			r.Route("/guilds/{guildID}", func(r chi.Router) {
				r.Route("/stats", func(r chi.Router) {
					r.Get("/overview", statsHandler.Overview)
					r.Get("/top-tracks", statsHandler.TopTracks)
					r.Get("/recent", statsHandler.Recent)
					r.Get("/daily", statsHandler.Daily)
					r.Get("/voice", statsHandler.Voice)
				})

				r.Get("/queue", statsHandler.Queue)

				// Playback controls relayed to the bot
				r.Post("/player/volume", controlsHandler.Volume)
				r.Post("/player/{action}", controlsHandler.Action)
			})
		})

		// Bot-facing event ingress (pre-shared key, checked in the handler)
		r.Route("/internal", func(r chi.Router) {
			r.Post("/song-played", ingressHandler.SongPlayed)
			r.Post("/queue-update", ingressHandler.QueueUpdate)
			r.Post("/voice-update", ingressHandler.VoiceUpdate)
		})

		// Live-update socket (session cookie checked during the handshake)
		r.Get("/ws", relayHandler.ServeHTTP)
	})

	return r
}
