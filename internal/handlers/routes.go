package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/stackquest/stackquest-api/internal/auth"
	"github.com/stackquest/stackquest-api/internal/config"
)

func RegisterRoutes(
	r *chi.Mux,
	cfg *config.Config,
	authHandler *auth.AuthHandler,
	achievementHandler *AchievementHandler,
	progressHandler *ProgressHandler,
	themeHandler *ThemeHandler,
	apiKeyHandler *APIKeyHandler,
) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if cfg.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{cfg.FrontendURL},
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "X-API-KEY"},
			AllowCredentials: true,
		}))
	}

	// Initialize Huma API
	humaConfig := huma.DefaultConfig("StackQuest API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: "auth_token",
		},
		"apiKeyAuth": {
			Type: "apiKey",
			In:   "header",
			Name: "X-API-KEY",
		},
	}
	api := humachi.New(r, humaConfig)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Get("/auth/github/login", authHandler.HandleLogin)
	r.Get("/auth/github/callback", authHandler.HandleCallback)
	r.Post("/auth/guest", authHandler.HandleGuestLogin)

	secured := func(o *huma.Operation) {
		o.Security = []map[string][]string{{"cookieAuth": {}}, {"apiKeyAuth": {}}}
	}

	// Profile
	huma.Get(api, "/me", authHandler.HandleMe, secured)
	huma.Post(api, "/me/avatar", authHandler.HandleUpdateAvatar, secured)

	// Achievements
	huma.Get(api, "/achievements", achievementHandler.HandleCatalog, secured)
	huma.Get(api, "/me/achievements", achievementHandler.HandleMine, secured)
	huma.Get(api, "/me/achievements/notifications", achievementHandler.HandleNotifications, secured)
	huma.Post(api, "/achievements/unlock", achievementHandler.HandleUnlock, secured)

	// Progress and theme
	huma.Post(api, "/progress/visit", progressHandler.HandleVisit, secured)
	huma.Post(api, "/me/theme", themeHandler.HandleThemeChange, secured)

	// API keys
	huma.Post(api, "/api-keys", apiKeyHandler.HandleCreate, secured)
	huma.Get(api, "/api-keys", apiKeyHandler.HandleList, secured)
	huma.Delete(api, "/api-keys/{id}", apiKeyHandler.HandleDelete, secured)
}
