package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-co-op/gocron/v2"
	"github.com/stackquest/stackquest-api/internal/auth"
	"github.com/stackquest/stackquest-api/internal/config"
	"github.com/stackquest/stackquest-api/internal/database"
	"github.com/stackquest/stackquest-api/internal/handlers"
	"github.com/stackquest/stackquest-api/internal/notifier"
	"github.com/stackquest/stackquest-api/internal/services"
	"github.com/stackquest/stackquest-api/internal/sessioncache"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	// Connect to Database
	db := database.Connect(cfg)

	// Services
	unlockService := services.NewUnlockService(db)
	progressTracker := services.NewProgressTracker(db, unlockService)
	themeGate := services.NewThemeAchievementGate(db, unlockService, time.Now)
	feeds := notifier.NewHub(notifier.DefaultTTL, time.Now)
	sessions := sessioncache.New(sessioncache.DefaultTTL, time.Now)

	// Handlers
	authHandler := auth.NewAuthHandler(cfg, db, sessions, unlockService)
	achievementHandler := handlers.NewAchievementHandler(db, unlockService, feeds, authHandler)
	progressHandler := handlers.NewProgressHandler(progressTracker, authHandler)
	themeHandler := handlers.NewThemeHandler(db, themeGate, authHandler)
	apiKeyHandler := handlers.NewAPIKeyHandler(db, authHandler)

	// Hourly sweep of the session cache and the notification feeds
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			if n := sessions.Sweep(); n > 0 {
				log.Printf("session cache: evicted %d stale entries", n)
			}
			if n := feeds.Sweep(); n > 0 {
				log.Printf("notification feeds: evicted %d idle sessions", n)
			}
		}),
	)
	sched.Start()
	defer func() { _ = sched.Shutdown() }()

	// Initialize Router
	r := chi.NewRouter()

	// Register Routes
	handlers.RegisterRoutes(r, cfg, authHandler, achievementHandler, progressHandler, themeHandler, apiKeyHandler)

	// Start Server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
