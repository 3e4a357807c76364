package main

import (
	"log"

	"github.com/labstack/echo/v4"
	"github.com/sluggram/backend/internal/media"
	"github.com/sluggram/backend/internal/middleware"
	"github.com/sluggram/backend/internal/router"
	"github.com/sluggram/backend/pkg/config"
	"github.com/sluggram/backend/pkg/validators"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.AuthDevMode {
		log.Println("WARNING: AUTH_DEV_MODE is enabled - bearer tokens are NOT verified. Development only.")
	}

	// Initialize database connection
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	// Media blob store
	store, err := media.NewStore(cfg.UploadDir, cfg.MaxVideoSize)
	if err != nil {
		log.Fatalf("Failed to initialize media store: %v", err)
	}

	// Identity verification
	auth := middleware.NewAuthenticator(cfg.Auth0Domain, cfg.Auth0Audience, cfg.Auth0Algorithms, cfg.AuthDevMode)

	// Create Echo instance
	e := echo.New()
	e.Validator = validators.NewValidator()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Database, auth, store)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
