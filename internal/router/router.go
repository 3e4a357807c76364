package router

import (
	"log"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sluggram/backend/internal/handlers"
	"github.com/sluggram/backend/internal/media"
	"github.com/sluggram/backend/internal/middleware"
	"github.com/sluggram/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupMiddleware configures global Echo middleware.
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies.
func SetupRoutes(e *echo.Echo, db *mongo.Database, auth *middleware.Authenticator, store *media.Store) {
	// Liveness - always accessible
	e.GET("/", handlers.Root)

	api := e.Group("/api")
	api.GET("/health", handlers.HealthCheck)

	requireAuth := auth.Middleware()

	userRepo := repositories.NewMongoUserRepository(db)
	postRepo := repositories.NewMongoPostRepository(db)

	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterUserRoutes(api, requireAuth)
	log.Println("User routes configured.")

	postHandler := handlers.NewPostHandler(postRepo, userRepo)
	postHandler.RegisterPostRoutes(api, requireAuth)
	log.Println("Post routes configured.")

	uploadHandler := handlers.NewUploadHandler(store)
	uploadHandler.RegisterUploadRoutes(api, requireAuth)
	log.Println("Upload routes configured.")
}
