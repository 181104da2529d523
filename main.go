package main

import (
	"log"

	"reelvote/config"
	"reelvote/handlers"
	"reelvote/middleware"
	"reelvote/models"
	"reelvote/routes"
	"reelvote/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.Game{},
		&models.Vote{},
		&models.VoterLogEntry{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Initialize services
	authService := services.NewAuthService(cfg.AdminCode, cfg.JWTSecret)
	gameService := services.NewGameService(db, redisClient)
	voteService := services.NewVoteService(db)
	resetService := services.NewResetService(db, redisClient)
	identityService := services.NewIdentityService(services.NewRedisDeviceStore(redisClient))

	// Initialize WebSocket hub
	hub := services.NewHub(gameService, voteService)
	go hub.Run()

	// Initialize handlers
	gameHandler := handlers.NewGameHandler(gameService, hub)
	voteHandler := handlers.NewVoteHandler(voteService, gameService, identityService, hub)
	adminHandler := handlers.NewAdminHandler(authService, resetService, gameService, hub)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, gameHandler, voteHandler, adminHandler, hub, cfg.JWTSecret)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
