package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/pinfield/backend/internal/admin"
	"github.com/pinfield/backend/internal/api"
	"github.com/pinfield/backend/internal/api/handlers"
	"github.com/pinfield/backend/internal/config"
	"github.com/pinfield/backend/internal/database"
	"github.com/pinfield/backend/internal/game"
	"github.com/pinfield/backend/internal/migrations"
	"github.com/pinfield/backend/internal/redis"
	"github.com/pinfield/backend/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations on start if requested
	if os.Getenv("MIGRATE_ON_START") == "true" {
		log.Println("↗ Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Apply operator-set overrides (difficulty, scatter, TTLs) from the DB
	if err := admin.ApplyRuntimeConfigToConfig(db, cfg); err != nil {
		log.Printf("Warning: failed to apply runtime config: %v", err)
	}

	// Seed the built-in demo layout on an empty database
	if err := handlers.SeedDemoLayout(db); err != nil {
		log.Printf("Warning: failed to seed demo layout: %v", err)
	}

	// Initialize Redis
	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	// Initialize session manager (starts the expiry reaper)
	game.InitializeManager(db, rdb, cfg)
	game.Manager.SetBroadcaster(ws.SimHub)

	// Wire Redis and start session event subscriber in WS layer
	ws.SetRedisClient(rdb, cfg)
	ws.StartSessionEventSubscriber(context.Background())

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Initialize API handlers
	api.SetupRoutes(router, db, rdb, cfg)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting Pinfield server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
