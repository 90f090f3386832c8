package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/pinfield/backend/internal/admin"
	"github.com/pinfield/backend/internal/config"
	"github.com/pinfield/backend/internal/database"
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

	// Seed operator account
	username := os.Getenv("OPERATOR_USERNAME")
	if username == "" {
		username = "operator"
		log.Printf("Using default operator username: %s", username)
	}

	operatorToken := os.Getenv("OPERATOR_TOKEN")
	if operatorToken == "" {
		operatorToken = "change-me-in-production"
		log.Printf("WARNING: Using default operator token. Set OPERATOR_TOKEN env var in production!")
	}

	displayName := os.Getenv("OPERATOR_DISPLAY_NAME")
	if displayName == "" {
		displayName = "Operator"
	}

	err = admin.CreateOperatorAccount(db, username, displayName, operatorToken)
	if err != nil {
		log.Fatalf("Failed to create operator account: %v", err)
	}

	log.Printf("✓ Operator account created/updated successfully")
	log.Printf("  Username: %s", username)
	log.Printf("  Display Name: %s", displayName)
	log.Println("\nYou can now login at /api/v1/operator/login with:")
	log.Printf("  Username: %s", username)
	log.Printf("  Token: %s", operatorToken)
}
