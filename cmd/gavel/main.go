package main

import (
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/gavel-dev/gavel/db"
	"github.com/gavel-dev/gavel/internal/auth"
	"github.com/gavel-dev/gavel/internal/handlers"
	"github.com/gavel-dev/gavel/internal/router"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	if err := godotenv.Load(); err != nil {
		log.WithError(err).Warn("No .env file loaded")
	}

	if err := auth.InitJWTSecret(); err != nil {
		log.WithError(err).Fatal("Failed to initialize JWT secret")
	}

	dsn := os.Getenv("DATABASE_URL")

	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if err := db.ConnectDatabase(dsn); err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	if err := db.MigrateDatabase(); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	handlers.InitEngine(db.DB)

	r := router.NewRouter()

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "3000"
		log.Info("PORT not set, defaulting to 3000")
	}

	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}
}
