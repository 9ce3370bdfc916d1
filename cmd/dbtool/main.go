package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"ride-fare-service/internal/adapters/repositories"
	"ride-fare-service/internal/config"
	"ride-fare-service/internal/platform/db"
	"ride-fare-service/internal/platform/logger"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// dbtool creates the Postgres schema and upserts the sample rides seed.
func main() {
	// A missing .env file is normal outside local runs.
	_ = godotenv.Load()

	log, err := logger.New(config.Get("APP_ENV", "production"), config.Get("LOG_LEVEL", "info"), "dbtool")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	conn, err := db.Open(ctx, databaseURL, 10*time.Second)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/sample_rides.json")
	if err := initAndSeed(ctx, conn, seedPath, log); err != nil {
		log.Fatal("dbtool failed", zap.Error(err))
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, seedPath string, log *zap.Logger) error {
	log.Info("initializing database schema")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Info("schema ready")

	log.Info("seeding database", zap.String("path", seedPath))
	if err := repositories.SeedFromJSON(ctx, conn, seedPath); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	log.Info("seeding complete")

	return nil
}
