package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"strings"

	"freight-route-optimizer/internal/adapters/repositories"
	"freight-route-optimizer/internal/config"
	"freight-route-optimizer/internal/platform/db"

	"github.com/joho/godotenv"
)

func main() {
	seedFlag := flag.String("seed", "", "JSON catalogue to load (defaults to SEED_PATH)")
	schemaOnly := flag.Bool("schema-only", false, "create the schema without seeding")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := config.Get("DATABASE_URL", "")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()

	conn, err := db.Open(ctx, databaseURL, db.DefaultOptions)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	seedPath := *seedFlag
	if seedPath == "" {
		seedPath = config.Get("SEED_PATH", "data/catalog.json")
	}
	if *schemaOnly {
		seedPath = ""
	}

	if err := initAndSeed(ctx, conn, seedPath); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, seedPath string) error {
	log.Println("Initializing catalogue schema...")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	if seedPath == "" {
		return nil
	}

	log.Printf("Seeding catalogue from %s...", seedPath)
	if err := repositories.SeedFromJSON(ctx, conn, seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")

	return nil
}
