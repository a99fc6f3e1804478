package main

import (
	"database/sql"
	"flag"
	"log"

	"ms-pricing/internal/config"
	"ms-pricing/internal/database/migrations"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func main() {
	var (
		direction = flag.String("direction", "up", "Migration direction: up or down")
		seed      = flag.Bool("seed", false, "Include demo seed data when migrating up")
		dir       = flag.String("dir", "./migrations", "Directory containing migration files")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using environment variables")
	}

	cfg := config.Load()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to open PostgreSQL: %v", err)
	}
	defer sqldb.Close()

	if err := sqldb.Ping(); err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{
		MigrationsDir: *dir,
		SeedData:      *seed,
	})
	defer runner.Close()

	switch *direction {
	case "up":
		if err := runner.RunMigrations(); err != nil {
			log.Fatalf("Migration up failed: %v", err)
		}
		log.Println("✅ Migrations applied successfully")
	case "down":
		if err := runner.MigrateDown(); err != nil {
			log.Fatalf("Migration down failed: %v", err)
		}
		log.Println("✅ Migrations rolled back successfully")
	default:
		log.Fatalf("Unknown direction %q, expected up or down", *direction)
	}
}
