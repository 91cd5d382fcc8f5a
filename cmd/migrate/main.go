package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
)

func main() {
	// Parse command line flags
	status := flag.Bool("status", false, "List migrations and whether they have been applied")
	flag.Parse()

	db, err := open()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if *status {
		if err := printStatus(ctx, db); err != nil {
			logging.Fatal().Err(err).Msg("failed to read migration status")
		}
		return
	}

	if err := database.RunMigrations(ctx, db); err != nil {
		logging.Fatal().Err(err).Msg("failed to apply migrations")
	}
	fmt.Println("All migrations applied successfully.")
}

// open prefers DATABASE_URL and falls back to the application config
func open() (*sql.DB, error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return sql.Open("postgres", dsn)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	return database.OpenSQL(cfg)
}

func printStatus(ctx context.Context, db *sql.DB) error {
	applied, err := database.AppliedMigrations(ctx, db)
	if err != nil {
		return err
	}
	migrations, err := database.Migrations()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if at, ok := applied[m.Version]; ok {
			fmt.Printf("[x] %s (applied %s)\n", m.Name, at.Format(time.RFC3339))
		} else {
			fmt.Printf("[ ] %s\n", m.Name)
		}
	}
	return nil
}
