package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-tombola/internal/database/migrations"
)

// Applies or rolls back the ledger schema out of band:
//
//	go run ./cmd/migrate -dir ./migrations
//	go run ./cmd/migrate -down
func main() {
	var (
		dir  = flag.String("dir", "./migrations", "directory containing migration files")
		down = flag.Bool("down", false, "roll back all migrations instead of applying them")
	)
	flag.Parse()

	_ = godotenv.Load()

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "POSTGRES_DSN not set")
		os.Exit(1)
	}

	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	bunDB := bun.NewDB(sqldb, pgdialect.New())
	defer bunDB.Close()

	runner := migrations.NewRunner(bunDB, migrations.Options{MigrationsDir: *dir})
	defer runner.Close()

	if *down {
		if err := runner.MigrateDown(); err != nil {
			fmt.Fprintf(os.Stderr, "migration down failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("All migrations rolled back")
		return
	}

	if err := runner.RunMigrations(); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Migrations applied")
}
