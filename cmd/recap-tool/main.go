package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-tombola/internal/recap"
	sales_db "ms-tombola/internal/sales/db"
	seasons_db "ms-tombola/internal/seasons/db"
)

// One-shot recap for operators: prints today's summary as JSON without
// waiting for the scheduled hour.
func main() {
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

	svc := recap.NewService(&sales_db.DB{Bun: bunDB}, &seasons_db.DB{Bun: bunDB})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	r, err := svc.DailyRecap(ctx, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "recap failed: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode recap: %v\n", err)
		os.Exit(1)
	}
}
