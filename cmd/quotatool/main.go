package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strings"
	"time"

	"travel-time-service/internal/adapters/quota"
	"travel-time-service/internal/config"
	"travel-time-service/internal/platform/db"
	"travel-time-service/internal/ports"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"
)

// quotatool prints today's remaining provider admissions, for checking how
// much of the paid daily budget is left.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	loc, err := time.LoadLocation(config.Get("QUOTA_TZ", "Local"))
	if err != nil {
		log.Fatalf("invalid QUOTA_TZ: %v", err)
	}
	limit := config.GetInt("QUOTA_DAILY_LIMIT", quota.DefaultDailyLimit)

	store, conn, err := openStore(limit, loc)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	ctx := context.Background()
	for _, provider := range []string{ports.ProviderTransit, ports.ProviderDriving} {
		remaining, err := store.Remaining(ctx, provider)
		if err != nil {
			log.Fatalf("remaining quota for %s: %v", provider, err)
		}
		log.Printf("provider=%s remaining=%d limit=%d", provider, remaining, limit)
	}
}

func openStore(limit int, loc *time.Location) (ports.QuotaStore, *sql.DB, error) {
	if databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL")); databaseURL != "" {
		conn, err := db.Open(databaseURL)
		if err != nil {
			return nil, nil, err
		}
		return quota.NewSQLQuotaStore(conn, limit, loc), conn, nil
	}

	dbPath := config.Get("DB_PATH", "data/app.db")
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, nil, err
	}
	return quota.NewSqliteQuotaStore(conn, limit, loc), conn, nil
}
