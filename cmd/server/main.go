package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"travel-time-service/internal/adapters/provider"
	"travel-time-service/internal/adapters/quota"
	"travel-time-service/internal/api"
	"travel-time-service/internal/config"
	"travel-time-service/internal/platform/db"
	"travel-time-service/internal/ports"
	"travel-time-service/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
	_ "modernc.org/sqlite"
)

// main is the application composition root.
// It wires concrete adapters (quota store, provider clients) behind ports
// and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := config.Get("PORT", "8080")

	transitKey := os.Getenv("TRANSIT_API_KEY")
	if strings.TrimSpace(transitKey) == "" {
		log.Fatal("TRANSIT_API_KEY is required")
	}
	drivingKey := os.Getenv("DRIVING_API_KEY")
	if strings.TrimSpace(drivingKey) == "" {
		log.Fatal("DRIVING_API_KEY is required")
	}

	transitURL := config.Get("TRANSIT_BASE_URL", "https://api.odsay.com/v1/api/searchPubTransPathT")
	drivingURL := config.Get("DRIVING_BASE_URL", "https://apis.openapi.sk.com/tmap/routes/prediction")

	loc, err := time.LoadLocation(config.Get("QUOTA_TZ", "Local"))
	if err != nil {
		log.Fatalf("invalid QUOTA_TZ: %v", err)
	}
	dailyLimit := config.GetInt("QUOTA_DAILY_LIMIT", quota.DefaultDailyLimit)

	store, conn, err := openQuotaStore(dailyLimit, loc)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	// Provider pacers smooth outbound bursts; the persisted daily quota is
	// still the admission ceiling.
	pace := rate.Limit(config.GetFloat("PROVIDER_RPS", 5))
	burst := int(pace)
	if burst < 1 {
		burst = 1
	}
	transitClient, err := provider.NewTransitClient(transitKey, transitURL, rate.NewLimiter(pace, burst))
	if err != nil {
		log.Fatal(err)
	}
	drivingClient, err := provider.NewDrivingClient(drivingKey, drivingURL, rate.NewLimiter(pace, burst))
	if err != nil {
		log.Fatal(err)
	}

	cfg := services.DefaultScoringConfig()
	routeService := services.NewRouteService(
		services.NewTransitEstimator(store, transitClient, cfg),
		services.NewDrivingEstimator(store, drivingClient, cfg),
	)

	router := api.NewRouter(routeService)

	// Timeouts allow for bounded provider retries inside a single request.
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// openQuotaStore picks Postgres when DATABASE_URL is set (multi-instance
// deployments sharing one counter table), SQLite otherwise.
func openQuotaStore(limit int, loc *time.Location) (ports.QuotaStore, *sql.DB, error) {
	if databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL")); databaseURL != "" {
		conn, err := db.Open(databaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := quota.InitSQLSchema(conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return quota.NewSQLQuotaStore(conn, limit, loc), conn, nil
	}

	dbPath := config.Get("DB_PATH", "data/app.db")
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, nil, err
	}
	if err := quota.InitSqliteSchema(conn); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return quota.NewSqliteQuotaStore(conn, limit, loc), conn, nil
}
