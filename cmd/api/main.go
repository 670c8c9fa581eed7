package main

import (
	"context"
	"database/sql"
	"os"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"MiniCart/internal/catalog"
	"MiniCart/pkg/kit"
)

func main() {
	service := "api"
	log := kit.NewLogger(service, getenv("LOG_LEVEL", "info"))
	defer func() { _ = log.Sync() }()

	port := getenv("PORT", "8082")

	store, closeStore, err := openStore(log)
	if err != nil {
		log.Fatal("open store failed", zap.Error(err))
	}
	defer closeStore()

	rateLimit, err := strconv.Atoi(getenv("RATE_LIMIT_PER_MIN", "0"))
	if err != nil {
		log.Fatal("invalid RATE_LIMIT_PER_MIN", zap.Error(err))
	}

	s := &catalog.Server{Store: store, Log: log}
	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:             log,
		Service:         service,
		Registry:        prometheus.NewRegistry(),
		MetricsEnabled:  true,
		MetricsToken:    os.Getenv("METRICS_TOKEN"),
		RateLimitPerMin: rateLimit,
	})

	if err := kit.RunHTTPServer(context.Background(), ":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

// openStore uses Postgres when DATABASE_URL is set and an in-memory seed
// otherwise.
func openStore(log *zap.Logger) (catalog.Store, func(), error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using postgres store")
		return catalog.NewPostgresStore(db), func() { _ = db.Close() }, nil
	}

	seed := catalog.DefaultSeed()
	if path := os.Getenv("SEED_FILE"); path != "" {
		var err error
		if seed, err = catalog.LoadSeed(path); err != nil {
			return nil, nil, err
		}
	}
	log.Info("using in-memory store", zap.Int("products", len(seed.Products)))
	return catalog.NewMemStore(seed), func() {}, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
