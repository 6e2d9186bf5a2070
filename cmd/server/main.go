package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rl1809/bookstore/internal/adapter/handler"
	"github.com/rl1809/bookstore/internal/adapter/storage"
	"github.com/rl1809/bookstore/internal/config"
	"github.com/rl1809/bookstore/internal/core/service"
	"github.com/rl1809/bookstore/internal/logging"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting catalog server", zap.String("config", cfg.String()))

	// Ledger: the source of truth, required at startup.
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.Fatal("failed to open mysql", zap.Error(err))
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("failed to ping mysql", zap.Error(err))
	}
	logger.Info("connected to mysql")

	if cfg.Seed {
		if err := seed(ctx, db); err != nil {
			logger.Fatal("failed to seed catalog", zap.Error(err))
		}
		logger.Info("seeded catalog")
	}

	// Cache: advisory. Connect in the background with backoff so a slow or
	// absent cache never delays request handling; until it is up the
	// coherence controller serves straight from the ledger.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		DB:       cfg.RedisDB,
		Password: cfg.RedisPassword,
		PoolSize: 100,
	})
	go func() {
		bo := backoff.NewExponentialBackOff()
		bo.MaxInterval = 30 * time.Second
		bo.MaxElapsedTime = 0 // retry until shutdown
		err := backoff.Retry(func() error {
			return rdb.Ping(ctx).Err()
		}, backoff.WithContext(bo, ctx))
		if err != nil {
			logger.Warn("gave up connecting to redis", zap.Error(err))
			return
		}
		logger.Info("connected to redis")
	}()

	ledger := storage.NewSQLAdapter(db)
	cache := storage.NewRedisAdapter(rdb)

	coherence := service.NewCoherenceController(cache, ledger, logger)
	catalog := service.NewCatalogService(ledger, coherence, logger)

	httpHandler := handler.NewHTTPHandler(catalog, cache, logger)
	httpServer := &http.Server{
		Addr:    cfg.AppPort,
		Handler: httpHandler.Routes(),
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.AppPort))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	logger.Info("HTTP server stopped")

	rdb.Close()
	db.Close()
	logger.Info("connections closed")
}

// seed creates the items table if absent and inserts a small default catalog.
// Bootstrap convenience only; schema management is otherwise out of scope.
func seed(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS items (
			id BIGINT PRIMARY KEY,
			topic VARCHAR(255) NOT NULL,
			title VARCHAR(255) NOT NULL,
			unit_cost BIGINT NOT NULL,
			quantity BIGINT NOT NULL
		)`)
	if err != nil {
		return err
	}

	items := []struct {
		id       int64
		topic    string
		title    string
		unitCost int64
		quantity int64
	}{
		{1, "distributed systems", "How to get a good grade in DOS in 40 minutes a day", 30, 10},
		{2, "distributed systems", "RPCs for Noobs", 25, 10},
		{3, "undergraduate school", "Xen and the Art of Surviving Undergraduate School", 40, 10},
		{4, "undergraduate school", "Cooking for the Impatient Undergrad", 20, 10},
	}
	for _, it := range items {
		_, err := db.ExecContext(ctx, `
			INSERT IGNORE INTO items (id, topic, title, unit_cost, quantity)
			VALUES (?, ?, ?, ?, ?)`,
			it.id, it.topic, it.title, it.unitCost, it.quantity)
		if err != nil {
			return err
		}
	}
	return nil
}
