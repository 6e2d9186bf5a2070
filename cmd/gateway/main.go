package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/rl1809/bookstore/internal/config"
	"github.com/rl1809/bookstore/internal/logging"
)

// The gateway is a stateless proxy: it forwards purchase requests to the
// catalog's /order endpoint and relays the result unchanged. No logic lives
// here.
type gateway struct {
	catalogURL string
	client     *http.Client
	logger     *zap.Logger
	started    time.Time
}

func (g *gateway) purchase(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "failed to read request", http.StatusBadRequest)
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost,
		g.catalogURL+"/order", bytes.NewReader(body))
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error("catalog unreachable", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": "catalog unreachable"})
		return
	}
	defer resp.Body.Close()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	io.Copy(w, resp.Body)
}

func (g *gateway) health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "healthy",
		"service":   "order-server",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(g.started).Seconds(),
	})
}

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	g := &gateway{
		catalogURL: cfg.CatalogURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
		started:    time.Now(),
	}

	router := httprouter.New()
	router.POST("/purchase", g.purchase)
	router.GET("/health", g.health)

	httpServer := &http.Server{
		Addr:    cfg.GatewayPort,
		Handler: router,
	}

	go func() {
		logger.Info("gateway listening",
			zap.String("addr", cfg.GatewayPort),
			zap.String("catalog", cfg.CatalogURL),
		)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	httpServer.Shutdown(shutdownCtx)
}
