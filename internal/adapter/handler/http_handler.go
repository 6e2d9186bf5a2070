package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/core/service"
	"github.com/rl1809/bookstore/internal/port"
)

// HTTPHandler exposes the catalog service over JSON/HTTP.
type HTTPHandler struct {
	catalog *service.CatalogService
	cache   port.CacheRepository
	logger  *zap.Logger
	started time.Time
}

func NewHTTPHandler(catalog *service.CatalogService, cache port.CacheRepository, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		catalog: catalog,
		cache:   cache,
		logger:  logger,
		started: time.Now(),
	}
}

// Routes builds the router with request logging applied.
func (h *HTTPHandler) Routes() http.Handler {
	router := httprouter.New()
	router.POST("/order", h.Order)
	router.GET("/search/:topic", h.Search)
	router.GET("/info/:id", h.Info)
	router.PUT("/update/:id", h.Update)
	router.GET("/health", h.Health)
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())

	return RequestLogger(h.logger)(router)
}

type orderRequest struct {
	ID        int64 `json:"id"`
	OrderCost int64 `json:"orderCost"`
}

type orderResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type orderResponse struct {
	Result orderResult `json:"result"`
}

func failResult(message string) orderResponse {
	return orderResponse{Result: orderResult{Status: "fail", Message: message}}
}

// Order handles POST /order. Domain failures answer 200 with a fail result;
// only malformed requests get a 4xx.
func (h *HTTPHandler) Order(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, failResult("invalid request body"))
		return
	}
	if req.ID <= 0 || req.OrderCost < 0 {
		writeJSON(w, http.StatusBadRequest, failResult("missing required fields"))
		return
	}

	item, err := h.catalog.Purchase(r.Context(), req.ID, req.OrderCost)
	if err != nil {
		writeJSON(w, http.StatusOK, failResult(purchaseFailMessage(err)))
		return
	}

	writeJSON(w, http.StatusOK, orderResponse{Result: orderResult{
		Status:  "success",
		Message: fmt.Sprintf("Bought book %s", item.Title),
	}})
}

func purchaseFailMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "Book not found!"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "Insufficient funds to buy the book!"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "Book out of stock!"
	default:
		// Storage details stay in the logs, never in the response.
		return "Database error!"
	}
}

// Search handles GET /search/:topic. An empty list is a valid result.
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	items, err := h.catalog.SearchByTopic(r.Context(), ps.ByName("topic"))
	if err != nil {
		h.logger.Error("topic search failed", zap.String("topic", ps.ByName("topic")), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string][]domain.Item{"items": items})
}

// Info handles GET /info/:id.
func (h *HTTPHandler) Info(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	item, err := h.catalog.GetInfo(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Book not found"})
		return
	}
	if err != nil {
		h.logger.Error("item info failed", zap.Int64("id", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]*domain.Item{"item": item})
}

type updateRequest struct {
	NumberOfItems *int64 `json:"numberOfItems"`
}

// Update handles the legacy PUT /update/:id. It bypasses cache invalidation:
// stale reads are possible until the next purchase or GetInfo self-heal.
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "invalid id"})
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NumberOfItems == nil || *req.NumberOfItems < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "numberOfItems is required and must be non-negative"})
		return
	}

	if _, err := h.catalog.UpdateQuantity(r.Context(), id, *req.NumberOfItems); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"status": "error", "message": "Book not found"})
			return
		}
		h.logger.Error("legacy update failed", zap.Int64("id", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "message": "Database update failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Item quantity updated"})
}

type healthResponse struct {
	Status    string  `json:"status"`
	Service   string  `json:"service"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
	Redis     string  `json:"redis"`
}

// Health reports liveness plus cache connectivity.
func (h *HTTPHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:    "healthy",
		Service:   "catalog-server",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.started).Seconds(),
		Redis:     "connected",
	}

	status := http.StatusOK
	if err := h.cache.Ping(ctx); err != nil {
		resp.Status = "unhealthy"
		resp.Redis = "disconnected"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
