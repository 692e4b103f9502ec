package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NYTimes/gziphandler"
	"golang.org/x/time/rate"

	"orderform-backend/config"
	"orderform-backend/internal/delivery/http/middleware"
	v1 "orderform-backend/internal/delivery/http/v1"
	"orderform-backend/internal/infrastructure/cache"
	"orderform-backend/internal/infrastructure/facebook"
	"orderform-backend/internal/infrastructure/sheets"
	"orderform-backend/internal/usecase"
	"orderform-backend/pkg/logger"
	"orderform-backend/pkg/utils"
)

const serviceName = "orderform-backend"

func main() {
	cfg := config.LoadConfig()

	// Initialize Logger
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	utils.TrustProxyHeaders(cfg.TrustProxy)

	// Order endpoint (spreadsheet-backed Apps Script)
	sheetsClient := sheets.NewClient(cfg.ScriptURL, cfg.SubmitTimeout)

	// Conversion tracking (nil when not configured)
	capi := facebook.NewCAPIClient(cfg.FBPixelID, cfg.FBAccessToken, cfg.FBAPIVersion)

	// Form sessions live in memory only
	sessionCache := cache.NewMemoryCache(cfg.SessionTTL, cfg.SessionCleanup)
	// Default expiration 1h, cleanup every 2h
	memCache := cache.NewMemoryCache(time.Hour, 2*time.Hour)

	var tracker usecase.LeadTracker
	if capi != nil {
		tracker = capi
	}
	orderUC := usecase.NewOrderUsecase(sessionCache, sheetsClient, tracker, cfg.ProductName, cfg.SessionTTL)
	orderHandler := v1.NewOrderHandler(orderUC, cfg.SessionTTL)
	configHandler := v1.NewConfigHandler(memCache, cfg.ProductName)

	// Submissions get a tighter per-IP budget than the rest of the API
	orderLimiter := middleware.NewRateLimiter(
		context.Background(),
		rate.Limit(cfg.OrderRateLimitRPS),
		cfg.OrderRateLimitBurst,
		time.Minute,
		10*time.Minute,
	)

	mux := http.NewServeMux()

	// Orders
	mux.Handle("POST /api/v1/orders", orderLimiter.Middleware()(http.HandlerFunc(orderHandler.PlaceOrder)))
	mux.HandleFunc("POST /api/v1/orders/validate", orderHandler.Validate)
	mux.HandleFunc("GET /api/v1/orders/state", orderHandler.GetState)

	// Config (Public)
	mux.HandleFunc("GET /api/v1/config/form", configHandler.GetFormConfig)

	// Health Check
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler) // Support root health check for Load Balancers

	// Landing page assets
	if cfg.StaticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(cfg.StaticDir)))
		log.Info().Str("dir", cfg.StaticDir).Msg("Serving landing page assets")
	}

	addr := fmt.Sprintf(":%s", cfg.Port)

	// Initialize Rate Limiter with lifecycle management
	// cleanup every minute, TTL 3 minutes
	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		rate.Limit(cfg.RateLimitRPS),
		cfg.RateLimitBurst,
		time.Minute,
		3*time.Minute,
	)

	// Apply CORS, Request Logger, Rate Limit, and Gzip
	handler := middleware.NewCORSMiddleware(cfg.AllowedOrigin)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	logger.ServiceStart(serviceName, "1.0.0", cfg.Port)
	log.Info().Str("endpoint_host", hostOf(cfg.ScriptURL)).Dur("submit_timeout", cfg.SubmitTimeout).Msg("Order endpoint configured")

	// Wait for interrupt signal via channel
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().
		Int("sessions", orderUC.Sessions()).
		Int("rate_limited_clients", rateLimiter.Clients()).
		Int("order_clients", orderLimiter.Clients()).
		Msg("Shutdown state")

	// Stop rate limiter cleanup goroutines and flush pending conversion events
	rateLimiter.Shutdown()
	orderLimiter.Shutdown()
	capi.Wait()

	logger.ServiceStop(serviceName)
}

// hostOf keeps the deployment id in the script URL out of the logs.
func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}
