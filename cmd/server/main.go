package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shopfront/pricing-service/internal/cache"
	"github.com/shopfront/pricing-service/internal/config"
	"github.com/shopfront/pricing-service/internal/handlers"
	"github.com/shopfront/pricing-service/internal/middleware"
	"github.com/shopfront/pricing-service/internal/pricing"
	"github.com/shopfront/pricing-service/internal/repository"
	"github.com/shopfront/pricing-service/internal/service"
	"github.com/shopfront/pricing-service/pkg/db"
	"github.com/shopfront/pricing-service/pkg/logger"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "1.0.0"

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting pricing service",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
	)

	// Connect to Postgres
	conn, err := db.NewPostgresConnection(cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	// Initialize repositories
	productRepo := repository.NewPostgresProductRepository(conn)
	offerRepo := repository.NewPostgresOfferRepository(conn)
	couponRepo := repository.NewPostgresCouponRepository(conn)
	orderRepo := repository.NewPostgresOrderRepository(conn)

	// Seed the coupon code prescreen so junk codes never hit the database
	ctx := context.Background()
	codes, err := couponRepo.ListCodes(ctx)
	if err != nil {
		log.Error("failed to list coupon codes", "error", err)
		os.Exit(1)
	}
	couponCache := cache.NewCouponCache(uint(len(codes)) + 1000)
	couponCache.Seed(codes)
	log.Info("coupon prescreen seeded", "codes", len(codes))

	// Initialize services
	productService := service.NewProductService(productRepo)
	quoteService := service.NewQuoteService(productRepo, offerRepo)
	couponService := service.NewCouponService(couponRepo, couponCache)
	checkoutService := service.NewCheckoutService(quoteService, couponService, orderRepo, cfg.Pricing.TaxRate)
	orderService := service.NewOrderService(orderRepo, couponService, pricing.ReapportionPolicy{
		ActiveFraction: cfg.Pricing.ReapportionThreshold,
		TaxRate:        cfg.Pricing.TaxRate,
	})

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(log, version)
	productHandler := handlers.NewProductHandler(productService, log)
	quoteHandler := handlers.NewQuoteHandler(quoteService, log)
	orderHandler := handlers.NewOrderHandler(checkoutService, orderService, log)
	couponHandler := handlers.NewCouponHandler(couponService, log)
	adminHandler := handlers.NewAdminHandler(offerRepo, couponService, log)

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-API-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Register health check endpoint
	r.Get("/health", healthHandler.ServeHTTP)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Product endpoints
		r.Get("/product", productHandler.ListProducts)
		r.Get("/product/{productId}", productHandler.GetProduct)

		// Cart pricing
		r.Post("/quote", quoteHandler.QuoteCart)

		// Coupon eligibility preview
		r.Get("/coupon/{couponCode}", couponHandler.CheckEligibility)

		// Order endpoints
		r.Post("/order", orderHandler.CreateOrder)
		r.Get("/order/{orderId}", orderHandler.GetOrder)
		r.Post("/order/{orderId}/cancel-items", orderHandler.CancelItems)

		// Admin endpoints
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(cfg.Auth))
			r.Post("/offer", adminHandler.CreateOffer)
			r.Get("/offer", adminHandler.ListOffers)
			r.Post("/coupon", adminHandler.CreateCoupon)
			r.Get("/coupon", adminHandler.ListCoupons)
		})
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}
