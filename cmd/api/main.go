package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/rashedq/marketpay/docs"
	"github.com/rashedq/marketpay/internal/business"
	"github.com/rashedq/marketpay/internal/config"
	"github.com/rashedq/marketpay/internal/database"
	"github.com/rashedq/marketpay/internal/earnings"
	"github.com/rashedq/marketpay/internal/notification"
	"github.com/rashedq/marketpay/internal/payout"
	mw "github.com/rashedq/marketpay/pkg/middleware"
)

// @title MarketPay API
// @version 1.0
// @description Marketplace earnings ledger and payout API
// @BasePath /api/v1
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Connected to database successfully")

	// Business feature
	businessRepo := business.NewRepository(db)
	businessService := business.NewService(businessRepo)
	businessHandler := business.NewHandler(businessService)

	// Notification feature
	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationService)

	// Earnings feature
	earningsRepo := earnings.NewRepository(db)
	earningsService := earnings.NewService(earningsRepo, businessRepo, notificationService)
	earningsHandler := earnings.NewHandler(earningsService)

	// Payout feature (allocates over the earnings ledger)
	payoutRepo := payout.NewRepository(db)
	payoutService := payout.NewService(db, payoutRepo, earningsRepo, businessRepo, notificationService)
	payoutHandler := payout.NewHandler(payoutService)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Business-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.TestBusinessMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Mount feature routers
		r.Mount("/businesses", businessHandler.Routes())
		r.Mount("/earnings", earningsHandler.Routes())
		r.Mount("/payouts", payoutHandler.Routes())
		r.Mount("/notifications", notificationHandler.Routes())
	})

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
