package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/weeklybasket/storefront/internal/backend"
	"github.com/weeklybasket/storefront/internal/cart"
	"github.com/weeklybasket/storefront/internal/checkout"
	"github.com/weeklybasket/storefront/internal/domain"
	"github.com/weeklybasket/storefront/internal/gate"
	"github.com/weeklybasket/storefront/internal/httpapi"
	"github.com/weeklybasket/storefront/internal/keepalive"
	"github.com/weeklybasket/storefront/internal/store"
)

type Config struct {
	HTTPPort        string
	BackendURL      string
	CartStore       string
	RedisAddr       string
	RedisPassword   string
	SqlitePath      string
	MigrationsPath  string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		BackendURL:      getEnv("BACKEND_URL", "http://localhost:8000"),
		CartStore:       getEnv("CART_STORE", "redis"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		SqlitePath:      getEnv("SQLITE_PATH", "./cart.db"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./internal/store/migrations"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	client := backend.NewClient(cfg.BackendURL, &http.Client{Timeout: cfg.RequestTimeout})

	cartStore, closeStore := buildCartStore(ctx, cfg)
	defer closeStore()

	// The engine persists every line change through the store; a failed
	// write is logged and the in-memory cart carries on.
	engine := cart.NewEngine(func(lines []domain.CartLine) {
		saveCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := cartStore.Save(saveCtx, lines); err != nil {
			log.Printf("cart store save failed: %v", err)
		}
	})

	lines, err := cartStore.Load(ctx)
	if err != nil {
		log.Printf("cart store load failed, starting empty: %v", err)
	}
	engine.Restore(lines)

	// The minimum-order threshold is fetched once at startup, not per
	// check.
	minOrder, err := client.Setting(ctx, gate.MinOrderSettingName)
	if err != nil {
		log.Printf("min order setting unavailable, using default %v: %v", gate.DefaultMinOrderValue, err)
		minOrder = gate.DefaultMinOrderValue
	}
	engine.SetMinOrderValue(minOrder)

	stockGate := gate.NewStockGate(client)
	submitter := checkout.NewSubmitter(engine, stockGate, client)

	cartHandler := httpapi.NewCartHandler(engine, client, stockGate, cfg.RequestTimeout)
	productHandler := httpapi.NewProductHandler(client, cfg.RequestTimeout)
	checkoutHandler := httpapi.NewCheckoutHandler(submitter, cfg.RequestTimeout)
	ordersHandler := httpapi.NewOrdersHandler(client, cfg.RequestTimeout)

	// Setup router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(httpapi.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", productHandler.ListProducts)
		r.Get("/categories", productHandler.ListCategories)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			r.Post("/notification/hide", cartHandler.HideNotification)
			r.Post("/validate", cartHandler.Validate)
		})

		r.Post("/checkout", checkoutHandler.Submit)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/lookup", ordersHandler.Lookup)
			r.Put("/{order_id}/items", ordersHandler.EditItems)
		})

		r.Put("/admin/orders/{order_id}/status", ordersHandler.UpdateStatus)
	})

	// Keep the backend's free-tier host awake while we run.
	pingerCtx, stopPinger := context.WithCancel(ctx)
	defer stopPinger()
	go keepalive.NewPinger(client).Run(pingerCtx)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront engine starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

// buildCartStore picks the persisted cart slot implementation: Redis by
// default, a local SQLite file for single-host deployments.
func buildCartStore(ctx context.Context, cfg *Config) (store.CartStore, func()) {
	switch cfg.CartStore {
	case "sqlite":
		db, err := sql.Open("sqlite", cfg.SqlitePath)
		if err != nil {
			log.Fatalf("failed to open sqlite store: %v", err)
		}
		if err := store.RunMigrations(db, cfg.MigrationsPath); err != nil {
			log.Fatalf("failed to migrate sqlite store: %v", err)
		}
		log.Printf("cart store: sqlite at %s", cfg.SqlitePath)
		return store.NewSqliteStore(db), func() { db.Close() }
	default:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("Redis connection failed:", err)
		}
		log.Printf("cart store: redis at %s", cfg.RedisAddr)
		return store.NewRedisStore(redisClient), func() { redisClient.Close() }
	}
}
