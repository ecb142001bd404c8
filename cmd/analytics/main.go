package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/soleara/wanderly/internal/analytics"
	"github.com/soleara/wanderly/internal/common/config"
	"github.com/soleara/wanderly/internal/common/db"
	"github.com/soleara/wanderly/internal/common/logger"
	"github.com/soleara/wanderly/internal/common/middleware"
	"github.com/soleara/wanderly/internal/common/redis"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	cfg, err := config.Load("analytics")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("analytics-service")

	// Connect to database
	database, err := db.Connect(cfg.Database, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Pick the cache backend
	var store analytics.Store
	switch cfg.Cache.Backend {
	case "redis":
		redisClient, err := redis.Connect(cfg.Redis, log)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		store = analytics.NewRedisStore(redisClient.Client, time.Now)
		log.Info("Analytics cache backend: redis")
	default:
		pgStore := analytics.NewPostgresStore(database.DB, time.Now)
		if err := pgStore.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("Failed to prepare cache table: %v", err)
		}
		store = pgStore
		log.Info("Analytics cache backend: postgres")
	}

	// Initialize repository, aggregator, service, handler
	repo := analytics.NewRepository(database.DB)
	aggregator := analytics.NewAggregator(repo, time.Now)
	service := analytics.NewService(aggregator, store, log, time.Now)
	handler := analytics.NewHandler(service, log)

	mux := http.NewServeMux()

	// Apply middleware
	var rootHandler http.Handler = mux
	rootHandler = middleware.CORS(rootHandler)
	rootHandler = middleware.Logging(log)(rootHandler)
	rootHandler = middleware.Recovery(log)(rootHandler)

	// Register routes with JWT protection
	analytics.SetupRoutes(mux, handler, cfg.JWT.Secret)

	server := &http.Server{
		Addr:         ":" + cfg.Service.Port,
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Analytics API starting on port %s", cfg.Service.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Optional timer-driven cache refresh. The engine itself never schedules
	// recomputation; this loop is the external caller that does.
	refreshCtx, cancelRefresh := context.WithCancel(context.Background())
	defer cancelRefresh()

	if cfg.Cache.RefreshInterval > 0 {
		go func() {
			log.Infof("Cache refresh loop started (every %s)", cfg.Cache.RefreshInterval)
			ticker := time.NewTicker(cfg.Cache.RefreshInterval)
			defer ticker.Stop()

			for {
				select {
				case <-refreshCtx.Done():
					log.Info("Cache refresh loop stopped")
					return
				case <-ticker.C:
					if _, err := service.ForceRefresh(refreshCtx); err != nil {
						log.Errorf("Scheduled cache refresh failed: %v", err)
					}
				}
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	cancelRefresh()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited gracefully")
}
