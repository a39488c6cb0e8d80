package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/decide2watch/internal/cache"
	"github.com/AdamBeresnev/decide2watch/internal/catalog"
	"github.com/AdamBeresnev/decide2watch/internal/config"
	"github.com/AdamBeresnev/decide2watch/internal/db"
	"github.com/AdamBeresnev/decide2watch/internal/metrics"
	"github.com/AdamBeresnev/decide2watch/internal/service"
	"github.com/AdamBeresnev/decide2watch/internal/store"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database := db.InitDB(cfg.DatabasePath)
	defer database.Close()

	if err := db.RunMigrations(database.DB); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Store = sqlite3store.New(database.DB)

	m := metrics.New()

	catalogOpts := catalog.Options{
		APIKey:            cfg.TMDBAPIKey,
		BaseURL:           cfg.TMDBBaseURL,
		RequestsPerSecond: cfg.TMDBRateLimit,
		CacheTTL:          cfg.CacheTTL,
		Observer:          m,
	}
	if cfg.RedisURL != "" {
		redisCache, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			slog.Warn("redis unavailable, TMDB responses will not be cached", "error", err)
		} else {
			defer redisCache.Close()
			catalogOpts.Cache = redisCache
			log.Println("Redis cache connected.")
		}
	}
	tmdb := catalog.NewClient(catalogOpts)
	if !tmdb.APIKeySet() {
		log.Println("TMDB_API_KEY is not set, tournaments cannot be started")
	}

	tournaments := service.NewTournamentService(service.Options{
		Source:   tmdb,
		Enricher: tmdb,
		Results:  store.NewResultStore(database),
		Recorder: m,
	})

	router := newRouter(&app{
		tournaments: tournaments,
		apiKeySet:   tmdb.APIKeySet(),
		sessions:    sessionManager,
		metrics:     m,
		db:          database,
		loadCtx:     ctx,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown", "error", err)
		}
	}()

	log.Printf("Server starting on http://localhost%s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
