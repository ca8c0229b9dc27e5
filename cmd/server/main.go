package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"freight-route-optimizer/internal/adapters/cache"
	"freight-route-optimizer/internal/adapters/progress"
	"freight-route-optimizer/internal/adapters/repositories"
	"freight-route-optimizer/internal/api"
	"freight-route-optimizer/internal/config"
	"freight-route-optimizer/internal/platform/db"
	"freight-route-optimizer/internal/platform/metrics"
	"freight-route-optimizer/internal/ports"
	"freight-route-optimizer/internal/services"

	"github.com/joho/godotenv"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis) behind ports and starts the HTTP server.
func main() {
	configPath := flag.String("config", config.Get("CONFIG_PATH", "config.yaml"), "optional YAML config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(cfg.Metrics.Namespace)

	deps := api.Deps{Metrics: m, MaxBodyBytes: cfg.Server.MaxBodyBytes}

	// The catalogue endpoint is only served when a database is configured.
	if cfg.Database.URL != "" {
		catalogDB, err := db.Open(ctx, cfg.Database.URL, db.DefaultOptions)
		if err != nil {
			log.Fatal(err)
		}
		defer catalogDB.Close()

		deps.Repo = repositories.NewPostgresCatalogRepository(catalogDB)
		deps.CatalogDB = catalogDB
	} else {
		log.Println("DATABASE_URL not set; GET /catalog/optimization disabled")
	}

	reporters := progress.Multi{progress.NewLogReporter(log.Default(), float64(cfg.Solver.ProgressStep))}
	if cfg.Redis.URL != "" {
		pub, err := progress.NewRedisPublisher(cfg.Redis.URL, cfg.Redis.Prefix)
		if err != nil {
			log.Fatal(err)
		}
		defer pub.Close()
		reporters = append(reporters, pub)
	}

	deps.Optimizer = &services.Optimizer{
		Workers:  cfg.Solver.Workers,
		Metrics:  m,
		Progress: reporters,
	}
	if cfg.Solver.CacheEdges {
		deps.Optimizer.NewEdgeCache = func() ports.EdgeCache { return cache.NewMemoryEdgeCache() }
	}

	// Write timeout bounds the largest synchronous optimization.
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("Server listening addr=:%s workers=%d", cfg.Server.Port, cfg.Solver.Workers)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
