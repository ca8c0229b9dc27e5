// Command optimize routes a batch of orders from a workbook, CSV pair, JSON
// catalogue or Postgres catalogue and writes the solution as text or JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"freight-route-optimizer/internal/adapters/cache"
	"freight-route-optimizer/internal/adapters/progress"
	"freight-route-optimizer/internal/adapters/repositories"
	"freight-route-optimizer/internal/adapters/workbook"
	"freight-route-optimizer/internal/api/dto"
	"freight-route-optimizer/internal/config"
	"freight-route-optimizer/internal/domain"
	"freight-route-optimizer/internal/platform/db"
	"freight-route-optimizer/internal/platform/obs"
	"freight-route-optimizer/internal/ports"
	"freight-route-optimizer/internal/services"

	"github.com/joho/godotenv"
)

type options struct {
	workbook    string
	ordersCSV   string
	routesCSV   string
	catalog     string
	databaseURL string
	redisURL    string
	configPath  string
	workers     int
	format      string
	out         string
	noCache     bool
	quiet       bool
}

func main() {
	_ = godotenv.Load()

	logger := log.New(os.Stderr, "[optimize] ", log.LstdFlags)

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		logger.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout, logger); err != nil {
		logger.Printf("failed: %v", err)
		os.Exit(exitCode(err))
	}
}

func parseFlags(args []string) (options, error) {
	var o options

	fs := flag.NewFlagSet("optimize", flag.ContinueOnError)
	fs.StringVar(&o.workbook, "workbook", "", "xlsx workbook with Order Information and Route Information sheets")
	fs.StringVar(&o.ordersCSV, "orders-csv", "", "CSV export of the Order Information sheet (with -routes-csv)")
	fs.StringVar(&o.routesCSV, "routes-csv", "", "CSV export of the Route Information sheet (with -orders-csv)")
	fs.StringVar(&o.catalog, "catalog", "", "JSON catalogue file")
	fs.StringVar(&o.databaseURL, "database-url", "", "read the catalogue from Postgres")
	fs.StringVar(&o.redisURL, "redis-url", "", "publish progress to Redis (defaults to REDIS_URL)")
	fs.StringVar(&o.configPath, "config", "", "optional YAML config file")
	fs.IntVar(&o.workers, "workers", 0, "concurrent order solves (defaults to solver.workers)")
	fs.StringVar(&o.format, "format", "text", "output format: text or json")
	fs.StringVar(&o.out, "out", "", "write the solution to this file instead of stdout")
	fs.BoolVar(&o.noCache, "no-cache", false, "disable outgoing-edge memoization")
	fs.BoolVar(&o.quiet, "quiet", false, "do not log progress")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	sources := 0
	for _, s := range []string{o.workbook, o.catalog, o.databaseURL} {
		if s != "" {
			sources++
		}
	}
	if o.ordersCSV != "" || o.routesCSV != "" {
		if o.ordersCSV == "" || o.routesCSV == "" {
			return options{}, errors.New("-orders-csv and -routes-csv must be given together")
		}
		sources++
	}
	if sources != 1 {
		return options{}, errors.New("exactly one of -workbook, -orders-csv/-routes-csv, -catalog or -database-url is required")
	}
	if o.format != "text" && o.format != "json" {
		return options{}, fmt.Errorf("-format must be text or json, got %q", o.format)
	}

	return o, nil
}

func run(ctx context.Context, o options, stdout io.Writer, logger *log.Logger) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	ctx = obs.WithRequestID(ctx, "")
	logger.Printf("run_id=%s starting", obs.RequestID(ctx))

	repo, closeRepo, err := openCatalog(ctx, o)
	if err != nil {
		return err
	}
	defer closeRepo()

	optimizer := &services.Optimizer{Workers: cfg.Solver.Workers}
	if o.workers > 0 {
		optimizer.Workers = o.workers
	}
	if !o.noCache && cfg.Solver.CacheEdges {
		optimizer.NewEdgeCache = func() ports.EdgeCache { return cache.NewMemoryEdgeCache() }
	}

	var reporters progress.Multi
	if !o.quiet {
		reporters = append(reporters, progress.NewLogReporter(logger, float64(cfg.Solver.ProgressStep)))
	}
	redisURL := o.redisURL
	if redisURL == "" {
		redisURL = cfg.Redis.URL
	}
	if redisURL != "" {
		pub, err := progress.NewRedisPublisher(redisURL, cfg.Redis.Prefix)
		if err != nil {
			return err
		}
		defer pub.Close()
		reporters = append(reporters, pub)
	}
	optimizer.Progress = reporters

	res, err := optimizer.OptimizeCatalog(ctx, repo)
	if err != nil {
		return err
	}
	logger.Printf("run_id=%s routed=%d infeasible=%d total_cost=%s",
		obs.RequestID(ctx), len(res.Goods), len(res.Infeasible), res.TotalCost.StringFixed(2))

	w := stdout
	if o.out != "" {
		f, err := os.Create(o.out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := writeSolution(w, o.format, obs.RequestID(ctx), res); err != nil {
		return err
	}
	if f, ok := w.(*os.File); ok && o.out != "" {
		if err := f.Sync(); err != nil {
			return fmt.Errorf("sync output: %w", err)
		}
		logger.Printf("solution written to %s", o.out)
	}
	return nil
}

func openCatalog(ctx context.Context, o options) (ports.CatalogRepository, func(), error) {
	noop := func() {}

	switch {
	case o.workbook != "":
		c, err := workbook.OpenXLSX(o.workbook)
		return c, noop, err

	case o.ordersCSV != "":
		orders, err := os.Open(o.ordersCSV)
		if err != nil {
			return nil, noop, fmt.Errorf("open orders csv: %w", err)
		}
		defer orders.Close()

		routes, err := os.Open(o.routesCSV)
		if err != nil {
			return nil, noop, fmt.Errorf("open routes csv: %w", err)
		}
		defer routes.Close()

		c, err := workbook.ReadCSV(orders, routes)
		return c, noop, err

	case o.catalog != "":
		return repositories.NewJSONCatalogRepository(o.catalog), noop, nil

	default:
		conn, err := db.Open(ctx, o.databaseURL, db.DefaultOptions)
		if err != nil {
			return nil, noop, err
		}
		return repositories.NewPostgresCatalogRepository(conn), func() { _ = conn.Close() }, nil
	}
}

func writeSolution(w io.Writer, format, runID string, res *domain.OptimizationResult) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(dto.FromResult(runID, *res)); err != nil {
			return fmt.Errorf("encode solution: %w", err)
		}
		return nil
	}
	return services.WriteSolutionText(w, *res)
}

// exitCode separates bad input (2) from interrupted (130) and other failures (1).
func exitCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrMalformedInput):
		return 2
	case errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}
