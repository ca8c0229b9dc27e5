package api

import (
	"net/http"

	"freight-route-optimizer/internal/api/handlers"
	"freight-route-optimizer/internal/platform/metrics"
	"freight-route-optimizer/internal/ports"
	"freight-route-optimizer/internal/services"
)

// Deps are the collaborators the HTTP API is built from.
type Deps struct {
	Optimizer *services.Optimizer
	// Repo and CatalogDB are optional; without them the catalogue endpoint
	// answers 503 and /health reports the catalogue as disabled.
	Repo         ports.CatalogRepository
	CatalogDB    handlers.Pinger
	Metrics      *metrics.Metrics
	MaxBodyBytes int64
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	optimizer := d.Optimizer
	if optimizer == nil {
		optimizer = &services.Optimizer{Metrics: d.Metrics}
	}

	health := &handlers.HealthHandler{Catalog: d.CatalogDB}
	opt := &handlers.OptimizeHandler{
		Optimizer:    optimizer,
		Repo:         d.Repo,
		MaxBodyBytes: d.MaxBodyBytes,
	}

	mux.HandleFunc("/health", health.Health)
	mux.HandleFunc("/optimizations", opt.Optimize)
	mux.HandleFunc("/catalog/optimization", opt.OptimizeCatalog)
	if d.Metrics != nil {
		mux.Handle("/metrics", d.Metrics.Handler())
	}

	return requestIDMiddleware(loggingMiddleware(mux, d.Metrics))
}
