package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"freight-route-optimizer/internal/api/dto"
	"freight-route-optimizer/internal/domain"
	"freight-route-optimizer/internal/platform/obs"
	"freight-route-optimizer/internal/ports"
	"freight-route-optimizer/internal/services"
)

const defaultMaxBodyBytes = 8 << 20

type OptimizeHandler struct {
	Optimizer *services.Optimizer
	// Repo backs GET /catalog/optimization. Nil disables that endpoint.
	Repo         ports.CatalogRepository
	MaxBodyBytes int64
}

// Optimize routes the orders in the request body over the legs in the same body.
// With ?format=text the response is the plain-text solution export.
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	format, ok := responseFormat(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "format must be json or text")
		return
	}

	limit := h.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	body := http.MaxBytesReader(w, r.Body, limit)
	defer body.Close()

	var catalog dto.Catalog

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&catalog); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, r, http.StatusBadRequest, "invalid json body: "+err.Error())
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	orders, err := catalog.DomainOrders()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	legs, err := catalog.DomainRouteLegs()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.Optimizer.Optimize(r.Context(), orders, legs)
	if err != nil {
		writeRunError(w, r, err, http.StatusBadRequest)
		return
	}

	writeResult(w, r, format, res)
}

// OptimizeCatalog routes every order stored in the configured catalogue.
func (h *OptimizeHandler) OptimizeCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.Repo == nil {
		writeError(w, r, http.StatusServiceUnavailable, "catalog is not configured")
		return
	}

	format, ok := responseFormat(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "format must be json or text")
		return
	}

	res, err := h.Optimizer.OptimizeCatalog(r.Context(), h.Repo)
	if err != nil {
		// Bad rows in the store are not the caller's fault.
		writeRunError(w, r, err, http.StatusUnprocessableEntity)
		return
	}

	writeResult(w, r, format, res)
}

func responseFormat(r *http.Request) (string, bool) {
	switch f := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format"))); f {
	case "", "json":
		return "json", true
	case "text":
		return "text", true
	default:
		return f, false
	}
}

func writeResult(w http.ResponseWriter, r *http.Request, format string, res *domain.OptimizationResult) {
	if format == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="solution.txt"`)
		w.WriteHeader(http.StatusOK)
		if err := services.WriteSolutionText(w, *res); err != nil {
			log.Printf("write solution failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
		}
		return
	}

	writeJSON(w, r, http.StatusOK, dto.FromResult(obs.RequestID(r.Context()), *res))
}

func writeRunError(w http.ResponseWriter, r *http.Request, err error, malformedStatus int) {
	switch {
	case errors.Is(err, domain.ErrMalformedInput):
		writeError(w, r, malformedStatus, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusServiceUnavailable, "optimization canceled")
	default:
		log.Printf("req_id=%s optimize failed: %v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
