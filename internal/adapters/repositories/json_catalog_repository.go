package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"freight-route-optimizer/internal/api/dto"
	"freight-route-optimizer/internal/domain"
	"freight-route-optimizer/internal/ports"
)

var _ ports.CatalogRepository = (*JSONCatalogRepository)(nil)

// JSON-file-backed implementation of the CatalogRepository port.
// The file layout is dto.Catalog, the same document POST /optimizations accepts.
type JSONCatalogRepository struct {
	Path string
}

func NewJSONCatalogRepository(path string) *JSONCatalogRepository {
	return &JSONCatalogRepository{Path: path}
}

// Return all orders in file order.
func (r *JSONCatalogRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	c, err := r.load()
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return c.DomainOrders()
}

// Return all route legs in file order.
func (r *JSONCatalogRepository) ListRouteLegs(ctx context.Context) ([]domain.RouteLeg, error) {
	c, err := r.load()
	if err != nil {
		return nil, fmt.Errorf("list route legs: %w", err)
	}
	return c.DomainRouteLegs()
}

func (r *JSONCatalogRepository) load() (dto.Catalog, error) {
	b, err := os.ReadFile(r.Path)
	if err != nil {
		return dto.Catalog{}, fmt.Errorf("read %q: %w", r.Path, err)
	}

	return DecodeCatalog(bytes.NewReader(b), r.Path)
}

// DecodeCatalog strictly decodes a single dto.Catalog document. Unknown fields
// and trailing data are malformed input.
func DecodeCatalog(rd io.Reader, source string) (dto.Catalog, error) {
	var c dto.Catalog

	dec := json.NewDecoder(rd)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&c); err != nil {
		return dto.Catalog{}, &domain.InputError{Source: source, Msg: "invalid json: " + err.Error()}
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return dto.Catalog{}, &domain.InputError{Source: source, Msg: "document must contain only one JSON object"}
	}

	return c, nil
}
