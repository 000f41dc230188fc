// Package catalog lists and creates products.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fairyhunter13/production-ledger/internal/model"
	"github.com/fairyhunter13/production-ledger/internal/obs"
	"github.com/fairyhunter13/production-ledger/internal/store"
)

// Service fronts the product catalog.
type Service struct {
	catalog store.Catalog
	timeout time.Duration
}

// NewService returns a Service over catalog with a per-call store timeout.
func NewService(catalog store.Catalog, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Service{catalog: catalog, timeout: timeout}
}

// ListProducts returns all products in creation order.
func (s *Service) ListProducts(ctx context.Context) ([]model.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, model.Unavailable(err)
	}
	return products, nil
}

// CreateProduct validates and persists a new product.
func (s *Service) CreateProduct(ctx context.Context, name string, weights []model.WeightVariant) (model.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Product{}, fmt.Errorf("%w: productName is required", model.ErrInvalidInput)
	}
	if len(weights) == 0 {
		return model.Product{}, fmt.Errorf("%w: at least one weight is required", model.ErrInvalidInput)
	}
	for i, w := range weights {
		if !(w.Value > 0) {
			return model.Product{}, fmt.Errorf("%w: weights[%d].value must be greater than 0", model.ErrInvalidInput, i)
		}
		if strings.TrimSpace(w.Unit) == "" {
			return model.Product{}, fmt.Errorf("%w: weights[%d].unit is required", model.ErrInvalidInput, i)
		}
	}

	p := model.Product{
		ProductName: name,
		Weights:     append([]model.WeightVariant(nil), weights...),
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.catalog.InsertProduct(ctx, &p); err != nil {
		obs.Logger.Errorw("product_store_error", "product_name", name, "error", err)
		return model.Product{}, model.Unavailable(err)
	}
	obs.Logger.Infow("product_created", "product_id", p.ID, "product_name", p.ProductName, "weights", len(p.Weights))
	return p, nil
}
