// Package store holds the catalog and ledger persistence backends.
package store

import (
	"context"

	"github.com/fairyhunter13/production-ledger/internal/model"
)

// Catalog persists products.
type Catalog interface {
	// InsertProduct assigns ID and timestamps to p and persists it.
	InsertProduct(ctx context.Context, p *model.Product) error
	// ListProducts returns every product ordered by creation.
	ListProducts(ctx context.Context) ([]model.Product, error)
}

// Ledger persists production records.
type Ledger interface {
	// ApplyProduction atomically adds rec.Quantity to the record sharing
	// rec's match key, or inserts rec when none exists. created reports
	// which branch ran. rec.ID and timestamps are assigned by the store.
	ApplyProduction(ctx context.Context, rec model.ProductionRecord) (out model.ProductionRecord, created bool, err error)
	// ListProductions returns records ordered by creation, restricted to
	// productID when it is non-empty.
	ListProductions(ctx context.Context, productID string) ([]model.ProductionRecord, error)
	// GetProduction returns model.ErrNotFound for an unknown id.
	GetProduction(ctx context.Context, id string) (model.ProductionRecord, error)
}

// Backend is a store serving both collections with an explicit lifecycle.
type Backend interface {
	Catalog
	Ledger
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
