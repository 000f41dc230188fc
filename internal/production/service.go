// Package production records production events into the ledger with
// merge-or-create semantics.
package production

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fairyhunter13/production-ledger/internal/model"
	"github.com/fairyhunter13/production-ledger/internal/obs"
	"github.com/fairyhunter13/production-ledger/internal/store"
)

// DefaultStoreTimeout bounds each store call when no timeout is configured.
const DefaultStoreTimeout = 5 * time.Second

// Service applies production events to a ledger.
type Service struct {
	ledger  store.Ledger
	timeout time.Duration
	now     func() time.Time
}

// NewService returns a Service writing to ledger. A non-positive timeout
// selects DefaultStoreTimeout.
func NewService(ledger store.Ledger, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &Service{ledger: ledger, timeout: timeout, now: time.Now}
}

// Validate checks an event without touching the store.
func Validate(ev model.ProductionEvent) error {
	switch {
	case ev.ProductID == "":
		return fmt.Errorf("%w: productId is required", model.ErrInvalidInput)
	case ev.Weight == nil:
		return fmt.Errorf("%w: weight is required", model.ErrInvalidInput)
	case !(ev.Weight.Value > 0):
		return fmt.Errorf("%w: weight.value must be greater than 0", model.ErrInvalidInput)
	case ev.Weight.Unit == "":
		return fmt.Errorf("%w: weight.unit is required", model.ErrInvalidInput)
	case ev.Quantity < 1:
		return fmt.Errorf("%w: quantity must be at least 1", model.ErrInvalidInput)
	}
	return nil
}

// RecordProduction adds ev to the record sharing its match key, or
// creates that record. The match and the write are one atomic store call.
func (s *Service) RecordProduction(ctx context.Context, ev model.ProductionEvent) (model.UpsertResult, error) {
	if err := Validate(ev); err != nil {
		return model.UpsertResult{}, err
	}
	date := s.now().UTC()
	if ev.Date != nil && !ev.Date.IsZero() {
		date = ev.Date.UTC()
	}
	in := model.ProductionRecord{
		ProductID: ev.ProductID,
		Weight:    *ev.Weight,
		Quantity:  ev.Quantity,
		Date:      date,
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	rec, created, err := s.ledger.ApplyProduction(ctx, in)
	if errors.Is(err, model.ErrInvalidInput) {
		obs.Logger.Warnw("production_rejected",
			"product_id", ev.ProductID,
			"weight_value", ev.Weight.Value,
			"weight_unit", ev.Weight.Unit,
			"added", ev.Quantity,
			"error", err,
		)
		return model.UpsertResult{}, err
	}
	if err != nil {
		obs.Logger.Errorw("production_store_error",
			"product_id", ev.ProductID,
			"weight_value", ev.Weight.Value,
			"weight_unit", ev.Weight.Unit,
			"error", err,
		)
		return model.UpsertResult{}, model.Unavailable(err)
	}

	status := model.StatusUpdated
	if created {
		status = model.StatusCreated
	}
	obs.Logger.Infow("production_recorded",
		"status", string(status),
		"record_id", rec.ID,
		"product_id", rec.ProductID,
		"weight_value", rec.Weight.Value,
		"weight_unit", rec.Weight.Unit,
		"added", ev.Quantity,
		"quantity", rec.Quantity,
	)
	return model.UpsertResult{Status: status, Record: rec}, nil
}

// ListProductions returns ledger records, optionally for one product.
func (s *Service) ListProductions(ctx context.Context, productID string) ([]model.ProductionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	recs, err := s.ledger.ListProductions(ctx, productID)
	if err != nil {
		return nil, model.Unavailable(err)
	}
	return recs, nil
}

// GetProduction returns one record or model.ErrNotFound.
func (s *Service) GetProduction(ctx context.Context, id string) (model.ProductionRecord, error) {
	if id == "" {
		return model.ProductionRecord{}, fmt.Errorf("%w: id is required", model.ErrInvalidInput)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	rec, err := s.ledger.GetProduction(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.ProductionRecord{}, err
	}
	if err != nil {
		return model.ProductionRecord{}, model.Unavailable(err)
	}
	return rec, nil
}
