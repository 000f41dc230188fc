package store

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/production-ledger/internal/model"
)

// Memory is an in-process Backend. A single write lock covers match and
// write, so ApplyProduction is atomic per match key.
type Memory struct {
	mu sync.RWMutex

	products []model.Product

	records []model.ProductionRecord
	byID    map[string]int
	byKey   map[model.MatchKey]int

	now func() time.Time
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		byID:  make(map[string]int),
		byKey: make(map[model.MatchKey]int),
		now:   time.Now,
	}
}

func (s *Memory) InsertProduct(ctx context.Context, p *model.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now
	cp := *p
	cp.Weights = append([]model.WeightVariant(nil), p.Weights...)
	s.products = append(s.products, cp)
	return nil
}

func (s *Memory) ListProducts(ctx context.Context) ([]model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Product, len(s.products))
	for i, p := range s.products {
		p.Weights = append([]model.WeightVariant(nil), p.Weights...)
		out[i] = p
	}
	return out, nil
}

func (s *Memory) ApplyProduction(ctx context.Context, rec model.ProductionRecord) (model.ProductionRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.ProductionRecord{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	key := rec.Key()
	if i, ok := s.byKey[key]; ok {
		cur := s.records[i]
		if rec.Quantity > math.MaxInt64-cur.Quantity {
			return model.ProductionRecord{}, false, model.ErrQuantityOverflow
		}
		cur.Quantity += rec.Quantity
		cur.UpdatedAt = now
		s.records[i] = cur
		return cur, false, nil
	}
	// new entry
	rec.ID = uuid.NewString()
	rec.CreatedAt, rec.UpdatedAt = now, now
	s.records = append(s.records, rec)
	s.byID[rec.ID] = len(s.records) - 1
	s.byKey[key] = len(s.records) - 1
	return rec, true, nil
}

func (s *Memory) ListProductions(ctx context.Context, productID string) ([]model.ProductionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ProductionRecord, 0, len(s.records))
	for _, r := range s.records {
		if productID != "" && r.ProductID != productID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Memory) GetProduction(ctx context.Context, id string) (model.ProductionRecord, error) {
	if err := ctx.Err(); err != nil {
		return model.ProductionRecord{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return model.ProductionRecord{}, model.ErrNotFound
	}
	return s.records[i], nil
}

// Ping always succeeds for the in-process store.
func (s *Memory) Ping(ctx context.Context) error { return ctx.Err() }

// Close is a no-op.
func (s *Memory) Close(context.Context) error { return nil }
