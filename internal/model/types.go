// Package model defines domain types used by the service.
package model

import "time"

// WeightVariant is one packaging size of a product, e.g. 25 kg.
type WeightVariant struct {
	Value float64 `json:"value" bson:"value" yaml:"value"`
	Unit  string  `json:"unit" bson:"unit" yaml:"unit"`
}

// Product is a catalog entry with its allowed weight variants.
type Product struct {
	ID          string          `json:"_id" bson:"_id"`
	ProductName string          `json:"productName" bson:"productName"`
	Weights     []WeightVariant `json:"weights" bson:"weights"`
	CreatedAt   time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// ProductionRecord is the cumulative quantity produced for one match key.
type ProductionRecord struct {
	ID        string        `json:"_id" bson:"_id"`
	ProductID string        `json:"productId" bson:"productId"`
	Weight    WeightVariant `json:"weight" bson:"weight"`
	Quantity  int64         `json:"quantity" bson:"quantity"`
	Date      time.Time     `json:"date" bson:"date"`
	CreatedAt time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// Key returns the match key of the record.
func (r ProductionRecord) Key() MatchKey {
	return MatchKey{ProductID: r.ProductID, Value: r.Weight.Value, Unit: r.Weight.Unit}
}

// ProductionEvent is an incoming production submission. Pointer fields
// distinguish "absent" from zero values.
type ProductionEvent struct {
	ProductID string         `json:"productId"`
	Weight    *WeightVariant `json:"weight"`
	Quantity  int64          `json:"quantity"`
	Date      *time.Time     `json:"date,omitempty"`
}

// MatchKey decides whether an event merges into an existing record.
// Date is deliberately not part of it: records are running totals.
type MatchKey struct {
	ProductID string
	Value     float64
	Unit      string
}

// UpsertStatus tags the outcome of recording a production event.
type UpsertStatus string

const (
	StatusCreated UpsertStatus = "created"
	StatusUpdated UpsertStatus = "updated"
)

// UpsertResult carries the outcome and the resulting record.
type UpsertResult struct {
	Status UpsertStatus     `json:"status"`
	Record ProductionRecord `json:"record"`
}
