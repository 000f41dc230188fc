package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/fairyhunter13/production-ledger/internal/model"
	"github.com/fairyhunter13/production-ledger/internal/obs"
)

const (
	productCollectionName    = "products"
	productionCollectionName = "productions"
	matchKeyIndexName        = "production_match_key"
)

// MongoConfig for MongoDB connection.
type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// Mongo is a Backend on top of a MongoDB database.
type Mongo struct {
	client      *mongo.Client
	products    *mongo.Collection
	productions *mongo.Collection
	now         func() time.Time
}

// OpenMongo connects, pings and returns a Mongo store. The caller owns
// the returned store and must Close it.
func OpenMongo(ctx context.Context, cfg MongoConfig) (*Mongo, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		dctx, dcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer dcancel()
		_ = client.Disconnect(dctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	obs.Logger.Infow("mongo_connected", "database", cfg.Database)
	return NewMongo(client, cfg.Database), nil
}

// NewMongo wraps an already connected client.
func NewMongo(client *mongo.Client, database string) *Mongo {
	db := client.Database(database)
	return &Mongo{
		client:      client,
		products:    db.Collection(productCollectionName),
		productions: db.Collection(productionCollectionName),
		now:         time.Now,
	}
}

// EnsureIndexes creates the unique match-key index that makes concurrent
// upserts of one key converge on a single document.
func (s *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := s.productions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "productId", Value: 1}, {Key: "weight.value", Value: 1}, {Key: "weight.unit", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(matchKeyIndexName),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("production_created_at"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create production indexes: %w", err)
	}
	_, err = s.products.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: 1}},
		Options: options.Index().SetName("product_created_at"),
	})
	if err != nil {
		return fmt.Errorf("failed to create product indexes: %w", err)
	}
	return nil
}

// DuplicateGroup is a match key held by more than one record, left behind
// by writers that ran without the unique index.
type DuplicateGroup struct {
	Key struct {
		ProductID string  `bson:"productId"`
		Value     float64 `bson:"value"`
		Unit      string  `bson:"unit"`
	} `bson:"_id"`
	// IDs are in creation order; the first one survives a merge.
	IDs   []any `bson:"ids"`
	Total int64 `bson:"total"`
}

// FindDuplicates lists match keys that would break the unique index.
func (s *Mongo) FindDuplicates(ctx context.Context) ([]DuplicateGroup, error) {
	cur, err := s.productions.Aggregate(ctx, duplicatePipeline())
	if err != nil {
		return nil, fmt.Errorf("failed to scan for duplicate records: %w", err)
	}
	defer cur.Close(ctx)
	groups := []DuplicateGroup{}
	if err := cur.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode duplicate records: %w", err)
	}
	return groups, nil
}

// MergeDuplicates folds each group into its oldest record, summing the
// quantities, and deletes the rest. It is not transactional and must run
// while no server is writing.
func (s *Mongo) MergeDuplicates(ctx context.Context, groups []DuplicateGroup) error {
	now := s.now().UTC().Truncate(time.Millisecond)
	for _, g := range groups {
		if len(g.IDs) < 2 {
			continue
		}
		keep, rest := g.IDs[0], g.IDs[1:]
		_, err := s.productions.UpdateOne(ctx, bson.D{{Key: "_id", Value: keep}}, bson.D{
			{Key: "$set", Value: bson.D{{Key: "quantity", Value: g.Total}, {Key: "updatedAt", Value: now}}},
		})
		if err != nil {
			return fmt.Errorf("failed to merge into %v: %w", keep, err)
		}
		if _, err := s.productions.DeleteMany(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: rest}}}}); err != nil {
			return fmt.Errorf("failed to delete merged records: %w", err)
		}
		obs.Logger.Infow("duplicates_merged",
			"product_id", g.Key.ProductID,
			"weight_value", g.Key.Value,
			"weight_unit", g.Key.Unit,
			"records", len(g.IDs),
			"quantity", g.Total,
		)
	}
	return nil
}

func (s *Mongo) InsertProduct(ctx context.Context, p *model.Product) error {
	now := s.now().UTC().Truncate(time.Millisecond)
	doc := *p
	doc.ID = primitive.NewObjectID().Hex()
	doc.CreatedAt, doc.UpdatedAt = now, now
	if _, err := s.products.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	*p = doc
	return nil
}

func (s *Mongo) ListProducts(ctx context.Context) ([]model.Product, error) {
	cur, err := s.products.Find(ctx, bson.D{}, options.Find().SetSort(creationOrder()))
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cur.Close(ctx)
	products := []model.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (s *Mongo) ApplyProduction(ctx context.Context, rec model.ProductionRecord) (model.ProductionRecord, bool, error) {
	id := primitive.NewObjectID().Hex()
	out, err := s.applyOnce(ctx, rec, id)
	if mongo.IsDuplicateKeyError(err) {
		// A concurrent upsert inserted the key first; the retry matches it.
		out, err = s.applyOnce(ctx, rec, id)
	}
	if mongo.IsDuplicateKeyError(err) {
		// The key exists but its total failed the quantity guard.
		return model.ProductionRecord{}, false, model.ErrQuantityOverflow
	}
	if err != nil {
		return model.ProductionRecord{}, false, fmt.Errorf("failed to apply production: %w", err)
	}
	return out, out.ID == id, nil
}

func (s *Mongo) applyOnce(ctx context.Context, rec model.ProductionRecord, id string) (model.ProductionRecord, error) {
	now := s.now().UTC().Truncate(time.Millisecond)
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var out model.ProductionRecord
	err := s.productions.FindOneAndUpdate(ctx, applyFilter(rec), applyUpdate(rec, id, now), opts).Decode(&out)
	return out, err
}

func (s *Mongo) ListProductions(ctx context.Context, productID string) ([]model.ProductionRecord, error) {
	filter := bson.D{}
	if productID != "" {
		filter = bson.D{{Key: "productId", Value: productID}}
	}
	cur, err := s.productions.Find(ctx, filter, options.Find().SetSort(creationOrder()))
	if err != nil {
		return nil, fmt.Errorf("failed to list productions: %w", err)
	}
	defer cur.Close(ctx)
	records := []model.ProductionRecord{}
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode productions: %w", err)
	}
	return records, nil
}

func (s *Mongo) GetProduction(ctx context.Context, id string) (model.ProductionRecord, error) {
	var out model.ProductionRecord
	err := s.productions.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.ProductionRecord{}, model.ErrNotFound
	}
	if err != nil {
		return model.ProductionRecord{}, fmt.Errorf("failed to find production: %w", err)
	}
	return out, nil
}

func (s *Mongo) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Drop removes the whole database. Used to reset throwaway databases.
func (s *Mongo) Drop(ctx context.Context) error {
	return s.products.Database().Drop(ctx)
}

func (s *Mongo) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// matchFilter selects the record for a match key by exact equality.
func matchFilter(k model.MatchKey) bson.D {
	return bson.D{
		{Key: "productId", Value: k.ProductID},
		{Key: "weight.value", Value: k.Value},
		{Key: "weight.unit", Value: k.Unit},
	}
}

// applyFilter matches the record only while adding rec.Quantity keeps the
// total within int64. A record that fails the guard makes the upsert try an
// insert, which the unique index turns into a duplicate key error.
func applyFilter(rec model.ProductionRecord) bson.D {
	return append(matchFilter(rec.Key()), bson.E{
		Key: "quantity", Value: bson.D{{Key: "$lte", Value: int64(math.MaxInt64) - rec.Quantity}},
	})
}

// applyUpdate increments quantity on a match. On insert the filter's
// equality fields seed productId and weight; the rest comes from
// $setOnInsert.
func applyUpdate(rec model.ProductionRecord, id string, now time.Time) bson.D {
	return bson.D{
		{Key: "$inc", Value: bson.D{{Key: "quantity", Value: rec.Quantity}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now}}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "date", Value: rec.Date.UTC()},
			{Key: "createdAt", Value: now},
		}},
	}
}

func duplicatePipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$sort", Value: creationOrder()}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "productId", Value: "$productId"},
				{Key: "value", Value: "$weight.value"},
				{Key: "unit", Value: "$weight.unit"},
			}},
			{Key: "ids", Value: bson.D{{Key: "$push", Value: "$_id"}}},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$quantity"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$match", Value: bson.D{{Key: "count", Value: bson.D{{Key: "$gt", Value: 1}}}}}},
	}
}

func creationOrder() bson.D {
	return bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}
}
