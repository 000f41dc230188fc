package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/production-ledger/internal/config"
	"github.com/fairyhunter13/production-ledger/internal/obs"
	"github.com/fairyhunter13/production-ledger/internal/store"
)

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer obs.Sync()
	if cfg.StoreBackend != config.BackendMongo {
		return errors.New("migrate needs STORE_BACKEND=mongo")
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.MongoConnectTimeout+30*time.Second)
	defer cancel()

	st, err := store.OpenMongo(ctx, store.MongoConfig{
		URI:            cfg.MongoURI,
		Database:       cfg.MongoDatabase,
		ConnectTimeout: cfg.MongoConnectTimeout,
	})
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	dups, err := st.FindDuplicates(ctx)
	if err != nil {
		return err
	}
	for _, g := range dups {
		obs.Logger.Warnw("duplicate_match_key",
			"product_id", g.Key.ProductID,
			"weight_value", g.Key.Value,
			"weight_unit", g.Key.Unit,
			"records", len(g.IDs),
		)
	}
	if len(dups) > 0 {
		if !mergeDuplicates {
			return fmt.Errorf("%d match keys have duplicate records; rerun with --merge-duplicates", len(dups))
		}
		if err := st.MergeDuplicates(ctx, dups); err != nil {
			return err
		}
	}
	if err := st.EnsureIndexes(ctx); err != nil {
		return err
	}
	obs.Logger.Infow("migrate_complete", "database", cfg.MongoDatabase)
	return nil
}
