package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/production-ledger/internal/catalog"
	"github.com/fairyhunter13/production-ledger/internal/config"
	httpapi "github.com/fairyhunter13/production-ledger/internal/http"
	"github.com/fairyhunter13/production-ledger/internal/obs"
	"github.com/fairyhunter13/production-ledger/internal/production"
	"github.com/fairyhunter13/production-ledger/internal/store"
)

// openBackend opens the configured store. The caller closes it.
func openBackend(ctx context.Context, cfg config.Config) (store.Backend, error) {
	if cfg.StoreBackend != config.BackendMongo {
		obs.Logger.Warnw("memory_store_in_use", "detail", "data is lost on restart")
		return store.NewMemory(), nil
	}
	st, err := store.OpenMongo(ctx, store.MongoConfig{
		URI:            cfg.MongoURI,
		Database:       cfg.MongoDatabase,
		ConnectTimeout: cfg.MongoConnectTimeout,
	})
	if err != nil {
		return nil, err
	}
	if err := st.EnsureIndexes(ctx); err != nil {
		_ = st.Close(ctx)
		return nil, fmt.Errorf("%w (run `production-ledger migrate` to find duplicate records)", err)
	}
	return st, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer obs.Sync()
	obs.Logger.Infow("service_starting", "store_backend", cfg.StoreBackend, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		cctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := st.Close(cctx); err != nil {
			obs.Logger.Errorw("store_close_error", "error", err)
		}
	}()

	app := httpapi.NewApp(cfg,
		catalog.NewService(st, cfg.StoreTimeout),
		production.NewService(st, cfg.StoreTimeout),
		st,
	)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		obs.Logger.Infow("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		obs.Logger.Infow("shutdown_signal")
		app.StartShutdown()
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			obs.Logger.Errorw("http_shutdown_error", "error", err)
			return err
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		obs.Logger.Errorw("http_server_error", "error", err)
		return err
	}
	obs.Logger.Infow("service_stopped")
	return nil
}
