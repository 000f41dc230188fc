// Package main boots the production ledger HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/production-ledger/internal/config"
	"github.com/fairyhunter13/production-ledger/internal/obs"
)

var (
	configPath      string
	mergeDuplicates bool
)

// rootCmd runs the server when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:           "production-ledger",
	Short:         "Product catalog and production ledger service",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create MongoDB indexes",
	Long: `Create the MongoDB indexes the ledger relies on.

The unique (productId, weight.value, weight.unit) index is what keeps
concurrent submissions for one product variant on a single record.
Run it once per database before serving with STORE_BACKEND=mongo.

Databases written without that index may already hold several records
for one variant. migrate reports them and stops; rerun it with
--merge-duplicates, with no server running, to fold each group into its
oldest record before the index is built.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	migrateCmd.Flags().BoolVar(&mergeDuplicates, "merge-duplicates", false, "merge records that share a match key before indexing")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

// loadConfig reads configuration and initializes the logger from it.
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if err := obs.Configure(cfg.LogMode, cfg.LogLevel); err != nil {
		return config.Config{}, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		obs.Logger.Errorw("command_failed", "error", err)
		obs.Sync()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
