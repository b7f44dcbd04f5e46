package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/earthshout/shout-indexer/internal/common"
	configloader "github.com/earthshout/shout-indexer/internal/config"
	"github.com/earthshout/shout-indexer/internal/db"
	"github.com/earthshout/shout-indexer/internal/decoder"
	"github.com/earthshout/shout-indexer/internal/indexer"
	"github.com/earthshout/shout-indexer/internal/logger"
	"github.com/earthshout/shout-indexer/internal/metrics"
	"github.com/earthshout/shout-indexer/internal/migrations"
	"github.com/earthshout/shout-indexer/internal/rpc"
	"github.com/earthshout/shout-indexer/internal/store"
	"github.com/earthshout/shout-indexer/pkg/api"
	"github.com/earthshout/shout-indexer/pkg/config"
	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
)

const (
	version = "1.0.0"
	banner  = `
╔═══════════════════════════════════════════╗
║         Shout Indexer v%s              ║
║     Burn-to-Broadcast Event Indexer       ║
╚═══════════════════════════════════════════╝
`
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "shout-indexer",
	Short: "Shout Indexer - burn-to-broadcast event indexer",
	Long: `Shout Indexer watches the Void burn contract for Yeet, Gift and Boost
events, decodes the broadcast payloads and serves them through a REST API.
Indexing is resumable: progress is checkpointed per chain and event writes
are idempotent, so restarts and RPC hiccups never lose or duplicate data.`,
	Version: version,
	RunE:    runIndexer,
}

var schemaCmd = &cobra.Command{
	Use:   "config-schema",
	Short: "Print the JSON schema of the configuration file",
	Long:  `Generate a JSON schema describing all configuration options, usable for editor completion and validation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		schema := jsonschema.Reflect(&config.Config{})
		encoded, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal schema: %w", err)
		}
		fmt.Println(string(encoded))
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to configuration file")
	rootCmd.AddCommand(schemaCmd)
}

func runIndexer(cmd *cobra.Command, args []string) error {
	fmt.Printf(banner, version)

	cfg, err := configloader.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down gracefully...")
		cancel()
	}()

	log := logger.NewComponentLoggerFromConfig(common.ComponentEngine, cfg.Logging)

	log.Info("Connecting to Ethereum node...")
	chainClient, err := rpc.NewClient(ctx, &cfg.Indexer)
	if err != nil {
		return fmt.Errorf("failed to create RPC client: %w", err)
	}
	defer chainClient.Close()
	log.Infof("Connected to Ethereum node: %s", cfg.Indexer.RPCURL)

	var metricsServer *metrics.Server
	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics, logger.NewComponentLoggerFromConfig(common.ComponentEngine, cfg.Logging))
		if err := metricsServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		defer func() {
			if err := metricsServer.Stop(ctx); err != nil {
				log.Warnf("Failed to stop metrics server: %v", err)
			}
		}()
	}

	log.Info("Running database migrations...")
	if err := migrations.RunMigrations(cfg.Indexer.DB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	database, err := db.NewSQLiteDBFromConfig(cfg.Indexer.DB)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer database.Close()

	eventStore := store.New(
		database,
		cfg.Indexer.ChainID,
		logger.NewComponentLoggerFromConfig(common.ComponentStore, cfg.Logging),
	)

	dec, err := decoder.New(logger.NewComponentLoggerFromConfig(common.ComponentDecoder, cfg.Logging))
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	engine := indexer.New(
		&cfg.Indexer,
		chainClient,
		dec,
		eventStore,
		logger.NewComponentLoggerFromConfig(common.ComponentEngine, cfg.Logging),
	)

	if cfg.API != nil && cfg.API.Enabled {
		apiServer := api.NewServer(
			cfg.API,
			eventStore,
			engine,
			logger.NewComponentLoggerFromConfig(common.ComponentAPI, cfg.Logging),
		)
		go func() {
			if err := apiServer.Start(ctx); err != nil {
				log.Errorf("API server error: %v", err)
			}
		}()
	}

	log.Info("Starting indexing engine...")
	if err := engine.Start(ctx); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}

	<-ctx.Done()
	engine.Stop()

	log.Info("Shout Indexer stopped successfully")
	return nil
}
