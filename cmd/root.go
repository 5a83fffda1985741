// =============================================================================
// FRSC Operations E-Dashboard - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every subcommand
// shares the configuration file and the logger set up here.
//
// COBRA CLI STRUCTURE:
//   rootCmd (edash)
//   ├── serveCmd   (edash serve)
//   ├── exportCmd  (edash export)
//   ├── catalogCmd (edash catalog)
//   └── versionCmd (edash version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the configuration file
//   3. Building the zap logger
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/frsc-ops/edashboard/internal/catalog"
	"github.com/frsc-ops/edashboard/internal/config"
	"github.com/frsc-ops/edashboard/internal/dashboard"
	"github.com/frsc-ops/edashboard/internal/export"
	"github.com/frsc-ops/edashboard/internal/storage"
	"github.com/frsc-ops/edashboard/pkg/utils"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// mainConfig is loaded before any subcommand runs.
var mainConfig *config.MainConfig

// logger is built from the configured log level.
var logger *zap.Logger

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "edash",
	Short: "FRSC Operations E-Dashboard - offender report capture and export",
	Long: `The FRSC Operations E-Dashboard records traffic-enforcement offender
reports for a patrol team and exports them for headquarters.

Key Features:
  - Multi-offender report form with per-offender bribe (currency) details
  - Draft persistence in a file, SQLite or in-memory store
  - Date-range filtered exports as document, delimited text or workbook
  - Catalogs of team leaders, routes, offences and currencies

Example Usage:
  edash serve                          # Start the HTTP API on :8080
  edash export --format all            # Export every report
  edash catalog --file catalog.yaml    # Show the catalogs in a file`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadMainConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load main config: %w", err)
		}
		mainConfig = cfg

		logger, err = buildLogger(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// buildLogger creates the production logger at level, or at debug level when
// --verbose is set.
func buildLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	atom, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg.Level = atom
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zcfg.Build()
}

// openStore opens the configured store and wraps it in an adapter.
func openStore() (storage.KV, *storage.Adapter, error) {
	kv, err := storage.Open(mainConfig.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	adapter := storage.NewAdapter(kv,
		storage.WithLogger(logger.Named("storage")),
		storage.WithLatency(mainConfig.OnlineSaveLatency))
	return kv, adapter, nil
}

// openDashboard builds the dashboard from the configuration. The returned
// store must be closed after the dashboard is flushed.
func openDashboard(ctx context.Context) (*dashboard.Dashboard, storage.KV, error) {
	cat, err := catalog.Load(mainConfig.CatalogFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	kv, adapter, err := openStore()
	if err != nil {
		return nil, nil, err
	}

	files := utils.NewFileManager(mainConfig.OutputDir, "")
	d, err := dashboard.New(ctx, dashboard.Options{
		Adapter:  adapter,
		Catalog:  cat,
		Exporter: export.NewExporter(files, mainConfig.FileNameFormat, logger.Named("export")),
		Logger:   logger.Named("dashboard"),
	})
	if err != nil {
		kv.Close()
		return nil, nil, err
	}
	return d, kv, nil
}
