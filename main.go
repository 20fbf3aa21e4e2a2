package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tournevent/carrierkit/internal/server"
	"go.uber.org/zap"
)

var version = "0.0.1"

var envFiles []string

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "carrierkit",
	Short:   "Multi-carrier shipping rates, timings and catalogs",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Quote a shipment file against the configured carriers",
	RunE:  runRates,
}

var methodsCmd = &cobra.Command{
	Use:   "methods [carrier...]",
	Short: "List the shipping methods of every carrier",
	RunE:  runMethods,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "env files loaded before the environment (default .env when present)")

	ratesCmd.Flags().StringP("shipment", "s", "", "shipment file, YAML or JSON")
	ratesCmd.Flags().StringSliceP("carrier", "c", nil, "carriers to quote (default all enabled)")
	ratesCmd.Flags().Bool("timings", false, "also print delivery estimates")
	_ = ratesCmd.MarkFlagRequired("shipment")

	rootCmd.AddCommand(serveCmd, ratesCmd, methodsCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tracer, tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
	} else {
		defer tracerShutdown(ctx)
	}

	registry := initShipperRegistry(cfg, logger, tracer)
	if registry.Count() == 0 {
		logger.Warn("No carriers enabled")
	}

	logger.Info("Starting carrierkit",
		zap.Int("port", cfg.Port),
		zap.String("version", cfg.Version),
		zap.Strings("carriers", registry.Names()),
	)

	srv := server.New(server.Config{Port: cfg.Port}, registry, logger)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
