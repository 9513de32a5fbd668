package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/logging"
)

var (
	policyFlag   string
	storageFlag  string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "package-cart",
	Short: "Cart store for event packages",
	Long: `package-cart keeps the event-package cart: adding packages (merged by
title), removing lines, totals, persistence and a simulated checkout.

Configuration comes from the environment (and an optional .env file).
Flags override the matching environment values.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&policyFlag, "policy", "", "Cart persistence policy: session or persisted (env CART_POLICY)")
	rootCmd.PersistentFlags().StringVar(&storageFlag, "storage", "", "Storage driver: memory, sqlite or postgres (env STORAGE_DRIVER)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (env LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(packagesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if policyFlag != "" {
		cfg.Policy = policyFlag
	}
	if storageFlag != "" {
		cfg.StorageDriver = storageFlag
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}
