package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"leverage/internal/config"
	"leverage/internal/utils"
	"leverage/pkg/logger"
)

const appName = "leverage"

var (
	configFile string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "leverage - repository analysis service",
	Long:          `leverage tracks code repositories, analyzes their file listings and serves the reports over HTTP.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initDir(appName)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./leverage.toml or the app root)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "loglevel", "", "log level override (debug, info, warn, error)")
}

// loadConfig reads the configuration and applies command line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

// initDir resolves the app root and its logs and data directories. Config
// defaults are computed from them, so this runs before loadConfig.
func initDir(appName string) error {
	rootDir, err := utils.GetRootDir(appName)
	if err != nil {
		return fmt.Errorf("failed to initialize app directory: %w", err)
	}
	if _, err := utils.GetLogDir(rootDir); err != nil {
		return fmt.Errorf("failed to initialize logs directory: %w", err)
	}
	if _, err := utils.GetDataDir(rootDir); err != nil {
		return fmt.Errorf("failed to initialize data directory: %w", err)
	}
	return nil
}

func newLogger(cfg *config.Config) (logger.Logger, error) {
	return logger.NewLogger(cfg.Log.Dir, cfg.Log.Level, appName)
}
