// cmd/fitmenu/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fitmenu/internal/config"
	"fitmenu/internal/logger"
)

var version = "1.0.0"

// globalOptions holds the persistent flags and the logger built from them.
type globalOptions struct {
	configFile string
	envFile    string
	logLevel   string

	logger *zap.Logger
}

// load resolves the configuration and builds the logger. Commands that do
// not plan a menu pass targetsOptional.
func (o *globalOptions) load(targetsOptional bool) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(config.Options{
		ConfigFile:      o.configFile,
		EnvFile:         o.envFile,
		TargetsOptional: targetsOptional,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Development: cfg.Log.Development,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	o.logger = log
	return cfg, log, nil
}

// log returns the command logger, or a default one when configuration
// never got far enough to build it.
func (o *globalOptions) log() *zap.Logger {
	if o.logger != nil {
		return o.logger
	}
	level := o.logLevel
	if level == "" {
		level = "info"
	}
	log, err := logger.New(logger.Config{Level: level})
	if err != nil {
		return zap.NewNop()
	}
	o.logger = log
	return log
}

func newRootCmd(opts *globalOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "fitmenu",
		Short:         "Daily meal plan scraper and calorie planner",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(newTodayCmd(opts))
	rootCmd.AddCommand(newHistoryCmd(opts))
	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newCatalogCmd(opts))
	return rootCmd
}

func main() {
	opts := &globalOptions{}
	rootCmd := newRootCmd(opts)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		log := opts.log()
		log.Error("fitmenu failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = opts.log().Sync()
}
