// Package cmd wires the couponcast subcommands.
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"couponcast/app"
	"couponcast/config"
	"couponcast/db"
	"couponcast/ml"
)

// version is set at build time via -ldflags.
var version = "dev"

type modelFlags struct {
	path      string
	modelType string
}

func (f *modelFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.path, "model-path", "", "model artifact (overrides config)")
	cmd.Flags().StringVar(&f.modelType, "model-type", "", "expected model type: logistic_regression or decision_tree")
}

func (f *modelFlags) apply(mc *config.ModelConfig) {
	if f.path != "" {
		mc.Path = f.path
	}
	if f.modelType != "" {
		mc.Type = f.modelType
	}
}

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "couponcast",
		Short:         "Predict whether a customer will redeem a coupon",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	root.PersistentFlags().String("config", "config.yaml", "path to config.yaml")

	root.AddCommand(newServeCmd())
	root.AddCommand(newDashboardCmd())
	root.AddCommand(newPredictCmd())
	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}

// loadConfig reads --config. The default file may be absent; an explicitly
// named one may not.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configPath(cmd)
	cfg, err := config.Load(path, !cmd.Flags().Changed("config"))
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// openApp loads the model and, when configured, the prediction log.
func openApp(cfg *config.Config, mc config.ModelConfig, logger *zap.Logger) (*app.Application, error) {
	inv, err := ml.Open(mc.Type, mc.Path, logger.Named("ml"))
	if err != nil {
		return nil, err
	}
	application := &app.Application{Config: cfg, Logger: logger, Invoker: inv}

	if cfg.Database.Path != "" {
		store, err := db.Open(cfg.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("open prediction log: %w", err)
		}
		application.Store = store
		logger.Info("prediction log enabled", zap.String("path", cfg.Database.Path))
	}
	return application, nil
}

// watchLogLevel applies log.level from each rewrite of the config file until
// ctx is done. Other settings take effect on restart.
func watchLogLevel(ctx context.Context, path string, level zap.AtomicLevel, logger *zap.Logger) {
	err := config.Watch(ctx, path,
		func(cfg *config.Config) {
			if cfg.Log.Level == level.String() {
				return
			}
			if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
				logger.Warn("ignoring log level", zap.String("level", cfg.Log.Level), zap.Error(err))
				return
			}
			logger.Info("log level changed", zap.Stringer("level", level))
		},
		func(err error) {
			logger.Warn("reload config", zap.String("path", path), zap.Error(err))
		})
	if err != nil {
		logger.Warn("config watch disabled", zap.String("path", path), zap.Error(err))
	}
}

func isModelLoadError(err error) bool {
	var le *ml.ModelLoadError
	return errors.As(err, &le)
}
