package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"couponcast/app"
	"couponcast/config"
	qhttp "couponcast/http"
	"couponcast/logging"
)

func newServeCmd() *cobra.Command {
	var (
		model modelFlags
		port  int
		dbArg string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the prediction form and its JSON endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			model.apply(&cfg.Model)
			if port != 0 {
				cfg.Http.Port = port
			}
			if cmd.Flags().Changed("db") {
				cfg.Database.Path = dbArg
			}

			logger, level, err := logging.Build(cfg.Log, os.Stderr)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go watchLogLevel(ctx, configPath(cmd), level, logger.Named("config"))

			application, err := openApp(cfg, cfg.Model, logger)
			if err != nil {
				if isModelLoadError(err) {
					logger.Error("model unavailable, refusing to serve", zap.Error(err))
				}
				return err
			}
			defer application.Close()

			return serve(application, serverConfig(cfg), logger)
		},
	}
	model.register(cmd)
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")
	cmd.Flags().StringVar(&dbArg, "db", "", "prediction log database; empty disables it")
	return cmd
}

func serverConfig(cfg *config.Config) qhttp.ServerConfig {
	return qhttp.ServerConfig{
		Port:           cfg.Http.Port,
		Timeout:        cfg.Http.Timeout,
		MaxFormBytes:   cfg.Http.MaxFormBytes,
		AllowedOrigins: cfg.Http.AllowedOrigins,
	}
}

func serve(application *app.Application, sc qhttp.ServerConfig, logger *zap.Logger) error {
	server := qhttp.NewServer(application, sc)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	logger.Info("shutting down")
	return server.Stop()
}
