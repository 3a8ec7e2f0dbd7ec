package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"couponcast/logging"
	"couponcast/tui"
)

func newDashboardCmd() *cobra.Command {
	var model modelFlags
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Explore predictions interactively in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			model.apply(&cfg.Dashboard.Model)

			// file sink only while the dashboard owns the terminal
			logger, err := logging.New(cfg.Log, nil)
			if err != nil {
				return err
			}
			defer logger.Sync()
			logger = logger.Named("dashboard")

			application, err := openApp(cfg, cfg.Dashboard.Model, logger)
			switch {
			case isModelLoadError(err):
				logger.Error("model unavailable", zap.Error(err))
			case err != nil:
				return err
			default:
				defer application.Close()
			}

			p := tea.NewProgram(tui.New(application, cfg.Dashboard.Model.Path, err), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("failed to run dashboard: %w", err)
			}
			return nil
		},
	}
	model.register(cmd)
	return cmd
}
