package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"couponcast/app"
	"couponcast/features"
	"couponcast/logging"
	"couponcast/present"
)

type predictOutput struct {
	Result  present.Response `json:"result"`
	Message present.Message  `json:"message"`
}

func newPredictCmd() *cobra.Command {
	var (
		model    modelFlags
		settings map[string]string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score one customer; unset fields take their defaults",
		Example: `  couponcast predict --set family_size=5 --set campaign_type=Y
  couponcast predict --model-path model/best_dt_model.json --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			model.apply(&cfg.Model)

			values, err := features.FromSettings(settings)
			if err != nil {
				return err
			}
			row, err := features.Build(values, features.Defaults())
			if err != nil {
				return err
			}

			logger, err := logging.New(cfg.Log, os.Stderr)
			if err != nil {
				return err
			}
			defer logger.Sync()

			application, err := openApp(cfg, cfg.Model, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			inf, err := application.Predict(cmd.Context(), app.SourceCLI, row)
			if err != nil {
				return err
			}

			msg := present.Render(inf, row)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(predictOutput{Result: present.NewResponse(inf), Message: msg})
			}
			_, err = fmt.Fprint(out, msg.Text())
			return err
		},
	}
	model.register(cmd)
	cmd.Flags().StringToStringVar(&settings, "set", nil, "feature value as name=value (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the JSON response instead of text")
	return cmd
}
