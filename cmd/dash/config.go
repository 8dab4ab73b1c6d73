package main

import (
	"strings"

	"github.com/sandevgo/tuskdash/internal/config"
	"github.com/sandevgo/tuskdash/internal/service/ui"
	"github.com/sandevgo/tuskdash/pkg/env"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:          "config",
	Short:        "Print the effective configuration as .env lines",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}

		aiCfg := config.NewGenAIConfig(ctx)
		aiCfg.APIKey = mask(aiCfg.APIKey)
		tgCfg := config.NewTelegramConfig(ctx)
		tgCfg.Token = mask(tgCfg.Token)

		sections := []struct {
			title string
			cfg   any
		}{
			{"APP", config.NewAppConfig(ctx)},
			{"GEMINI", aiCfg},
			{"TELEGRAM", tgCfg},
			{"MARKET", config.NewMarketConfig(ctx)},
		}

		for _, s := range sections {
			out, err := env.MarshalEnv(s.cfg)
			if err != nil {
				return err
			}
			cmd.Println(ui.TitleStyle.Render(s.title))
			cmd.Println(strings.TrimRight(out, "\n"))
		}
		return nil
	},
}

// mask keeps the last four characters of a secret.
func mask(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}

func init() {
	rootCmd.AddCommand(configCmd)
}
