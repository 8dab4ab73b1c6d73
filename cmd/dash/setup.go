package main

import (
	"github.com/joho/godotenv"
	"github.com/sandevgo/tuskdash/internal/config"
	"github.com/sandevgo/tuskdash/internal/service/installer"
	"github.com/sandevgo/tuskdash/internal/service/ui"
	"github.com/sandevgo/tuskdash/pkg/log"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:          "setup",
	Short:        "Configure Gemini, Telegram alerts and the watched symbol",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		runtimePath := config.GetRuntimePath()
		logger.Info().Str("path", runtimePath).Msg("starting setup wizard")

		if _, err := installer.RunWizard(runtimePath); err != nil {
			return err
		}

		envPath := config.AppConfig{RuntimePath: runtimePath}.GetEnvPath()
		if _, err := godotenv.Read(envPath); err != nil {
			logger.Warn().Err(err).Str("path", envPath).Msg("saved .env file is not readable")
		}

		logger.Info().Msgf("initialized runtime directory at: %s", runtimePath)
		cmd.Println(ui.UsageStyle.Render("Setup complete! You can now run 'dash serve'."))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
