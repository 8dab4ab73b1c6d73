package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sandevgo/tuskdash/pkg/log"
	"github.com/sandevgo/tuskdash/pkg/srv"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API and background workers",
	Long:  `Opens the store, starts the HTTP API, the market watcher and the retention worker, and runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting tuskdash")

		services, err := NewServices(ctx)
		if err != nil {
			return err
		}

		srv.StartServices(ctx, services)

		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("tuskdash has been shut down gracefully")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
