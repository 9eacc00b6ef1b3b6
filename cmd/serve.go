package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/s0up4200/qbtlang/server"
	"github.com/s0up4200/qbtlang/translator"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve catalog lookups over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		bundle, err := translator.LoadAll(ctx, cfg.Catalogs.Dir, cfg.Catalogs.Prefix, logger)
		if err != nil {
			return err
		}
		logger.Info().Strs("languages", bundle.Languages()).Msg("Catalogs loaded")

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		srv, err := server.New(bundle, server.Options{
			Host:    cfg.Server.Host,
			Port:    port,
			Mode:    cfg.Server.Mode,
			Presets: presetExpressions(),
		}, logger)
		if err != nil {
			return err
		}
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "override server.port")

	rootCmd.AddCommand(serveCmd)
}
