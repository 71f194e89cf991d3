package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"ytmp3/internal/daemon"
	"ytmp3/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(host) != "" {
				cfg.Server.Host = strings.TrimSpace(host)
			}
			if cmd.Flags().Changed("port") {
				if port < 0 || port > 65535 {
					return fmt.Errorf("--port must be between 0 and 65535")
				}
				cfg.Server.Port = port
			}

			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			d, err := daemon.New(cfg, logger, Version)
			if err != nil {
				return fmt.Errorf("create daemon: %w", err)
			}
			if err := d.Run(signalCtx); err != nil {
				logger.Error("server exited with error", logging.Error(err))
				return err
			}
			logger.Info("ytmp3 shutting down")
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Override server.host")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Override server.port")
	return cmd
}
