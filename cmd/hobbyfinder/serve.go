package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"yashubustudio/hobbyfinder/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the recommender API and web page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("host") {
				a.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc := a.newService(ctx)
			defer svc.Close()

			h := svc.Health()
			a.logger.Info().
				Int("hobbies", h.Hobbies).
				Bool("semantic", h.Index.Enabled).
				Str("index_source", h.Index.Source).
				Msg("service ready")

			return server.New(svc, a.cfg.Server, a.logger).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "override server.host")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "override server.port")
	return cmd
}
