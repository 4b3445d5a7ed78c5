package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/app"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/observability"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/platform/shutdown"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat gateway HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			log, err := root.logger(cfg)
			if err != nil {
				return err
			}

			ctx, stop := shutdown.NotifyContext(cmd.Context())
			defer stop()

			otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
				Environment: cfg.Env,
				Version:     version,
			})
			if otelShutdown != nil {
				defer func() {
					sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := otelShutdown(sctx); err != nil {
						log.Warn("otel shutdown failed", "error", err)
					}
				}()
			}

			a, err := app.New(ctx, log, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Run(ctx)
		},
	}
}
