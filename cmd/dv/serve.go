package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/traveller-vtt/dv/internal/config"
	"github.com/traveller-vtt/dv/internal/monitor"
	"github.com/traveller-vtt/dv/internal/server"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the websocket command server",
		Long: `Accept chat messages from a tabletop relay on /ws and answer with the
command result and any chat output. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	a, err := newApp(ctx, os.Stderr, "dv", true)
	if err != nil {
		return err
	}
	defer a.Close()

	sc := config.GetServerConfig()
	srv := server.New(sc, a.d, a.outbox, a.log.With().Str("component", "server").Logger())

	deps := monitor.Dependencies{
		Connections: srv.Connections,
		Handled:     srv.Handled,
		Failed:      srv.Failed,
		ScaleKm:     a.session.ScaleKm,
		StatusFile:  sc.StatusFile,
		Logger:      a.log.With().Str("component", "monitor").Logger(),
	}
	if a.tracks != nil {
		deps.TelemetryOnline = a.tracks.Online
	}
	status := monitor.NewService(deps)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Run(gctx); err != nil {
			return fmt.Errorf("websocket server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return status.Run(gctx, sc.StatusInterval)
	})

	if a.tracks != nil {
		g.Go(func() error {
			return a.tracks.Run(gctx, config.GetTelemetryConfig().FlushInterval)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	a.log.Info().Msg("shut down")
	return nil
}
