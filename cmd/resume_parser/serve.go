package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-parser/internal/server"
	"github.com/jonathan/resume-parser/internal/server/ratelimit"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes resume parsing, health and Prometheus metrics endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config and PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	port := a.cfg.Port
	if servePort > 0 {
		port = servePort
	}

	srv := server.New(server.Config{
		Port:           port,
		MaxUploadBytes: a.cfg.MaxUploadBytes,
		RateLimit:      ratelimit.LoadConfig(a.cfg.RateLimitPerSecond, a.cfg.RateLimitBurst),
		Capabilities:   a.pipeline.Capabilities(),
	}, a.pipeline, a.metrics, a.registry, a.logger)

	return srv.Start(ctx)
}
