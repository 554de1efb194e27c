package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rajivksingh13/darbiter/pkg/attest"
	"github.com/rajivksingh13/darbiter/pkg/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scan HTTP API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close(context.Background())

	var opts []server.Option
	if key := rt.cfg.Certificate.SigningKey; key != "" {
		opts = append(opts, server.WithSigner(attest.NewHMACSigner([]byte(key))))
	}
	srv := server.New(rt.service, rt.logger, rt.cfg.Server.HTTP, opts...)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	rt.logger.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
