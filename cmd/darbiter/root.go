package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rajivksingh13/darbiter/pkg/config"
	"github.com/rajivksingh13/darbiter/pkg/logging"
	"github.com/rajivksingh13/darbiter/pkg/rules"
	"github.com/rajivksingh13/darbiter/pkg/scan"
	"github.com/rajivksingh13/darbiter/pkg/stream"
	"github.com/rajivksingh13/darbiter/pkg/telemetry"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:          "darbiter",
	Short:        "DArbiter - AI usage eligibility scanner",
	Long:         "DArbiter scans file trees, uploads, and raw text for secrets, PII, and risky configuration, then decides whether the content is eligible for AI usage.",
	Version:       fmt.Sprintf("%s (built %s)", Version, BuildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override configured log level (debug, info, warn, error)")
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// runtime bundles the components every command needs, built once per
// invocation.
type runtime struct {
	cfg       *config.Config
	logger    *zap.SugaredLogger
	telemetry *telemetry.Provider
	streamer  stream.Streamer
	service   scan.Service
}

// newRuntime loads config and assembles the scan service with its
// dependencies. Callers must Close it.
func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	provider, err := telemetry.NewProvider(ctx, cfg.Telemetry, cfg.Service.ID, cfg.Service.Version)
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, logger: logger, telemetry: provider}

	opts := []scan.Option{
		scan.WithLoader(rules.NewLoader(cfg.Rules.Dir)),
		scan.WithLogger(logger),
		scan.WithTracer(provider.Tracer()),
	}
	if cfg.Streaming.Enabled {
		streamer, err := stream.NewKafkaStreamer(cfg.StreamConfig())
		if err != nil {
			rt.Close(ctx)
			return nil, fmt.Errorf("connecting to kafka: %w", err)
		}
		rt.streamer = streamer
		opts = append(opts, scan.WithStreamer(streamer))
	}
	rt.service = scan.NewService(opts...)
	return rt, nil
}

// Close flushes the streamer, telemetry, and logs.
func (rt *runtime) Close(ctx context.Context) {
	if rt.streamer != nil {
		if err := rt.streamer.Close(); err != nil {
			rt.logger.Warnw("closing streamer", "error", err)
		}
	}
	if rt.telemetry != nil {
		if err := rt.telemetry.Shutdown(ctx); err != nil {
			rt.logger.Warnw("shutting down telemetry", "error", err)
		}
	}
	if rt.logger != nil {
		_ = rt.logger.Sync()
	}
}
