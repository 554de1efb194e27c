package scan

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/rajivksingh13/darbiter/pkg/detect"
	"github.com/rajivksingh13/darbiter/pkg/rules"
	"github.com/rajivksingh13/darbiter/pkg/stream"
)

// Service is the entry point for running scans and retrieving results.
type Service interface {
	// ScanPath scans a file or directory tree on disk.
	ScanPath(ctx context.Context, req PathRequest) (*Result, error)

	// ScanFiles scans a set of uploaded payloads.
	ScanFiles(ctx context.Context, req FileSetRequest) (*Result, error)

	// ScanText scans raw text content.
	ScanText(ctx context.Context, req TextRequest) (*Result, error)

	// Find returns the stored result for a scan id.
	Find(scanID string) (*Result, bool)

	// Certify issues a certificate for a stored scan.
	Certify(scanID string) (Certificate, bool)

	// Rulesets lists the available rulesets.
	Rulesets() ([]rules.RuleSetInfo, error)
}

// Option configures the default service.
type Option func(*defaultService)

// WithStore sets the result store.
func WithStore(store Store) Option {
	return func(s *defaultService) {
		s.store = store
	}
}

// WithLoader sets the ruleset loader.
func WithLoader(loader *rules.Loader) Option {
	return func(s *defaultService) {
		s.loader = loader
	}
}

// WithEngine sets the detection engine.
func WithEngine(engine detect.Engine) Option {
	return func(s *defaultService) {
		s.engine = engine
	}
}

// WithStreamer sets an optional finding-event streamer. Publish failures are
// logged, never fatal to the scan.
func WithStreamer(streamer stream.Streamer) Option {
	return func(s *defaultService) {
		s.streamer = streamer
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *defaultService) {
		s.logger = logger
	}
}

// WithTracer sets the tracer used for scan spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *defaultService) {
		s.tracer = tracer
	}
}

// NewService creates a scan service with default components: builtin
// rulesets, the default detection engine, an in-memory store, a no-op
// logger, and the globally registered tracer.
func NewService(opts ...Option) Service {
	s := &defaultService{
		loader: rules.NewLoader(""),
		engine: detect.NewEngine(),
		store:  NewMemoryStore(),
		logger: zap.NewNop().Sugar(),
		tracer: otel.Tracer("darbiter/scan"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
