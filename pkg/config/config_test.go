package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// repoRoot returns the absolute path to the repository root by walking up
// from the test file location until it finds go.mod.
func repoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find repository root (go.mod)")
		}
		dir = parent
	}
}

// -----------------------------------------------------------------------
// TestLoad - Parse configs/darbiter.yaml and verify key fields
// -----------------------------------------------------------------------

func TestLoad(t *testing.T) {
	root := repoRoot(t)
	cfgPath := filepath.Join(root, "configs", "darbiter.yaml")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load(%s): %v", cfgPath, err)
	}

	// Service section
	if cfg.Service.ID != "darbiter" {
		t.Errorf("service.id = %q, want %q", cfg.Service.ID, "darbiter")
	}
	if cfg.Service.Version != "1.0.0" {
		t.Errorf("service.version = %q, want %q", cfg.Service.Version, "1.0.0")
	}
	if cfg.Service.Environment != "development" {
		t.Errorf("service.environment = %q, want %q", cfg.Service.Environment, "development")
	}

	// Rules section
	if cfg.Rules.DefaultRuleset != "combined_baseline.yaml" {
		t.Errorf("rules.default_ruleset = %q, want combined_baseline.yaml", cfg.Rules.DefaultRuleset)
	}

	// Scanning section
	if cfg.Scanning.DefaultUsage != "INFERENCE" {
		t.Errorf("scanning.default_usage = %q, want INFERENCE", cfg.Scanning.DefaultUsage)
	}
	if !cfg.Scanning.Recursive {
		t.Error("scanning.recursive should be true")
	}

	// Streaming section
	if cfg.Streaming.Enabled {
		t.Error("streaming.enabled should be false")
	}
	if len(cfg.Streaming.Kafka.Brokers) != 1 || cfg.Streaming.Kafka.Brokers[0] != "localhost:9092" {
		t.Errorf("streaming.kafka.brokers = %v, want [localhost:9092]", cfg.Streaming.Kafka.Brokers)
	}
	if cfg.Streaming.Kafka.Topics.Findings != "darbiter.findings" {
		t.Errorf("streaming.kafka.topics.findings = %q, want darbiter.findings", cfg.Streaming.Kafka.Topics.Findings)
	}
	if cfg.Streaming.Kafka.Producer.FlushInterval != 100*time.Millisecond {
		t.Errorf("producer.flush_interval = %v, want 100ms", cfg.Streaming.Kafka.Producer.FlushInterval)
	}
	if cfg.Streaming.Kafka.Producer.Compression != "snappy" {
		t.Errorf("producer.compression = %q, want snappy", cfg.Streaming.Kafka.Producer.Compression)
	}

	// Server section
	if cfg.Server.HTTP.Addr != ":8080" {
		t.Errorf("server.http.addr = %q, want :8080", cfg.Server.HTTP.Addr)
	}
	if cfg.Server.HTTP.ReadTimeout != 30*time.Second {
		t.Errorf("server.http.read_timeout = %v, want 30s", cfg.Server.HTTP.ReadTimeout)
	}
	if cfg.Server.HTTP.MaxUploadSize != 33554432 {
		t.Errorf("server.http.max_upload_size = %d, want 33554432", cfg.Server.HTTP.MaxUploadSize)
	}

	// Logging section
	if cfg.Logging.Level != "info" {
		t.Errorf("logging.level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("logging.format = %q, want json", cfg.Logging.Format)
	}

	// Telemetry section
	if cfg.Telemetry.Enabled {
		t.Error("telemetry.enabled should be false")
	}
	if cfg.Telemetry.Protocol != "http" {
		t.Errorf("telemetry.protocol = %q, want http", cfg.Telemetry.Protocol)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg.Service.ID != "darbiter" {
		t.Errorf("default service.id = %q, want darbiter", cfg.Service.ID)
	}
	if cfg.Server.HTTP.Addr != ":8080" {
		t.Errorf("default server.http.addr = %q, want :8080", cfg.Server.HTTP.Addr)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("default logging.format = %q, want json", cfg.Logging.Format)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadEnvSubstitution(t *testing.T) {
	t.Setenv("DARBITER_TEST_ADDR", ":9090")

	path := filepath.Join(t.TempDir(), "darbiter.yaml")
	content := "service:\n  id: darbiter\nserver:\n  http:\n    addr: ${DARBITER_TEST_ADDR:-:8080}\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTP.Addr != ":9090" {
		t.Errorf("server.http.addr = %q, want env value :9090", cfg.Server.HTTP.Addr)
	}
}

func TestLoadEnvSubstitutionDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "darbiter.yaml")
	content := "service:\n  id: darbiter\nlogging:\n  level: ${DARBITER_UNSET_LEVEL:-warn}\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("logging.level = %q, want default warn", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "nil config",
			mutate:  nil,
			wantErr: "config is nil",
		},
		{
			name:    "missing service id",
			mutate:  func(c *Config) { c.Service.ID = "" },
			wantErr: "service.id is required",
		},
		{
			name:    "bad default usage",
			mutate:  func(c *Config) { c.Scanning.DefaultUsage = "BATCH" },
			wantErr: "scanning.default_usage",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
		{
			name:    "streaming without brokers",
			mutate:  func(c *Config) { c.Streaming.Enabled = true; c.Streaming.Kafka.Brokers = nil },
			wantErr: "streaming.kafka.brokers",
		},
		{
			name:    "telemetry without endpoint",
			mutate:  func(c *Config) { c.Telemetry.Enabled = true; c.Telemetry.Endpoint = "" },
			wantErr: "telemetry.endpoint",
		},
		{
			name: "bad telemetry protocol",
			mutate: func(c *Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.Endpoint = "localhost:4318"
				c.Telemetry.Protocol = "udp"
			},
			wantErr: "telemetry.protocol",
		},
		{
			name:    "negative upload size",
			mutate:  func(c *Config) { c.Server.HTTP.MaxUploadSize = -1 },
			wantErr: "max_upload_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg *Config
			if tt.mutate != nil {
				cfg = Default()
				tt.mutate(cfg)
			}
			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestStreamConfig(t *testing.T) {
	cfg := Default()
	cfg.Streaming.Kafka.Brokers = []string{"broker-1:9092", "broker-2:9092"}

	sc := cfg.StreamConfig()
	if len(sc.Brokers) != 2 {
		t.Errorf("brokers = %v, want 2 entries", sc.Brokers)
	}
	if sc.Topics.Findings != "darbiter.findings" {
		t.Errorf("topics.findings = %q, want darbiter.findings", sc.Topics.Findings)
	}
	if sc.Compression != "snappy" {
		t.Errorf("compression = %q, want snappy", sc.Compression)
	}
}
