package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rajivksingh13/darbiter/pkg/stream"
)

// envVarPattern matches ${VAR} and ${VAR:-default} expressions.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			ID:          "darbiter",
			Environment: "development",
		},
		Scanning: ScanningConfig{
			DefaultUsage: "INFERENCE",
		},
		Streaming: StreamingConfig{
			Kafka: KafkaConfig{
				Topics: stream.DefaultTopics(),
				Producer: KafkaProducerConfig{
					BatchSize:     100,
					FlushInterval: 100 * time.Millisecond,
					Compression:   "snappy",
					RequiredAcks:  "all",
					MaxRetries:    3,
					RetryBackoff:  100 * time.Millisecond,
				},
			},
		},
		Server: ServerConfig{
			HTTP: HTTPServerConfig{
				Addr:          ":8080",
				ReadTimeout:   30 * time.Second,
				WriteTimeout:  60 * time.Second,
				IdleTimeout:   120 * time.Second,
				MaxUploadSize: 32 << 20,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			Protocol: "http",
		},
	}
}

// Load reads a YAML config file, performs environment variable substitution
// on the raw bytes, then unmarshals over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	data = substituteEnvVars(data)

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// substituteEnvVars replaces ${VAR} and ${VAR:-default} patterns in content
// with the corresponding environment variable values. If a variable is not
// set and no default is provided, the expression is replaced with an empty
// string.
func substituteEnvVars(content []byte) []byte {
	return envVarPattern.ReplaceAllFunc(content, func(match []byte) []byte {
		groups := envVarPattern.FindSubmatch(match)
		if groups == nil {
			return match
		}

		varName := string(groups[1])
		defaultVal := ""
		hasDefault := len(groups) > 2 && groups[2] != nil
		if hasDefault {
			defaultVal = string(groups[2])
		}

		val, ok := os.LookupEnv(varName)
		if !ok || val == "" {
			if hasDefault {
				return []byte(defaultVal)
			}
			return []byte("")
		}
		return []byte(val)
	})
}

// Validate performs basic validation on a loaded Config. It checks that
// required fields are set and that values are within expected ranges.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if cfg.Service.ID == "" {
		return fmt.Errorf("service.id is required")
	}

	usage := cfg.Scanning.DefaultUsage
	if usage != "" {
		validUsages := map[string]bool{
			"INFERENCE": true, "TRAINING": true, "FINE_TUNING": true, "EVALUATION": true,
		}
		if !validUsages[usage] {
			return fmt.Errorf("scanning.default_usage %q is not valid; must be one of: INFERENCE, TRAINING, FINE_TUNING, EVALUATION", usage)
		}
	}

	level := cfg.Logging.Level
	if level != "" {
		validLevels := map[string]bool{
			"debug": true, "info": true, "warn": true, "error": true,
		}
		if !validLevels[level] {
			return fmt.Errorf("logging.level %q is not valid; must be one of: debug, info, warn, error", level)
		}
	}

	format := cfg.Logging.Format
	if format != "" {
		if format != "json" && format != "text" {
			return fmt.Errorf("logging.format %q is not valid; must be json or text", format)
		}
	}

	if cfg.Streaming.Enabled && len(cfg.Streaming.Kafka.Brokers) == 0 {
		return fmt.Errorf("streaming.kafka.brokers is required when streaming is enabled")
	}

	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.Endpoint == "" {
			return fmt.Errorf("telemetry.endpoint is required when telemetry is enabled")
		}
		protocol := cfg.Telemetry.Protocol
		if protocol != "" && protocol != "http" && protocol != "grpc" {
			return fmt.Errorf("telemetry.protocol %q is not valid; must be http or grpc", protocol)
		}
	}

	if cfg.Server.HTTP.MaxUploadSize < 0 {
		return fmt.Errorf("server.http.max_upload_size must be non-negative, got %d", cfg.Server.HTTP.MaxUploadSize)
	}

	return nil
}

// StreamConfig projects the streaming section into the streamer's own
// configuration type.
func (c *Config) StreamConfig() *stream.Config {
	return &stream.Config{
		Brokers:       c.Streaming.Kafka.Brokers,
		Topics:        c.Streaming.Kafka.Topics,
		Compression:   c.Streaming.Kafka.Producer.Compression,
		RequiredAcks:  c.Streaming.Kafka.Producer.RequiredAcks,
		FlushInterval: c.Streaming.Kafka.Producer.FlushInterval,
		BatchSize:     c.Streaming.Kafka.Producer.BatchSize,
		MaxRetries:    c.Streaming.Kafka.Producer.MaxRetries,
		RetryBackoff:  c.Streaming.Kafka.Producer.RetryBackoff,
	}
}
