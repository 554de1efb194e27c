// Package config provides configuration loading and validation for the
// DArbiter eligibility scanner. It supports YAML configuration files with
// environment variable substitution.
package config

import (
	"time"

	"github.com/rajivksingh13/darbiter/pkg/stream"
)

// Config is the top-level configuration structure mirroring darbiter.yaml.
type Config struct {
	Service     ServiceConfig     `yaml:"service"`
	Rules       RulesConfig       `yaml:"rules"`
	Scanning    ScanningConfig    `yaml:"scanning"`
	Streaming   StreamingConfig   `yaml:"streaming"`
	Server      ServerConfig      `yaml:"server"`
	Certificate CertificateConfig `yaml:"certificate"`
	Logging     LoggingConfig     `yaml:"logging"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}

// ServiceConfig holds service identification metadata.
type ServiceConfig struct {
	ID          string `yaml:"id"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// RulesConfig holds ruleset resolution settings. Dir overrides builtin
// rulesets file by file; DefaultRuleset is used when a request names none.
type RulesConfig struct {
	Dir            string `yaml:"dir"`
	DefaultRuleset string `yaml:"default_ruleset"`
}

// ScanningConfig holds scan behavior defaults.
type ScanningConfig struct {
	DefaultUsage  string `yaml:"default_usage"`
	ApprovedForAI bool   `yaml:"approved_for_ai"`
	Recursive     bool   `yaml:"recursive"`
}

// StreamingConfig holds Kafka streaming settings.
type StreamingConfig struct {
	Enabled bool        `yaml:"enabled"`
	Kafka   KafkaConfig `yaml:"kafka"`
}

// KafkaConfig holds Kafka connection and producer settings.
type KafkaConfig struct {
	Brokers  []string            `yaml:"brokers"`
	Topics   stream.Topics       `yaml:"topics"`
	Producer KafkaProducerConfig `yaml:"producer"`
}

// KafkaProducerConfig holds Kafka producer settings.
type KafkaProducerConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	Compression   string        `yaml:"compression"`
	RequiredAcks  string        `yaml:"required_acks"`
	MaxRetries    int           `yaml:"max_retries"`
	RetryBackoff  time.Duration `yaml:"retry_backoff"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	HTTP HTTPServerConfig `yaml:"http"`
}

// HTTPServerConfig holds HTTP server settings.
type HTTPServerConfig struct {
	Addr          string        `yaml:"addr"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	MaxUploadSize int64         `yaml:"max_upload_size"`
}

// CertificateConfig holds certificate signing settings. An empty signing
// key issues unsigned certificates.
type CertificateConfig struct {
	SigningKey string `yaml:"signing_key"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TelemetryConfig holds OpenTelemetry trace export settings.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Protocol string `yaml:"protocol"`
	Insecure bool   `yaml:"insecure"`
}
