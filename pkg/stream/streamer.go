// Package stream publishes finding events to downstream consumers after a
// scan completes.
package stream

import (
	"context"
	"time"

	"github.com/rajivksingh13/darbiter/pkg/rules"
)

// Event is one finding published after a scan, carrying enough scan context
// to be consumed without a result lookup. The matched value itself is never
// published, only the rule identity and location.
type Event struct {
	ID         string         `json:"id"`
	ScanID     string         `json:"scan_id"`
	Ruleset    string         `json:"ruleset"`
	RuleID     string         `json:"rule_id"`
	Category   rules.Category `json:"category"`
	Severity   rules.Severity `json:"severity"`
	FilePath   string         `json:"file_path"`
	LineNumber int            `json:"line_number"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Streamer publishes finding events.
type Streamer interface {
	// Stream publishes events for one finished scan.
	Stream(ctx context.Context, events []Event) error

	// Close flushes pending messages and releases the connection.
	Close() error
}

// Topics names the destinations events are routed to.
type Topics struct {
	Findings string `json:"findings" yaml:"findings"`
	Critical string `json:"critical" yaml:"critical"`
	Secrets  string `json:"secrets" yaml:"secrets"`
}

// DefaultTopics returns the default topic names.
func DefaultTopics() Topics {
	return Topics{
		Findings: "darbiter.findings",
		Critical: "darbiter.findings.critical",
		Secrets:  "darbiter.findings.secrets",
	}
}

// Config configures a streamer.
type Config struct {
	Brokers       []string      `json:"brokers" yaml:"brokers"`
	Topics        Topics        `json:"topics" yaml:"topics"`
	Compression   string        `json:"compression" yaml:"compression"`
	RequiredAcks  string        `json:"required_acks" yaml:"required_acks"`
	FlushInterval time.Duration `json:"flush_interval" yaml:"flush_interval"`
	BatchSize     int           `json:"batch_size" yaml:"batch_size"`
	MaxRetries    int           `json:"max_retries" yaml:"max_retries"`
	RetryBackoff  time.Duration `json:"retry_backoff" yaml:"retry_backoff"`
}

// DefaultConfig returns a streamer configuration with sane defaults.
func DefaultConfig() *Config {
	return &Config{
		Topics:        DefaultTopics(),
		Compression:   "snappy",
		RequiredAcks:  "all",
		FlushInterval: 100 * time.Millisecond,
		BatchSize:     100,
		MaxRetries:    3,
		RetryBackoff:  100 * time.Millisecond,
	}
}
