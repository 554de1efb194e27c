package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/IBM/sarama"
)

// KafkaStreamer publishes finding events to Kafka through sarama's async
// producer for non-blocking publishing.
type KafkaStreamer struct {
	producer sarama.AsyncProducer
	router   *TopicRouter
	config   *Config
	mu       sync.RWMutex
	closed   bool
	errCh    chan error
	wg       sync.WaitGroup
}

var _ Streamer = (*KafkaStreamer)(nil)

// NewKafkaStreamer connects to the configured brokers and starts an async
// producer.
func NewKafkaStreamer(config *Config) (*KafkaStreamer, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if len(config.Brokers) == 0 {
		return nil, errors.New("at least one Kafka broker is required")
	}

	producer, err := sarama.NewAsyncProducer(config.Brokers, buildSaramaConfig(config))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return newKafkaStreamer(producer, config), nil
}

// NewKafkaStreamerWithProducer creates a KafkaStreamer with an injected
// producer. This is primarily useful for testing with sarama/mocks.
func NewKafkaStreamerWithProducer(producer sarama.AsyncProducer, config *Config) *KafkaStreamer {
	if config == nil {
		config = DefaultConfig()
	}
	return newKafkaStreamer(producer, config)
}

func newKafkaStreamer(producer sarama.AsyncProducer, config *Config) *KafkaStreamer {
	ks := &KafkaStreamer{
		producer: producer,
		router:   NewTopicRouter(config.Topics),
		config:   config,
		errCh:    make(chan error, 100),
	}
	ks.wg.Add(2)
	go ks.handleSuccesses()
	go ks.handleErrors()
	return ks
}

// Stream publishes events to Kafka topics based on routing rules. Messages
// are keyed by scan id so one scan's events stay ordered within a partition.
func (ks *KafkaStreamer) Stream(ctx context.Context, events []Event) error {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	if ks.closed {
		return ErrStreamerClosed
	}

	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", event.ID, err)
		}

		for _, topic := range ks.router.Route(event) {
			msg := &sarama.ProducerMessage{
				Topic: topic,
				Key:   sarama.StringEncoder(event.ScanID),
				Value: sarama.ByteEncoder(data),
			}

			select {
			case ks.producer.Input() <- msg:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

// Close flushes pending messages and closes the Kafka producer.
func (ks *KafkaStreamer) Close() error {
	ks.mu.Lock()
	if ks.closed {
		ks.mu.Unlock()
		return nil
	}
	ks.closed = true
	ks.mu.Unlock()

	ks.producer.AsyncClose()
	ks.wg.Wait()
	return nil
}

// Errors returns a channel of non-fatal errors encountered during publishing.
func (ks *KafkaStreamer) Errors() <-chan error {
	return ks.errCh
}

func (ks *KafkaStreamer) handleSuccesses() {
	defer ks.wg.Done()
	for range ks.producer.Successes() {
	}
}

func (ks *KafkaStreamer) handleErrors() {
	defer ks.wg.Done()
	for err := range ks.producer.Errors() {
		if err != nil {
			select {
			case ks.errCh <- fmt.Errorf("kafka produce error on topic %s: %w", err.Msg.Topic, err.Err):
			default:
				// Error channel full; drop to avoid blocking the producer.
			}
		}
	}
}

func buildSaramaConfig(config *Config) *sarama.Config {
	sc := sarama.NewConfig()
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true

	if config.FlushInterval > 0 {
		sc.Producer.Flush.Frequency = config.FlushInterval
	}
	if config.BatchSize > 0 {
		sc.Producer.Flush.Messages = config.BatchSize
	}

	switch config.Compression {
	case "gzip":
		sc.Producer.Compression = sarama.CompressionGZIP
	case "snappy":
		sc.Producer.Compression = sarama.CompressionSnappy
	case "lz4":
		sc.Producer.Compression = sarama.CompressionLZ4
	default:
		sc.Producer.Compression = sarama.CompressionNone
	}

	switch config.RequiredAcks {
	case "none":
		sc.Producer.RequiredAcks = sarama.NoResponse
	case "leader":
		sc.Producer.RequiredAcks = sarama.WaitForLocal
	default:
		sc.Producer.RequiredAcks = sarama.WaitForAll
	}

	if config.MaxRetries > 0 {
		sc.Producer.Retry.Max = config.MaxRetries
	}
	if config.RetryBackoff > 0 {
		sc.Producer.Retry.Backoff = config.RetryBackoff
	}
	return sc
}
