package stream

import (
	"context"
	"errors"
	"sync"
)

// ErrStreamerClosed is returned when streaming to a closed streamer.
var ErrStreamerClosed = errors.New("streamer is closed")

// Callback is invoked for each event published to a topic.
type Callback func(topic string, event Event)

// LocalStreamer is an in-memory Streamer for library and test use. It routes
// events to topics and invokes callbacks for each published message, so no
// Kafka broker is required.
type LocalStreamer struct {
	router    *TopicRouter
	callbacks []Callback
	mu        sync.RWMutex
	closed    bool
}

var _ Streamer = (*LocalStreamer)(nil)

// NewLocalStreamer creates a local streamer over the given topics.
func NewLocalStreamer(topics Topics) *LocalStreamer {
	return &LocalStreamer{router: NewTopicRouter(topics)}
}

// OnPublish registers a callback invoked for each (topic, event) pair, in
// registration order.
func (s *LocalStreamer) OnPublish(cb Callback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, cb)
}

// Stream routes each event and invokes the registered callbacks.
func (s *LocalStreamer) Stream(ctx context.Context, events []Event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStreamerClosed
	}

	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, topic := range s.router.Route(event) {
			for _, cb := range s.callbacks {
				cb(topic, event)
			}
		}
	}
	return nil
}

// Close marks the streamer as closed; later Stream calls fail with
// ErrStreamerClosed.
func (s *LocalStreamer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
