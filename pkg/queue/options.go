package queue

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/taskqueue/pkg/broadcast"
)

// Option is a functional option for configuring a Queue
type Option func(*options)

type options struct {
	cfg        Config
	classifier Classifier
	clock      Clock
	random     RandomSource
	logger     *slog.Logger
	events     broadcast.Broadcaster[Event]
}

// WithConfig replaces the whole configuration. It is validated by New.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithMaxDepth enables backpressure: Enqueue fails with ErrQueueFull once n items are queued.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		o.cfg.MaxDepth = n
	}
}

// WithExecutionTimeout bounds each executor call.
func WithExecutionTimeout(d time.Duration) Option {
	return func(o *options) {
		o.cfg.ExecutionTimeout = d
	}
}

// WithClassifier replaces DefaultClassifier entirely.
func WithClassifier(c Classifier) Option {
	return func(o *options) {
		if c != nil {
			o.classifier = c
		}
	}
}

// WithClock sets the time source used for timestamps and retry timers.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithRandomSource sets the generator behind the normal/background draw.
func WithRandomSource(r RandomSource) Option {
	return func(o *options) {
		if r != nil {
			o.random = r
		}
	}
}

// WithLogger sets the logger for the queue
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEventBroadcaster publishes lifecycle events to b. Events for a single item
// arrive in transition order. Broadcast runs while the queue lock is held, so b
// must not block or call back into the queue; MemoryBroadcaster never blocks.
func WithEventBroadcaster(b broadcast.Broadcaster[Event]) Option {
	return func(o *options) {
		o.events = b
	}
}

// EnqueueOption is a functional option for the Enqueue method
type EnqueueOption func(*enqueueOptions)

type enqueueOptions struct {
	priority Priority
	metadata map[string]any
}

// WithPriority sets the tier. Unknown values make Enqueue fail with ErrInvalidPriority.
func WithPriority(p Priority) EnqueueOption {
	return func(o *enqueueOptions) {
		o.priority = p
	}
}

// WithMetadata attaches caller-defined key/value pairs. Repeated calls merge.
func WithMetadata(md map[string]any) EnqueueOption {
	return func(o *enqueueOptions) {
		if len(md) == 0 {
			return
		}
		if o.metadata == nil {
			o.metadata = make(map[string]any, len(md))
		}
		for k, v := range md {
			o.metadata[k] = v
		}
	}
}
