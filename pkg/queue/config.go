package queue

import (
	"fmt"
	"time"
)

// Config holds the configuration for the task queue
type Config struct {
	// Concurrency is the worker count ProcessAll uses when called with concurrency <= 0.
	Concurrency int `env:"QUEUE_CONCURRENCY" envDefault:"4"`
	// NormalBias is the probability that a ProcessNext call serves the normal
	// tier when it is non-empty and the urgent tier is empty.
	NormalBias float64 `env:"QUEUE_NORMAL_BIAS" envDefault:"0.8"`

	MaxRetriesUrgent     int `env:"QUEUE_MAX_RETRIES_URGENT" envDefault:"10"`
	MaxRetriesNormal     int `env:"QUEUE_MAX_RETRIES_NORMAL" envDefault:"5"`
	MaxRetriesBackground int `env:"QUEUE_MAX_RETRIES_BACKGROUND" envDefault:"3"`

	BackoffBase time.Duration `env:"QUEUE_BACKOFF_BASE" envDefault:"1s"`
	BackoffMax  time.Duration `env:"QUEUE_BACKOFF_MAX" envDefault:"60s"`

	// MaxDepth caps queued items (tiers plus scheduled retries). Zero means unlimited.
	MaxDepth int `env:"QUEUE_MAX_DEPTH" envDefault:"0"`
	// ExecutionTimeout bounds a single executor call. Zero disables the limit.
	ExecutionTimeout time.Duration `env:"QUEUE_EXECUTION_TIMEOUT" envDefault:"0s"`
}

// DefaultConfig returns the same values as the env defaults.
func DefaultConfig() Config {
	return Config{
		Concurrency:          4,
		NormalBias:           0.8,
		MaxRetriesUrgent:     10,
		MaxRetriesNormal:     5,
		MaxRetriesBackground: 3,
		BackoffBase:          DefaultBackoffBase,
		BackoffMax:           DefaultBackoffMax,
	}
}

// Validate reports the first invalid field wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.Concurrency < 1:
		return fmt.Errorf("%w: concurrency must be >= 1, got %d", ErrInvalidConfig, c.Concurrency)
	case c.NormalBias < 0 || c.NormalBias > 1:
		return fmt.Errorf("%w: normal bias must be within [0, 1], got %v", ErrInvalidConfig, c.NormalBias)
	case c.MaxRetriesUrgent < 1 || c.MaxRetriesNormal < 1 || c.MaxRetriesBackground < 1:
		return fmt.Errorf("%w: max retries must be >= 1 for every tier", ErrInvalidConfig)
	case c.BackoffBase <= 0:
		return fmt.Errorf("%w: backoff base must be positive", ErrInvalidConfig)
	case c.BackoffMax < c.BackoffBase:
		return fmt.Errorf("%w: backoff max %s is below base %s", ErrInvalidConfig, c.BackoffMax, c.BackoffBase)
	case c.MaxDepth < 0:
		return fmt.Errorf("%w: max depth cannot be negative", ErrInvalidConfig)
	case c.ExecutionTimeout < 0:
		return fmt.Errorf("%w: execution timeout cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// MaxRetries returns the retry ceiling of a tier.
func (c Config) MaxRetries(p Priority) int {
	switch p {
	case PriorityUrgent:
		return c.MaxRetriesUrgent
	case PriorityNormal:
		return c.MaxRetriesNormal
	default:
		return c.MaxRetriesBackground
	}
}
