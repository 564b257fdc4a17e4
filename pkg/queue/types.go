package queue

import (
	"context"
	"maps"
	"time"
)

// Priority is one of the three fixed scheduling tiers.
type Priority string

const (
	PriorityUrgent     Priority = "urgent"
	PriorityNormal     Priority = "normal"
	PriorityBackground Priority = "background"

	PriorityDefault = PriorityNormal
)

// tierOrder lists tiers from most to least important.
var tierOrder = [...]Priority{PriorityUrgent, PriorityNormal, PriorityBackground}

// Valid checks if the priority names a known tier
func (p Priority) Valid() bool {
	switch p {
	case PriorityUrgent, PriorityNormal, PriorityBackground:
		return true
	}
	return false
}

// rank is the heap base priority of the tier; lower runs first.
func (p Priority) rank() int64 {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityNormal:
		return 1
	default:
		return 2
	}
}

// Item is a unit of scheduled work.
type Item[T any] struct {
	ID          string         `json:"id"`
	Data        T              `json:"data"`
	Priority    Priority       `json:"priority"`
	RetryCount  int            `json:"retry_count"`
	AddedAt     time.Time      `json:"added_at"`
	LastAttempt *time.Time     `json:"last_attempt,omitempty"`
	Error       string         `json:"error,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// clone returns a copy that shares no mutable state with the queue.
func (it *Item[T]) clone() Item[T] {
	c := *it
	if it.LastAttempt != nil {
		at := *it.LastAttempt
		c.LastAttempt = &at
	}
	c.Metadata = maps.Clone(it.Metadata)
	return c
}

// Executor runs a single item. A returned error (or a panic) counts as a failed
// attempt. Retried items are delivered whole again, so executors must tolerate
// repeated delivery of the same item id.
type Executor[T any] func(ctx context.Context, item Item[T]) error

// Sizes is a point-in-time count of items per location.
type Sizes struct {
	Urgent     int `json:"urgent"`
	Normal     int `json:"normal"`
	Background int `json:"background"`
	Dead       int `json:"dead"`
	Processing int `json:"processing"`
	// Scheduled counts failed items waiting out their backoff delay.
	Scheduled int `json:"scheduled"`
}

// Metrics is a read-only snapshot computed from live counters.
type Metrics struct {
	Sizes
	SuccessCount int64 `json:"success_count"`
	// FailureCount counts terminal failures only (items moved to dead-letter).
	FailureCount int64 `json:"failure_count"`
	// AvgProcessingTime is the mean duration of successful attempts in milliseconds.
	AvgProcessingTime float64 `json:"avg_processing_time_ms"`
}
