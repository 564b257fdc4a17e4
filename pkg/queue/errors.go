package queue

import "errors"

var (
	// ErrExecutorNil is returned when a nil executor is provided
	ErrExecutorNil = errors.New("executor cannot be nil")

	// ErrInvalidPriority is returned when priority is not urgent, normal or background
	ErrInvalidPriority = errors.New("priority must be urgent, normal or background")

	// ErrQueueFull is returned when MaxDepth is set and reached
	ErrQueueFull = errors.New("queue is full")

	// ErrQueueStopped is returned when enqueueing after Stop
	ErrQueueStopped = errors.New("queue is stopped")

	// ErrInvalidConfig is returned when the queue configuration fails validation
	ErrInvalidConfig = errors.New("invalid queue configuration")
)
