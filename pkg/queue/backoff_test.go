package queue_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/taskqueue/pkg/queue"
)

func TestBackoff_Delay(t *testing.T) {
	t.Parallel()

	b := queue.Backoff{Base: time.Second, Max: 60 * time.Second}

	tests := []struct {
		name    string
		retries int
		kind    queue.ErrorKind
		want    time.Duration
	}{
		{"rate limit first", 1, queue.ErrorKindRateLimit, 5 * time.Second},
		{"rate limit second", 2, queue.ErrorKindRateLimit, 10 * time.Second},
		{"server first", 1, queue.ErrorKindServer, 3 * time.Second},
		{"server second", 2, queue.ErrorKindServer, 6 * time.Second},
		{"network third", 3, queue.ErrorKindNetwork, 8 * time.Second},
		{"unknown fourth", 4, queue.ErrorKindUnknown, 16 * time.Second},
		{"capped", 6, queue.ErrorKindServer, 60 * time.Second},
		{"large retry count capped", 64, queue.ErrorKindRateLimit, 60 * time.Second},
		{"invalid never retried", 1, queue.ErrorKindInvalid, 0},
		{"unrecognised kind uses unknown", 2, "mystery", 4 * time.Second},
		{"zero retries treated as first", 0, queue.ErrorKindNetwork, 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, b.Delay(tt.retries, tt.kind))
		})
	}
}

func TestBackoff_ZeroValueUsesDefaults(t *testing.T) {
	t.Parallel()

	var b queue.Backoff
	assert.Equal(t, 3*queue.DefaultBackoffBase, b.Delay(1, queue.ErrorKindServer))
	assert.Equal(t, queue.DefaultBackoffMax, b.Delay(10, queue.ErrorKindServer))
}

func TestBackoff_CustomBounds(t *testing.T) {
	t.Parallel()

	b := queue.Backoff{Base: 100 * time.Millisecond, Max: time.Second}
	assert.Equal(t, 200*time.Millisecond, b.Delay(1, queue.ErrorKindNetwork))
	assert.Equal(t, 800*time.Millisecond, b.Delay(3, queue.ErrorKindNetwork))
	assert.Equal(t, time.Second, b.Delay(4, queue.ErrorKindNetwork))
}
