package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/taskqueue/pkg/logger"
)

type tier string

func TestError(t *testing.T) {
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	empty := logger.Error(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestQueueAttrs(t *testing.T) {
	tests := []struct {
		name string
		attr slog.Attr
		key  string
		want any
	}{
		{"item id", logger.ItemID("abc"), "item_id", "abc"},
		{"tier", logger.Tier(tier("urgent")), "tier", "urgent"},
		{"error kind", logger.ErrorKind("server"), "error_kind", "server"},
		{"retry count", logger.RetryCount(3), "retry_count", int64(3)},
		{"duration", logger.Duration(time.Second), "duration", time.Second},
		{"delay", logger.Delay(3 * time.Second), "delay", 3 * time.Second},
		{"component", logger.Component("queue"), "component", "queue"},
		{"worker id", logger.WorkerID(2), "worker_id", int64(2)},
		{"count", logger.Count(5), "count", int64(5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.key, tt.attr.Key)
			assert.Equal(t, tt.want, tt.attr.Value.Any())
		})
	}
}
