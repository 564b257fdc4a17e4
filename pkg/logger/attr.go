package logger

import (
	"log/slog"
	"time"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// ItemID records the queue item identifier under the key "item_id".
func ItemID(id string) slog.Attr {
	return slog.String("item_id", id)
}

// Tier records the priority tier under the key "tier".
func Tier[S ~string](tier S) slog.Attr {
	return slog.String("tier", string(tier))
}

// ErrorKind records a classified failure kind under the key "error_kind".
func ErrorKind[S ~string](kind S) slog.Attr {
	return slog.String("error_kind", string(kind))
}

// RetryCount records the retry count under the key "retry_count".
func RetryCount(count int) slog.Attr {
	return slog.Int("retry_count", count)
}

// Duration records how long an attempt took under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Delay records a backoff delay under the key "delay".
func Delay(d time.Duration) slog.Attr {
	return slog.Duration("delay", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// WorkerID records the draining worker index under the key "worker_id".
func WorkerID(id int) slog.Attr {
	return slog.Int("worker_id", id)
}

// Count records a generic count under the key "count".
func Count(n int) slog.Attr {
	return slog.Int("count", n)
}
