package redis_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/taskqueue/pkg/broadcast"
	"github.com/dmitrymomot/taskqueue/pkg/queue"
	"github.com/dmitrymomot/taskqueue/pkg/redis"
)

func TestConnect_Errors(t *testing.T) {
	t.Parallel()

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Connect(context.Background(), redis.Config{})
		assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)
	})

	t.Run("malformed url", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Connect(context.Background(), redis.Config{ConnectionURL: "mysql://nope"})
		assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)
	})

	t.Run("unreachable", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Connect(context.Background(), redis.Config{
			ConnectionURL:  "redis://127.0.0.1:1/0",
			RetryAttempts:  2,
			RetryInterval:  10 * time.Millisecond,
			ConnectTimeout: time.Second,
		})
		assert.ErrorIs(t, err, redis.ErrRedisNotReady)
	})
}

func connectOrSkip(t *testing.T) *redis.DeadLetterMirror {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	client, err := redis.Connect(context.Background(), redis.Config{
		ConnectionURL:  url,
		RetryAttempts:  1,
		ConnectTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	require.NoError(t, redis.Healthcheck(client)(context.Background()))

	key := "taskqueue:test:" + t.Name()
	t.Cleanup(func() {
		_ = client.Del(context.Background(), key).Err()
		_ = client.Close()
	})
	return redis.NewDeadLetterMirror(client, key)
}

func TestDeadLetterMirror_Apply(t *testing.T) {
	mirror := connectOrSkip(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, mirror.Apply(ctx, queue.Event{Type: queue.EventEnqueued, ItemID: "ignored"}))
	require.NoError(t, mirror.Apply(ctx, queue.Event{
		Type: queue.EventDeadLettered, ItemID: "b", Priority: queue.PriorityBackground,
		ErrorKind: queue.ErrorKindServer, Error: "Server error", RetryCount: 3, At: at.Add(time.Second),
	}))
	require.NoError(t, mirror.Apply(ctx, queue.Event{
		Type: queue.EventDeadLettered, ItemID: "a", Priority: queue.PriorityNormal,
		ErrorKind: queue.ErrorKindInvalid, Error: "Invalid", RetryCount: 1, At: at,
	}))

	entries, err := mirror.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].ItemID)
	assert.Equal(t, queue.ErrorKindInvalid, entries[0].ErrorKind)
	assert.Equal(t, "b", entries[1].ItemID)
	assert.Equal(t, 3, entries[1].RetryCount)

	require.NoError(t, mirror.Apply(ctx, queue.Event{Type: queue.EventReplayed, ItemID: "a"}))
	n, err := mirror.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, mirror.Apply(ctx, queue.Event{Type: queue.EventDeadLetterCleared, Count: 1}))
	n, err = mirror.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeadLetterMirror_RunFollowsQueue(t *testing.T) {
	mirror := connectOrSkip(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := broadcast.NewMemoryBroadcaster[queue.Event](64)
	sub := events.Subscribe(ctx)

	done := make(chan error, 1)
	go func() { done <- mirror.Run(ctx, sub) }()

	q, err := queue.New(func(context.Context, queue.Item[string]) error {
		return queue.Permanent(assert.AnError)
	}, queue.WithEventBroadcaster(events))
	require.NoError(t, err)
	defer q.Stop()

	id, err := q.Enqueue("payload", queue.WithPriority(queue.PriorityUrgent))
	require.NoError(t, err)
	require.True(t, q.ProcessNext(ctx))

	require.Eventually(t, func() bool {
		entries, err := mirror.Entries(ctx)
		return err == nil && len(entries) == 1 && entries[0].ItemID == id
	}, 2*time.Second, 10*time.Millisecond)

	require.True(t, q.RetryDeadLetterItem(id))
	require.Eventually(t, func() bool {
		n, err := mirror.Len(ctx)
		return err == nil && n == 0
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, events.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("mirror did not stop after the broadcaster closed")
	}
}

type stubSubscriber struct {
	ch      chan broadcast.Message[queue.Event]
	dropped atomic.Uint64
}

func (s *stubSubscriber) Receive(context.Context) <-chan broadcast.Message[queue.Event] {
	return s.ch
}

func (s *stubSubscriber) Dropped() uint64 { return s.dropped.Load() }

func (s *stubSubscriber) Close() error { return nil }

func TestDeadLetterMirror_RunReportsDroppedEvents(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	// Events that do not touch dead-letter never reach Redis, so no client is needed.
	mirror := redis.NewDeadLetterMirror(nil, "unused", redis.WithMirrorLogger(log))

	sub := &stubSubscriber{ch: make(chan broadcast.Message[queue.Event], 2)}
	sub.dropped.Store(3)
	sub.ch <- broadcast.Message[queue.Event]{Data: queue.Event{Type: queue.EventEnqueued, ItemID: "a"}}
	sub.ch <- broadcast.Message[queue.Event]{Data: queue.Event{Type: queue.EventSucceeded, ItemID: "a"}}
	close(sub.ch)

	require.NoError(t, mirror.Run(context.Background(), sub))

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "dead letter mirror missed events"), out)
	assert.Contains(t, out, "count=3")
	assert.Contains(t, out, "dropped_total=3")
}
