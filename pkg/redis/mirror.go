package redis

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/taskqueue/pkg/broadcast"
	"github.com/dmitrymomot/taskqueue/pkg/logger"
	"github.com/dmitrymomot/taskqueue/pkg/queue"
)

// DeadLetterMirror keeps a Redis hash in step with a queue's dead-letter lane,
// so operators can inspect failures from outside the process. The hash maps
// item id to the JSON-encoded dead_lettered event. Payload data is never
// written.
type DeadLetterMirror struct {
	client redis.UniversalClient
	key    string
	logger *slog.Logger
}

// MirrorOption configures a DeadLetterMirror.
type MirrorOption func(*DeadLetterMirror)

// WithMirrorLogger sets the logger used for write failures.
func WithMirrorLogger(l *slog.Logger) MirrorOption {
	return func(m *DeadLetterMirror) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewDeadLetterMirror creates a mirror writing to key.
func NewDeadLetterMirror(client redis.UniversalClient, key string, opts ...MirrorOption) *DeadLetterMirror {
	m := &DeadLetterMirror{
		client: client,
		key:    key,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(logger.Component("dead_letter_mirror"))
	return m
}

// Run applies events from sub until its channel closes or ctx is done.
// Write failures are logged and do not stop the loop.
//
// The mirror is best-effort: a broadcaster may drop events for a slow
// subscriber, and a dropped event leaves the hash out of step with the queue.
// Each newly observed drop is logged as a warning.
func (m *DeadLetterMirror) Run(ctx context.Context, sub broadcast.Subscriber[queue.Event]) error {
	ch := sub.Receive(ctx)
	var dropped uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				m.reportDropped(ctx, sub, &dropped)
				return nil
			}
			if err := m.Apply(ctx, msg.Data); err != nil {
				m.logger.ErrorContext(ctx, "dead letter mirror out of sync",
					logger.ItemID(msg.Data.ItemID),
					logger.Error(err))
			}
			m.reportDropped(ctx, sub, &dropped)
		}
	}
}

func (m *DeadLetterMirror) reportDropped(ctx context.Context, sub broadcast.Subscriber[queue.Event], seen *uint64) {
	total := sub.Dropped()
	if total <= *seen {
		return
	}
	m.logger.WarnContext(ctx, "dead letter mirror missed events, entries may be stale",
		logger.Count(int(total-*seen)),
		slog.Uint64("dropped_total", total))
	*seen = total
}

// Apply reflects a single event. Event types that do not touch dead-letter are ignored.
func (m *DeadLetterMirror) Apply(ctx context.Context, ev queue.Event) error {
	var err error
	switch ev.Type {
	case queue.EventDeadLettered:
		var raw []byte
		if raw, err = json.Marshal(ev); err != nil {
			return errors.Join(ErrMirrorWrite, err)
		}
		err = m.client.HSet(ctx, m.key, ev.ItemID, raw).Err()
	case queue.EventReplayed:
		err = m.client.HDel(ctx, m.key, ev.ItemID).Err()
	case queue.EventDeadLetterCleared:
		err = m.client.Del(ctx, m.key).Err()
	default:
		return nil
	}
	if err != nil {
		return errors.Join(ErrMirrorWrite, err)
	}
	return nil
}

// Entries returns the mirrored dead_lettered events, oldest first.
func (m *DeadLetterMirror) Entries(ctx context.Context) ([]queue.Event, error) {
	all, err := m.client.HGetAll(ctx, m.key).Result()
	if err != nil {
		return nil, errors.Join(ErrMirrorRead, err)
	}

	out := make([]queue.Event, 0, len(all))
	for id, raw := range all {
		var ev queue.Event
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			return nil, errors.Join(ErrMirrorRead, errors.New("malformed entry "+id), err)
		}
		out = append(out, ev)
	}
	slices.SortFunc(out, func(a, b queue.Event) int {
		if c := a.At.Compare(b.At); c != 0 {
			return c
		}
		return cmp.Compare(a.ItemID, b.ItemID)
	})
	return out, nil
}

// Len returns the number of mirrored entries.
func (m *DeadLetterMirror) Len(ctx context.Context) (int, error) {
	n, err := m.client.HLen(ctx, m.key).Result()
	if err != nil {
		return 0, errors.Join(ErrMirrorRead, err)
	}
	return int(n), nil
}
