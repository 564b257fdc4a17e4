package queue

import (
	"context"
	"time"

	"github.com/dmitrymomot/taskqueue/pkg/broadcast"
	"github.com/dmitrymomot/taskqueue/pkg/logger"
)

// EventType names a queue lifecycle transition.
type EventType string

const (
	EventEnqueued          EventType = "enqueued"
	EventSucceeded         EventType = "succeeded"
	EventRetryScheduled    EventType = "retry_scheduled"
	EventDeadLettered      EventType = "dead_lettered"
	EventReplayed          EventType = "replayed"
	EventDeadLetterCleared EventType = "dead_letter_cleared"
)

// Event describes a transition. Payload data is never included.
type Event struct {
	Type       EventType     `json:"type"`
	ItemID     string        `json:"item_id,omitempty"`
	Priority   Priority      `json:"priority,omitempty"`
	RetryCount int           `json:"retry_count"`
	ErrorKind  ErrorKind     `json:"error_kind,omitempty"`
	Error      string        `json:"error,omitempty"`
	Delay      time.Duration `json:"delay,omitempty"`
	Duration   time.Duration `json:"duration,omitempty"`
	Count      int           `json:"count,omitempty"`
	At         time.Time     `json:"at"`
}

func itemEvent[T any](typ EventType, item *Item[T], at time.Time) Event {
	return Event{
		Type:       typ,
		ItemID:     item.ID,
		Priority:   item.Priority,
		RetryCount: item.RetryCount,
		Error:      item.Error,
		At:         at,
	}
}

// publishLocked is called with q.mu held, so events for one item reach
// subscribers in the order its transitions happened.
func (q *Queue[T]) publishLocked(ev Event) {
	if q.events == nil {
		return
	}
	if err := q.events.Broadcast(context.Background(), broadcast.Message[Event]{Data: ev}); err != nil {
		q.logger.Debug("event not published",
			logger.ItemID(ev.ItemID),
			logger.Error(err))
	}
}
