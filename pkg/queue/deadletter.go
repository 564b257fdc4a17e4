package queue

import (
	"cmp"
	"slices"
	"time"
)

// DeadLetterItem is an item that exhausted its retries or failed with a
// non-retryable error. It stays here until replayed or cleared.
type DeadLetterItem[T any] struct {
	Item[T]
	FailedAt   time.Time `json:"failed_at"`
	ErrorType  ErrorKind `json:"error_type"`
	FinalError string    `json:"final_error"`
}

// deadLetterStore is keyed by item id. Callers hold the queue lock.
type deadLetterStore[T any] struct {
	items map[string]*DeadLetterItem[T]
}

func newDeadLetterStore[T any]() *deadLetterStore[T] {
	return &deadLetterStore[T]{items: make(map[string]*DeadLetterItem[T])}
}

func (s *deadLetterStore[T]) add(item *Item[T], failedAt time.Time, kind ErrorKind) *DeadLetterItem[T] {
	dl := &DeadLetterItem[T]{
		Item:       item.clone(),
		FailedAt:   failedAt,
		ErrorType:  kind,
		FinalError: item.Error,
	}
	s.items[item.ID] = dl
	return dl
}

// take removes and returns the entry for id.
func (s *deadLetterStore[T]) take(id string) (*DeadLetterItem[T], bool) {
	dl, ok := s.items[id]
	if ok {
		delete(s.items, id)
	}
	return dl, ok
}

// list returns copies ordered by failure time, then id.
func (s *deadLetterStore[T]) list() []DeadLetterItem[T] {
	out := make([]DeadLetterItem[T], 0, len(s.items))
	for _, dl := range s.items {
		c := *dl
		c.Item = dl.Item.clone()
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b DeadLetterItem[T]) int {
		if c := a.FailedAt.Compare(b.FailedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func (s *deadLetterStore[T]) clear() int {
	n := len(s.items)
	clear(s.items)
	return n
}

func (s *deadLetterStore[T]) len() int {
	return len(s.items)
}
