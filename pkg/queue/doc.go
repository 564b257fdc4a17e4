// Package queue provides an in-memory priority task queue with error-classified
// retries, exponential backoff and a dead-letter lane with manual replay.
//
// Work items carry an opaque payload of type T and are executed by a
// caller-supplied Executor. The queue knows nothing about what the work is.
//
// # Tiers and selection
//
// Items live in one of three tiers, each backed by a min-heap with a FIFO
// tie-break:
//
//   - urgent: always served first, up to 10 attempts
//   - normal: served with probability NormalBias (0.8) when urgent is empty, up to 5 attempts
//   - background: served otherwise, up to 3 attempts
//
// The normal/background split is a single Bernoulli draw per ProcessNext call,
// not weighted fair queueing. It keeps background work moving while strongly
// favouring normal traffic.
//
// # Failures
//
// A failed attempt is classified into an ErrorKind (rate_limit, network, server,
// invalid, unknown) by DefaultClassifier or a Classifier passed with
// WithClassifier. Invalid failures and items that reach their tier's retry
// ceiling go to dead-letter. Everything else is rescheduled after
//
//	min(1s * 2^(retries-1) * multiplier, 60s)
//
// with multipliers rate_limit 5, server 3, network 2, unknown 2. The delay runs
// on a timer, never on a worker. When the timer fires the item re-enters its
// tier with a penalty equal to its retry count, so a poison item cannot keep
// the head of its tier.
//
// # Usage
//
//	q, err := queue.New(func(ctx context.Context, it queue.Item[Upload]) error {
//	    return store.Put(ctx, it.Data)
//	}, queue.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//
//	id, _ := q.Enqueue(Upload{Path: "a.pdf"}, queue.WithPriority(queue.PriorityUrgent))
//	q.ProcessAll(ctx, 4)
//
//	for _, dl := range q.DeadLetterItems() {
//	    q.RetryDeadLetterItem(dl.ID)
//	}
//
// # Testing
//
// Clock and RandomSource are injectable (WithClock, WithRandomSource) so that
// backoff timers can run on virtual time and the tier draw can be fixed.
//
// # Error Handling
//
// Executor failures never reach ProcessNext or ProcessAll callers; they are
// visible through Metrics, DeadLetterItems and lifecycle events. Package-level
// sentinel errors (ErrInvalidPriority, ErrQueueFull, ...) can be checked with
// errors.Is.
package queue
