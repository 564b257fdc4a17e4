package queue

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/taskqueue/pkg/async"
	"github.com/dmitrymomot/taskqueue/pkg/broadcast"
	"github.com/dmitrymomot/taskqueue/pkg/logger"
	"github.com/dmitrymomot/taskqueue/pkg/minheap"
)

// Queue is an in-memory priority scheduler with retries and a dead-letter lane.
//
// An item is always in exactly one place: a tier heap, the scheduled-retry set,
// the in-flight set or the dead-letter store. It leaves the queue only when its
// executor succeeds or when it is cleared from dead-letter.
type Queue[T any] struct {
	exec     Executor[T]
	cfg      Config
	classify Classifier
	backoff  Backoff
	clock    Clock
	random   RandomSource
	logger   *slog.Logger
	events   broadcast.Broadcaster[Event]

	// mu guards everything below.
	mu        sync.Mutex
	tiers     [len(tierOrder)]*minheap.Heap[*Item[T]]
	inflight  map[string]*Item[T]
	scheduled map[string]*pendingRetry[T]
	dead      *deadLetterStore[T]
	stopped   bool

	successCount    int64
	failureCount    int64
	totalProcessing time.Duration
}

type pendingRetry[T any] struct {
	item *Item[T]
	stop func() bool
}

// New creates a queue that hands items to exec.
func New[T any](exec Executor[T], opts ...Option) (*Queue[T], error) {
	if exec == nil {
		return nil, ErrExecutorNil
	}

	options := &options{
		cfg:        DefaultConfig(),
		classifier: DefaultClassifier,
		clock:      SystemClock(),
		random:     defaultRandom(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	if err := options.cfg.Validate(); err != nil {
		return nil, err
	}

	q := &Queue[T]{
		exec:      exec,
		cfg:       options.cfg,
		classify:  options.classifier,
		backoff:   Backoff{Base: options.cfg.BackoffBase, Max: options.cfg.BackoffMax},
		clock:     options.clock,
		random:    options.random,
		logger:    options.logger.With(logger.Component("queue")),
		events:    options.events,
		inflight:  make(map[string]*Item[T]),
		scheduled: make(map[string]*pendingRetry[T]),
		dead:      newDeadLetterStore[T](),
	}
	for _, p := range tierOrder {
		q.tiers[p.rank()] = minheap.New(func(it *Item[T]) int64 { return it.Priority.rank() })
	}

	return q, nil
}

// Enqueue adds data to a tier (normal unless WithPriority says otherwise) and
// returns the generated item id. The item is visible to the next ProcessNext.
func (q *Queue[T]) Enqueue(data T, opts ...EnqueueOption) (string, error) {
	options := &enqueueOptions{priority: PriorityDefault}
	for _, opt := range opts {
		opt(options)
	}

	if !options.priority.Valid() {
		return "", ErrInvalidPriority
	}

	now := q.clock.Now()
	item := &Item[T]{
		ID:       uuid.NewString(),
		Data:     data,
		Priority: options.priority,
		AddedAt:  now,
		Metadata: options.metadata,
	}

	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return "", ErrQueueStopped
	}
	if q.cfg.MaxDepth > 0 && q.queuedLocked() >= q.cfg.MaxDepth {
		q.mu.Unlock()
		return "", fmt.Errorf("%w: %d items queued", ErrQueueFull, q.cfg.MaxDepth)
	}
	id, p := item.ID, item.Priority
	q.tier(p).Push(item, 0)
	q.publishLocked(itemEvent(EventEnqueued, item, now))
	q.mu.Unlock()

	q.logger.Debug("item enqueued",
		logger.ItemID(id),
		logger.Tier(p))

	return id, nil
}

// ProcessNext selects one item and runs it to completion.
//
// Selection: urgent always wins; otherwise normal is served when a single draw
// falls below NormalBias; otherwise background. It returns false when nothing
// was processed, which can happen while normal items remain if the draw failed
// and background is empty. Callers that need liveness call it repeatedly.
//
// Executor failures never surface here; they feed the retry and dead-letter
// machinery.
func (q *Queue[T]) ProcessNext(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}

	item, ok := q.claim()
	if !ok {
		return false
	}

	q.processItem(ctx, item)
	return true
}

// ProcessAll runs concurrency workers that each call ProcessNext until it
// returns false or ctx is done, then waits for all of them. Values <= 0 use
// Config.Concurrency. It returns the number of items processed.
func (q *Queue[T]) ProcessAll(ctx context.Context, concurrency int) int {
	if concurrency <= 0 {
		concurrency = q.cfg.Concurrency
	}

	futures := make([]*async.Future[int], 0, concurrency)
	for i := range concurrency {
		workerCtx := logger.WithWorkerIDContext(ctx, i)
		futures = append(futures, async.Async(workerCtx, i, q.drain))
	}

	counts, err := async.WaitAll(futures...)
	if err != nil {
		q.logger.DebugContext(ctx, "workers stopped early", logger.Error(err))
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}

func (q *Queue[T]) drain(ctx context.Context, _ int) (int, error) {
	processed := 0
	for q.ProcessNext(ctx) {
		processed++
	}
	return processed, nil
}

// Metrics returns a snapshot of sizes and counters.
func (q *Queue[T]) Metrics() Metrics {
	q.mu.Lock()
	defer q.mu.Unlock()

	m := Metrics{
		Sizes:        q.sizesLocked(),
		SuccessCount: q.successCount,
		FailureCount: q.failureCount,
	}
	if q.successCount > 0 {
		m.AvgProcessingTime = float64(q.totalProcessing) / float64(time.Millisecond) / float64(q.successCount)
	}
	return m
}

// QueueSizes returns the number of items in every location.
func (q *Queue[T]) QueueSizes() Sizes {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.sizesLocked()
}

// IsEmpty reports whether all tiers and the in-flight set are empty.
// Dead-letter items and scheduled retries do not count.
func (q *Queue[T]) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, h := range q.tiers {
		if !h.IsEmpty() {
			return false
		}
	}
	return len(q.inflight) == 0
}

// DeadLetterItems returns copies of every dead-letter entry, oldest failure first.
func (q *Queue[T]) DeadLetterItems() []DeadLetterItem[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dead.list()
}

// RetryDeadLetterItem moves a dead-letter entry back into the urgent tier with
// a fresh retry budget. It returns false if id is not in dead-letter.
func (q *Queue[T]) RetryDeadLetterItem(id string) bool {
	q.mu.Lock()
	dl, ok := q.dead.take(id)
	if !ok {
		q.mu.Unlock()
		return false
	}

	item := dl.Item.clone()
	item.Priority = PriorityUrgent
	item.RetryCount = 0
	item.Error = ""
	q.tier(PriorityUrgent).Push(&item, 0)
	q.publishLocked(itemEvent(EventReplayed, &item, q.clock.Now()))
	q.mu.Unlock()

	q.logger.Info("dead letter item replayed",
		logger.ItemID(id),
		logger.ErrorKind(dl.ErrorType))

	return true
}

// ClearDeadLetterQueue drops every dead-letter entry and returns how many were removed.
func (q *Queue[T]) ClearDeadLetterQueue() int {
	q.mu.Lock()
	n := q.dead.clear()
	q.publishLocked(Event{Type: EventDeadLetterCleared, Count: n, At: q.clock.Now()})
	q.mu.Unlock()

	if n > 0 {
		q.logger.Info("dead letter queue cleared", logger.Count(n))
	}

	return n
}

// Stop cancels every pending retry timer and puts those items back into their
// tiers at once. Afterwards Enqueue fails with ErrQueueStopped and ProcessNext
// returns false. Executors already running finish normally. Stop is idempotent.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true

	pending := make([]*pendingRetry[T], 0, len(q.scheduled))
	for _, pr := range q.scheduled {
		pending = append(pending, pr)
	}
	slices.SortFunc(pending, func(a, b *pendingRetry[T]) int {
		if c := a.item.AddedAt.Compare(b.item.AddedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.item.ID, b.item.ID)
	})
	for _, pr := range pending {
		pr.stop()
		delete(q.scheduled, pr.item.ID)
		q.requeueLocked(pr.item)
	}
	q.mu.Unlock()

	q.logger.Info("queue stopped", logger.Count(len(pending)))
}

// claim pops the next item per the tier policy and marks it in-flight.
func (q *Queue[T]) claim() (*Item[T], bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return nil, false
	}

	p, ok := q.selectTierLocked()
	if !ok {
		return nil, false
	}

	item, ok := q.tier(p).Pop()
	if !ok {
		return nil, false
	}

	now := q.clock.Now()
	item.LastAttempt = &now
	q.inflight[item.ID] = item

	return item, true
}

func (q *Queue[T]) selectTierLocked() (Priority, bool) {
	switch {
	case !q.tier(PriorityUrgent).IsEmpty():
		return PriorityUrgent, true
	case !q.tier(PriorityNormal).IsEmpty() && q.random.Float64() < q.cfg.NormalBias:
		return PriorityNormal, true
	case !q.tier(PriorityBackground).IsEmpty():
		return PriorityBackground, true
	}
	return "", false
}

func (q *Queue[T]) processItem(ctx context.Context, item *Item[T]) {
	start := q.clock.Now()
	err := q.execute(ctx, item.clone())
	elapsed := q.clock.Now().Sub(start)

	switch {
	case err == nil:
		q.handleSuccess(ctx, item, elapsed)
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		q.handleInterrupted(ctx, item, err)
	default:
		q.handleFailure(ctx, item, err)
	}
}

// execute runs the executor in a future so that panics become errors and a
// hung executor can be abandoned after ExecutionTimeout. Caller cancellation is
// passed to the executor through ctx and awaited, not abandoned.
func (q *Queue[T]) execute(ctx context.Context, item Item[T]) error {
	run := func(ctx context.Context, it Item[T]) (struct{}, error) {
		return struct{}{}, q.exec(ctx, it)
	}

	if q.cfg.ExecutionTimeout <= 0 {
		_, err := async.Async(ctx, item, run).Await()
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx, q.cfg.ExecutionTimeout)
	defer cancel()

	waitCtx, cancelWait := context.WithTimeout(context.Background(), q.cfg.ExecutionTimeout)
	defer cancelWait()

	_, err := async.Async(runCtx, item, run).AwaitContext(waitCtx)
	if err != nil && waitCtx.Err() != nil && ctx.Err() == nil {
		return fmt.Errorf("execution timed out after %s: %w", q.cfg.ExecutionTimeout, context.DeadlineExceeded)
	}
	return err
}

func (q *Queue[T]) handleSuccess(ctx context.Context, item *Item[T], elapsed time.Duration) {
	q.mu.Lock()
	delete(q.inflight, item.ID)
	q.successCount++
	q.totalProcessing += elapsed
	ev := itemEvent(EventSucceeded, item, q.clock.Now())
	ev.Duration = elapsed
	q.publishLocked(ev)
	q.mu.Unlock()

	q.logger.DebugContext(ctx, "item processed",
		logger.ItemID(ev.ItemID),
		logger.Tier(ev.Priority),
		logger.RetryCount(ev.RetryCount),
		logger.Duration(elapsed))
}

// handleInterrupted returns an item whose attempt was cut short by the caller's
// context. The attempt does not consume retry budget.
func (q *Queue[T]) handleInterrupted(ctx context.Context, item *Item[T], err error) {
	q.mu.Lock()
	id, p := item.ID, item.Priority
	delete(q.inflight, id)
	q.requeueLocked(item)
	q.mu.Unlock()

	q.logger.InfoContext(ctx, "attempt interrupted, item returned to its tier",
		logger.ItemID(id),
		logger.Tier(p),
		logger.Error(err))
}

// handleFailure classifies err and either schedules a retry or moves the item
// to dead-letter.
//
// Once the item is back in a tier or the scheduled set another worker may claim
// it, so everything logged or published is taken from a snapshot made under the
// lock.
func (q *Queue[T]) handleFailure(ctx context.Context, item *Item[T], err error) {
	kind := q.classify(err)
	if !kind.Valid() {
		kind = ErrorKindUnknown
	}
	now := q.clock.Now()

	q.mu.Lock()
	delete(q.inflight, item.ID)
	item.RetryCount++
	item.Error = err.Error()

	if item.RetryCount >= q.cfg.MaxRetries(item.Priority) || !kind.Retryable() {
		q.dead.add(item, now, kind)
		q.failureCount++
		ev := itemEvent(EventDeadLettered, item, now)
		ev.ErrorKind = kind
		q.publishLocked(ev)
		q.mu.Unlock()

		q.logger.ErrorContext(ctx, "item moved to dead letter queue",
			logger.ItemID(ev.ItemID),
			logger.Tier(ev.Priority),
			logger.ErrorKind(kind),
			logger.RetryCount(ev.RetryCount),
			logger.Error(err))
		return
	}

	delay := q.backoff.Delay(item.RetryCount, kind)
	ev := itemEvent(EventRetryScheduled, item, now)
	ev.ErrorKind = kind
	ev.Delay = delay

	if q.stopped {
		q.requeueLocked(item)
		q.mu.Unlock()

		q.logger.WarnContext(ctx, "attempt failed after stop, item returned to its tier",
			logger.ItemID(ev.ItemID),
			logger.ErrorKind(kind),
			logger.RetryCount(ev.RetryCount),
			logger.Error(err))
		return
	}
	q.publishLocked(ev)
	q.scheduleRetryLocked(item, delay)
	q.mu.Unlock()

	q.logger.WarnContext(ctx, "attempt failed, retry scheduled",
		logger.ItemID(ev.ItemID),
		logger.Tier(ev.Priority),
		logger.ErrorKind(kind),
		logger.RetryCount(ev.RetryCount),
		logger.Delay(delay),
		logger.Error(err))
}

// scheduleRetryLocked parks item until delay elapses. The timer never holds a
// worker; it only moves the item back into its tier.
func (q *Queue[T]) scheduleRetryLocked(item *Item[T], delay time.Duration) {
	pr := &pendingRetry[T]{item: item}
	q.scheduled[item.ID] = pr
	pr.stop = q.clock.AfterFunc(delay, func() { q.retryDue(pr) })
}

func (q *Queue[T]) retryDue(pr *pendingRetry[T]) {
	q.mu.Lock()
	if cur, ok := q.scheduled[pr.item.ID]; !ok || cur != pr {
		// Stop already moved it.
		q.mu.Unlock()
		return
	}
	id, p, retries := pr.item.ID, pr.item.Priority, pr.item.RetryCount
	delete(q.scheduled, id)
	q.requeueLocked(pr.item)
	q.mu.Unlock()

	q.logger.Debug("retry due, item requeued",
		logger.ItemID(id),
		logger.Tier(p),
		logger.RetryCount(retries))
}

// requeueLocked puts item back into its tier. Each past failure adds one to its
// effective priority so that repeatedly failing items sink below fresh ones.
func (q *Queue[T]) requeueLocked(item *Item[T]) {
	q.tier(item.Priority).Push(item, int64(item.RetryCount))
}

func (q *Queue[T]) tier(p Priority) *minheap.Heap[*Item[T]] {
	return q.tiers[p.rank()]
}

func (q *Queue[T]) queuedLocked() int {
	n := len(q.scheduled)
	for _, h := range q.tiers {
		n += h.Len()
	}
	return n
}

func (q *Queue[T]) sizesLocked() Sizes {
	return Sizes{
		Urgent:     q.tier(PriorityUrgent).Len(),
		Normal:     q.tier(PriorityNormal).Len(),
		Background: q.tier(PriorityBackground).Len(),
		Dead:       q.dead.len(),
		Processing: len(q.inflight),
		Scheduled:  len(q.scheduled),
	}
}
