// Command queued runs a simulated document-ingestion workload through the
// task queue: uploads go to the urgent tier, embeddings to normal and
// re-indexing to background. Executors fail at a configurable rate with
// realistic error messages so the retry and dead-letter paths are exercised.
//
// All settings come from the environment (or a .env file). Setting REDIS_URL
// mirrors dead-letter entries into Redis.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrymomot/taskqueue/pkg/broadcast"
	"github.com/dmitrymomot/taskqueue/pkg/config"
	"github.com/dmitrymomot/taskqueue/pkg/logger"
	"github.com/dmitrymomot/taskqueue/pkg/queue"
	"github.com/dmitrymomot/taskqueue/pkg/redis"
)

type settings struct {
	Queue queue.Config
	Log   logger.Config
	Redis redis.Config
	Demo  demoConfig
}

type demoConfig struct {
	Items        int           `env:"QUEUED_ITEMS" envDefault:"100"`
	FailureRate  float64       `env:"QUEUED_FAILURE_RATE" envDefault:"0.2"`
	WorkDuration time.Duration `env:"QUEUED_WORK_DURATION" envDefault:"20ms"`
	ReplayDead   bool          `env:"QUEUED_REPLAY_DEAD" envDefault:"false"`
	PollInterval time.Duration `env:"QUEUED_POLL_INTERVAL" envDefault:"100ms"`
}

type document struct {
	Name string
	Kind string
}

var simulatedFailures = []string{
	"rate limit exceeded",
	"network timeout while fetching object",
	"500 internal server error",
	"invalid file format",
	"unexpected EOF",
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var cfg settings
	if err := config.Load(&cfg); err != nil {
		return err
	}

	logOpt, err := logger.FromConfig(cfg.Log)
	if err != nil {
		return err
	}
	log := logger.New(logOpt, logger.WithContextExtractors(logger.WorkerIDExtractor))
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events := broadcast.NewMemoryBroadcaster[queue.Event](1024)
	defer events.Close()

	var wg sync.WaitGroup
	if cfg.Redis.Enabled() {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()

		mirror := redis.NewDeadLetterMirror(client, cfg.Redis.DeadLetterKey, redis.WithMirrorLogger(log))
		sub := events.Subscribe(ctx)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := mirror.Run(ctx, sub); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("dead letter mirror stopped", logger.Error(err))
			}
		}()
		log.Info("mirroring dead letter queue to redis", slog.String("key", cfg.Redis.DeadLetterKey))
	}

	q, err := queue.New(simulate(cfg.Demo),
		queue.WithConfig(cfg.Queue),
		queue.WithLogger(log),
		queue.WithEventBroadcaster(events),
	)
	if err != nil {
		return err
	}
	defer q.Stop()

	if err := seed(q, cfg.Demo.Items); err != nil {
		return err
	}

	drain(ctx, q, cfg.Queue.Concurrency, cfg.Demo.PollInterval)

	if cfg.Demo.ReplayDead {
		replayed := 0
		for _, dl := range q.DeadLetterItems() {
			if q.RetryDeadLetterItem(dl.ID) {
				replayed++
			}
		}
		log.Info("dead letter items replayed", logger.Count(replayed))
		drain(ctx, q, cfg.Queue.Concurrency, cfg.Demo.PollInterval)
	}

	m := q.Metrics()
	log.Info("run finished",
		slog.Int64("succeeded", m.SuccessCount),
		slog.Int64("failed", m.FailureCount),
		slog.Int("dead", m.Dead),
		slog.Float64("avg_processing_ms", m.AvgProcessingTime))

	q.Stop()
	_ = events.Close()
	wg.Wait()

	return nil
}

func seed(q *queue.Queue[document], n int) error {
	for i := range n {
		doc := document{Name: fmt.Sprintf("doc-%04d.pdf", i)}
		var p queue.Priority
		switch i % 10 {
		case 0:
			doc.Kind, p = "upload", queue.PriorityUrgent
		case 1, 2:
			doc.Kind, p = "reindex", queue.PriorityBackground
		default:
			doc.Kind, p = "embedding", queue.PriorityNormal
		}
		if _, err := q.Enqueue(doc,
			queue.WithPriority(p),
			queue.WithMetadata(map[string]any{"kind": doc.Kind}),
		); err != nil {
			return err
		}
	}
	return nil
}

// drain keeps running workers until nothing is queued, in flight or waiting
// on a retry timer.
func drain(ctx context.Context, q *queue.Queue[document], concurrency int, poll time.Duration) {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		q.ProcessAll(ctx, concurrency)
		if q.IsEmpty() && q.QueueSizes().Scheduled == 0 {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func simulate(cfg demoConfig) queue.Executor[document] {
	return func(ctx context.Context, it queue.Item[document]) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.WorkDuration):
		}

		if rand.Float64() < cfg.FailureRate {
			msg := simulatedFailures[rand.IntN(len(simulatedFailures))]
			return fmt.Errorf("%s %s: %s", it.Data.Kind, it.Data.Name, msg)
		}
		return nil
	}
}
