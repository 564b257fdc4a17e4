// Package redis connects to Redis and mirrors a queue's dead-letter lane into it.
//
// Configuration is described by the Config struct whose fields are populated
// from environment variables via github.com/caarlos0/env. An empty REDIS_URL
// leaves Redis disabled.
//
// # Usage
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	events := broadcast.NewMemoryBroadcaster[queue.Event](256)
//	q, _ := queue.New(exec, queue.WithEventBroadcaster(events))
//
//	mirror := redis.NewDeadLetterMirror(client, cfg.DeadLetterKey)
//	go mirror.Run(ctx, events.Subscribe(ctx))
//
// The mirror is a best-effort read model. The queue itself stays authoritative
// and replays never read from Redis. Events dropped by the broadcaster for a
// slow subscriber are logged as warnings, since the hash can then be stale.
//
// # Errors
//
// Sentinel errors (ErrRedisNotReady, ErrMirrorWrite, ...) wrap the underlying
// go-redis errors using errors.Join, so errors.Is works on both.
package redis
