// Package broadcast provides typed, non-blocking one-to-many message delivery.
//
// The task queue publishes its lifecycle events (enqueued, retry scheduled,
// dead-lettered, ...) through a Broadcaster so that dashboards, SSE endpoints or
// the Redis dead-letter mirror can observe it without slowing workers down.
//
//	events := broadcast.NewMemoryBroadcaster[queue.Event](256)
//	defer events.Close()
//
//	sub := events.Subscribe(ctx)
//	for msg := range sub.Receive(ctx) {
//		fmt.Println(msg.Data.Type, msg.Data.ItemID)
//	}
//
// A subscriber whose buffer is full loses the message (counted by Dropped) but
// stays subscribed. Subscriptions end when their context is done, when the
// subscriber is closed, or when the broadcaster is closed.
package broadcast
