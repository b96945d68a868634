package realtime

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

type redisBus struct {
	client *redis.Client
}

// NewRedisBus builds a Bus over redis pub/sub. Reconnection after a
// transient network loss is go-redis's job; while disconnected the
// subscriber simply receives nothing.
func NewRedisBus(client *redis.Client) Bus {
	return &redisBus{client: client}
}

func (b *redisBus) Publish(ctx context.Context, ev OrderEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	// One event, two ownership scopes. Publish failures on one channel
	// do not block the other; a lost notification is healed by re-fetch.
	var firstErr error
	for _, f := range []Filter{StudentFilter(ev.New.StudentID), CanteenFilter(ev.New.CanteenID)} {
		if err := b.client.Publish(ctx, f.channel(), data).Err(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (b *redisBus) Subscribe(ctx context.Context, f Filter, h Handler) (*Subscription, error) {
	pubsub := b.client.Subscribe(ctx, f.channel())
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		ch := pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev OrderEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Printf("realtime: dropping malformed event on %s: %v", f.channel(), err)
					continue
				}
				h(ev)
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()

	return NewSubscription(func() {
		close(done)
		pubsub.Close()
	}), nil
}
