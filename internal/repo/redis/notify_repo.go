package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// NotifyRepo fans out conversation events over redis pub/sub. Delivery is
// best effort: a subscriber that was not listening when an event fired
// catches up from storage instead.
type NotifyRepo struct {
	client *goredis.Client
}

func NewNotifyRepo(client *goredis.Client) *NotifyRepo {
	return &NotifyRepo{client: client}
}

func matchChannel(matchID int64) string {
	return fmt.Sprintf("match:%d:messages", matchID)
}

func (r *NotifyRepo) PublishMessage(ctx context.Context, matchID int64, payload []byte) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if matchID <= 0 || len(payload) == 0 {
		return fmt.Errorf("invalid notify payload")
	}

	if err := r.client.Publish(ctx, matchChannel(matchID), payload).Err(); err != nil {
		return fmt.Errorf("publish message event: %w", err)
	}

	return nil
}

// SubscribeMessages opens a subscription for one match's events. The caller
// owns the returned channel's lifetime through the cancel function.
func (r *NotifyRepo) SubscribeMessages(ctx context.Context, matchID int64) (<-chan []byte, func(), error) {
	if r.client == nil {
		return nil, nil, fmt.Errorf("redis client is nil")
	}
	if matchID <= 0 {
		return nil, nil, fmt.Errorf("invalid match id")
	}

	sub := r.client.Subscribe(ctx, matchChannel(matchID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("subscribe to match channel: %w", err)
	}

	out := make(chan []byte, 16)
	go func() {
		defer close(out)
		for msg := range sub.Channel(goredis.WithChannelSize(16)) {
			select {
			case out <- []byte(msg.Payload):
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() {
		_ = sub.Close()
	}

	return out, cancel, nil
}
