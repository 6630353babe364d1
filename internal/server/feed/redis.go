package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/redis/go-redis/v9"
)

type changeEvent struct {
	OwnerID string `json:"owner_id"`
}

// RedisRelay is a Feed shared by several server instances. Publish goes to a
// Redis pub/sub channel; Start relays every message on that channel to the
// local Broker, which serves Subscribe.
type RedisRelay struct {
	rc      *redis.Client
	channel string
	local   *Broker
	logger  logging.Logger
}

func NewRedisRelay(rc *redis.Client, channel string, logger logging.Logger) *RedisRelay {
	return &RedisRelay{
		rc:      rc,
		channel: channel,
		local:   NewBroker(),
		logger:  logger.With("module", "feed_redis"),
	}
}

// NewRedisClient builds a client from a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func (r *RedisRelay) Publish(ctx context.Context, ownerID string) error {
	data, err := json.Marshal(changeEvent{OwnerID: ownerID})
	if err != nil {
		return err
	}
	if err := r.rc.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (r *RedisRelay) Subscribe(ownerID string) (<-chan struct{}, func()) {
	return r.local.Subscribe(ownerID)
}

// Start subscribes to the channel and returns once Redis has confirmed the
// subscription. Relaying continues in the background until ctx is done.
func (r *RedisRelay) Start(ctx context.Context) error {
	sub := r.rc.Subscribe(ctx, r.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go r.relay(ctx, sub)
	return nil
}

func (r *RedisRelay) relay(ctx context.Context, sub *redis.PubSub) {
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				r.logger.Error(ctx, "pubsub channel closed")
				return
			}
			var ev changeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil || ev.OwnerID == "" {
				r.logger.Warn(ctx, "unable to parse change event", "payload", msg.Payload)
				continue
			}
			_ = r.local.Publish(ctx, ev.OwnerID)
		}
	}
}
