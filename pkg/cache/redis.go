package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(addr, password string, db, poolSize, minIdleConns int) *RedisClient {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     poolSize,
		MinIdleConns: minIdleConns,
	})

	return &RedisClient{client: client}
}

func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisClient) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

func (r *RedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

func (r *RedisClient) Delete(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

// Publish pushes a message onto a pub/sub channel; delivery of notification
// events to live subscribers rides on this.
func (r *RedisClient) Publish(ctx context.Context, channel string, payload interface{}) error {
	return r.client.Publish(ctx, channel, payload).Err()
}

// Subscription is an open pub/sub subscription. The caller owns the handle
// and must Close it.
type Subscription interface {
	Messages() <-chan *redis.Message
	Close() error
}

type pubSubSubscription struct {
	pubsub *redis.PubSub
}

func (s *pubSubSubscription) Messages() <-chan *redis.Message {
	return s.pubsub.Channel()
}

func (s *pubSubSubscription) Close() error {
	return s.pubsub.Close()
}

func (r *RedisClient) Subscribe(ctx context.Context, channels ...string) Subscription {
	return &pubSubSubscription{pubsub: r.client.Subscribe(ctx, channels...)}
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
