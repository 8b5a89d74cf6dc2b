package infra

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects to the Redis instance backing the price-check cache and
// the receipt/alert job queues. The connection is pinged once so a bad URL
// surfaces at startup instead of on the first sale.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return client, nil
}
