package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OpenRedis connects to the redis instance backing short code storage,
// pinging it once to fail fast on a bad address.
func OpenRedis(addr string, database int) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   database,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("db.OpenRedis: %w", err)
	}

	return client, nil
}
