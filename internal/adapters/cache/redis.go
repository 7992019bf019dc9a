// Package cache owns the redis client shared by the repository cache
// decorators and the rate limiter.
package cache

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout  = 5 * time.Second
	readTimeout  = 3 * time.Second
	writeTimeout = 3 * time.Second
	pingTimeout  = 3 * time.Second
)

// NewRedisClient connects and verifies the connection with a ping.
// The caller decides what a failure means; the server runs in a
// degraded mode without a cache.
func NewRedisClient(host, port, password string, dbIndex int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(host, port),
		Password:     password,
		DB:           dbIndex,
		DialTimeout:  dialTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s:%s: %w", host, port, err)
	}

	return rdb, nil
}
