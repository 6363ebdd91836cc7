package database

import (
	"context"
	"fmt"
	"time"

	"payhost-backend/config"

	"github.com/go-redis/redis/v8"
)

var (
	// RedisClient is nil when Redis is not configured or unreachable.
	// Callers must treat that as "single instance" mode.
	RedisClient *redis.Client
	Ctx         = context.Background()
)

// ConnectRedis dials Redis and pings it. On failure RedisClient stays nil.
func ConnectRedis(cfg *config.Config) error {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisFullAddr(),
		Password:    cfg.RedisPassword,
		DB:          0,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(Ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		RedisClient = nil
		return fmt.Errorf("ping redis %s: %w", cfg.RedisFullAddr(), err)
	}

	RedisClient = client
	return nil
}

func CloseRedis() error {
	if RedisClient == nil {
		return nil
	}
	err := RedisClient.Close()
	RedisClient = nil
	return err
}
