package services

import (
	"errors"
	"time"

	"payhost-backend/internal/database"

	"github.com/go-redis/redis/v8"
)

const denylistPrefix = "denylist:"

// AddToDenylist revokes an admin token until it would have expired anyway.
func AddToDenylist(tokenString string, expiration time.Duration) error {
	if expiration <= 0 {
		return nil
	}
	if database.RedisClient == nil {
		return errors.New("redis client is not connected")
	}
	key := denylistPrefix + tokenString
	return database.RedisClient.Set(database.Ctx, key, 1, expiration).Err()
}

func IsDenylisted(tokenString string) (bool, error) {
	if database.RedisClient == nil {
		return false, nil
	}
	key := denylistPrefix + tokenString
	val, err := database.RedisClient.Get(database.Ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val != "", nil
}
