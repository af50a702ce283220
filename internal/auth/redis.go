package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-tombola/internal/logger"
)

// InitializeRedis connects the Redis client backing login codes and
// session registrations, and verifies the connection before returning.
func InitializeRedis(redisAddr string, customLogger *logger.Logger) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: "", // no password
		DB:       0,  // use default DB
		PoolSize: 10, // connection pool size
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		if customLogger != nil {
			customLogger.Error("AUTH", fmt.Sprintf("Failed to connect to Redis at %s: %v", redisAddr, err))
		}
		return nil, err
	}

	if customLogger != nil {
		customLogger.Info("AUTH", fmt.Sprintf("Successfully connected to Redis at %s", redisAddr))
	}
	return redisClient, nil
}
