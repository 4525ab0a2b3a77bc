package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aldianriski/portfolioapi/internal/config"
	"github.com/redis/go-redis/v9"
)

// ConnectRedis connects to Redis and pings it once
func ConnectRedis(cfg *config.Config) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		redisClient.Close()
		return nil, err
	}
	return redisClient, nil
}
