package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisTokenBlacklist struct {
	Client *redis.Client
}

// NewRedisClient parses redisURL and verifies the server answers.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}
	return client, nil
}

func NewTokenBlacklist(client *redis.Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{Client: client}
}

func blacklistKey(token string) string {
	return fmt.Sprintf("blacklist:access:%s", token)
}

// Blacklist rejects token until it would have expired anyway.
func (tb *RedisTokenBlacklist) Blacklist(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := tb.Client.Set(ctx, blacklistKey(token), "true", ttl).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token in Redis: %v", err)
	}
	return nil
}

// IsBlacklisted fails open when Redis is unreachable.
func (tb *RedisTokenBlacklist) IsBlacklisted(ctx context.Context, token string) bool {
	exists, err := tb.Client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		log.Printf("Warning: error checking token blacklist: %v", err)
		return false
	}
	return exists > 0
}

// IsConnected checks if the Redis connection is alive
func (tb *RedisTokenBlacklist) IsConnected(ctx context.Context) bool {
	if tb == nil || tb.Client == nil {
		return false
	}
	return tb.Client.Ping(ctx).Err() == nil
}
