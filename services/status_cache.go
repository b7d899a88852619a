package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStatusCache keeps each user's check-in state for the current day so
// status polls from the mobile app do not hit MongoDB.
type RedisStatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

type statusEntry struct {
	CheckedIn bool      `json:"checked_in"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewStatusCache(client *redis.Client, ttl time.Duration) *RedisStatusCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisStatusCache{client: client, ttl: ttl}
}

func statusKey(userID string, date time.Time) string {
	return fmt.Sprintf("checkin_status:%s:%d", userID, date.Unix())
}

func (sc *RedisStatusCache) GetStatus(ctx context.Context, userID string, date time.Time) (bool, bool, error) {
	if userID == "" {
		return false, false, fmt.Errorf("userID cannot be empty")
	}

	data, err := sc.client.Get(ctx, statusKey(userID, date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to get status from cache: %v", err)
	}

	var entry statusEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return false, false, fmt.Errorf("failed to unmarshal status: %v", err)
	}
	return entry.CheckedIn, true, nil
}

// SetStatus stores the state unless the cached entry is newer than updatedAt.
// Two different states with the same updatedAt cannot be ordered, so the key
// is dropped and the next read repopulates it from MongoDB.
func (sc *RedisStatusCache) SetStatus(ctx context.Context, userID string, date time.Time, checkedIn bool, updatedAt time.Time) error {
	if userID == "" {
		return fmt.Errorf("userID cannot be empty")
	}

	data, err := json.Marshal(statusEntry{CheckedIn: checkedIn, UpdatedAt: updatedAt})
	if err != nil {
		return fmt.Errorf("failed to marshal status: %v", err)
	}

	key := statusKey(userID, date)
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			var existing statusEntry
			if json.Unmarshal(current, &existing) == nil {
				if existing.UpdatedAt.After(updatedAt) {
					return nil
				}
				if existing.UpdatedAt.Equal(updatedAt) && existing.CheckedIn != checkedIn {
					_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
						pipe.Del(ctx, key)
						return nil
					})
					return err
				}
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, sc.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < 3; attempt++ {
		err = sc.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		sc.client.Del(ctx, key)
		return fmt.Errorf("failed to cache status: %v", err)
	}
	return nil
}

func (sc *RedisStatusCache) IsConnected(ctx context.Context) bool {
	if sc == nil || sc.client == nil {
		return false
	}
	return sc.client.Ping(ctx).Err() == nil
}
