package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"PriceSniper/internal/logger"
	"PriceSniper/internal/model"
)

const redisTimeout = 5 * time.Second

// RedisRecorder keeps a capped list of readings per product in Redis.
type RedisRecorder struct {
	client      *redis.Client
	maxReadings int64
}

// NewRedisRecorder connects to Redis and verifies the connection.
func NewRedisRecorder(addr, password string, db, maxReadings int) (*RedisRecorder, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	logger.L.Infof("redis recorder connected: %s/%d", addr, db)
	return &RedisRecorder{client: client, maxReadings: int64(maxReadings)}, nil
}

func readingsKey(productID int64) string {
	return fmt.Sprintf("readings:%d", productID)
}

func (r *RedisRecorder) RecordReading(rd *model.Reading) error {
	data, err := json.Marshal(rd)
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	key := readingsKey(rd.ProductID)
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	if r.maxReadings > 0 {
		pipe.LTrim(ctx, key, 0, r.maxReadings-1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push reading: %w", err)
	}
	return nil
}

// RecentReadings returns up to limit readings for a product, newest first.
func (r *RedisRecorder) RecentReadings(productID int64, limit int) ([]model.Reading, error) {
	if limit <= 0 {
		return []model.Reading{}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	raw, err := r.client.LRange(ctx, readingsKey(productID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read readings: %w", err)
	}
	out := make([]model.Reading, 0, len(raw))
	for _, item := range raw {
		var rd model.Reading
		if err := json.Unmarshal([]byte(item), &rd); err != nil {
			return nil, fmt.Errorf("unmarshal reading: %w", err)
		}
		out = append(out, rd)
	}
	return out, nil
}

func (r *RedisRecorder) Close() error {
	logger.L.Info("closing redis recorder")
	return r.client.Close()
}
