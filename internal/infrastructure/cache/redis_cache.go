package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/dmorales/farmapos-api/internal/application/dto"
	"github.com/dmorales/farmapos-api/internal/application/ports"
)

var _ ports.SummaryCache = (*RedisSummaryCache)(nil)

const summaryKey = "farmapos:batch_summary"

// RedisSummaryCache cachea el resumen de inventario por lotes en Redis.
// Toda mutación del Batch Ledger invalida la clave; el TTL cubre el resto.
type RedisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSummaryCache(addr, password string, db int, ttl time.Duration) *RedisSummaryCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisSummaryCache{client: client, ttl: ttl}
}

func (c *RedisSummaryCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisSummaryCache) Close() error {
	return c.client.Close()
}

func (c *RedisSummaryCache) GetSummary(ctx context.Context) (*dto.BatchSummaryResponse, bool, error) {
	val, err := c.client.Get(ctx, summaryKey).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var resp dto.BatchSummaryResponse
	if err := json.Unmarshal([]byte(val), &resp); err != nil {
		return nil, false, err
	}
	return &resp, true, nil
}

func (c *RedisSummaryCache) SetSummary(ctx context.Context, summary *dto.BatchSummaryResponse) error {
	if summary == nil {
		return nil
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, summaryKey, payload, c.ttl).Err()
}

func (c *RedisSummaryCache) InvalidateSummary(ctx context.Context) error {
	return c.client.Del(ctx, summaryKey).Err()
}

// NoopSummaryCache no cachea nada; se usa cuando Redis no está configurado.
type NoopSummaryCache struct{}

var _ ports.SummaryCache = (*NoopSummaryCache)(nil)

func (NoopSummaryCache) GetSummary(context.Context) (*dto.BatchSummaryResponse, bool, error) {
	return nil, false, nil
}

func (NoopSummaryCache) SetSummary(context.Context, *dto.BatchSummaryResponse) error { return nil }

func (NoopSummaryCache) InvalidateSummary(context.Context) error { return nil }
