package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/lumenbank/servicing/internal/domain/model"
)

// RedisBalanceCache implements port.BalanceCache over Redis. Snapshots are
// stored as JSON under one key per case with a TTL; every ledger mutation
// invalidates the key.
type RedisBalanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBalanceCache creates a cache over the given Redis client.
func NewRedisBalanceCache(client *redis.Client, ttl time.Duration) *RedisBalanceCache {
	return &RedisBalanceCache{client: client, ttl: ttl}
}

type cachedSnapshot struct {
	BalanceID            string          `json:"balance_id"`
	CaseID               string          `json:"case_id"`
	PrincipalOutstanding decimal.Decimal `json:"principal_outstanding"`
	InterestOutstanding  decimal.Decimal `json:"interest_outstanding"`
	FeesOutstanding      decimal.Decimal `json:"fees_outstanding"`
	TotalOutstanding     decimal.Decimal `json:"total_outstanding"`
	BalanceDate          time.Time       `json:"balance_date"`
}

func balanceKey(caseID string) string {
	return fmt.Sprintf("servicing:balance:%s", caseID)
}

// Get returns the cached snapshot, or nil on a miss.
func (c *RedisBalanceCache) Get(ctx context.Context, caseID string) (*model.BalanceSnapshot, error) {
	raw, err := c.client.Get(ctx, balanceKey(caseID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var cached cachedSnapshot
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil, fmt.Errorf("decode cached balance: %w", err)
	}
	return &model.BalanceSnapshot{
		BalanceID:            cached.BalanceID,
		CaseID:               cached.CaseID,
		PrincipalOutstanding: cached.PrincipalOutstanding,
		InterestOutstanding:  cached.InterestOutstanding,
		FeesOutstanding:      cached.FeesOutstanding,
		TotalOutstanding:     cached.TotalOutstanding,
		BalanceDate:          cached.BalanceDate,
		IsCurrent:            true,
	}, nil
}

// Set stores the snapshot with the configured TTL.
func (c *RedisBalanceCache) Set(ctx context.Context, snapshot model.BalanceSnapshot) error {
	payload, err := json.Marshal(cachedSnapshot{
		BalanceID:            snapshot.BalanceID,
		CaseID:               snapshot.CaseID,
		PrincipalOutstanding: snapshot.PrincipalOutstanding,
		InterestOutstanding:  snapshot.InterestOutstanding,
		FeesOutstanding:      snapshot.FeesOutstanding,
		TotalOutstanding:     snapshot.TotalOutstanding,
		BalanceDate:          snapshot.BalanceDate,
	})
	if err != nil {
		return fmt.Errorf("encode balance snapshot: %w", err)
	}
	if err := c.client.Set(ctx, balanceKey(snapshot.CaseID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshot for a case.
func (c *RedisBalanceCache) Invalidate(ctx context.Context, caseID string) error {
	if err := c.client.Del(ctx, balanceKey(caseID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
