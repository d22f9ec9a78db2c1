// Package redis stores short-lived delivery markers for inbound webhooks.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "wa-relay:delivery:"

// DeliveryGuard claims WhatsApp message ids with SETNX so a redelivered
// webhook is processed once per TTL window, across every replica.
type DeliveryGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewDeliveryGuard connects to the Redis instance at url.
func NewDeliveryGuard(ctx context.Context, url string, ttl time.Duration) (*DeliveryGuard, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &DeliveryGuard{rdb: rdb, ttl: ttl}, nil
}

// Claim reports whether messageID has not been seen within the TTL.
func (g *DeliveryGuard) Claim(ctx context.Context, messageID string) (bool, error) {
	if messageID == "" {
		return false, errors.New("empty message id")
	}
	first, err := g.rdb.SetNX(ctx, keyPrefix+messageID, time.Now().Unix(), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim message %s: %w", messageID, err)
	}
	return first, nil
}

// Release forgets messageID so a later redelivery is processed again.
func (g *DeliveryGuard) Release(ctx context.Context, messageID string) error {
	if err := g.rdb.Del(ctx, keyPrefix+messageID).Err(); err != nil {
		return fmt.Errorf("release message %s: %w", messageID, err)
	}
	return nil
}

// Close closes the Redis connection pool.
func (g *DeliveryGuard) Close() error {
	return g.rdb.Close()
}
