package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGuard(t *testing.T) *DeliveryGuard {
	t.Helper()
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}

	guard, err := NewDeliveryGuard(context.Background(), url, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = guard.Close() })
	return guard
}

func TestClaimAndRelease(t *testing.T) {
	guard := newTestGuard(t)
	ctx := context.Background()
	id := "wamid." + uuid.NewString()

	first, err := guard.Claim(ctx, id)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := guard.Claim(ctx, id)
	require.NoError(t, err)
	assert.False(t, again)

	require.NoError(t, guard.Release(ctx, id))

	afterRelease, err := guard.Claim(ctx, id)
	require.NoError(t, err)
	assert.True(t, afterRelease)

	ttl, err := guard.rdb.TTL(ctx, keyPrefix+id).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, guard.Release(ctx, id))
}

func TestNewDeliveryGuard_BadURL(t *testing.T) {
	_, err := NewDeliveryGuard(context.Background(), "not-a-url", time.Minute)
	assert.Error(t, err)
}

func TestClaim_EmptyID(t *testing.T) {
	guard := &DeliveryGuard{}
	_, err := guard.Claim(context.Background(), "")
	assert.Error(t, err)
}
