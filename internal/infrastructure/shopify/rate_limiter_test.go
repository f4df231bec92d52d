package shopify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_PerShopBuckets(t *testing.T) {
	l := NewRateLimiter(0.001, 1)
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx, "a.myshopify.com"))
	// another shop has its own bucket
	require.NoError(t, l.Wait(ctx, "b.myshopify.com"))

	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx, "a.myshopify.com"))
}
